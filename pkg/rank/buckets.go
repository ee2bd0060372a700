package rank

import (
	"fmt"
	"math"
)

const (
	// slotsPerSegment is the bucket count of one lazily allocated
	// keyspace segment. Scores cluster in the low keyspace, so most
	// segments never materialize.
	slotsPerSegment = 1000

	// noHandle terminates bucket chains.
	noHandle = int32(-1)
)

// bucketSorter keeps entry handles chained under their score key.
// Handles index the pipeline's entry arena; the sorter never sees
// entry contents. Insert prepends in O(1), cut walks one chain,
// dump walks the keyspace ascending.
type bucketSorter struct {
	segments [][]int32
	next     []int32
	keyLimit uint32
	clamp    bool
	size     int
	maxKey   uint32
}

// keyspaceFor sizes the keyspace from the history length: a thousand
// keys per entry, never below the floor. The floor keeps small
// histories from starving the spread; realistic scores stay well under
// either bound.
func keyspaceFor(historyLen int, keyFloor, keyScale uint32) uint32 {
	est := uint64(historyLen) * uint64(keyScale)
	if est < uint64(keyFloor) {
		est = uint64(keyFloor)
	}
	if est > math.MaxUint32 {
		est = math.MaxUint32
	}
	return uint32(est)
}

func newBucketSorter(keyspace uint32, clamp bool) *bucketSorter {
	if keyspace == 0 {
		panic("rank: bucket keyspace must be positive")
	}
	segCount := (uint64(keyspace) + slotsPerSegment - 1) / slotsPerSegment
	return &bucketSorter{
		segments: make([][]int32, segCount),
		keyLimit: keyspace - 1,
		clamp:    clamp,
	}
}

func newSegment() []int32 {
	seg := make([]int32, slotsPerSegment)
	for i := range seg {
		seg[i] = noHandle
	}
	return seg
}

// insert chains handle h under key and returns the key actually used.
// Keys past the keyspace fold into the top bucket when clamping is on,
// otherwise they abort: a key that far out means the score arithmetic
// and the keyspace estimate disagree.
func (bs *bucketSorter) insert(key uint32, h int32) uint32 {
	if key > bs.keyLimit {
		if !bs.clamp {
			panic(fmt.Sprintf("rank: bucket key %d beyond keyspace limit %d", key, bs.keyLimit))
		}
		key = bs.keyLimit
	}
	seg := key / slotsPerSegment
	slot := key % slotsPerSegment
	if bs.segments[seg] == nil {
		bs.segments[seg] = newSegment()
	}
	bs.ensureHandle(h)
	bs.next[h] = bs.segments[seg][slot]
	bs.segments[seg][slot] = h
	bs.size++
	if key > bs.maxKey {
		bs.maxKey = key
	}
	return key
}

func (bs *bucketSorter) ensureHandle(h int32) {
	for int(h) >= len(bs.next) {
		bs.next = append(bs.next, noHandle)
	}
}

// cut unlinks handle h from the chain under key. Reports false when h
// is not chained there, which callers treat as corruption.
func (bs *bucketSorter) cut(key uint32, h int32) bool {
	if key > bs.keyLimit {
		return false
	}
	segment := bs.segments[key/slotsPerSegment]
	if segment == nil {
		return false
	}
	slot := key % slotsPerSegment
	prev := noHandle
	for cur := segment[slot]; cur != noHandle; cur = bs.next[cur] {
		if cur == h {
			if prev == noHandle {
				segment[slot] = bs.next[cur]
			} else {
				bs.next[prev] = bs.next[cur]
			}
			bs.next[cur] = noHandle
			bs.size--
			return true
		}
		prev = cur
	}
	return false
}

// dump visits every live handle in ascending key order. Within one
// bucket the most recently inserted handle comes first, since insert
// prepends. This is the terminal read: the sorter holds no entry
// storage of its own, so there is nothing to release afterwards.
func (bs *bucketSorter) dump(visit func(h int32)) {
	if bs.size == 0 {
		return
	}
	maxSeg := bs.maxKey / slotsPerSegment
	for seg := uint32(0); seg <= maxSeg; seg++ {
		segment := bs.segments[seg]
		if segment == nil {
			continue
		}
		for slot := 0; slot < slotsPerSegment; slot++ {
			for h := segment[slot]; h != noHandle; h = bs.next[h] {
				visit(h)
			}
		}
	}
}
