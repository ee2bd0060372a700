package rank

import "testing"

func collect(bs *bucketSorter) []int32 {
	var out []int32
	bs.dump(func(h int32) { out = append(out, h) })
	return out
}

func TestBucketDumpAscending(t *testing.T) {
	bs := newBucketSorter(100000, false)
	bs.insert(500, 0)
	bs.insert(7, 1)
	bs.insert(99999, 2)
	bs.insert(1200, 3)

	got := collect(bs)
	want := []int32{1, 0, 3, 2}
	if len(got) != len(want) {
		t.Fatalf("expected %d handles, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("dump[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

// chains prepend, so equal keys surface newest insert first
func TestBucketTieOrder(t *testing.T) {
	bs := newBucketSorter(1000, false)
	bs.insert(42, 10)
	bs.insert(42, 11)
	bs.insert(42, 12)

	got := collect(bs)
	want := []int32{12, 11, 10}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tie order mismatch: got %v, want %v", got, want)
		}
	}
}

func TestBucketCut(t *testing.T) {
	bs := newBucketSorter(1000, false)
	bs.insert(5, 0)
	bs.insert(5, 1)
	bs.insert(900, 2)

	if !bs.cut(5, 0) {
		t.Fatal("cut of live handle failed")
	}
	if bs.size != 2 {
		t.Errorf("size after cut = %d, want 2", bs.size)
	}
	got := collect(bs)
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("unexpected handles after cut: %v", got)
	}

	// cutting twice, or under the wrong key, must miss
	if bs.cut(5, 0) {
		t.Error("second cut of same handle should miss")
	}
	if bs.cut(899, 2) {
		t.Error("cut under wrong key should miss")
	}
	if bs.cut(7, 99) {
		t.Error("cut of unknown handle should miss")
	}
}

// cut and reinsert under a new key is the re-score path
func TestBucketRekey(t *testing.T) {
	bs := newBucketSorter(1000, false)
	bs.insert(10, 0)
	bs.insert(20, 1)

	if !bs.cut(10, 0) {
		t.Fatal("cut failed")
	}
	bs.insert(30, 0)

	got := collect(bs)
	want := []int32{1, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rekey order mismatch: got %v, want %v", got, want)
		}
	}
}

func TestBucketClampFoldsIntoTopBucket(t *testing.T) {
	bs := newBucketSorter(100, true)
	key := bs.insert(5000, 0)
	if key != 99 {
		t.Errorf("expected clamp to key 99, got %d", key)
	}
	bs.insert(98, 1)

	got := collect(bs)
	want := []int32{1, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("clamped dump mismatch: got %v, want %v", got, want)
		}
	}
	// the clamped entry must be cuttable under its effective key
	if !bs.cut(99, 0) {
		t.Error("cut under clamped key failed")
	}
}

func TestBucketStrictModePanicsOnBigKey(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for key beyond keyspace without clamping")
		}
	}()
	bs := newBucketSorter(100, false)
	bs.insert(100, 0)
}

func TestKeyspaceFor(t *testing.T) {
	cases := []struct {
		entries  int
		floor    uint32
		scale    uint32
		want     uint32
		desc     string
	}{
		{10, 100000, 1000, 100000, "small history hits the floor"},
		{500, 100000, 1000, 500000, "larger history scales per entry"},
		{100, 100000, 1000, 100000, "boundary stays at floor"},
		{101, 100000, 1000, 101000, "just past the floor"},
	}
	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			if got := keyspaceFor(tc.entries, tc.floor, tc.scale); got != tc.want {
				t.Errorf("keyspaceFor(%d, %d, %d) = %d, want %d", tc.entries, tc.floor, tc.scale, got, tc.want)
			}
		})
	}
}

// sparse handles grow the link table on demand
func TestBucketSparseHandles(t *testing.T) {
	bs := newBucketSorter(1000, false)
	bs.insert(1, 0)
	bs.insert(2, 512)
	bs.insert(3, 7)

	got := collect(bs)
	want := []int32{0, 512, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sparse handle dump mismatch: got %v, want %v", got, want)
		}
	}
}
