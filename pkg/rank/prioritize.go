/*
Package rank turns raw shell history into a deduplicated, ranked corpus.

One pass walks the history newest to oldest. Every line lands in the
raw chronological view; lines that survive the noise blacklist are
deduplicated and scored, with repeat occurrences re-scored by cutting
the entry from its current bucket and reinserting it under the new key.
The ascending bucket dump is the ranked result: lowest score first,
which means recent, short, lightly repeated commands surface on top.

The engine is single threaded. A sorter and dedup index live for one
Prioritize call and are never shared.
*/
package rank

import (
	"fmt"
)

// Default keyspace shape: a thousand keys per history entry with a
// floor that keeps small histories from cramping the spread.
const (
	DefaultKeyFloor = 100000
	DefaultKeyScale = 1000
)

// Source is the read view the pipeline needs from a history store.
// Positions are chronological: 0 is the oldest entry.
type Source interface {
	Len() int
	Line(i int) string
	ItemOffset() int
}

// Options tunes one prioritization pass.
type Options struct {
	// Blacklist filters noise commands; nil means the builtin set.
	Blacklist *Blacklist
	// KeyFloor and KeyScale size the bucket keyspace. Zero means the
	// package default.
	KeyFloor uint32
	KeyScale uint32
	// ClampBigKeys folds keys past the keyspace into the top bucket
	// instead of aborting.
	ClampBigKeys bool
}

// DefaultOptions returns the options every surface starts from.
func DefaultOptions() Options {
	return Options{
		KeyFloor:     DefaultKeyFloor,
		KeyScale:     DefaultKeyScale,
		ClampBigKeys: true,
	}
}

func (o Options) withDefaults() Options {
	if o.Blacklist == nil {
		o.Blacklist = NewBlacklist()
	}
	if o.KeyFloor == 0 {
		o.KeyFloor = DefaultKeyFloor
	}
	if o.KeyScale == 0 {
		o.KeyScale = DefaultKeyScale
	}
	return o
}

// entry is one distinct command. The arena owns every entry; buckets
// and the dedup index refer to it by arena index only.
type entry struct {
	text string
	rank uint32
	raw  int
}

// Stats describes one prioritization pass.
type Stats struct {
	RawEntries  int
	Ranked      int
	Blacklisted int
	Skipped     int
	KeySpace    uint32
	MaxKey      uint32
}

// PrioritizedHistory is the ranked view of one history load.
//
// Items holds distinct command texts, best candidate first, already
// trimmed of any format prefix. Sources maps each item to the raw
// position of its most recent occurrence. Raw is the untouched
// chronological sequence, oldest first, blacklisted lines included.
// All of it is copied: the result stays valid after the store reloads.
type PrioritizedHistory struct {
	Items   []string
	Sources []int
	Raw     []string
	Stats   Stats
}

// Prioritize builds the ranked, deduplicated view of src.
// An empty source yields nil, not an error.
func Prioritize(src Source, opts Options) *PrioritizedHistory {
	n := src.Len()
	if n == 0 {
		return nil
	}
	opts = opts.withDefaults()
	offset := src.ItemOffset()

	keyspace := keyspaceFor(n, opts.KeyFloor, opts.KeyScale)
	sorter := newBucketSorter(keyspace, opts.ClampBigKeys)
	index := make(map[string]int32, n)
	arena := make([]entry, 0, n)
	raw := make([]string, n)
	stats := Stats{RawEntries: n, KeySpace: keyspace}

	for i := n - 1; i >= 0; i-- {
		order := n - i
		line := src.Line(i)
		raw[i] = line

		cmd := line
		if offset > 0 {
			if len(line) <= offset {
				cmd = ""
			} else {
				cmd = line[offset:]
			}
		}
		if cmd == "" {
			stats.Skipped++
			continue
		}
		if opts.Blacklist.Contains(cmd) {
			stats.Blacklisted++
			continue
		}

		if h, ok := index[cmd]; ok {
			e := &arena[h]
			if !sorter.cut(e.rank, h) {
				// index and buckets disagree about a live entry,
				// nothing downstream can be trusted
				panic(fmt.Sprintf("rank: entry %q not chained under key %d", cmd, e.rank))
			}
			e.rank = sorter.insert(Score(e.rank, order, len(cmd)), h)
		} else {
			h := int32(len(arena))
			arena = append(arena, entry{text: cmd, raw: i})
			arena[h].rank = sorter.insert(Score(0, order, len(cmd)), h)
			index[cmd] = h
		}
	}

	items := make([]string, 0, sorter.size)
	sources := make([]int, 0, sorter.size)
	sorter.dump(func(h int32) {
		items = append(items, arena[h].text)
		sources = append(sources, arena[h].raw)
	})
	stats.Ranked = len(items)
	stats.MaxKey = sorter.maxKey

	return &PrioritizedHistory{
		Items:   items,
		Sources: sources,
		Raw:     raw,
		Stats:   stats,
	}
}
