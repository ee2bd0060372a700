/*
Package suggest answers interactive queries over one ranked corpus.

The corpus comes in already ordered, best candidate first. Prefix
queries go through a patricia trie keyed by command text; substring
queries scan the corpus in rank order, so early exit at the limit is
cheap. Either way results come back in corpus order, never re-scored:
ranking happened upstream.
*/
package suggest

import (
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Mode selects how a query matches command text.
type Mode int

const (
	// ModeSubstring matches anywhere in the command, smart-case:
	// an all-lowercase query ignores case, anything else is exact.
	ModeSubstring Mode = iota
	// ModePrefix matches the start of the command, exact case.
	ModePrefix
)

// ParseMode maps a config string to a Mode, defaulting to substring.
func ParseMode(s string) Mode {
	if strings.EqualFold(s, "prefix") {
		return ModePrefix
	}
	return ModeSubstring
}

func (m Mode) String() string {
	if m == ModePrefix {
		return "prefix"
	}
	return "substring"
}

// Suggestion is one command candidate. Pos is its position in the
// ranked corpus; lower means better.
type Suggestion struct {
	Text string
	Pos  int
}

// Suggester indexes one ranked corpus for interactive filtering.
type Suggester struct {
	items []string
	trie  *patricia.Trie
}

// NewSuggester indexes items, which must already be rank-ordered and
// deduplicated.
func NewSuggester(items []string) *Suggester {
	trie := patricia.NewTrie()
	for i, cmd := range items {
		trie.Insert(patricia.Prefix(cmd), i)
	}
	return &Suggester{
		items: items,
		trie:  trie,
	}
}

// Len returns the corpus size.
func (s *Suggester) Len() int {
	return len(s.items)
}

// Query returns up to limit candidates matching query under mode, best
// rank first. limit <= 0 means no cap. An empty query returns the top
// of the corpus as-is.
func (s *Suggester) Query(query string, limit int, mode Mode) []Suggestion {
	if query == "" {
		return s.top(limit)
	}
	if mode == ModePrefix {
		return s.prefixQuery(query, limit)
	}
	return s.substringQuery(query, limit)
}

func (s *Suggester) top(limit int) []Suggestion {
	n := len(s.items)
	if limit > 0 && n > limit {
		n = limit
	}
	out := make([]Suggestion, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Suggestion{Text: s.items[i], Pos: i})
	}
	return out
}

func (s *Suggester) prefixQuery(query string, limit int) []Suggestion {
	var matches []Suggestion
	err := s.trie.VisitSubtree(patricia.Prefix(query), func(p patricia.Prefix, item patricia.Item) error {
		pos, ok := item.(int)
		if !ok {
			log.Errorf("Unknown item type %T for command %s", item, p)
			return nil
		}
		matches = append(matches, Suggestion{Text: string(p), Pos: pos})
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting trie subtree: %v", err)
		return nil
	}

	// trie order is lexical, results must come back in rank order
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Pos < matches[j].Pos
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

func (s *Suggester) substringQuery(query string, limit int) []Suggestion {
	ignoreCase := query == strings.ToLower(query)
	var matches []Suggestion
	for i, cmd := range s.items {
		hay := cmd
		if ignoreCase {
			hay = strings.ToLower(cmd)
		}
		if !strings.Contains(hay, query) {
			continue
		}
		matches = append(matches, Suggestion{Text: cmd, Pos: i})
		if limit > 0 && len(matches) == limit {
			break
		}
	}
	return matches
}
