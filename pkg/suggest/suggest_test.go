package suggest

import (
	"reflect"
	"testing"
)

var corpus = []string{
	"git status",
	"git diff",
	"make test",
	"git push origin main",
	"make",
	"vim Makefile",
	"GIT_TRACE=1 git fetch",
}

func texts(suggestions []Suggestion) []string {
	out := make([]string, len(suggestions))
	for i, s := range suggestions {
		out[i] = s.Text
	}
	return out
}

func TestParseMode(t *testing.T) {
	cases := []struct {
		in   string
		want Mode
	}{
		{"prefix", ModePrefix},
		{"Prefix", ModePrefix},
		{"substring", ModeSubstring},
		{"", ModeSubstring},
		{"anything else", ModeSubstring},
	}
	for _, tc := range cases {
		if got := ParseMode(tc.in); got != tc.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestEmptyQueryReturnsTop(t *testing.T) {
	s := NewSuggester(corpus)

	got := texts(s.Query("", 3, ModeSubstring))
	want := []string{"git status", "git diff", "make test"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("top query = %v, want %v", got, want)
	}

	// no cap returns the whole corpus in order
	all := s.Query("", 0, ModePrefix)
	if len(all) != len(corpus) {
		t.Errorf("uncapped top query returned %d of %d", len(all), len(corpus))
	}
	for i, sug := range all {
		if sug.Pos != i {
			t.Errorf("Pos[%d] = %d, want %d", i, sug.Pos, i)
		}
	}
}

func TestPrefixQuery(t *testing.T) {
	s := NewSuggester(corpus)

	got := texts(s.Query("git", 0, ModePrefix))
	// rank order, not lexical order
	want := []string{"git status", "git diff", "git push origin main"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("prefix query = %v, want %v", got, want)
	}

	// prefix is exact-case: GIT_ env assignment is not a git prefix hit
	for _, sug := range s.Query("git", 0, ModePrefix) {
		if sug.Text == "GIT_TRACE=1 git fetch" {
			t.Error("prefix query matched a non-prefix command")
		}
	}

	limited := s.Query("git", 2, ModePrefix)
	if len(limited) != 2 || limited[0].Text != "git status" {
		t.Errorf("limited prefix query = %v", texts(limited))
	}
}

// a full command typed out stays selectable
func TestPrefixQueryExactCommand(t *testing.T) {
	s := NewSuggester(corpus)
	got := texts(s.Query("make", 0, ModePrefix))
	want := []string{"make test", "make"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("exact command query = %v, want %v", got, want)
	}
}

func TestSubstringQuery(t *testing.T) {
	s := NewSuggester(corpus)

	got := texts(s.Query("make", 0, ModeSubstring))
	// smart case: lowercase query also hits vim Makefile
	want := []string{"make test", "make", "vim Makefile"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("substring query = %v, want %v", got, want)
	}

	// mixed-case query goes exact
	exact := texts(s.Query("Makefile", 0, ModeSubstring))
	if !reflect.DeepEqual(exact, []string{"vim Makefile"}) {
		t.Errorf("exact-case substring query = %v", exact)
	}
	if len(s.Query("makefile", 0, ModePrefix)) != 0 {
		t.Error("prefix query should not match mid-command text")
	}
}

func TestSubstringQueryLimit(t *testing.T) {
	s := NewSuggester(corpus)
	got := s.Query("git", 2, ModeSubstring)
	if len(got) != 2 {
		t.Fatalf("limit ignored, got %d results", len(got))
	}
	// best ranked first
	if got[0].Text != "git status" || got[0].Pos != 0 {
		t.Errorf("unexpected first result %+v", got[0])
	}
}

func TestQueryNoMatches(t *testing.T) {
	s := NewSuggester(corpus)
	if got := s.Query("nonexistent", 0, ModeSubstring); len(got) != 0 {
		t.Errorf("expected no matches, got %v", texts(got))
	}
	if got := s.Query("zzz", 0, ModePrefix); len(got) != 0 {
		t.Errorf("expected no prefix matches, got %v", texts(got))
	}
}

func TestEmptyCorpus(t *testing.T) {
	s := NewSuggester(nil)
	if s.Len() != 0 {
		t.Errorf("empty corpus Len = %d", s.Len())
	}
	if got := s.Query("anything", 5, ModeSubstring); len(got) != 0 {
		t.Errorf("empty corpus returned %v", texts(got))
	}
	if got := s.Query("", 5, ModeSubstring); len(got) != 0 {
		t.Errorf("empty corpus top returned %v", texts(got))
	}
}
