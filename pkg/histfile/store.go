/*
Package histfile loads, searches and rewrites shell history files.

A Store keeps the file verbatim as a slice of raw lines, oldest first,
exactly as the shell wrote them. Format detection decides how much of
each line is timestamp bookkeeping (zsh extended history) versus
command text; everything downstream works on the command view while
persistence always writes the raw lines back untouched.
*/
package histfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bastiangx/histrank/internal/utils"
	"github.com/charmbracelet/log"
)

// envHistFile is the shell variable naming the active history file.
const envHistFile = "HISTFILE"

// defaultHistName is the fallback when the environment gives nothing.
const defaultHistName = ".bash_history"

// Store is an in-memory copy of one history file.
type Store struct {
	path   string
	format Format
	lines  []string
}

// DefaultPath resolves the history file the way interactive shells do:
// $HISTFILE when set, otherwise ~/.bash_history.
func DefaultPath() (string, error) {
	if path := os.Getenv(envHistFile); path != "" {
		return path, nil
	}
	home, err := utils.HomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home for history file: %w", err)
	}
	return filepath.Join(home, defaultHistName), nil
}

// Load reads the whole history file into memory. A missing or
// unreadable file is an error; an empty file is a valid empty store.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read history file %s: %w", path, err)
	}

	format := DetectFormat(path)
	lines := splitLines(string(data))
	log.Debugf("Loaded %d history entries from %s (%s)", len(lines), path, format)

	return &Store{
		path:   path,
		format: format,
		lines:  lines,
	}, nil
}

// splitLines breaks file content into entries. The final newline does
// not open an empty entry; interior blank lines stay, since dropping
// them would make a later rewrite lossy.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Path returns the file this store was loaded from.
func (s *Store) Path() string {
	return s.path
}

// Format returns the detected history dialect.
func (s *Store) Format() Format {
	return s.format
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.lines)
}

// Line returns the raw entry at position i, oldest first.
func (s *Store) Line(i int) string {
	return s.lines[i]
}

// ItemOffset returns how many leading characters of every line are
// format bookkeeping. Callers slice raw lines with it to get commands.
func (s *Store) ItemOffset() int {
	return s.format.ItemOffset()
}

// Command returns the command view of entry i: the raw line with the
// format's bookkeeping prefix removed. Lines shorter than the offset
// (possible only when a plain file wears the zsh name) collapse to "".
func (s *Store) Command(i int) string {
	line := s.lines[i]
	offset := s.ItemOffset()
	if offset == 0 {
		return line
	}
	if len(line) <= offset {
		return ""
	}
	return line[offset:]
}

// SearchCommand finds the first entry at or after position from whose
// command view equals text. Returns -1 when there is no match.
func (s *Store) SearchCommand(text string, from int) int {
	if from < 0 {
		from = 0
	}
	for i := from; i < len(s.lines); i++ {
		if s.Command(i) == text {
			return i
		}
	}
	return -1
}

// Remove deletes the entry at position pos. Out-of-range positions
// report false and change nothing.
func (s *Store) Remove(pos int) bool {
	if pos < 0 || pos >= len(s.lines) {
		return false
	}
	s.lines = append(s.lines[:pos], s.lines[pos+1:]...)
	return true
}

// Persist rewrites the history file from the in-memory lines, verbatim,
// one entry per line. History files are private, so the rewrite keeps
// owner-only permissions.
func (s *Store) Persist() error {
	var sb strings.Builder
	for _, line := range s.lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(s.path, []byte(sb.String()), 0600); err != nil {
		return fmt.Errorf("write history file %s: %w", s.path, err)
	}
	log.Debugf("Persisted %d entries to %s", len(s.lines), s.path)
	return nil
}
