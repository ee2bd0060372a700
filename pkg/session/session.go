/*
Package session tracks mutations against one history store.

A Session owns the dirty flag tying removals to the running shell: any
removal that touches the file means the shell's in-memory history is
stale until it re-reads the file. The session signals that by typing
the format's reload directive into the shell's input stream.
*/
package session

import (
	"errors"

	"github.com/bastiangx/histrank/pkg/histfile"
	"github.com/charmbracelet/log"
)

// ErrNoInjector means there is no shell input channel to flush into,
// usually because stdin is not a terminal.
var ErrNoInjector = errors.New("session: no shell input channel for flush")

// Injector types text into the controlling shell's input stream.
type Injector interface {
	Inject(text string) error
}

// Session is the single mutation controller for one store. It is not
// safe for concurrent use; the front-end holds the one instance.
type Session struct {
	store    *histfile.Store
	injector Injector
	dirty    bool
}

// New wraps a loaded store. injector may be nil when no controlling
// terminal exists; flushing then reports ErrNoInjector.
func New(store *histfile.Store, injector Injector) *Session {
	return &Session{
		store:    store,
		injector: injector,
	}
}

// Open marks a session boundary: the dirty flag resets.
func (s *Session) Open() {
	s.dirty = false
}

// Store returns the backing store.
func (s *Session) Store() *histfile.Store {
	return s.store
}

// Dirty reports whether the file changed under the running shell.
func (s *Session) Dirty() bool {
	return s.dirty
}

// ClearDirty acknowledges a flush. Flushing never clears the flag
// itself, the caller decides when the shell has caught up.
func (s *Session) ClearDirty() {
	s.dirty = false
}

// Reload re-reads the history file from disk and resets the dirty
// flag. The injector carries over.
func (s *Session) Reload() error {
	st, err := histfile.Load(s.store.Path())
	if err != nil {
		return err
	}
	s.store = st
	s.dirty = false
	return nil
}

// RemoveAll deletes every entry whose command view equals text and
// reports how many went away. Positions shift on every removal, so the
// search restarts from the top each round instead of trusting indices.
//
// Any removal marks the session dirty and rewrites the file. A failed
// rewrite keeps the in-memory removals and the dirty flag, and hands
// the error up: the caller knows the file no longer matches memory.
func (s *Session) RemoveAll(text string) (int, error) {
	count := 0
	for {
		pos := s.store.SearchCommand(text, 0)
		if pos < 0 {
			break
		}
		s.store.Remove(pos)
		count++
	}
	if count == 0 {
		return 0, nil
	}

	s.dirty = true
	log.Debugf("Removed %d occurrences of %q from history", count, text)
	if err := s.store.Persist(); err != nil {
		return count, err
	}
	return count, nil
}

// FlushIfDirty types the format's reload directive into the shell when
// the flag is set. The flag stays set; see ClearDirty.
func (s *Session) FlushIfDirty() error {
	if !s.dirty {
		return nil
	}
	if s.injector == nil {
		return ErrNoInjector
	}
	directive := s.store.Format().ReloadCmd() + "\n"
	log.Debugf("Flushing reload directive %q to shell", directive)
	return s.injector.Inject(directive)
}
