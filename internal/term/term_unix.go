//go:build !windows

// Package term talks to the controlling terminal directly, bypassing
// stdin/stdout so those stay clean for pipes and the shell.
package term

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// TTY is an open handle on the controlling terminal.
type TTY struct {
	f *os.File
}

// NewTTY opens /dev/tty read-write. Callers without a controlling
// terminal (pipes, CI) get an error and should fall back to printing
// on stdout.
func NewTTY() (*TTY, error) {
	f, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("no TTY available: %w", err)
	}
	return &TTY{f: f}, nil
}

// File exposes the terminal handle so interactive programs can render
// on it directly.
func (t *TTY) File() *os.File {
	return t.f
}

// Inject types text into the terminal input queue byte by byte, as if
// the user had typed it. The shell owning the terminal reads it once
// we exit.
func (t *TTY) Inject(text string) error {
	fd := int(t.f.Fd())
	for i := 0; i < len(text); i++ {
		if err := unix.IoctlSetPointerInt(fd, unix.TIOCSTI, int(text[i])); err != nil {
			return fmt.Errorf("tty inject at byte %d: %w", i, err)
		}
	}
	return nil
}

// Close releases the terminal handle.
func (t *TTY) Close() error {
	return t.f.Close()
}
