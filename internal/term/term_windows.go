//go:build windows

package term

import (
	"errors"
	"os"
)

var errNoTTY = errors.New("terminal injection is not supported on windows")

// TTY is unavailable on Windows; the picker prints selections instead
// of typing them.
type TTY struct{}

func NewTTY() (*TTY, error) {
	return nil, errNoTTY
}

func (t *TTY) File() *os.File {
	return nil
}

func (t *TTY) Inject(text string) error {
	return errNoTTY
}

func (t *TTY) Close() error {
	return nil
}
