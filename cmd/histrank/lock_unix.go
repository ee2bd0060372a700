//go:build !windows

package main

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// acquireLock takes the advisory lock guarding the history file
// rewrite. The descriptor stays open for the life of the process.
func acquireLock(path string) (int, error) {
	fd, err := unix.Open(path, unix.O_CREAT|unix.O_RDWR, 0o600)
	if err != nil {
		return -1, fmt.Errorf("cannot open lock file: %w", err)
	}
	if err := unix.Flock(fd, unix.LOCK_EX|unix.LOCK_NB); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("another histrank instance is running")
	}
	return fd, nil
}

// releaseLock drops the advisory lock.
func releaseLock(fd int) {
	if fd >= 0 {
		unix.Flock(fd, unix.LOCK_UN)
		unix.Close(fd)
	}
}
