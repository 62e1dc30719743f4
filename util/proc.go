package util

import (
	"errors"
	"os"
	"syscall"
)

// IsProcessAlive reports whether a process with the given pid exists.
// Zombies that have not been reaped yet count as alive.
func IsProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	// signal 0 performs error checking only
	err = process.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}

	// the process exists, but belongs to another user
	return errors.Is(err, syscall.EPERM)
}
