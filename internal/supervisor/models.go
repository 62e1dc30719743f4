package supervisor

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCommand          = errors.New("empty command")
	ErrUnsupportedStreamMode = errors.New("unsupported stream mode")
	ErrAlreadyStarted        = errors.New("child already started")
	ErrNotStarted            = errors.New("child not started")
)

// LaunchFailureExitCode is the exit code used when the child
// process could not be created at all.
const LaunchFailureExitCode = 1

// LaunchError reports that the child process could not be created.
// It never carries an exit status.
type LaunchError struct {
	// Cmd is the command that failed to start
	Cmd string

	// Err is the underlying cause
	Err error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to start %q: %v", e.Cmd, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// IsLaunchError reports whether err is or wraps a LaunchError.
func IsLaunchError(err error) bool {
	if err == nil {
		return false
	}

	var launchErr *LaunchError
	return errors.As(err, &launchErr)
}

type State int32

const (
	NotStarted State = iota
	Starting
	Running
	Terminated
	FailedToStart
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Terminated:
		return "terminated"
	case FailedToStart:
		return "failed to start"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Final reports whether no further transition can happen.
func (s State) Final() bool {
	return s == Terminated || s == FailedToStart
}
