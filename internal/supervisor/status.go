package supervisor

import (
	"fmt"
	"os"
	"syscall"
)

// ExitStatus is the terminal outcome of a child that ran.
type ExitStatus struct {
	// Code is the exit code of the process, nil if the
	// process did not exit normally
	Code *int

	// Signal is the signal that caused the process to exit
	Signal *int
}

// ExitCode returns the numeric exit code, or fallback if the
// child terminated without one.
func (s ExitStatus) ExitCode(fallback int) int {
	if s.Code != nil {
		return *s.Code
	}

	return fallback
}

func (s ExitStatus) String() string {
	switch {
	case s.Code != nil:
		return fmt.Sprintf("exited with code %d", *s.Code)
	case s.Signal != nil:
		return fmt.Sprintf("terminated by signal %s", syscall.Signal(*s.Signal))
	default:
		return "terminated without exit code"
	}
}

// Outcome is the single terminal event of a child. Exactly one of
// Err and Status is set.
type Outcome struct {
	// Err is set if the child failed to start
	Err *LaunchError

	// Status is set if the child ran and terminated
	Status *ExitStatus
}

func (o Outcome) Failed() bool {
	return o.Err != nil
}

func exitStatusFromState(state *os.ProcessState) ExitStatus {
	var code *int
	var signo *int

	if state == nil {
		return ExitStatus{}
	}

	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		// the process was terminated by a signal
		cell := int(ws.Signal())
		signo = &cell
	} else if exitCode := state.ExitCode(); exitCode >= 0 {
		// the process exited with an exit code
		code = &exitCode
	}

	return ExitStatus{
		Code:   code,
		Signal: signo,
	}
}
