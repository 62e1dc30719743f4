package supervisor

import (
	"context"

	"go.uber.org/zap"
)

// Handle is the runtime handle of a spawned child. Its only events
// are Started and Done; Done fires exactly once, carrying either a
// launch failure or the exit status.
type Handle struct {
	pid     int
	started chan struct{}

	outcome Outcome
	done    chan struct{}

	log *zap.Logger
}

func newHandle(log *zap.Logger) *Handle {
	return &Handle{
		started: make(chan struct{}),
		done:    make(chan struct{}),
		log:     log,
	}
}

// run creates the child process, waits for it and publishes the
// outcome. transition is called for every state change, before
// the corresponding channel is closed.
func (h *Handle) run(spec LaunchSpec, transition func(State)) {
	cmd, err := spec.command()
	if err != nil {
		h.fail(spec, err, transition)
		return
	}

	if err := cmd.Start(); err != nil {
		// no process was created, there is nothing to wait for
		h.fail(spec, err, transition)
		return
	}

	h.pid = cmd.Process.Pid
	h.log = h.log.With(zap.Int("pid", h.pid))

	transition(Running)
	close(h.started)

	// block until the process exits. In capture mode the error may
	// also report a failed stream copy; the exit status is taken
	// from the process state either way.
	if err := cmd.Wait(); err != nil && cmd.ProcessState == nil {
		h.log.Error("wait for child failed", zap.Error(err))
	} else if err != nil {
		h.log.Debug("child wait returned error", zap.Error(err))
	}

	status := exitStatusFromState(cmd.ProcessState)
	h.outcome = Outcome{Status: &status}

	transition(Terminated)
	close(h.done)
}

func (h *Handle) fail(spec LaunchSpec, err error, transition func(State)) {
	h.outcome = Outcome{Err: &LaunchError{Cmd: spec.Cmd, Err: err}}

	transition(FailedToStart)
	close(h.done)
}

// Started is closed once the child process is running.
// It is never closed if the child fails to start.
func (h *Handle) Started() <-chan struct{} {
	return h.started
}

// Done is closed once the outcome of the child is known.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Pid returns the pid of the child, or 0 if it is not running yet
// or failed to start.
func (h *Handle) Pid() int {
	select {
	case <-h.started:
		return h.pid
	default:
		return 0
	}
}

// Wait blocks until the child failed to start or terminated. If the
// outcome is already known, Wait returns immediately.
func (h *Handle) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	case <-h.done:
		return h.outcome, nil
	}
}
