package supervisor

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

// Supervisor launches exactly one child process and mirrors its
// outcome. It never restarts, signals or cancels the child.
type Supervisor struct {
	state atomic.Int32

	handle   atomic.Pointer[Handle]
	fallback int

	// result of the first reported outcome
	reportOnce sync.Once
	reported   atomic.Bool
	code       int
	err        error

	log *zap.Logger
}

type Params struct {
	// AbnormalExitCode is the exit code used if the child terminated
	// without a numeric exit code, e.g. because it was killed.
	AbnormalExitCode int

	// Log is the logger used for diagnostics
	Log *zap.Logger
}

func New(params Params) *Supervisor {
	log := params.Log
	if log == nil {
		log = zap.NewNop()
	}

	return &Supervisor{
		fallback: params.AbnormalExitCode,
		log:      log.Named("supervisor"),
	}
}

// Start spawns the child described by spec. The call returns before
// the child is confirmed running; launch failures are reported through
// the handle's outcome. Start may only be called once.
func (s *Supervisor) Start(spec LaunchSpec) (*Handle, error) {
	if !s.state.CompareAndSwap(int32(NotStarted), int32(Starting)) {
		return nil, ErrAlreadyStarted
	}

	log := s.log.With(
		zap.String("command", spec.Cmd),
		zap.Strings("args", spec.Args),
	)

	if spec.Cwd != "" {
		log = log.With(zap.String("cwd", spec.Cwd))
	}

	log.Info("starting child process")

	handle := newHandle(s.log)
	s.handle.Store(handle)

	go handle.run(spec, s.transition)

	return handle, nil
}

func (s *Supervisor) transition(state State) {
	s.state.Store(int32(state))
	s.log.Debug("child state changed", zap.Stringer("state", state))
}

// Wait blocks until the child's single terminal outcome is known.
func (s *Supervisor) Wait(ctx context.Context) (Outcome, error) {
	handle := s.handle.Load()
	if handle == nil {
		return Outcome{}, ErrNotStarted
	}

	return handle.Wait(ctx)
}

// Resolve reports the outcome on the diagnostic channel and translates
// it into the supervisor's exit behaviour: the exit code to use if the
// child terminated, or the launch error if it never ran.
func (s *Supervisor) Resolve(outcome Outcome) (int, error) {
	if outcome.Failed() {
		s.log.Error("failed to start child process", zap.Error(outcome.Err))
		return LaunchFailureExitCode, outcome.Err
	}

	var status ExitStatus
	if outcome.Status != nil {
		status = *outcome.Status
	}

	code := status.ExitCode(s.fallback)

	log := s.log.With(
		zap.Stringer("status", status),
		zap.Int("exit_code", code),
	)

	if status.Code == nil {
		log.Warn("child process terminated abnormally")
	} else {
		log.Info("child process exited")
	}

	return code, nil
}

// report resolves the outcome once. Later calls return the first result
// without logging it again.
func (s *Supervisor) report(outcome Outcome) (int, error) {
	s.reportOnce.Do(func() {
		s.code, s.err = s.Resolve(outcome)
		if s.err != nil {
			sentry.CaptureException(s.err)
		}
		s.reported.Store(true)
	})

	return s.code, s.err
}

// ExitCode returns the exit code resolved from the child's outcome.
// ok is false until the outcome was reported.
func (s *Supervisor) ExitCode() (code int, ok bool) {
	if !s.reported.Load() {
		return 0, false
	}

	return s.code, true
}

// Run starts the child, waits for it and resolves its outcome.
func (s *Supervisor) Run(ctx context.Context, spec LaunchSpec) (int, error) {
	if _, err := s.Start(spec); err != nil {
		return LaunchFailureExitCode, err
	}

	outcome, err := s.Wait(ctx)
	if err != nil {
		return LaunchFailureExitCode, err
	}

	return s.Resolve(outcome)
}

func (s *Supervisor) State() State {
	return State(s.state.Load())
}

// Pid returns the pid of the running child, or 0.
func (s *Supervisor) Pid() int {
	if handle := s.handle.Load(); handle != nil {
		return handle.Pid()
	}

	return 0
}
