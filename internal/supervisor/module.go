package supervisor

import (
	"context"

	"github.com/lambda-feedback/launcher/internal/shell"
	"github.com/lambda-feedback/launcher/util/logging"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module(spec LaunchSpec) fx.Option {
	return fx.Module("supervisor",
		// name the logger
		logging.DecorateLogger("launch"),
		// provide launch spec
		fx.Supply(spec),
		// provide supervisor
		fx.Provide(NewLifecycleSupervisor),
		// let the shell exit with the child's code
		fx.Provide(fx.Annotate(
			func(s *Supervisor) shell.ExitCoder { return s },
			fx.ResultTags(shell.ExitCodersGroup),
		)),
		// invoke supervisor
		fx.Invoke(func(*Supervisor) {}),
	)
}

type LifecycleParams struct {
	fx.In

	Config     Config
	Spec       LaunchSpec
	Shutdowner fx.Shutdowner
	Logger     *zap.Logger
}

// NewLifecycleSupervisor creates a supervisor whose child is spawned
// when the application starts. The child's outcome shuts the
// application down with the mirrored exit code.
func NewLifecycleSupervisor(params LifecycleParams, lc fx.Lifecycle) *Supervisor {
	s := New(Params{
		AbnormalExitCode: params.Config.AbnormalExitCode,
		Log:              params.Logger,
	})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if _, err := s.Start(params.Spec); err != nil {
				return err
			}

			go s.watch(params.Shutdowner)

			return nil
		},
		OnStop: func(ctx context.Context) error {
			return s.awaitTermination(ctx)
		},
	})

	return s
}

// watch waits for the child's outcome, reports it and requests the
// application to exit with the resulting code.
func (s *Supervisor) watch(shutdowner fx.Shutdowner) {
	outcome, err := s.Wait(context.Background())
	if err != nil {
		s.log.Error("wait for child failed", zap.Error(err))
		return
	}

	code, _ := s.report(outcome)

	if err := shutdowner.Shutdown(fx.ExitCode(code)); err != nil {
		s.log.Error("shutdown failed", zap.Error(err))
	}
}

// awaitTermination blocks until the child terminated or ctx expires,
// and reports the outcome if the watcher has not done so yet. This is
// the case if the application is stopped by an OS signal.
// The child is never signalled by the supervisor.
func (s *Supervisor) awaitTermination(ctx context.Context) error {
	handle := s.handle.Load()
	if handle == nil {
		return nil
	}

	select {
	case <-handle.Done():
	default:
		s.log.Info("waiting for child process to exit")
	}

	outcome, err := handle.Wait(ctx)
	if err != nil {
		s.log.Warn("child process still running", zap.Error(err))
		return err
	}

	s.report(outcome)

	return nil
}
