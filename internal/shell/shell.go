package shell

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ExitCodersGroup is the value group of ExitCoders consulted
// after the application stopped.
const ExitCodersGroup = `group:"exit_coders"`

// ExitCoder is implemented by modules that determine the exit code of
// the process, regardless of what requested the shutdown.
type ExitCoder interface {
	ExitCode() (code int, ok bool)
}

// Shell hosts an fx application and turns its shutdown
// signal into an ExitError.
type Shell struct {
	log     *zap.Logger
	fxApp   *fx.App
	options []fx.Option
}

func New(log *zap.Logger, options ...fx.Option) *Shell {
	return &Shell{
		log:     log,
		options: options,
	}
}

// Run starts the application and blocks until it is shut down, either
// by a module calling fx.Shutdowner or by an OS signal. The returned
// error is always an ExitError carrying the code to exit with.
func (s *Shell) Run(ctx context.Context, options ...fx.Option) error {
	// 0. after run ends, flush the logger
	defer s.log.Sync()

	// 1. create shell context
	shellCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// 2. create execution context
	appCtx, cancelApp := context.WithCancel(ctx)
	defer cancelApp()

	// 3. create fx application with app context
	var coders []ExitCoder
	fxApp := s.createFxApp(appCtx, &coders, options...)
	s.fxApp = fxApp

	// 4. create start context w/ timeout
	startCtx, cancelStart := context.WithTimeout(shellCtx, fxApp.StartTimeout())
	defer cancelStart()

	// 5. start the application, exit on error
	if err := fxApp.Start(startCtx); err != nil {
		s.log.Error("failed to start application", zap.Error(err))
		return NewExitError(1)
	}

	// 6. wait for done signal by a module or the OS
	sig := <-fxApp.Wait()
	exitCode := sig.ExitCode

	s.log.Debug("shutdown requested", zap.Int("exit_code", exitCode))

	// 7. create shutdown context
	stopCtx, cancelStop := context.WithTimeout(shellCtx, fxApp.StopTimeout())
	defer cancelStop()

	// 8. gracefully shutdown the app, exit on error
	if err := fxApp.Stop(stopCtx); err != nil {
		s.log.Error("failed to stop application", zap.Error(err))
		return NewExitError(1)
	}

	// 9. a module's exit code takes precedence over the signal's,
	// which is 0 for SIGINT and SIGTERM
	for _, coder := range coders {
		if code, ok := coder.ExitCode(); ok {
			exitCode = code
			break
		}
	}

	// 10. return with the resulting exit code
	return NewExitError(exitCode)
}

func (s *Shell) createFxApp(ctx context.Context, coders *[]ExitCoder, options ...fx.Option) *fx.App {
	// 1. create fx application
	return fx.New(
		// 2. inject global execution context
		fx.Supply(fx.Annotate(ctx, fx.As(new(context.Context)))),

		// 3. inject the logger
		fx.Supply(s.log),

		// 4. use the logger also for fx' logs, below the
		// level of the supervisor's own diagnostics
		fx.WithLogger(func() fxevent.Logger {
			logger := &fxevent.ZapLogger{Logger: s.log.Named("fx")}
			logger.UseLogLevel(zapcore.DebugLevel)
			return logger
		}),

		// 5. provide user-provided options
		fx.Options(s.options...),

		// 6. provide user-provided run options
		fx.Options(options...),

		// 7. collect the exit coders of all modules
		fx.Invoke(fx.Annotate(
			func(c []ExitCoder) { *coders = c },
			fx.ParamTags(ExitCodersGroup),
		)),
	)
}
