package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/lambda-feedback/launcher/config"
	"github.com/lambda-feedback/launcher/internal/shell"
	"github.com/lambda-feedback/launcher/util/conf"
	"github.com/lambda-feedback/launcher/util/logging"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var (
	appName  = "launcher"
	appUsage = `Launch a single child process, relay its standard streams
and exit with the child's exit code.`

	// cliMap maps flag names to nested config keys
	cliMap = map[string]string{
		"command":            "launch.command",
		"arg":                "launch.arg",
		"cwd":                "launch.cwd",
		"abnormal-exit-code": "launch.abnormal_exit_code",
	}
)

// newRootApp builds the cli app. Flags keep the values they were set to,
// so every run gets a fresh app.
func newRootApp(params ExecuteParams) *cli.App {
	return &cli.App{
		Name:            appName,
		Usage:           appUsage,
		Version:         params.Version,
		Compiled:        params.Compiled,
		ArgsUsage:       "[-- command [args...]]",
		HideHelpCommand: true,
		Args:            true,
		// every --arg value is passed to the child verbatim,
		// commas included
		DisableSliceFlagSeparator: true,
		Action:                    runAction,
		Commands:                  []*cli.Command{newRunCmd()},
		Flags: []cli.Flag{
			// general flags
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "set the log level. Options: debug, info, warn, error, panic, fatal.",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "set the log format. Options: production, development.",
				EnvVars: []string{"LOG_FORMAT"},
			},
			&cli.StringFlag{
				Name:    "log-output",
				Usage:   "the log destination, stderr or a file path. stdout is reserved for the child.",
				EnvVars: []string{"LOG_OUTPUT"},
			},
			&cli.PathFlag{
				Name:    "config",
				Usage:   "path to a json or .env config file.",
				EnvVars: []string{"LAUNCHER_CONFIG"},
			},
			// launch flags
			&cli.StringFlag{
				Name:     "command",
				Usage:    "the command to invoke in order to start the child process.",
				Aliases:  []string{"c"},
				Category: "launch",
				EnvVars:  []string{"LAUNCH_COMMAND"},
			},
			&cli.StringSliceFlag{
				Name:     "arg",
				Usage:    "arguments to pass to the child process, verbatim.",
				Aliases:  []string{"a"},
				Category: "launch",
				EnvVars:  []string{"LAUNCH_ARGS"},
			},
			&cli.PathFlag{
				Name:     "cwd",
				Usage:    "the working directory of the child process.",
				Category: "launch",
				EnvVars:  []string{"LAUNCH_CWD"},
			},
			&cli.IntFlag{
				Name:     "abnormal-exit-code",
				Usage:    "the exit code to use if the child terminates without one, e.g. when killed.",
				Category: "launch",
				EnvVars:  []string{"LAUNCH_ABNORMAL_EXIT_CODE"},
			},
		},
		Before: func(ctx *cli.Context) error {
			// create the bootstrap logger from the cli flags
			log, err := createLogger(
				getLogLevelFromCLI(ctx),
				getLogFormatFromCLI(ctx),
				getLogOutputFromCLI(ctx),
			)
			if err != nil {
				return err
			}

			// parse config using defaults, file, env and flags
			cfg, err := conf.Parse[config.Config](conf.ParseOptions{
				Cli:       ctx,
				CliMap:    cliMap,
				Defaults:  config.DefaultConfig,
				EnvPrefix: "LAUNCHER_",
				FileName:  ctx.Path("config"),
				Schema:    config.Schema,
				Log:       log,
			})
			if err != nil {
				return err
			}

			// recreate the logger, the config may override it
			log, err = createLogger(
				parseLogLevel(cfg.LogLevel),
				cfg.LogFormat,
				cfg.LogOutput,
			)
			if err != nil {
				return err
			}

			// inject logger into cli context
			ctx.Context = logging.ContextWithLogger(ctx.Context, log)

			// inject the config into the cli context
			ctx.Context = conf.ContextWithConfig(ctx.Context, cfg)

			return nil
		},
		After: func(ctx *cli.Context) error {
			// no logger if Before failed
			log, err := logging.LoggerFromContext(ctx.Context)
			if err != nil {
				return nil
			}

			log.Sync()

			return nil
		},
	}
}

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:               "version",
		Usage:              "print the version",
		DisableDefaultText: true,
	}
}

type ExecuteParams struct {
	Version  string
	Compiled time.Time
}

// Execute runs the cli app and returns the exit code of the process.
func Execute(params ExecuteParams) int {
	return run(context.Background(), params, os.Args)
}

func run(ctx context.Context, params ExecuteParams, args []string) int {
	err := newRootApp(params).RunContext(ctx, args)

	return exitCode(err, os.Stderr)
}

// exitCode translates the error returned by the app into an exit code.
// An ExitError carries the child's code and has already been reported.
func exitCode(err error, w io.Writer) int {
	// if app exited without error, exit with 0
	if err == nil {
		return 0
	}

	// if app exited with ExitError, exit with given exit code
	if code, ok := shell.ExitCode(err); ok {
		return code
	}

	fmt.Fprintf(w, "exit error: %s\n", err.Error())

	// otherwise, exit with exit code 1
	return 1
}

func createLogger(level zap.AtomicLevel, format, output string) (*zap.Logger, error) {
	var config zap.Config
	if format == "development" {
		config = zap.NewDevelopmentConfig()
	} else {
		config = zap.NewProductionConfig()
	}

	config.InitialFields = map[string]any{
		"app": appName,
	}

	config.Level = level

	if output == "" || output == "stdout" {
		output = "stderr"
	}

	config.OutputPaths = []string{output}
	config.ErrorOutputPaths = []string{"stderr"}

	return config.Build()
}

func getLogFormatFromCLI(ctx *cli.Context) string {
	format := ctx.String("log-format")
	if format != "" {
		return format
	}

	return "production"
}

func getLogOutputFromCLI(ctx *cli.Context) string {
	return ctx.String("log-output")
}

func getLogLevelFromCLI(ctx *cli.Context) zap.AtomicLevel {
	return parseLogLevel(ctx.String("log-level"))
}

func parseLogLevel(lvl string) zap.AtomicLevel {
	if atom, err := zap.ParseAtomicLevel(lvl); err == nil && lvl != "" {
		return atom
	}

	return zap.NewAtomicLevelAt(zap.InfoLevel)
}
