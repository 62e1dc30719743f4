package cmd

import (
	"github.com/lambda-feedback/launcher/app"
	"github.com/lambda-feedback/launcher/config"
	"github.com/lambda-feedback/launcher/internal/supervisor"
	"github.com/lambda-feedback/launcher/util/conf"
	"github.com/urfave/cli/v2"
)

var (
	runCmdDescription = `The run command starts the configured child process with the
launcher's environment and standard streams, and blocks until
the child terminates. The launcher then exits with the child's
exit code.

Arguments given after -- replace the configured command and
its arguments, e.g. launcher run -- node server.js

This is also the default action if no command is given.`
)

func newRunCmd() *cli.Command {
	return &cli.Command{
		Name:        "run",
		Usage:       "Start the child process and mirror its exit code.",
		ArgsUsage:   "[-- command [args...]]",
		Description: runCmdDescription,
		Action:      runAction,
	}
}

func runAction(ctx *cli.Context) error {
	cfg, err := conf.GetConfigFromContext[config.Config](ctx.Context)
	if err != nil {
		return err
	}

	shell, err := app.New(ctx)
	if err != nil {
		return err
	}

	return shell.Run(ctx.Context, supervisor.Module(launchSpec(ctx, cfg)))
}

// launchSpec returns the spec for the positional arguments, if any,
// or the configured command otherwise.
func launchSpec(ctx *cli.Context, cfg config.Config) supervisor.LaunchSpec {
	if ctx.NArg() == 0 {
		return cfg.Launch.LaunchSpec()
	}

	return supervisor.
		NewLaunchSpec(ctx.Args().First(), ctx.Args().Tail()...).
		WithCwd(cfg.Launch.Cwd)
}
