package app

import (
	"github.com/lambda-feedback/launcher/config"
	"github.com/lambda-feedback/launcher/internal/shell"
	"github.com/lambda-feedback/launcher/util/conf"
	"github.com/lambda-feedback/launcher/util/logging"
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"
)

func New(ctx *cli.Context) (*shell.Shell, error) {
	log, err := logging.LoggerFromContext(ctx.Context)
	if err != nil {
		return nil, err
	}

	config, err := conf.GetConfigFromContext[config.Config](ctx.Context)
	if err != nil {
		return nil, err
	}

	sharedModule := fx.Module(
		"shared",
		// provide global config
		fx.Supply(config),
		// provide launch config
		fx.Supply(config.Launch),
	)

	return shell.New(log, sharedModule), nil
}
