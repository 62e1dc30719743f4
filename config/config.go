package config

import (
	"github.com/lambda-feedback/launcher/internal/supervisor"
	"github.com/lambda-feedback/launcher/util/conf"
)

type Config struct {
	// LogLevel is the log level for the application
	LogLevel string `conf:"log_level"`

	// LogFormat is the log format for the application
	LogFormat string `conf:"log_format"`

	// LogOutput is the log output for the application. It must
	// not be stdout, which belongs to the child.
	LogOutput string `conf:"log_output"`

	// Launch describes the child process
	Launch supervisor.Config `conf:"launch"`
}

var DefaultConfig = mergeMaps(
	conf.DefaultConfig{
		"log_level":  "info",
		"log_format": "production",
		"log_output": "stderr",
	},
	conf.MergeDefaults("launch", conf.DefaultConfig(supervisor.DefaultConfig)),
)

func mergeMaps(maps ...conf.DefaultConfig) conf.DefaultConfig {
	merged := conf.DefaultConfig{}
	for _, m := range maps {
		for k, v := range m {
			merged[k] = v
		}
	}

	return merged
}
