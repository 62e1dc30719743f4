package config

import (
	_ "embed"

	"github.com/lambda-feedback/launcher/util"
	"github.com/lambda-feedback/launcher/util/conf"
)

//go:embed config.schema.json
var schemaDocument []byte

// Schema validates json config files.
var Schema = util.Must(conf.NewSchema(schemaDocument))
