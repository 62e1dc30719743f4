package conf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testLaunchConfig struct {
	Command string   `conf:"command"`
	Args    []string `conf:"arg"`
	Code    int      `conf:"code"`
}

type testConfig struct {
	LogLevel string           `conf:"log_level"`
	Launch   testLaunchConfig `conf:"launch"`
}

var testDefaults = DefaultConfig{
	"log_level":      "info",
	"launch.command": "go",
	"launch.arg":     []string{"run", "main.go"},
}

const testSchema = `{
  "type": "object",
  "properties": {
    "log_level": { "type": "string" },
    "launch": {
      "type": "object",
      "properties": {
        "command": { "type": "string", "minLength": 1 }
      }
    }
  }
}`

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestTransformEnv(t *testing.T) {
	assert.Equal(t, "log_level", transformEnv("LAUNCHER_LOG_LEVEL", "LAUNCHER_"))
	assert.Equal(t, "launch.command", transformEnv("LAUNCHER_LAUNCH__COMMAND", "LAUNCHER_"))
	assert.Equal(t, "launch.command", transformEnv("LAUNCH__COMMAND", ""))
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse[testConfig](ParseOptions{
		Defaults:  testDefaults,
		EnvPrefix: "LAUNCHER_TEST_",
		Log:       zap.NewNop(),
	})
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "go", cfg.Launch.Command)
	assert.Equal(t, []string{"run", "main.go"}, cfg.Launch.Args)
}

func TestParse_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("LAUNCHER_TEST_LAUNCH__COMMAND", "node")
	t.Setenv("LAUNCHER_TEST_LOG_LEVEL", "debug")

	cfg, err := Parse[testConfig](ParseOptions{
		Defaults:  testDefaults,
		EnvPrefix: "LAUNCHER_TEST_",
	})
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "node", cfg.Launch.Command)
	assert.Equal(t, []string{"run", "main.go"}, cfg.Launch.Args)
}

func TestParse_JsonFile(t *testing.T) {
	path := writeFile(t, "config.json", `{
		"log_level": "warn",
		"launch": { "command": "python", "arg": ["-m", "app"], "code": 3 }
	}`)

	schema, err := NewSchema([]byte(testSchema))
	require.NoError(t, err)

	cfg, err := Parse[testConfig](ParseOptions{
		Defaults:  testDefaults,
		EnvPrefix: "LAUNCHER_TEST_",
		FileName:  path,
		Schema:    schema,
	})
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "python", cfg.Launch.Command)
	assert.Equal(t, []string{"-m", "app"}, cfg.Launch.Args)
	assert.Equal(t, 3, cfg.Launch.Code)
}

func TestParse_JsonFile_SchemaViolation(t *testing.T) {
	path := writeFile(t, "config.json", `{ "launch": { "command": "" } }`)

	schema, err := NewSchema([]byte(testSchema))
	require.NoError(t, err)

	_, err = Parse[testConfig](ParseOptions{
		Defaults: testDefaults,
		FileName: path,
		Schema:   schema,
	})
	assert.ErrorIs(t, err, ErrSchemaViolation)
}

func TestParse_JsonFile_Missing(t *testing.T) {
	_, err := Parse[testConfig](ParseOptions{
		Defaults: testDefaults,
		FileName: filepath.Join(t.TempDir(), "missing.json"),
	})
	assert.Error(t, err)
}

func TestParse_DotenvFile(t *testing.T) {
	path := writeFile(t, "launcher.env", "LOG_LEVEL=error\nLAUNCH__COMMAND=ruby\n")

	cfg, err := Parse[testConfig](ParseOptions{
		Defaults:  testDefaults,
		EnvPrefix: "LAUNCHER_TEST_",
		FileName:  path,
	})
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, "ruby", cfg.Launch.Command)
}

func TestMergeDefaults(t *testing.T) {
	merged := MergeDefaults("launch", DefaultConfig{"command": "go"}, DefaultConfig{"cwd": "/tmp"})

	assert.Equal(t, DefaultConfig{
		"launch.command": "go",
		"launch.cwd":     "/tmp",
	}, merged)
}
