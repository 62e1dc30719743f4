package supervisor

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvironSnapshot_ContainsProcessEnv(t *testing.T) {
	t.Setenv("LAUNCHER_SNAPSHOT", "value=with=equals")

	env := EnvironSnapshot()

	assert.Equal(t, "value=with=equals", env["LAUNCHER_SNAPSHOT"])
	assert.Equal(t, os.Getenv("PATH"), env["PATH"])
}

func TestEnvironSnapshot_IsACopy(t *testing.T) {
	t.Setenv("LAUNCHER_SNAPSHOT", "before")

	env := EnvironSnapshot()

	t.Setenv("LAUNCHER_SNAPSHOT", "after")

	assert.Equal(t, "before", env["LAUNCHER_SNAPSHOT"])
}

func TestEncodeEnv_IsSorted(t *testing.T) {
	encoded := encodeEnv(map[string]string{
		"B": "2",
		"A": "1",
		"C": "",
	})

	assert.Equal(t, []string{"A=1", "B=2", "C="}, encoded)
}

func TestLaunchSpec_WithEnv_CopiesMap(t *testing.T) {
	env := map[string]string{"KEY": "value"}

	spec := NewLaunchSpec("echo").WithEnv(env)
	env["KEY"] = "changed"

	assert.Equal(t, "value", spec.Env["KEY"])
}

func TestLaunchSpec_NewLaunchSpec_CopiesArgs(t *testing.T) {
	args := []string{"run", "main.go"}

	spec := NewLaunchSpec("go", args...)
	args[0] = "build"

	assert.Equal(t, []string{"run", "main.go"}, spec.Args)
	assert.Equal(t, "go run main.go", spec.String())
}

func TestLaunchSpec_Command_InheritsStreams(t *testing.T) {
	cmd, err := NewLaunchSpec("echo").command()
	require.NoError(t, err)

	assert.Same(t, os.Stdin, cmd.Stdin)
	assert.Same(t, os.Stdout, cmd.Stdout)
	assert.Same(t, os.Stderr, cmd.Stderr)
}

func TestLaunchSpec_Command_CapturesStreams(t *testing.T) {
	var stdout, stderr bytes.Buffer
	stdin := strings.NewReader("input")

	cmd, err := NewLaunchSpec("echo").WithStreams(Streams{
		Stdin:  stdin,
		Stdout: &stdout,
		Stderr: &stderr,
	}).command()
	require.NoError(t, err)

	assert.Same(t, stdin, cmd.Stdin)
	assert.Same(t, &stdout, cmd.Stdout)
	assert.Same(t, &stderr, cmd.Stderr)
}

func TestLaunchSpec_Command_SetsEnvAndCwd(t *testing.T) {
	dir := t.TempDir()

	cmd, err := NewLaunchSpec("echo", "a", "b").
		WithEnv(map[string]string{"KEY": "value"}).
		WithCwd(dir).
		command()
	require.NoError(t, err)

	assert.Equal(t, []string{"echo", "a", "b"}, cmd.Args)
	assert.Equal(t, []string{"KEY=value"}, cmd.Env)
	assert.Equal(t, dir, cmd.Dir)
}

func TestLaunchSpec_Command_FailsIfEmpty(t *testing.T) {
	_, err := NewLaunchSpec("").command()
	assert.ErrorIs(t, err, ErrEmptyCommand)
}
