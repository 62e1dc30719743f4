package util_test

import (
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lambda-feedback/launcher/util"
)

func TestIsProcessAlive(t *testing.T) {
	assert.True(t, util.IsProcessAlive(os.Getpid()))
	assert.False(t, util.IsProcessAlive(0))
	assert.False(t, util.IsProcessAlive(-1))
}

func TestIsProcessAlive_ReapedProcess(t *testing.T) {
	cmd := exec.Command("sh", "-c", "exit 0")
	require.NoError(t, cmd.Run())

	assert.False(t, util.IsProcessAlive(cmd.Process.Pid))
}
