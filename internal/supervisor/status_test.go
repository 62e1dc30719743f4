package supervisor

import (
	"os/exec"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v int) *int {
	return &v
}

func TestExitStatus_ExitCode(t *testing.T) {
	assert.Equal(t, 7, ExitStatus{Code: ptr(7)}.ExitCode(0))
	assert.Equal(t, 0, ExitStatus{Code: ptr(0)}.ExitCode(5))
	assert.Equal(t, 5, ExitStatus{Signal: ptr(9)}.ExitCode(5))
	assert.Equal(t, 0, ExitStatus{}.ExitCode(0))
}

func TestExitStatus_String(t *testing.T) {
	assert.Equal(t, "exited with code 3", ExitStatus{Code: ptr(3)}.String())
	assert.Equal(t, "terminated by signal killed", ExitStatus{Signal: ptr(int(syscall.SIGKILL))}.String())
	assert.Equal(t, "terminated without exit code", ExitStatus{}.String())
}

func TestExitStatusFromState_ExitCode(t *testing.T) {
	cmd := exec.Command("sh", "-c", "exit 4")
	_ = cmd.Run()

	status := exitStatusFromState(cmd.ProcessState)

	require.NotNil(t, status.Code)
	assert.Equal(t, 4, *status.Code)
	assert.Nil(t, status.Signal)
}

func TestExitStatusFromState_Signal(t *testing.T) {
	cmd := exec.Command("sh", "-c", "kill -TERM $$")
	_ = cmd.Run()

	status := exitStatusFromState(cmd.ProcessState)

	assert.Nil(t, status.Code)
	require.NotNil(t, status.Signal)
	assert.Equal(t, syscall.SIGTERM, syscall.Signal(*status.Signal))
}

func TestExitStatusFromState_Nil(t *testing.T) {
	assert.Equal(t, ExitStatus{}, exitStatusFromState(nil))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "not started", NotStarted.String())
	assert.Equal(t, "failed to start", FailedToStart.String())
	assert.True(t, Terminated.Final())
	assert.True(t, FailedToStart.Final())
	assert.False(t, Running.Final())
}
