package supervisor

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
)

type StreamMode string

const (
	// InheritStreams hands the supervisor's own stdin, stdout and stderr
	// file descriptors to the child.
	InheritStreams StreamMode = "inherit"

	// CaptureStreams connects the child to the readers and writers
	// given in Streams.
	CaptureStreams StreamMode = "capture"
)

// Streams are the endpoints used in CaptureStreams mode. A nil field
// connects the corresponding child stream to the null device.
type Streams struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// LaunchSpec describes how to start the child process. It is a value
// type; the With* methods return modified copies.
type LaunchSpec struct {
	// Cmd is the path or name of the binary to execute
	Cmd string

	// Args is the list of arguments to pass to the command.
	// They are passed verbatim, without shell parsing.
	Args []string

	// Cwd is the working directory in which the binary should be
	// executed. Empty means the supervisor's working directory.
	Cwd string

	// Env is the environment passed to the child. A nil map means
	// the environment is snapshotted when the child is spawned.
	Env map[string]string

	// Mode selects how the child's standard streams are attached.
	Mode StreamMode

	// Streams are used if Mode is CaptureStreams.
	Streams Streams
}

// NewLaunchSpec returns a spec that inherits the supervisor's streams
// and environment.
func NewLaunchSpec(cmd string, args ...string) LaunchSpec {
	return LaunchSpec{
		Cmd:  cmd,
		Args: append([]string(nil), args...),
		Mode: InheritStreams,
	}
}

func (s LaunchSpec) WithEnv(env map[string]string) LaunchSpec {
	copied := make(map[string]string, len(env))
	for k, v := range env {
		copied[k] = v
	}
	s.Env = copied
	return s
}

func (s LaunchSpec) WithStreams(streams Streams) LaunchSpec {
	s.Mode = CaptureStreams
	s.Streams = streams
	return s
}

func (s LaunchSpec) WithCwd(cwd string) LaunchSpec {
	s.Cwd = cwd
	return s
}

func (s LaunchSpec) String() string {
	return strings.Join(append([]string{s.Cmd}, s.Args...), " ")
}

// command builds the exec.Cmd for the spec. The environment is
// snapshotted here, at spawn time.
func (s LaunchSpec) command() (*exec.Cmd, error) {
	if s.Cmd == "" {
		return nil, ErrEmptyCommand
	}

	cmd := exec.Command(s.Cmd, s.Args...)

	env := s.Env
	if env == nil {
		env = EnvironSnapshot()
	}
	cmd.Env = encodeEnv(env)

	if s.Cwd != "" {
		cmd.Dir = s.Cwd
	}

	switch s.Mode {
	case "", InheritStreams:
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	case CaptureStreams:
		cmd.Stdin = s.Streams.Stdin
		cmd.Stdout = s.Streams.Stdout
		cmd.Stderr = s.Streams.Stderr
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedStreamMode, s.Mode)
	}

	return cmd, nil
}

// EnvironSnapshot copies the current process environment into a map.
func EnvironSnapshot() map[string]string {
	environ := os.Environ()

	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		if kv == "" {
			continue
		}

		// windows keeps per-drive cwd entries like "=C:=C:\foo",
		// so the separator is searched after the first byte
		idx := strings.IndexByte(kv[1:], '=')
		if idx < 0 {
			env[kv] = ""
			continue
		}

		env[kv[:idx+1]] = kv[idx+2:]
	}

	return env
}

func encodeEnv(env map[string]string) []string {
	encoded := make([]string, 0, len(env))
	for k, v := range env {
		encoded = append(encoded, fmt.Sprintf("%s=%s", k, v))
	}

	sort.Strings(encoded)

	return encoded
}
