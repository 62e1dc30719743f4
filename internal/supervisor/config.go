package supervisor

// Config describes the child to launch and the exit policy.
type Config struct {
	// Command is the path or name of the binary to execute
	Command string `conf:"command"`

	// Args is the list of arguments to pass to the command
	Args []string `conf:"arg"`

	// Cwd is the working directory of the child
	Cwd string `conf:"cwd"`

	// AbnormalExitCode is the exit code used if the child terminated
	// without a numeric exit code
	AbnormalExitCode int `conf:"abnormal_exit_code"`
}

// DefaultConfig launches the go server from the working directory.
var DefaultConfig = map[string]any{
	"command":            "go",
	"arg":                []string{"run", "main.go"},
	"cwd":                "",
	"abnormal_exit_code": 0,
}

// LaunchSpec returns the spec for the configured command, inheriting
// the supervisor's streams and environment.
func (c Config) LaunchSpec() LaunchSpec {
	return NewLaunchSpec(c.Command, c.Args...).WithCwd(c.Cwd)
}
