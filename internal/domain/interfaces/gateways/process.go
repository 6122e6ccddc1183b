package gateways

import "context"

// ProcessResult holds the complete output of a finished child process
type ProcessResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// ProcessRunner spawns executables and captures their output
type ProcessRunner interface {
	// Run executes name with args and waits for it to exit. A non-zero exit is
	// reported in ProcessResult, not as an error; err is reserved for spawn failures.
	Run(ctx context.Context, name string, args ...string) (*ProcessResult, error)
}
