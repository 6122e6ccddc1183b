package gateways

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/hashicorp/setup-hc-releases/internal/domain/interfaces/gateways"
)

// ProcessRunner spawns executables and captures stdout and stderr separately
type ProcessRunner struct {
	timeout time.Duration
}

// NewProcessRunner creates a process runner
func NewProcessRunner() *ProcessRunner {
	return &ProcessRunner{
		timeout: 1 * time.Minute,
	}
}

// Run executes name with args and returns both output streams once it exits
func (r *ProcessRunner) Run(ctx context.Context, name string, args ...string) (*gateways.ProcessResult, error) {
	execCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	//nolint:gosec // G204: Executable path comes from the extracted release asset
	cmd := exec.CommandContext(execCtx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &gateways.ProcessResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(err, &exitErr) && execCtx.Err() == nil:
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		case execCtx.Err() == context.DeadlineExceeded:
			return nil, fmt.Errorf("error executing %s: timeout after %v", name, r.timeout)
		default:
			return nil, fmt.Errorf("error executing %s: %w", name, err)
		}
	}

	return result, nil
}
