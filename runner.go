package docpub

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner abstracts command execution to enable testing without real
// subprocesses. Implementations must honor context cancellation.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout string, stderr string, err error)
}

// ExecRunner implements CommandRunner using os/exec. The context bounds the
// subprocess; on deadline the process is killed and the error reflects the
// context state.
type ExecRunner struct{}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// wrapRunError maps a failed subprocess run to a pipeline error.
// Deadline expiry becomes ErrConversionTimeout; any other failure becomes a
// ConversionError carrying the tool name, stage, exit code, and stderr.
func wrapRunError(ctx context.Context, tool string, stage Stage, stderr string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s during %s", ErrConversionTimeout, tool, stage)
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}

	exitCode := 1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		exitCode = exitErr.ExitCode()
	}

	return &ConversionError{
		Tool:     tool,
		Stage:    stage,
		ExitCode: exitCode,
		Stderr:   strings.TrimSpace(stderr),
	}
}
