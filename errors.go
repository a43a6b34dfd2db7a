package docpub

import (
	"errors"
	"fmt"
)

// Sentinel errors for pipeline operations.
var (
	// ErrConfigInvalid indicates a missing or malformed required
	// configuration value, detected before any subprocess runs.
	ErrConfigInvalid = errors.New("invalid configuration")

	// ErrSourceNotFound indicates no source file matched in the
	// resolved directory.
	ErrSourceNotFound = errors.New("no source file found")

	// ErrConversionFailed indicates an external converter exited nonzero.
	ErrConversionFailed = errors.New("conversion failed")

	// ErrConversionTimeout indicates an external converter exceeded its
	// deadline. Distinct from ErrConversionFailed so callers can tell a
	// hung tool from a broken document.
	ErrConversionTimeout = errors.New("conversion timed out")

	// ErrMalformedHTML indicates converter output that post-processing
	// cannot parse.
	ErrMalformedHTML = errors.New("malformed HTML input")

	// ErrMissingTool indicates a required external tool is absent from
	// the execution environment.
	ErrMissingTool = errors.New("required tool not found")

	// ErrWriteOutput indicates the final artifact could not be written.
	ErrWriteOutput = errors.New("failed to write output")
)

// ConversionError carries the context of a failed external invocation:
// which tool, during which stage, its exit code, and captured stderr.
// It wraps ErrConversionFailed for errors.Is matching.
type ConversionError struct {
	Tool     string
	Stage    Stage
	ExitCode int
	Stderr   string
}

func (e *ConversionError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s failed during %s (exit %d): %s", e.Tool, e.Stage, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("%s failed during %s (exit %d)", e.Tool, e.Stage, e.ExitCode)
}

func (e *ConversionError) Unwrap() error {
	return ErrConversionFailed
}
