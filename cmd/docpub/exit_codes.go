package main

import (
	"errors"
	"os"

	docpub "github.com/oasis-open/docpub"
	"github.com/oasis-open/docpub/internal/config"
)

// Exit codes for the docpub CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess     = 0 // Successful run
	ExitGeneral     = 1 // General/unexpected error
	ExitUsage       = 2 // Invalid flags, config, or validation
	ExitIO          = 3 // Missing source, permission denied
	ExitConverter   = 4 // External converter failed or timed out
	ExitMissingTool = 5 // Required external binary not installed
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, docpub.ErrMissingTool) {
		return ExitMissingTool
	}

	if errors.Is(err, docpub.ErrConversionFailed) ||
		errors.Is(err, docpub.ErrConversionTimeout) ||
		errors.Is(err, docpub.ErrMalformedHTML) {
		return ExitConverter
	}

	if errors.Is(err, docpub.ErrSourceNotFound) ||
		errors.Is(err, docpub.ErrWriteOutput) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) {
		return ExitIO
	}

	if errors.Is(err, docpub.ErrConfigInvalid) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, ErrUsage) {
		return ExitUsage
	}

	return ExitGeneral
}
