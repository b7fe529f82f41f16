package main

import (
	"context"
	"errors"
	"os"

	"github.com/woniunote/woniuimport"
	"github.com/woniunote/woniuimport/internal/config"
	"github.com/woniunote/woniuimport/internal/editor"
	"github.com/woniunote/woniuimport/internal/hints"
)

// Exit codes for the woniuimport CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful run
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or input format
	ExitIO      = 3 // File not found, permission denied, write failure
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, woniuimport.ErrBrowserConnect) ||
		errors.Is(err, woniuimport.ErrPageCreate) ||
		errors.Is(err, woniuimport.ErrPageLoad) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, woniuimport.ErrReadSource) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrNoSources) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, editor.ErrParse) ||
		errors.Is(err, woniuimport.ErrUnsupportedFormat) ||
		errors.Is(err, woniuimport.ErrEmptyMarkdown) ||
		errors.Is(err, woniuimport.ErrInvalidAssetPath) {
		return ExitUsage
	}

	return ExitGeneral
}

// hintFor returns an actionable hint for err, or "". configName is the
// config the command tried to load.
func hintFor(err error, configName string, getenv func(string) string) string {
	switch {
	case errors.Is(err, woniuimport.ErrBrowserConnect):
		return hints.ForBrowserConnect(getenv, hints.InContainer())
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(config.SearchPaths(configName))
	case errors.Is(err, woniuimport.ErrUnsupportedFormat):
		return hints.ForUnsupportedFormat(woniuimport.SupportedExtensions())
	case errors.Is(err, woniuimport.ErrInvalidAssetPath):
		return hints.ForAssetsPath()
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	}
	return ""
}
