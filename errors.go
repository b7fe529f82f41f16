package woniuimport

import (
	"errors"

	"github.com/woniunote/woniuimport/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrReadSource        = errors.New("failed to read source")
	ErrEmptyMarkdown     = errors.New("markdown content cannot be empty")
	ErrWordConversion    = errors.New("Word file conversion failed")
	ErrHTMLConversion    = pipeline.ErrHTMLConversion
	ErrNoResult          = errors.New("no conversion result to insert")
	ErrInsert            = errors.New("editor insertion failed")
	ErrInvalidAssetPath  = errors.New("invalid asset path")

	// Math engine errors.
	ErrMathEngineLoad = errors.New("failed to load math engine")
	ErrTypeset        = errors.New("typesetting failed")

	// Browser preview errors.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPoolClosed     = errors.New("preview pool closed")
)
