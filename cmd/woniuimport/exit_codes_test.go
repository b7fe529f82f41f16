package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/woniunote/woniuimport"
	"github.com/woniunote/woniuimport/internal/config"
	"github.com/woniunote/woniuimport/internal/editor"
)

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, ExitSuccess},

		// Browser errors (exit 4)
		{"browser connect", woniuimport.ErrBrowserConnect, ExitBrowser},
		{"page create", woniuimport.ErrPageCreate, ExitBrowser},
		{"page load", woniuimport.ErrPageLoad, ExitBrowser},
		{"engine load over browser connect", fmt.Errorf("%w: %w", woniuimport.ErrMathEngineLoad, woniuimport.ErrBrowserConnect), ExitBrowser},

		// I/O errors (exit 3)
		{"file not exist", os.ErrNotExist, ExitIO},
		{"permission denied", os.ErrPermission, ExitIO},
		{"read source", woniuimport.ErrReadSource, ExitIO},
		{"write output", ErrWriteOutput, ExitIO},
		{"no input", ErrNoInput, ExitIO},
		{"wrapped file not exist", fmt.Errorf("discovering files: %w", os.ErrNotExist), ExitIO},

		// Usage/config/validation errors (exit 2)
		{"usage", ErrUsage, ExitUsage},
		{"worker count", ErrInvalidWorkerCount, ExitUsage},
		{"no sources", ErrNoSources, ExitUsage},
		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"field too long", config.ErrFieldTooLong, ExitUsage},
		{"invalid value", config.ErrInvalidValue, ExitUsage},
		{"page parse", editor.ErrParse, ExitUsage},
		{"unsupported format", woniuimport.ErrUnsupportedFormat, ExitUsage},
		{"empty markdown", woniuimport.ErrEmptyMarkdown, ExitUsage},
		{"invalid asset path", woniuimport.ErrInvalidAssetPath, ExitUsage},
		{"wrapped config not found", fmt.Errorf("loading config: %w", config.ErrConfigNotFound), ExitUsage},

		// General errors (exit 1)
		{"word conversion", woniuimport.ErrWordConversion, ExitGeneral},
		{"html conversion", woniuimport.ErrHTMLConversion, ExitGeneral},
		{"unknown", errors.New("boom"), ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitCodes_UnixConventions(t *testing.T) {
	t.Parallel()

	if ExitSuccess != 0 || ExitGeneral != 1 || ExitUsage != 2 {
		t.Errorf("standard codes = %d, %d, %d; want 0, 1, 2", ExitSuccess, ExitGeneral, ExitUsage)
	}
	for _, code := range []int{ExitIO, ExitBrowser} {
		if code >= 126 {
			t.Errorf("custom exit code %d collides with shell-reserved range", code)
		}
	}
}

func TestHintFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		configName string
		want       string
	}{
		{"timeout", fmt.Errorf("converting: %w", context.DeadlineExceeded), "", "--timeout"},
		{"config", config.ErrConfigNotFound, "team", "--config"},
		{"format", woniuimport.ErrUnsupportedFormat, "", "supported extensions: .doc, .docx, .md"},
		{"assets", woniuimport.ErrInvalidAssetPath, "", "templates/"},
		{"output", ErrWriteOutput, "", "writable"},
		{"browser", woniuimport.ErrBrowserConnect, "", "ROD_BROWSER_BIN"},
		{"none", errors.New("boom"), "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := hintFor(tt.err, tt.configName, func(string) string { return "" })
			if tt.want == "" {
				if got != "" {
					t.Errorf("hintFor() = %q, want empty", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("hintFor() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}
