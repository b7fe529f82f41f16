// Package hints builds the "hint:" suffixes the CLI appends to error
// messages. Every hint starts with "\n  hint: " or is empty.
package hints

import (
	"slices"
	"strings"

	"github.com/woniunote/woniuimport/internal/fileutil"
)

const prefix = "\n  hint: "

// ciVars are set by common CI runners.
var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"}

// InContainer reports whether the process runs inside Docker.
func InContainer() bool {
	return fileutil.IsRegularFile("/.dockerenv")
}

// ForBrowserConnect suggests the rod variables that usually fix a failed
// Chrome launch, given the environment and whether we run in a container.
func ForBrowserConnect(getenv func(string) string, containerized bool) string {
	restricted := containerized
	for _, k := range ciVars {
		if getenv(k) != "" {
			restricted = true
		}
	}

	var tips []string
	if restricted && getenv("ROD_NO_SANDBOX") != "1" {
		tips = append(tips, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if getenv("ROD_BROWSER_BIN") == "" {
		tips = append(tips, "set ROD_BROWSER_BIN to use custom Chrome")
	}
	return join(tips...)
}

// ForTimeout suggests a longer --timeout.
func ForTimeout() string {
	return join("for large documents or slow math loading, use --timeout")
}

// ForConfigNotFound suggests --config, plus creating the first per-user
// candidate among searched.
func ForConfigNotFound(searched []string) string {
	tip := "use --config /path/to/file.yaml"
	i := slices.IndexFunc(searched, func(p string) bool {
		return strings.Contains(strings.ReplaceAll(p, `\`, "/"), "woniuimport/")
	})
	if i >= 0 {
		tip += " or create " + searched[i]
	}
	return join(tip)
}

// ForOutputDirectory covers failures creating or writing the output.
func ForOutputDirectory() string {
	return join("check parent directory exists and is writable")
}

// ForUnsupportedFormat lists the accepted extensions, sorted.
func ForUnsupportedFormat(supported []string) string {
	if len(supported) == 0 {
		return ""
	}
	exts := slices.Sorted(slices.Values(supported))
	return join("supported extensions: ." + strings.Join(exts, ", ."))
}

// ForLegacyWord explains that binary .doc files need re-saving as .docx.
// Other extensions get no hint.
func ForLegacyWord(ext string) string {
	if ext != "doc" {
		return ""
	}
	return join("legacy .doc files must be re-saved as .docx")
}

// ForAssetsPath describes the expected assets.basePath layout.
func ForAssetsPath() string {
	return join("assets directory needs styles/ and templates/ subdirectories")
}

func join(tips ...string) string {
	if len(tips) == 0 {
		return ""
	}
	return prefix + strings.Join(tips, "; ")
}
