// Package fileutil holds small path and file helpers shared by the importer
// and the CLI.
package fileutil

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// ErrTempExtension rejects a temp-file extension that is empty or could
// change the directory the file lands in.
var ErrTempExtension = errors.New("invalid temp file extension")

// Ext returns the lower-cased text after the last '.' of the final path
// element, or "" when there is none.
//
//	"notes.MD"          -> "md"
//	"report.final.docx" -> "docx"
//	"dir.v2/README"     -> ""
func Ext(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

// WriteTemp stores content in a new file under the system temp directory
// named woniuimport-*.{ext}. The returned func removes it.
func WriteTemp(ext, content string) (path string, remove func(), err error) {
	if ext == "" || strings.ContainsAny(ext, "/\\\x00") {
		return "", nil, fmt.Errorf("%w: %q", ErrTempExtension, ext)
	}

	f, err := os.CreateTemp("", "woniuimport-*."+ext)
	if err != nil {
		return "", nil, fmt.Errorf("creating temp file: %w", err)
	}
	path = f.Name()
	remove = func() { _ = os.Remove(path) }

	_, err = f.WriteString(content)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		remove()
		return "", nil, fmt.Errorf("writing temp file: %w", err)
	}
	return path, remove, nil
}

// IsRegularFile reports whether path names an existing regular file,
// following symlinks.
func IsRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// IsFilePath reports whether s contains a path separator and so names a
// file rather than a bare config name.
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, `/\`)
}

// IsURL reports whether s is an absolute http or https URL with a host.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}
