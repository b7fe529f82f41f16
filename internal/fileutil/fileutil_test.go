package fileutil_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/woniunote/woniuimport/internal/fileutil"
)

func TestExt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "markdown", in: "notes.md", want: "md"},
		{name: "upper case", in: "Notes.MD", want: "md"},
		{name: "docx", in: "report.docx", want: "docx"},
		{name: "multiple dots", in: "report.final.DOC", want: "doc"},
		{name: "no extension", in: "README", want: ""},
		{name: "trailing dot", in: "file.", want: ""},
		{name: "dot in directory only", in: "dir.v2/README", want: ""},
		{name: "windows path", in: `C:\docs\paper.Md`, want: "md"},
		{name: "hidden file", in: ".bashrc", want: "bashrc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.Ext(tt.in); got != tt.want {
				t.Errorf("Ext(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestWriteTemp(t *testing.T) {
	t.Parallel()

	content := `<div id="content">$$x_1$$</div>`
	path, remove, err := fileutil.WriteTemp("html", content)
	if err != nil {
		t.Fatalf("WriteTemp() error = %v", err)
	}

	base := filepath.Base(path)
	if !strings.HasPrefix(base, "woniuimport-") || !strings.HasSuffix(base, ".html") {
		t.Errorf("WriteTemp() path = %q, want woniuimport-*.html", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading temp file: %v", err)
	}
	if string(data) != content {
		t.Errorf("content = %q, want %q", data, content)
	}

	remove()
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("temp file %s survived remove: %v", path, err)
	}
}

func TestWriteTemp_BadExtension(t *testing.T) {
	t.Parallel()

	for _, ext := range []string{"", "../etc", `..\win`, "html\x00exe"} {
		if _, _, err := fileutil.WriteTemp(ext, "x"); !errors.Is(err, fileutil.ErrTempExtension) {
			t.Errorf("WriteTemp(%q) error = %v, want ErrTempExtension", ext, err)
		}
	}
}

func TestIsRegularFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "a.md")
	if err := os.WriteFile(file, []byte("# a"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := map[string]bool{
		file:                             true,
		dir:                              false,
		filepath.Join(dir, "missing.md"): false,
	}
	for path, want := range tests {
		if got := fileutil.IsRegularFile(path); got != want {
			t.Errorf("IsRegularFile(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestIsFilePath(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"woniuimport":      false,
		"site-config":      false,
		"./conf.yaml":      true,
		"/etc/woniu.yaml":  true,
		`C:\conf\a.yaml`:   true,
		"configs/dev.yaml": true,
	}
	for in, want := range tests {
		if got := fileutil.IsFilePath(in); got != want {
			t.Errorf("IsFilePath(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestIsURL(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"https://cdn.jsdelivr.net/npm/mathjax@3/es5/tex-mml-chtml.js": true,
		"HTTP://example.com/tex.js":                                   true,
		"cdn.jsdelivr.net/mathjax.js":                                 false,
		"/static/mathjax/tex.js":                                      false,
		"file:///opt/mathjax/tex.js":                                  false,
		"https://":                                                    false,
	}
	for in, want := range tests {
		if got := fileutil.IsURL(in); got != want {
			t.Errorf("IsURL(%q) = %v, want %v", in, got, want)
		}
	}
}
