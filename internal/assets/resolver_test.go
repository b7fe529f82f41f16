package assets

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"
)

func TestNewAssetResolver(t *testing.T) {
	t.Parallel()

	r, err := NewAssetResolver("")
	if err != nil {
		t.Fatalf("NewAssetResolver(\"\") error = %v", err)
	}
	if r.Layers() != 1 {
		t.Errorf("Layers() = %d, want 1", r.Layers())
	}

	if _, err := NewAssetResolver("/nonexistent/assets/dir"); !errors.Is(err, ErrInvalidBasePath) {
		t.Errorf("NewAssetResolver(missing) error = %v, want ErrInvalidBasePath", err)
	}
}

func TestAssetResolver_OverrideFallsThrough(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	writeAsset(t, base, "templates/mathjax-loader.html", `<script id="MathJax-script" src="/static/tex.js"></script>`)

	r, err := NewAssetResolver(base)
	if err != nil {
		t.Fatalf("NewAssetResolver() error = %v", err)
	}
	if r.Layers() != 2 {
		t.Fatalf("Layers() = %d, want 2", r.Layers())
	}

	tests := []struct {
		name string
		load func() (string, error)
		want string
	}{
		{
			name: "override wins",
			load: func() (string, error) { return r.LoadTemplate(TemplateMathJaxLoader) },
			want: "/static/tex.js",
		},
		{
			name: "built-in template",
			load: func() (string, error) { return r.LoadTemplate(TemplateMathJaxConfig) },
			want: "window.MathJax",
		},
		{
			name: "built-in style",
			load: func() (string, error) { return r.LoadStyle(StyleTable) },
			want: "border-collapse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := tt.load()
			if err != nil {
				t.Fatalf("load error = %v", err)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("load = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestAssetResolver_StopsOnOtherErrors(t *testing.T) {
	t.Parallel()

	broken := NewFSLoader(fstest.MapFS{"styles/table.css": {Mode: fs.ModeDir}})
	r := NewLayeredResolver(broken, NewEmbeddedLoader())

	if _, err := r.LoadStyle(StyleTable); !errors.Is(err, ErrRead) {
		t.Errorf("LoadStyle() error = %v, want ErrRead", err)
	}
	if _, err := r.LoadStyle("../x"); !errors.Is(err, ErrInvalidName) {
		t.Errorf("LoadStyle(traversal) error = %v, want ErrInvalidName", err)
	}
	if _, err := r.LoadTemplate("nowhere"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadTemplate(missing) error = %v, want ErrNotFound", err)
	}
}

func TestAssetResolver_NoLayers(t *testing.T) {
	t.Parallel()

	if _, err := NewLayeredResolver().LoadStyle(StyleTable); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadStyle() error = %v, want ErrNotFound", err)
	}
}
