package assets

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
)

// Built-in asset names.
const (
	TemplateMathJaxConfig    = "mathjax-config"
	TemplateMathJaxLoader    = "mathjax-loader"
	TemplateFormulaBootstrap = "formula-bootstrap"
	TemplatePreviewShell     = "preview"
	StyleTable               = "table"
)

// AssetLoader loads CSS styles and HTML templates by bare name.
// Missing assets return ErrNotFound, bad names ErrInvalidName.
type AssetLoader interface {
	LoadStyle(name string) (string, error)
	LoadTemplate(name string) (string, error)
}

//go:embed styles/*.css templates/*.html
var builtin embed.FS

// FSLoader reads assets laid out as styles/*.css and templates/*.html
// from a file system.
type FSLoader struct {
	fsys  fs.FS
	guard func(rel string) error
}

// NewFSLoader creates a loader over fsys.
func NewFSLoader(fsys fs.FS) *FSLoader {
	return &FSLoader{fsys: fsys}
}

// NewEmbeddedLoader returns the loader for the assets built into the binary.
func NewEmbeddedLoader() *FSLoader {
	return NewFSLoader(builtin)
}

// LoadStyle reads styles/{name}.css.
func (l *FSLoader) LoadStyle(name string) (string, error) {
	return l.Load(Styles, name)
}

// LoadTemplate reads templates/{name}.html.
func (l *FSLoader) LoadTemplate(name string) (string, error) {
	return l.Load(Templates, name)
}

// Load reads the asset of kind k called name.
func (l *FSLoader) Load(k Kind, name string) (string, error) {
	rel, err := k.Path(name)
	if err != nil {
		return "", err
	}
	if l.guard != nil {
		if err := l.guard(rel); err != nil {
			return "", err
		}
	}

	data, err := fs.ReadFile(l.fsys, rel)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("%w: %s %q", ErrNotFound, k.Label, name)
	case err != nil:
		return "", fmt.Errorf("%w %s: %v", ErrRead, rel, err)
	}
	return string(data), nil
}

var _ AssetLoader = (*FSLoader)(nil)
