package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strings"
	"text/template"
	"time"

	"github.com/woniunote/woniuimport/internal/assets"
)

// MathJaxMarker identifies HTML that already carries the math bootstrap.
const MathJaxMarker = "MathJax-script"

// ErrMathTemplate indicates a math snippet template could not be rendered.
var ErrMathTemplate = errors.New("math template rendering failed")

// MathOptions configures the injected math bootstrap.
type MathOptions struct {
	ScriptURL        string
	ContentElementID string
	FallbackSelector string // Only used by Wrap
	BootstrapDelay   time.Duration
	Triggers         []string
}

// snippetData is what every snippet template receives.
type snippetData struct {
	ScriptURL        string
	ContentElementID string
	FallbackSelector string
	Triggers         []string
	DelayMillis      int64
}

var snippetFuncs = template.FuncMap{
	"attr": html.EscapeString,
	"json": func(v any) (string, error) {
		b, err := json.Marshal(v)
		return string(b), err
	},
}

// RenderSnippet executes a snippet template. Templates get "attr" for
// attribute values and "json" for script literals.
func RenderSnippet(name, src string, data any) (string, error) {
	tmpl, err := template.New(name).Funcs(snippetFuncs).Parse(src)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrMathTemplate, name, err)
	}
	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrMathTemplate, name, err)
	}
	return buf.String(), nil
}

// MathSupport splices the MathJax configuration, loader and formula
// bootstrap around converted content.
type MathSupport struct {
	style         string
	config        string
	loader        string
	bootstrap     string
	wrapBootstrap string
}

// NewMathSupport renders the snippets once from loader.
func NewMathSupport(loader assets.AssetLoader, opts MathOptions) (*MathSupport, error) {
	data := snippetData{
		ScriptURL:        opts.ScriptURL,
		ContentElementID: opts.ContentElementID,
		Triggers:         opts.Triggers,
		DelayMillis:      opts.BootstrapDelay.Milliseconds(),
	}
	if data.Triggers == nil {
		data.Triggers = DefaultTriggers()
	}

	css, err := loader.LoadStyle(assets.StyleTable)
	if err != nil {
		return nil, err
	}

	m := &MathSupport{style: "<style>\n" + sanitizeCSS(css) + "</style>\n"}

	render := func(name string, d snippetData) (string, error) {
		src, err := loader.LoadTemplate(name)
		if err != nil {
			return "", err
		}
		return RenderSnippet(name, src, d)
	}

	if m.config, err = render(assets.TemplateMathJaxConfig, data); err != nil {
		return nil, err
	}
	if m.loader, err = render(assets.TemplateMathJaxLoader, data); err != nil {
		return nil, err
	}
	if !strings.Contains(m.loader, MathJaxMarker) {
		return nil, fmt.Errorf("%w: %s must carry id %q", ErrMathTemplate, assets.TemplateMathJaxLoader, MathJaxMarker)
	}
	if m.bootstrap, err = render(assets.TemplateFormulaBootstrap, data); err != nil {
		return nil, err
	}
	data.FallbackSelector = opts.FallbackSelector
	if m.wrapBootstrap, err = render(assets.TemplateFormulaBootstrap, data); err != nil {
		return nil, err
	}

	return m, nil
}

// HasMathSupport reports whether htmlContent already carries the bootstrap.
func HasMathSupport(htmlContent string) bool {
	return strings.Contains(htmlContent, MathJaxMarker)
}

// Inject prepends the table style and appends config, loader and bootstrap.
// HTML that already carries the marker is returned unchanged.
func (m *MathSupport) Inject(htmlContent string) string {
	if HasMathSupport(htmlContent) {
		return htmlContent
	}
	return m.style + htmlContent + m.config + m.loader + m.bootstrap
}

// Wrap surrounds content about to enter the editor with config, loader and
// a bootstrap that also tries the fallback selector. HTML that already
// carries the marker is returned unchanged.
func (m *MathSupport) Wrap(htmlContent string) string {
	if HasMathSupport(htmlContent) {
		return htmlContent
	}
	return m.config + htmlContent + m.loader + m.wrapBootstrap
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
