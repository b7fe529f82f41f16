package woniuimport

import (
	"time"

	"go.uber.org/zap"
)

// Option configures an Importer.
type Option func(*Importer)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(imp *Importer) {
		if logger != nil {
			imp.logger = logger
		}
	}
}

// WithConfig replaces the default configuration.
func WithConfig(cfg *Config) Option {
	return func(imp *Importer) {
		if cfg != nil {
			imp.cfg = cfg
		}
	}
}

// WithWordConverter replaces the built-in DOCX converter.
func WithWordConverter(w WordConverter) Option {
	return func(imp *Importer) { imp.word = w }
}

// WithMarkdownConverter replaces the built-in Markdown pipeline.
func WithMarkdownConverter(m MarkdownConverter) Option {
	return func(imp *Importer) { imp.markdown = m }
}

// WithMathEngine sets the math engine. The default is an unloaded StaticEngine.
func WithMathEngine(engine MathEngine) Option {
	return func(imp *Importer) { imp.engine = engine }
}

// WithDialog sets the dialog receiving tips and previews. The default is a
// PreviewPane.
func WithDialog(d Dialog) Option {
	return func(imp *Importer) { imp.dialog = d }
}

// WithInsertDelay overrides sink.insertDelay from the configuration.
func WithInsertDelay(d time.Duration) Option {
	return func(imp *Importer) { imp.insertDelay = &d }
}
