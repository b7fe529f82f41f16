package woniuimport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/woniunote/woniuimport/internal/assets"
	"github.com/woniunote/woniuimport/internal/docx"
	"github.com/woniunote/woniuimport/internal/fileutil"
	"github.com/woniunote/woniuimport/internal/pipeline"
)

// Dialog messages.
const (
	TipUnsupportedFormat = "unsupported file format: %s"
	TipConverting        = "converting %s file, please wait..."
	TipWordFailed        = "Word file conversion failed: %v"
	TipMarkdownFailed    = "Markdown file conversion failed: %v"
	TipReadFailed        = "failed to read file: %v"
	TipEmptyMarkdown     = "please enter Markdown content first"
	TipSucceeded         = "conversion succeeded"
	AlertNoResult        = "please upload a file to recognize its content first"
)

// Source kinds accepted by ImportFile, keyed by extension.
var sourceKinds = map[string]string{
	"docx": kindWord,
	"doc":  kindWord,
	"md":   kindMarkdown,
}

const (
	kindWord     = "Word"
	kindMarkdown = "Markdown"
)

// SupportedExtensions lists the extensions ImportFile accepts.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(sourceKinds))
	for ext := range sourceKinds {
		exts = append(exts, ext)
	}
	return exts
}

// WordConverter turns a Word document into HTML.
type WordConverter interface {
	ToHTML(ctx context.Context, data []byte) (string, error)
}

// MarkdownConverter turns Markdown text into insertable HTML.
type MarkdownConverter interface {
	Convert(ctx context.Context, markdown string) (string, error)
}

// File is an uploaded file.
type File struct {
	Name string
	Data []byte
}

// Importer drives the import dialog: it converts uploads into HTML, shows
// the result, and inserts it into an editor on confirmation.
// Methods are safe for concurrent use; the last import begun wins.
type Importer struct {
	cfg         *Config
	logger      *zap.Logger
	word        WordConverter
	markdown    MarkdownConverter
	math        *pipeline.MathSupport
	engine      MathEngine
	dialog      Dialog
	insertDelay *time.Duration
	session     Session
}

// NewImporter creates an Importer. Without options it uses the default
// configuration, the DOCX converter, the Markdown pipeline, an in-memory
// PreviewPane and an unloaded StaticEngine.
func NewImporter(opts ...Option) (*Importer, error) {
	imp := &Importer{
		cfg:    DefaultConfig(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(imp)
	}

	if err := imp.cfg.Validate(); err != nil {
		return nil, err
	}

	loader, err := assets.NewAssetResolver(imp.cfg.Assets.BasePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
	}
	imp.math, err = pipeline.NewMathSupport(loader, mathOptions(imp.cfg))
	if err != nil {
		return nil, fmt.Errorf("initializing math support: %w", err)
	}

	if imp.markdown == nil {
		p, err := NewPipeline(imp.cfg, imp.math)
		if err != nil {
			return nil, err
		}
		imp.markdown = p
	}
	if imp.word == nil {
		imp.word = docx.New()
	}
	if imp.dialog == nil {
		imp.dialog = NewPreviewPane()
	}
	if imp.engine == nil {
		imp.engine = NewStaticEngine()
	}
	if imp.insertDelay == nil {
		d := imp.cfg.Sink.InsertDelay
		imp.insertDelay = &d
	}
	return imp, nil
}

// NewPipeline builds the Markdown pipeline described by cfg. A nil math
// support skips bootstrap injection.
func NewPipeline(cfg *Config, math *pipeline.MathSupport) (*pipeline.Pipeline, error) {
	strategy, err := pipeline.ParseStrategy(cfg.Code.Strategy)
	if err != nil {
		return nil, err
	}

	var rules []pipeline.LanguageRule
	for _, r := range cfg.Code.Languages {
		rule, err := pipeline.ParseLanguageRule(r.Name, r.Pattern)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	var detectorOpts []pipeline.DetectorOption
	if cfg.Code.ChromaFallback {
		detectorOpts = append(detectorOpts, pipeline.WithChromaFallback())
	}

	return pipeline.New(pipeline.Options{
		Strategy: strategy,
		Detector: pipeline.NewLanguageDetector(rules, detectorOpts...),
		Formula: pipeline.FormulaOptions{
			Triggers:     cfg.Formula.Triggers,
			SkipLinkText: cfg.Formula.SkipLinkText,
		},
		Markdown: pipeline.MarkdownOptions{
			Emoji:           cfg.Markdown.Emoji,
			ImageDimensions: cfg.Markdown.ImageDimensions,
			Unsafe:          cfg.Markdown.AllowRawHTML,
		},
		Math: math,
	}), nil
}

func mathOptions(cfg *Config) pipeline.MathOptions {
	return pipeline.MathOptions{
		ScriptURL:        cfg.MathJax.ScriptURL,
		ContentElementID: cfg.MathJax.ContentElementID,
		FallbackSelector: cfg.MathJax.FallbackSelector,
		BootstrapDelay:   cfg.MathJax.BootstrapDelay,
		Triggers:         cfg.Formula.Triggers,
	}
}

// Dialog returns the dialog in use.
func (imp *Importer) Dialog() Dialog {
	return imp.dialog
}

// Result returns the pending conversion result, if any.
func (imp *Importer) Result() (string, bool) {
	return imp.session.Result()
}

// ImportFile converts an uploaded file and shows the result. Unsupported
// extensions only set a tip. A failed conversion keeps the previous result.
func (imp *Importer) ImportFile(ctx context.Context, f File) (err error) {
	defer recoverInternal(&err)

	ext := fileutil.Ext(f.Name)
	switch sourceKinds[ext] {
	case kindWord:
		return imp.importWord(ctx, f.Data)
	case kindMarkdown:
		return imp.importMarkdown(ctx, decodeText(f.Data), true)
	}

	imp.dialog.SetTip(fmt.Sprintf(TipUnsupportedFormat, ext))
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// ImportReader reads a file from r and imports it under name.
func (imp *Importer) ImportReader(ctx context.Context, name string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		imp.dialog.SetTip(fmt.Sprintf(TipReadFailed, err))
		imp.logger.Warn("reading upload failed", zap.String("name", name), zap.Error(err))
		return fmt.Errorf("%w: %s: %v", ErrReadSource, name, err)
	}
	return imp.ImportFile(ctx, File{Name: name, Data: data})
}

// ImportText converts Markdown typed into the dialog's text box. Unlike a
// Markdown upload it does not load the math engine. Blank text only sets a
// tip.
func (imp *Importer) ImportText(ctx context.Context, markdown string) (err error) {
	defer recoverInternal(&err)

	if strings.TrimSpace(markdown) == "" {
		imp.dialog.SetTip(TipEmptyMarkdown)
		return ErrEmptyMarkdown
	}
	return imp.importMarkdown(ctx, markdown, false)
}

func (imp *Importer) importWord(ctx context.Context, data []byte) error {
	gen := imp.begin(kindWord)

	out, err := imp.word.ToHTML(ctx, data)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		imp.dialog.SetTip(fmt.Sprintf(TipWordFailed, err))
		imp.logger.Warn("Word conversion failed", zap.Uint64("generation", gen), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrWordConversion, err)
	}
	imp.commit(ctx, gen, out)
	return nil
}

func (imp *Importer) importMarkdown(ctx context.Context, markdown string, loadEngine bool) error {
	gen := imp.begin(kindMarkdown)

	if loadEngine && imp.engine.API() == nil {
		if err := imp.engine.Load(ctx); err != nil {
			imp.logger.Warn("math engine load failed", zap.Error(err))
		}
	}

	out, err := imp.markdown.Convert(ctx, markdown)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		imp.dialog.SetTip(fmt.Sprintf(TipMarkdownFailed, err))
		imp.logger.Warn("Markdown conversion failed", zap.Uint64("generation", gen), zap.Error(err))
		if errors.Is(err, ErrHTMLConversion) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}
	imp.commit(ctx, gen, out)
	return nil
}

func (imp *Importer) begin(kind string) uint64 {
	gen := imp.session.Begin()
	imp.logger.Debug("import started", zap.String("kind", kind), zap.Uint64("generation", gen))
	imp.dialog.HideResult()
	imp.dialog.SetTip(fmt.Sprintf(TipConverting, kind))
	return gen
}

// commit stores and shows out unless a newer import has begun, then
// typesets the preview.
func (imp *Importer) commit(ctx context.Context, gen uint64, out string) {
	if !imp.session.Commit(gen, out) {
		imp.logger.Info("discarding stale conversion", zap.Uint64("generation", gen))
		return
	}
	imp.dialog.SetTip(TipSucceeded)
	imp.dialog.ShowResult(out)
	imp.logger.Debug("import committed", zap.Uint64("generation", gen), zap.Int("bytes", len(out)))
	imp.typeset(ctx)
}

// Confirm inserts the pending result into ed as one undoable change, then
// after the insert delay rewrites bracket formulas in the live content and
// typesets it. The follow-up steps are best-effort and only logged.
func (imp *Importer) Confirm(ctx context.Context, ed Editor) (err error) {
	defer recoverInternal(&err)

	out, ok := imp.session.Result()
	if !ok {
		imp.dialog.Alert(AlertNoResult)
		return ErrNoResult
	}
	if !pipeline.HasMathSupport(out) {
		out = imp.math.Wrap(out)
	}

	// The two checkpoints always pair up, even around a failed insert.
	ed.SaveScene()
	insertErr := ed.InsertHTML(out)
	ed.SaveScene()
	if insertErr != nil {
		return fmt.Errorf("%w: %v", ErrInsert, insertErr)
	}
	imp.session.Clear()
	imp.dialog.HideResult()
	imp.logger.Debug("result inserted", zap.Int("bytes", len(out)))

	imp.afterInsert(ctx, ed)
	return nil
}

// Cancel discards the pending result.
func (imp *Importer) Cancel() {
	imp.session.Clear()
	imp.dialog.HideResult()
}

func (imp *Importer) afterInsert(ctx context.Context, ed Editor) {
	if d := *imp.insertDelay; d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			imp.logger.Debug("post-insert steps skipped", zap.Error(ctx.Err()))
			return
		case <-timer.C:
		}
	}

	imp.guard("formula rewrite", func() {
		el := ed.ContentElement()
		if el == nil {
			imp.logger.Debug("no content element for formula rewrite")
			return
		}
		triggers := imp.cfg.Formula.Triggers
		n := el.RewriteText(func(s string) string {
			return pipeline.RewriteBracketFormulas(s, triggers)
		})
		imp.logger.Debug("formula rewrite done", zap.Int("nodes", n))
	})
	imp.guard("typeset", func() { imp.typeset(ctx) })
}

// typeset runs the engine if it is loaded; failures are logged.
func (imp *Importer) typeset(ctx context.Context) {
	api := imp.engine.API()
	if api == nil {
		return
	}
	if err := Typeset(ctx, api); err != nil {
		imp.logger.Warn("typeset failed", zap.Error(err))
	}
}

func (imp *Importer) guard(step string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			imp.logger.Error("post-insert step panicked", zap.String("step", step), zap.Any("panic", r))
		}
	}()
	fn()
}

// decodeText decodes uploaded bytes as UTF-8, honoring a BOM and replacing
// invalid sequences.
func decodeText(data []byte) string {
	out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "\uFFFD")
	}
	return string(out)
}

func recoverInternal(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("internal error: %v", r)
	}
}

var (
	_ WordConverter     = (*docx.Converter)(nil)
	_ MarkdownConverter = (*pipeline.Pipeline)(nil)
)
