package woniuimport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/woniunote/woniuimport/internal/assets"
	"github.com/woniunote/woniuimport/internal/fileutil"
	"github.com/woniunote/woniuimport/internal/pipeline"
	"github.com/woniunote/woniuimport/internal/process"
)

// DefaultBrowserTimeout bounds page loads and script calls when the caller's
// context has no deadline.
const DefaultBrowserTimeout = 30 * time.Second

// Scripts run in the preview page.
const (
	jsSetTip     = `(tip) => { const el = document.querySelector(".file-tip"); if (el) el.textContent = tip; }`
	jsShowResult = `(id, html) => { const el = document.getElementById(id); el.innerHTML = html; el.style.display = "block"; }`
	jsHideResult = `(id) => { const el = document.getElementById(id); if (el) el.style.display = "none"; }`
	jsSnapshot   = `(id) => document.getElementById(id).innerHTML`
	jsMathReady  = `() => !!(window.MathJax && (typeof window.MathJax.typesetPromise === "function" || window.MathJax.Hub))`
	jsHasDirect  = `() => typeof window.MathJax.typesetPromise === "function"`
	jsTypeset    = `(id) => window.MathJax.typesetPromise([document.getElementById(id)]).then(() => true)`
	jsQueue      = `(cmd) => new Promise((resolve) => window.MathJax.Hub.Queue([cmd[0], window.MathJax.Hub], () => resolve(true)))`
)

// BrowserPreview is a headless Chrome page acting as the import dialog's
// preview pane and as the MathJax host. The browser starts on first use.
// Dialog methods cannot report errors; they are logged and kept for Err.
type BrowserPreview struct {
	mu       sync.Mutex
	cfg      *Config
	loader   assets.AssetLoader
	logger   *zap.Logger
	timeout  time.Duration
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	cleanup  func()
	api      TypesetAPI
	alerts   []string
	lastErr  error
}

// BrowserOption configures a BrowserPreview.
type BrowserOption func(*BrowserPreview)

// WithPreviewConfig sets the configuration the preview shell is rendered from.
func WithPreviewConfig(cfg *Config) BrowserOption {
	return func(b *BrowserPreview) {
		if cfg != nil {
			b.cfg = cfg
		}
	}
}

// WithPreviewLogger sets the logger.
func WithPreviewLogger(logger *zap.Logger) BrowserOption {
	return func(b *BrowserPreview) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithPreviewTimeout sets the default timeout for browser calls.
func WithPreviewTimeout(d time.Duration) BrowserOption {
	return func(b *BrowserPreview) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// NewBrowserPreview creates a preview. No browser is launched until a
// method needs the page.
func NewBrowserPreview(opts ...BrowserOption) *BrowserPreview {
	b := &BrowserPreview{
		cfg:     DefaultConfig(),
		logger:  zap.NewNop(),
		timeout: DefaultBrowserTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ensurePage launches the browser and opens the preview shell. Caller holds mu.
func (b *BrowserPreview) ensurePage(ctx context.Context) error {
	if b.page != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	shell, err := b.renderShell()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	if err := b.ensureBrowser(); err != nil {
		return err
	}

	path, cleanup, err := fileutil.WriteTemp("html", shell)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPageCreate, err)
	}

	page, err := b.browser.Page(proto.TargetCreateTarget{URL: "file://" + path})
	if err != nil {
		cleanup()
		return fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	if err := b.bound(ctx, page).WaitLoad(); err != nil {
		_ = page.Close()
		cleanup()
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	b.page, b.cleanup = page, cleanup
	b.logger.Debug("preview page ready", zap.String("path", path))
	return nil
}

func (b *BrowserPreview) renderShell() (string, error) {
	if b.loader == nil {
		loader, err := assets.NewAssetResolver(b.cfg.Assets.BasePath)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
		}
		b.loader = loader
	}
	src, err := b.loader.LoadTemplate(assets.TemplatePreviewShell)
	if err != nil {
		return "", err
	}
	return pipeline.RenderSnippet(assets.TemplatePreviewShell, src, struct {
		ScriptURL        string
		ContentElementID string
	}{
		ScriptURL:        b.cfg.MathJax.ScriptURL,
		ContentElementID: b.cfg.MathJax.ContentElementID,
	})
}

// ensureBrowser lazily launches and connects to Chrome.
func (b *BrowserPreview) ensureBrowser() error {
	if b.browser != nil {
		return nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}
	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		b.kill(l)
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	b.launcher, b.browser = l, browser
	return nil
}

// bound returns page tied to ctx, with the default timeout when ctx has no
// deadline.
func (b *BrowserPreview) bound(ctx context.Context, page *rod.Page) *rod.Page {
	page = page.Context(ctx)
	if _, ok := ctx.Deadline(); !ok {
		page = page.Timeout(b.timeout)
	}
	return page
}

// eval runs a dialog script, recording failures.
func (b *BrowserPreview) eval(action, js string, args ...interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	err := b.ensurePage(ctx)
	if err == nil {
		_, err = b.page.Context(ctx).Eval(js, args...)
	}
	if err != nil {
		b.lastErr = err
		b.logger.Warn("preview update failed", zap.String("action", action), zap.Error(err))
	}
}

// SetTip replaces the status line.
func (b *BrowserPreview) SetTip(tip string) {
	b.eval("tip", jsSetTip, tip)
}

// ShowResult fills the result element and shows it. Scripts in html are
// not executed.
func (b *BrowserPreview) ShowResult(html string) {
	b.eval("show", jsShowResult, b.cfg.MathJax.ContentElementID, html)
}

// HideResult hides the result element.
func (b *BrowserPreview) HideResult() {
	b.eval("hide", jsHideResult, b.cfg.MathJax.ContentElementID)
}

// Alert records message. A real alert() would block the page.
func (b *BrowserPreview) Alert(message string) {
	b.mu.Lock()
	b.alerts = append(b.alerts, message)
	b.mu.Unlock()
	b.logger.Warn("alert", zap.String("message", message))
}

// Alerts returns the alerts raised so far.
func (b *BrowserPreview) Alerts() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.alerts...)
}

// Err returns the last dialog update failure, if any.
func (b *BrowserPreview) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}

// Load waits for MathJax to finish loading in the preview page and records
// which API it exposes.
func (b *BrowserPreview) Load(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.api != nil {
		return nil
	}
	if err := b.ensurePage(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrMathEngineLoad, err)
	}

	page := b.bound(ctx, b.page)
	if err := page.Wait(rod.Eval(jsMathReady)); err != nil {
		return fmt.Errorf("%w: %v", ErrMathEngineLoad, err)
	}
	res, err := page.Eval(jsHasDirect)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMathEngineLoad, err)
	}

	if res.Value.Bool() {
		b.api = DirectAPI{Typeset: b.typesetDirect}
	} else {
		b.api = QueueAPI{Queue: b.typesetQueue}
	}
	b.logger.Debug("math engine loaded", zap.Bool("direct", res.Value.Bool()))
	return nil
}

// API returns the typesetting capability found by Load, or nil.
func (b *BrowserPreview) API() TypesetAPI {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.api
}

func (b *BrowserPreview) typesetDirect(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.page == nil {
		return ErrPageLoad
	}
	_, err := b.bound(ctx, b.page).Eval(jsTypeset, b.cfg.MathJax.ContentElementID)
	return err
}

func (b *BrowserPreview) typesetQueue(ctx context.Context, command []string) error {
	if len(command) == 0 {
		return errors.New("empty command")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.page == nil {
		return ErrPageLoad
	}
	_, err := b.bound(ctx, b.page).Eval(jsQueue, command)
	return err
}

// Snapshot returns the preview's result element as currently rendered,
// including any typeset math.
func (b *BrowserPreview) Snapshot(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ensurePage(ctx); err != nil {
		return "", err
	}
	res, err := b.bound(ctx, b.page).Eval(jsSnapshot, b.cfg.MathJax.ContentElementID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	return res.Value.Str(), nil
}

// Close releases the page and the browser process tree.
func (b *BrowserPreview) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var errs []error
	if b.page != nil {
		if err := b.page.Close(); err != nil {
			errs = append(errs, err)
		}
		b.page = nil
	}
	if b.cleanup != nil {
		b.cleanup()
		b.cleanup = nil
	}
	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			errs = append(errs, err)
		}
		b.browser = nil
	}
	if b.launcher != nil {
		b.kill(b.launcher)
		b.launcher = nil
	}
	b.api = nil
	return errors.Join(errs...)
}

// kill stops a launched browser and its children and removes its profile.
func (b *BrowserPreview) kill(l *launcher.Launcher) {
	process.KillTree(l.PID())
	l.Kill()
	l.Cleanup()
}

var (
	_ Dialog     = (*BrowserPreview)(nil)
	_ MathEngine = (*BrowserPreview)(nil)
)
