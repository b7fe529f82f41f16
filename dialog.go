package woniuimport

import "sync"

// Dialog is the import dialog: a status line, a preview area and alerts.
type Dialog interface {
	SetTip(tip string)
	ShowResult(html string)
	HideResult()
	Alert(message string)
}

// PreviewPane is an in-memory Dialog. It records what a user would see.
type PreviewPane struct {
	mu      sync.Mutex
	tip     string
	html    string
	visible bool
	alerts  []string
}

// NewPreviewPane creates an empty, hidden preview.
func NewPreviewPane() *PreviewPane {
	return &PreviewPane{}
}

// SetTip replaces the status line.
func (p *PreviewPane) SetTip(tip string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tip = tip
}

// ShowResult fills the preview and makes it visible.
func (p *PreviewPane) ShowResult(html string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.html, p.visible = html, true
}

// HideResult hides the preview without clearing it.
func (p *PreviewPane) HideResult() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible = false
}

// Alert records a blocking message.
func (p *PreviewPane) Alert(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alerts = append(p.alerts, message)
}

// Tip returns the current status line.
func (p *PreviewPane) Tip() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tip
}

// Preview returns the preview content and whether it is visible.
func (p *PreviewPane) Preview() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.html, p.visible
}

// Alerts returns the alerts shown so far.
func (p *PreviewPane) Alerts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.alerts...)
}

var _ Dialog = (*PreviewPane)(nil)
