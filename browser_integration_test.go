//go:build integration

package woniuimport

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// testTimeout is the standard timeout for integration test operations.
const testTimeout = 30 * time.Second

// Offline MathJax stand-ins. Each marks the elements it typesets.
const (
	directStub = `window.MathJax = {
  typesetPromise: function(els) {
    els.forEach(function(el) { el.setAttribute("data-typeset", "direct"); });
    return Promise.resolve();
  }
};`
	hubStub = `window.MathJax = {
  Hub: {
    Queue: function(cmd, done) {
      document.querySelectorAll(".file-result").forEach(function(el) { el.setAttribute("data-typeset", cmd[0]); });
      done();
    }
  }
};`
)

// newStubPreview starts a preview whose MathJax script is stub.
func newStubPreview(t *testing.T, stub string) (*BrowserPreview, *Config) {
	t.Helper()

	script := filepath.Join(t.TempDir(), "mathjax.js")
	if err := os.WriteFile(script, []byte(stub), 0o600); err != nil {
		t.Fatalf("writing stub: %v", err)
	}
	cfg := DefaultConfig()
	cfg.MathJax.ScriptURL = script

	pv := NewBrowserPreview(WithPreviewConfig(cfg), WithPreviewTimeout(testTimeout))
	t.Cleanup(func() { _ = pv.Close() })
	return pv, cfg
}

func TestBrowserPreview_DirectTypeset(t *testing.T) {
	pv, cfg := newStubPreview(t, directStub)
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	imp, err := NewImporter(WithConfig(cfg), WithDialog(pv), WithMathEngine(pv))
	if err != nil {
		t.Fatalf("NewImporter() error = %v", err)
	}
	if err := imp.ImportFile(ctx, File{Name: "a.md", Data: []byte("value [x_1]")}); err != nil {
		t.Fatalf("ImportFile() error = %v", err)
	}
	if _, ok := pv.API().(DirectAPI); !ok {
		t.Fatalf("API() = %T, want DirectAPI", pv.API())
	}

	got, err := pv.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if !strings.Contains(got, "$$x_1$$") {
		t.Errorf("snapshot missing formula:\n%s", got)
	}
	if err := pv.Err(); err != nil {
		t.Errorf("dialog update error = %v", err)
	}

	res, err := pv.page.Eval(`(id) => document.getElementById(id).getAttribute("data-typeset")`, cfg.MathJax.ContentElementID)
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	if res.Value.Str() != "direct" {
		t.Errorf("data-typeset = %q, want direct", res.Value.Str())
	}
}

func TestBrowserPreview_QueueTypeset(t *testing.T) {
	pv, _ := newStubPreview(t, hubStub)
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	if err := pv.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, ok := pv.API().(QueueAPI); !ok {
		t.Fatalf("API() = %T, want QueueAPI", pv.API())
	}
	if err := Typeset(ctx, pv.API()); err != nil {
		t.Fatalf("Typeset() error = %v", err)
	}

	res, err := pv.page.Eval(`() => document.querySelector(".file-result").getAttribute("data-typeset")`)
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	if res.Value.Str() != "Typeset" {
		t.Errorf("data-typeset = %q, want Typeset", res.Value.Str())
	}
}

func TestBrowserPreview_DialogState(t *testing.T) {
	pv, _ := newStubPreview(t, directStub)
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	pv.SetTip("converting Markdown file, please wait...")
	pv.ShowResult("<p>shown</p><script>document.title = 'ran'</script>")
	pv.HideResult()
	pv.Alert("please upload a file to recognize its content first")
	if err := pv.Err(); err != nil {
		t.Fatalf("dialog update error = %v", err)
	}

	res, err := pv.page.Eval(`() => [document.querySelector(".file-tip").textContent, document.querySelector(".file-result").style.display, document.title].join("|")`)
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	if want := "converting Markdown file, please wait...|none|Import preview"; res.Value.Str() != want {
		t.Errorf("page state = %q, want %q", res.Value.Str(), want)
	}
	if len(pv.Alerts()) != 1 {
		t.Errorf("Alerts() = %q", pv.Alerts())
	}

	snap, err := pv.Snapshot(ctx)
	if err != nil || !strings.Contains(snap, "<p>shown</p>") {
		t.Errorf("Snapshot() = %q, %v", snap, err)
	}
}

func TestPreviewPool_Integration(t *testing.T) {
	pool := NewPreviewPool(2, WithPreviewTimeout(testTimeout))
	defer pool.Close()

	pv, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	pv.SetTip("ready")
	if err := pv.Err(); err != nil {
		t.Errorf("SetTip() error = %v", err)
	}
	pool.Release(pv)
}
