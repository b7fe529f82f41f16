package pipeline

import (
	"runtime"
	"strings"
	"testing"
)

func TestResolveRelativeImages(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("expectations use POSIX paths")
	}

	tests := []struct {
		name         string
		html         string
		sourceDir    string
		wantContains []string
		wantNot      []string
	}{
		{
			name:         "relative image with dot slash",
			html:         `<p><img src="./images/logo.png" alt="logo"/></p>`,
			sourceDir:    "/docs",
			wantContains: []string{`src="file:///docs/images/logo.png"`, `alt="logo"`},
		},
		{
			name:         "relative image without dot slash",
			html:         `<img src="images/logo.png">`,
			sourceDir:    "/docs",
			wantContains: []string{`src="file:///docs/images/logo.png"`},
		},
		{
			name:         "absolute path unchanged",
			html:         `<img src="/abs/logo.png">`,
			sourceDir:    "/docs",
			wantContains: []string{`src="/abs/logo.png"`},
		},
		{
			name:         "URL unchanged",
			html:         `<img src="https://example.com/logo.png">`,
			sourceDir:    "/docs",
			wantContains: []string{`src="https://example.com/logo.png"`},
		},
		{
			name:         "data URI unchanged",
			html:         `<img src="data:image/png;base64,AAAA">`,
			sourceDir:    "/docs",
			wantContains: []string{`src="data:image/png;base64,AAAA"`},
		},
		{
			name:         "traversal left alone",
			html:         `<img src="../../etc/passwd">`,
			sourceDir:    "/docs",
			wantContains: []string{`src="../../etc/passwd"`},
			wantNot:      []string{"file://"},
		},
		{
			name:         "links are not images",
			html:         `<a href="notes.md">notes</a>`,
			sourceDir:    "/docs",
			wantContains: []string{`href="notes.md"`},
		},
		{
			name:         "empty source dir is a no-op",
			html:         `<img src="a.png">`,
			sourceDir:    "",
			wantContains: []string{`src="a.png"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ResolveRelativeImages(tt.html, tt.sourceDir)
			if err != nil {
				t.Fatalf("ResolveRelativeImages() error = %v", err)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("missing %q in %q", want, got)
				}
			}
			for _, not := range tt.wantNot {
				if strings.Contains(got, not) {
					t.Errorf("unexpected %q in %q", not, got)
				}
			}
		})
	}
}

func TestResolveRelativeImages_UnchangedInputIsByteIdentical(t *testing.T) {
	t.Parallel()

	in := `<p>$$x_1$$</p><script id="MathJax-script" async src="https://cdn"></script>`
	got, err := ResolveRelativeImages(in, "/docs")
	if err != nil {
		t.Fatalf("ResolveRelativeImages() error = %v", err)
	}
	if got != in {
		t.Errorf("got %q, want input unchanged", got)
	}
}
