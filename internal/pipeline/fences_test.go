package pipeline

import (
	"strings"
	"testing"
)

// unescapeCode reverses EscapeCode.
func unescapeCode(s string) string {
	return strings.NewReplacer("&lt;", "<", "&gt;", ">", "&amp;", "&").Replace(s)
}

func TestEscapeCode(t *testing.T) {
	t.Parallel()

	in := `if a < b && c > d { s := "x" }`
	want := `if a &lt; b &amp;&amp; c &gt; d { s := "x" }`
	if got := EscapeCode(in); got != want {
		t.Errorf("EscapeCode() = %q, want %q", got, want)
	}
	if got := unescapeCode(EscapeCode(in)); got != in {
		t.Errorf("round trip = %q, want %q", got, in)
	}
}

func TestProtectFences(t *testing.T) {
	t.Parallel()

	d := NewLanguageDetector(nil)

	tests := []struct {
		name       string
		src        string
		wantBlocks []CodeBlock
		wantText   []string
		wantNot    []string
	}{
		{
			name:       "tagged fence",
			src:        "```python\nprint(1)\n```",
			wantBlocks: []CodeBlock{{Language: "python", Code: "print(1)"}},
			wantText:   []string{"\n\nCODEBLOCK_0\n\n"},
			wantNot:    []string{"```", "print(1)"},
		},
		{
			name:       "untagged fence uses detector",
			src:        "intro\n\n```\nimport os\ndef f():\n    pass\n```\n",
			wantBlocks: []CodeBlock{{Language: "python", Code: "import os\ndef f():\n    pass"}},
			wantText:   []string{"intro", "CODEBLOCK_0"},
		},
		{
			name:       "single line untagged fence",
			src:        "run ```SELECT 1``` now",
			wantBlocks: []CodeBlock{{Language: "sql", Code: "SELECT 1"}},
			wantText:   []string{"run", "CODEBLOCK_0", "now"},
		},
		{
			name: "fences numbered in source order",
			src:  "```\nhello\n```\n\n```go\npackage main\n```",
			wantBlocks: []CodeBlock{
				{Language: "plaintext", Code: "hello"},
				{Language: "go", Code: "package main"},
			},
		},
		{
			name: "tagged fences numbered before single line fences",
			src:  "run ```SELECT 1``` now\n\n```go\npackage main\n```",
			wantBlocks: []CodeBlock{
				{Language: "go", Code: "package main"},
				{Language: "sql", Code: "SELECT 1"},
			},
			wantText: []string{"run \n\nCODEBLOCK_1\n\n now"},
		},
		{
			name:       "first line indentation kept",
			src:        "```yaml\n\n  key: value\n  other: 1\n\n```",
			wantBlocks: []CodeBlock{{Language: "yaml", Code: "  key: value\n  other: 1"}},
		},
		{
			name:       "formula-looking code stays in block",
			src:        "```\n[x_1 + x_2]\n```",
			wantBlocks: []CodeBlock{{Language: "plaintext", Code: "[x_1 + x_2]"}},
			wantNot:    []string{"x_1"},
		},
		{
			name:     "no fences",
			src:      "plain [text]",
			wantText: []string{"plain [text]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			text, blocks := ProtectFences(tt.src, d)

			if len(blocks) != len(tt.wantBlocks) {
				t.Fatalf("got %d blocks %+v, want %d", len(blocks), blocks, len(tt.wantBlocks))
			}
			for i, want := range tt.wantBlocks {
				if blocks[i] != want {
					t.Errorf("block %d = %+v, want %+v", i, blocks[i], want)
				}
			}
			for _, want := range tt.wantText {
				if !strings.Contains(text, want) {
					t.Errorf("text %q missing %q", text, want)
				}
			}
			for _, not := range tt.wantNot {
				if strings.Contains(text, not) {
					t.Errorf("text %q still contains %q", text, not)
				}
			}
		})
	}
}

func TestExtractCodeBlocks_MatchesProtectFences(t *testing.T) {
	t.Parallel()

	d := NewLanguageDetector(nil)
	src := "```js\nlet a = 1\n```\n\ntext\n\n```\nSELECT 1\n```"

	_, want := ProtectFences(src, d)
	got := ExtractCodeBlocks(src, d)

	if len(got) != len(want) {
		t.Fatalf("ExtractCodeBlocks() = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("block %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestCodeMarkup(t *testing.T) {
	t.Parallel()

	got := CodeMarkup("cpp", "#include <vector>")
	want := `<pre><code class="language-cpp">#include &lt;vector&gt;</code></pre>`
	if got != want {
		t.Errorf("CodeMarkup() = %q, want %q", got, want)
	}
}

func TestNormalizeLineEndings(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"a\r\nb":      "a\nb",
		"a\rb\r":      "a\nb\n",
		"a\r\r\nb":    "a\n\nb",
		"unchanged\n": "unchanged\n",
	}
	for in, want := range tests {
		if got := NormalizeLineEndings(in); got != want {
			t.Errorf("NormalizeLineEndings(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSqueezeBlankLines(t *testing.T) {
	t.Parallel()

	text, _ := ProtectFences("a\n\n```go\nx\n```\n\nb", NewLanguageDetector(nil))
	if got := squeezeBlankLines(text); got != "a\n\nCODEBLOCK_0\n\nb" {
		t.Errorf("squeezeBlankLines() = %q", got)
	}
	if got := squeezeBlankLines("a\n\n\n\n\nb\n\nc\nd"); got != "a\n\nb\n\nc\nd" {
		t.Errorf("squeezeBlankLines() = %q", got)
	}
}
