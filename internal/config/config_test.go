package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/woniunote/woniuimport/internal/pipeline"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.MathJax.ScriptURL != DefaultScriptURL {
		t.Errorf("MathJax.ScriptURL = %q, want %q", cfg.MathJax.ScriptURL, DefaultScriptURL)
	}
	if cfg.MathJax.ContentElementID != "content" {
		t.Errorf("MathJax.ContentElementID = %q, want %q", cfg.MathJax.ContentElementID, "content")
	}
	if cfg.MathJax.FallbackSelector != ".ueditor-content" {
		t.Errorf("MathJax.FallbackSelector = %q, want %q", cfg.MathJax.FallbackSelector, ".ueditor-content")
	}
	if cfg.MathJax.BootstrapDelay != 500*time.Millisecond {
		t.Errorf("MathJax.BootstrapDelay = %s, want 500ms", cfg.MathJax.BootstrapDelay)
	}
	if cfg.Sink.InsertDelay != time.Second {
		t.Errorf("Sink.InsertDelay = %s, want 1s", cfg.Sink.InsertDelay)
	}
	if got := strings.Join(cfg.Formula.Triggers, " "); got != `\beta \frac _ ^ \epsilon \left \right \cdots` {
		t.Errorf("Formula.Triggers = %q", got)
	}
	if cfg.Formula.SkipLinkText {
		t.Error("Formula.SkipLinkText = true, want false")
	}
	if cfg.Code.Strategy != StrategyPlaceholder {
		t.Errorf("Code.Strategy = %q, want %q", cfg.Code.Strategy, StrategyPlaceholder)
	}
	if !cfg.Markdown.Emoji || !cfg.Markdown.ImageDimensions {
		t.Error("Markdown emoji and image dimensions should default to enabled")
	}
	if cfg.Markdown.AllowRawHTML {
		t.Error("Markdown.AllowRawHTML = true, want false")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestDefaultTriggers_ReturnsFreshSlice(t *testing.T) {
	t.Parallel()

	a := DefaultTriggers()
	a[0] = "mutated"
	if DefaultTriggers()[0] != `\beta` {
		t.Error("DefaultTriggers shares its backing array")
	}
}

func TestDefaultTriggers_MatchesPipeline(t *testing.T) {
	t.Parallel()

	if got, want := DefaultTriggers(), pipeline.DefaultTriggers(); !slices.Equal(got, want) {
		t.Errorf("DefaultTriggers() = %q, want %q", got, want)
	}
	if got := DefaultConfig().Formula.Triggers; !slices.Equal(got, pipeline.DefaultTriggers()) {
		t.Errorf("DefaultConfig().Formula.Triggers = %q", got)
	}
}

func TestValidateFieldLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		value     string
		maxLength int
		wantErr   bool
	}{
		{name: "empty value is valid", value: "", maxLength: 10},
		{name: "value at limit is valid", value: "1234567890", maxLength: 10},
		{name: "value over limit returns error", value: "12345678901", maxLength: 10, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := validateFieldLength("test.field", tt.value, tt.maxLength)
			if tt.wantErr {
				if !errors.Is(err, ErrFieldTooLong) {
					t.Errorf("error = %v, want ErrFieldTooLong", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:   "relative script path is valid",
			mutate: func(c *Config) { c.MathJax.ScriptURL = "/static/mathjax/tex-mml-chtml.js" },
		},
		{
			name:   "inline strategy is valid",
			mutate: func(c *Config) { c.Code.Strategy = StrategyInline },
		},
		{
			name: "custom language rules are valid",
			mutate: func(c *Config) {
				c.Code.Languages = []LanguageRule{{Name: "go", Pattern: `(?m)^\s*package \w+`}}
			},
		},
		{
			name:    "script URL without scheme",
			mutate:  func(c *Config) { c.MathJax.ScriptURL = "cdn.example.com/mathjax.js" },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "script URL too long",
			mutate:  func(c *Config) { c.MathJax.ScriptURL = "https://" + strings.Repeat("a", MaxURLLength) },
			wantErr: ErrFieldTooLong,
		},
		{
			name:    "element id with quote",
			mutate:  func(c *Config) { c.MathJax.ContentElementID = `content"x` },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "selector with markup",
			mutate:  func(c *Config) { c.MathJax.FallbackSelector = "</script>" },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "negative bootstrap delay",
			mutate:  func(c *Config) { c.MathJax.BootstrapDelay = -time.Second },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "insert delay too long",
			mutate:  func(c *Config) { c.Sink.InsertDelay = 2 * time.Minute },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "empty trigger",
			mutate:  func(c *Config) { c.Formula.Triggers = []string{`\frac`, ""} },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "trigger too long",
			mutate:  func(c *Config) { c.Formula.Triggers = []string{strings.Repeat("x", MaxTriggerLength+1)} },
			wantErr: ErrFieldTooLong,
		},
		{
			name:    "unknown strategy",
			mutate:  func(c *Config) { c.Code.Strategy = "magic" },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "language rule without name",
			mutate:  func(c *Config) { c.Code.Languages = []LanguageRule{{Pattern: "x"}} },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "language name with quote",
			mutate:  func(c *Config) { c.Code.Languages = []LanguageRule{{Name: `go"`, Pattern: "x"}} },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "language pattern does not compile",
			mutate:  func(c *Config) { c.Code.Languages = []LanguageRule{{Name: "go", Pattern: "("}} },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "assets path too long",
			mutate:  func(c *Config) { c.Assets.BasePath = strings.Repeat("a", MaxPathLength+1) },
			wantErr: ErrFieldTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("empty name returns ErrEmptyConfigName", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig("")
		if !errors.Is(err, ErrEmptyConfigName) {
			t.Errorf("error = %v, want ErrEmptyConfigName", err)
		}
	})

	t.Run("valid file path loads config over defaults", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "import.yaml")
		content := `mathjax:
  scriptURL: "/static/mathjax/tex-mml-chtml.js"
  bootstrapDelay: 250ms
sink:
  insertDelay: 2s
formula:
  triggers: ["\\frac", "_"]
  skipLinkText: true
code:
  strategy: inline
  chromaFallback: true
  languages:
    - name: go
      pattern: "(?m)^package "
output:
  defaultDir: "/tmp/out"
`
		if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
			t.Fatalf("setup: %v", err)
		}

		cfg, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.MathJax.ScriptURL != "/static/mathjax/tex-mml-chtml.js" {
			t.Errorf("MathJax.ScriptURL = %q", cfg.MathJax.ScriptURL)
		}
		if cfg.MathJax.BootstrapDelay != 250*time.Millisecond {
			t.Errorf("MathJax.BootstrapDelay = %s, want 250ms", cfg.MathJax.BootstrapDelay)
		}
		if cfg.MathJax.ContentElementID != DefaultContentElementID {
			t.Errorf("MathJax.ContentElementID = %q, want default", cfg.MathJax.ContentElementID)
		}
		if cfg.Sink.InsertDelay != 2*time.Second {
			t.Errorf("Sink.InsertDelay = %s, want 2s", cfg.Sink.InsertDelay)
		}
		if len(cfg.Formula.Triggers) != 2 || cfg.Formula.Triggers[0] != `\frac` {
			t.Errorf("Formula.Triggers = %q", cfg.Formula.Triggers)
		}
		if !cfg.Formula.SkipLinkText {
			t.Error("Formula.SkipLinkText = false, want true")
		}
		if cfg.Code.Strategy != StrategyInline || !cfg.Code.ChromaFallback {
			t.Errorf("Code = %+v", cfg.Code)
		}
		if len(cfg.Code.Languages) != 1 || cfg.Code.Languages[0].Name != "go" {
			t.Errorf("Code.Languages = %+v", cfg.Code.Languages)
		}
		if !cfg.Markdown.Emoji {
			t.Error("Markdown.Emoji lost its default")
		}
		if cfg.Output.DefaultDir != "/tmp/out" {
			t.Errorf("Output.DefaultDir = %q", cfg.Output.DefaultDir)
		}
	})

	t.Run("nonexistent file path returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig("/nonexistent/path/config.yaml")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("invalid YAML returns ErrConfigParse", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "invalid.yaml")
		if err := os.WriteFile(configPath, []byte("formula: [unclosed"), 0o600); err != nil {
			t.Fatalf("setup: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("unknown field returns ErrConfigParse in strict mode", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "unknown.yaml")
		if err := os.WriteFile(configPath, []byte("footer:\n  enabled: true\n"), 0o600); err != nil {
			t.Fatalf("setup: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("invalid value fails validation", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(configPath, []byte("code:\n  strategy: magic\n"), 0o600); err != nil {
			t.Fatalf("setup: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidValue) {
			t.Errorf("error = %v, want ErrInvalidValue", err)
		}
	})

	t.Run("unknown name lists searched paths", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig("definitely-not-a-config-xyz")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("error = %v, want ErrConfigNotFound", err)
		}
		if !strings.Contains(err.Error(), "definitely-not-a-config-xyz.yml") {
			t.Errorf("error %q does not list the .yml candidate", err)
		}
	})
}

func TestSearchPaths(t *testing.T) {
	t.Parallel()

	paths := SearchPaths("work")
	if len(paths) < 2 {
		t.Fatalf("SearchPaths() = %v, want at least local candidates", paths)
	}
	if paths[0] != "work.yaml" || paths[1] != "work.yml" {
		t.Errorf("local candidates = %v, want work.yaml then work.yml", paths[:2])
	}
	for _, p := range paths[2:] {
		if !strings.Contains(p, filepath.Join(AppName, "work")) {
			t.Errorf("user candidate %q not under %s", p, AppName)
		}
	}
}
