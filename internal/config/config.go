// Package config loads and validates woniuimport YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/woniunote/woniuimport/internal/fileutil"
	"github.com/woniunote/woniuimport/internal/pipeline"
	"github.com/woniunote/woniuimport/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// AppName is the directory name used under the user config directory.
const AppName = "woniuimport"

// Field limits.
const (
	MaxURLLength      = 2048
	MaxIDLength       = 64
	MaxSelectorLength = 128
	MaxTriggerLength  = 32
	MaxTriggers       = 64
	MaxLanguageRules  = 64
	MaxLanguageName   = 32
	MaxPatternLength  = 512
	MaxPathLength     = 4096
	MaxDelay          = time.Minute
)

// Code strategies.
const (
	StrategyPlaceholder = "placeholder"
	StrategyInline      = "inline"
)

// Defaults.
const (
	DefaultScriptURL        = "https://cdn.jsdelivr.net/npm/mathjax@3/es5/tex-mml-chtml.js"
	DefaultContentElementID = "content"
	DefaultFallbackSelector = ".ueditor-content"
	DefaultBootstrapDelay   = 500 * time.Millisecond
	DefaultInsertDelay      = time.Second
)

// DefaultTriggers returns the trigger tokens that mark bracketed text as a
// formula. The list is owned by the pipeline package.
func DefaultTriggers() []string {
	return pipeline.DefaultTriggers()
}

// Config holds all configuration for an import.
type Config struct {
	MathJax  MathJaxConfig  `yaml:"mathjax"`
	Sink     SinkConfig     `yaml:"sink"`
	Formula  FormulaConfig  `yaml:"formula"`
	Code     CodeConfig     `yaml:"code"`
	Markdown MarkdownConfig `yaml:"markdown"`
	Assets   AssetsConfig   `yaml:"assets"`
	Output   OutputConfig   `yaml:"output"`
}

// MathJaxConfig controls the injected math bootstrap.
type MathJaxConfig struct {
	ScriptURL        string        `yaml:"scriptURL"`
	ContentElementID string        `yaml:"contentElementID"`
	FallbackSelector string        `yaml:"fallbackSelector"` // Used by the wrap applied at insertion
	BootstrapDelay   time.Duration `yaml:"bootstrapDelay"`
}

// SinkConfig controls editor insertion.
type SinkConfig struct {
	InsertDelay time.Duration `yaml:"insertDelay"` // Wait before the post-insert rewrite and typeset
}

// FormulaConfig controls bracket formula detection.
type FormulaConfig struct {
	Triggers     []string `yaml:"triggers"`
	SkipLinkText bool     `yaml:"skipLinkText"` // Leave [text](url) alone even when text has triggers
}

// CodeConfig controls fenced code handling.
type CodeConfig struct {
	Strategy       string         `yaml:"strategy"`       // "placeholder" (default) or "inline"
	Languages      []LanguageRule `yaml:"languages"`      // Empty = built-in rule table
	ChromaFallback bool           `yaml:"chromaFallback"` // Ask chroma when no rule matches
}

// LanguageRule maps a regular expression over code to a language name.
type LanguageRule struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
}

// MarkdownConfig controls the Markdown renderer.
type MarkdownConfig struct {
	Emoji           bool `yaml:"emoji"`
	ImageDimensions bool `yaml:"imageDimensions"`
	AllowRawHTML    bool `yaml:"allowRawHTML"`
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Empty = same as source
}

var elementIDPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_:.-]*$`)

// DefaultConfig returns the configuration matching the stock editor dialog.
func DefaultConfig() *Config {
	return &Config{
		MathJax: MathJaxConfig{
			ScriptURL:        DefaultScriptURL,
			ContentElementID: DefaultContentElementID,
			FallbackSelector: DefaultFallbackSelector,
			BootstrapDelay:   DefaultBootstrapDelay,
		},
		Sink:     SinkConfig{InsertDelay: DefaultInsertDelay},
		Formula:  FormulaConfig{Triggers: DefaultTriggers()},
		Code:     CodeConfig{Strategy: StrategyPlaceholder},
		Markdown: MarkdownConfig{Emoji: true, ImageDimensions: true},
	}
}

// Validate checks field lengths and value shapes.
// Called automatically by LoadConfig, but available for callers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := c.validateMathJax(); err != nil {
		return err
	}
	if err := validateDelay("sink.insertDelay", c.Sink.InsertDelay); err != nil {
		return err
	}
	if err := c.validateFormula(); err != nil {
		return err
	}
	if err := c.validateCode(); err != nil {
		return err
	}
	if err := validateFieldLength("assets.basePath", c.Assets.BasePath, MaxPathLength); err != nil {
		return err
	}
	return validateFieldLength("output.defaultDir", c.Output.DefaultDir, MaxPathLength)
}

func (c *Config) validateMathJax() error {
	m := c.MathJax
	if err := validateFieldLength("mathjax.scriptURL", m.ScriptURL, MaxURLLength); err != nil {
		return err
	}
	if m.ScriptURL != "" && !fileutil.IsURL(m.ScriptURL) && !strings.HasPrefix(m.ScriptURL, "/") {
		return fmt.Errorf("%w: mathjax.scriptURL must be an http(s) URL or an absolute path, got %q", ErrInvalidValue, m.ScriptURL)
	}
	if err := validateFieldLength("mathjax.contentElementID", m.ContentElementID, MaxIDLength); err != nil {
		return err
	}
	if m.ContentElementID != "" && !elementIDPattern.MatchString(m.ContentElementID) {
		return fmt.Errorf("%w: mathjax.contentElementID %q is not a valid element id", ErrInvalidValue, m.ContentElementID)
	}
	if err := validateFieldLength("mathjax.fallbackSelector", m.FallbackSelector, MaxSelectorLength); err != nil {
		return err
	}
	if strings.ContainsAny(m.FallbackSelector, "<>{}") {
		return fmt.Errorf("%w: mathjax.fallbackSelector %q contains forbidden characters", ErrInvalidValue, m.FallbackSelector)
	}
	return validateDelay("mathjax.bootstrapDelay", m.BootstrapDelay)
}

func (c *Config) validateFormula() error {
	if len(c.Formula.Triggers) > MaxTriggers {
		return fmt.Errorf("%w: formula.triggers has %d entries, max %d", ErrInvalidValue, len(c.Formula.Triggers), MaxTriggers)
	}
	for i, trig := range c.Formula.Triggers {
		field := fmt.Sprintf("formula.triggers[%d]", i)
		if trig == "" {
			return fmt.Errorf("%w: %s is empty", ErrInvalidValue, field)
		}
		if err := validateFieldLength(field, trig, MaxTriggerLength); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateCode() error {
	switch c.Code.Strategy {
	case "", StrategyPlaceholder, StrategyInline:
	default:
		return fmt.Errorf("%w: code.strategy %q (must be %s or %s)", ErrInvalidValue, c.Code.Strategy, StrategyPlaceholder, StrategyInline)
	}
	if len(c.Code.Languages) > MaxLanguageRules {
		return fmt.Errorf("%w: code.languages has %d entries, max %d", ErrInvalidValue, len(c.Code.Languages), MaxLanguageRules)
	}
	for i, rule := range c.Code.Languages {
		field := fmt.Sprintf("code.languages[%d]", i)
		if rule.Name == "" {
			return fmt.Errorf("%w: %s.name is empty", ErrInvalidValue, field)
		}
		if err := validateFieldLength(field+".name", rule.Name, MaxLanguageName); err != nil {
			return err
		}
		if strings.ContainsAny(rule.Name, "\"'<> ") {
			return fmt.Errorf("%w: %s.name %q contains forbidden characters", ErrInvalidValue, field, rule.Name)
		}
		if err := validateFieldLength(field+".pattern", rule.Pattern, MaxPatternLength); err != nil {
			return err
		}
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			return fmt.Errorf("%w: %s.pattern: %v", ErrInvalidValue, field, err)
		}
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

func validateDelay(fieldName string, d time.Duration) error {
	if d < 0 || d > MaxDelay {
		return fmt.Errorf("%w: %s must be between 0 and %s, got %s", ErrInvalidValue, fieldName, MaxDelay, d)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's searched as name.yaml / name.yml in the current directory
// and then in the user config directory. Fields missing from the file keep
// their DefaultConfig values.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		resolved, err := resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
		configPath = resolved
	}

	f, err := os.Open(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	cfg := DefaultConfig()
	if err := yamlutil.DecodeStrict(f, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths lists the candidate files for a config name, in lookup order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, AppName, name+ext))
		}
	}
	return paths
}

func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.IsRegularFile(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
