package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
)

// PlainText is the language assigned when no rule matches.
const PlainText = "plaintext"

// LanguageRule maps a pattern over a code body to a language name.
type LanguageRule struct {
	Name    string
	Pattern *regexp.Regexp
}

// DefaultLanguageRules returns the built-in rule table, tested in order.
// Patterns anchor at line starts, so "import" anywhere at the start of a line
// marks Python even in JavaScript modules; callers wanting finer results
// supply their own table.
func DefaultLanguageRules() []LanguageRule {
	return []LanguageRule{
		{Name: "python", Pattern: regexp.MustCompile(`(?m)^\s*(import|from|def|class|if __name__)`)},
		{Name: "javascript", Pattern: regexp.MustCompile(`(?m)^\s*(function|const|let|var|import from|export|=>)`)},
		{Name: "java", Pattern: regexp.MustCompile(`(?m)^\s*(public class|private|protected|void|static|@Override)`)},
		{Name: "cpp", Pattern: regexp.MustCompile(`(?m)^\s*(#include|int main|std::)`)},
		{Name: "sql", Pattern: regexp.MustCompile(`(?im)^\s*(SELECT|INSERT|UPDATE|DELETE|CREATE TABLE)`)},
		{Name: "html", Pattern: regexp.MustCompile(`(?m)^\s*(<html|<!DOCTYPE|<head|<body)`)},
		{Name: "css", Pattern: regexp.MustCompile(`(?m)^\s*(body|margin|padding|font-size|color:|background:)`)},
	}
}

// ParseLanguageRule compiles a configured rule.
func ParseLanguageRule(name, pattern string) (LanguageRule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return LanguageRule{}, fmt.Errorf("language rule %q: %w", name, err)
	}
	return LanguageRule{Name: name, Pattern: re}, nil
}

// LanguageDetector guesses the language of untagged code.
type LanguageDetector struct {
	rules  []LanguageRule
	chroma bool
}

// DetectorOption configures a LanguageDetector.
type DetectorOption func(*LanguageDetector)

// WithChromaFallback asks chroma's lexer analysers when no rule matches.
func WithChromaFallback() DetectorOption {
	return func(d *LanguageDetector) { d.chroma = true }
}

// NewLanguageDetector creates a detector over rules. A nil or empty table
// selects DefaultLanguageRules.
func NewLanguageDetector(rules []LanguageRule, opts ...DetectorOption) *LanguageDetector {
	if len(rules) == 0 {
		rules = DefaultLanguageRules()
	}
	d := &LanguageDetector{rules: rules}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect returns the first matching rule's language, else PlainText.
func (d *LanguageDetector) Detect(code string) string {
	for _, rule := range d.rules {
		if rule.Pattern.MatchString(code) {
			return rule.Name
		}
	}
	if d.chroma {
		if name := analyse(code); name != "" {
			return name
		}
	}
	return PlainText
}

// analyse returns chroma's best guess as a class-safe alias.
func analyse(code string) string {
	lexer := lexers.Analyse(code)
	if lexer == nil {
		return ""
	}
	cfg := lexer.Config()
	name := cfg.Name
	if len(cfg.Aliases) > 0 {
		name = cfg.Aliases[0]
	}
	name = strings.ToLower(name)
	if !classSafe.MatchString(name) {
		return ""
	}
	return name
}

var classSafe = regexp.MustCompile(`^[a-z0-9_+#-]+$`)
