package pipeline

import (
	"context"
	"fmt"
	"strconv"
)

// Strategy selects when fenced code becomes final markup.
type Strategy string

const (
	// StrategyPlaceholder restores code markup after rendering.
	StrategyPlaceholder Strategy = "placeholder"
	// StrategyInline restores code markup before rendering, letting it pass
	// through the renderer as raw HTML.
	StrategyInline Strategy = "inline"
)

// ParseStrategy maps a config value to a Strategy; "" selects placeholder.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", StrategyPlaceholder:
		return StrategyPlaceholder, nil
	case StrategyInline:
		return StrategyInline, nil
	}
	return "", fmt.Errorf("unknown code strategy %q", s)
}

// Options configures a Pipeline.
type Options struct {
	Strategy Strategy
	Detector *LanguageDetector // nil selects the default rule table
	Formula  FormulaOptions
	Markdown MarkdownOptions
	Math     *MathSupport // nil skips bootstrap injection
}

// Pipeline runs the Markdown stages in their fixed order.
type Pipeline struct {
	strategy  Strategy
	detector  *LanguageDetector
	formula   FormulaOptions
	converter *GoldmarkConverter
	sanitizer *Sanitizer
	math      *MathSupport
}

// New creates a Pipeline. Raw HTML passthrough (requested, or implied by the
// inline strategy) switches on sanitizing.
func New(opts Options) *Pipeline {
	if opts.Strategy == "" {
		opts.Strategy = StrategyPlaceholder
	}
	if opts.Detector == nil {
		opts.Detector = NewLanguageDetector(nil)
	}
	md := opts.Markdown
	if opts.Strategy == StrategyInline {
		md.Unsafe = true
	}

	p := &Pipeline{
		strategy:  opts.Strategy,
		detector:  opts.Detector,
		formula:   opts.Formula,
		converter: NewGoldmarkConverter(md),
		math:      opts.Math,
	}
	if md.Unsafe {
		p.sanitizer = NewSanitizer()
	}
	return p
}

// Detector returns the language detector in use.
func (p *Pipeline) Detector() *LanguageDetector {
	return p.detector
}

// Math returns the math support in use, or nil.
func (p *Pipeline) Math() *MathSupport {
	return p.math
}

// Convert turns Markdown source into insertable HTML.
func (p *Pipeline) Convert(ctx context.Context, markdown string) (string, error) {
	text, blocks := ProtectFences(NormalizeLineEndings(markdown), p.detector)
	text = squeezeBlankLines(text)
	text = NormalizeFormulas(text, p.formula)
	text, spans := ProtectMath(text)

	var trusted []string
	if p.strategy == StrategyInline {
		text, trusted = inlineCodeBlocks(text, blocks)
	}

	out, err := p.converter.ToHTML(ctx, text)
	if err != nil {
		return "", err
	}

	if p.sanitizer != nil {
		out = p.sanitizer.Sanitize(out, trusted)
	}
	out = RestoreMath(out, spans)
	out = RepairResidualFences(out, blocks, p.detector, trusted)

	if p.math != nil {
		out = p.math.Inject(out)
	}
	return out, nil
}

// inlineCodeBlocks swaps placeholders for final markup before rendering and
// returns the markup fragments it produced.
func inlineCodeBlocks(text string, blocks []CodeBlock) (string, []string) {
	var produced []string
	out := barePlaceholder.ReplaceAllStringFunc(text, func(m string) string {
		sub := barePlaceholder.FindStringSubmatch(m)
		i, err := strconv.Atoi(sub[1])
		if err != nil || i >= len(blocks) {
			return m
		}
		markup := CodeMarkup(blocks[i].Language, blocks[i].Code)
		produced = append(produced, markup)
		return markup
	})
	return out, produced
}
