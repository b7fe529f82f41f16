package pipeline

import (
	"regexp"
	"strconv"
	"strings"
)

// Math placeholders use Unicode Private Use Area characters so goldmark
// passes them through untouched and never escapes the TeX inside.
const (
	MathStartPlaceholder = "\uE000"
	MathEndPlaceholder   = "\uE001"
)

var (
	escapedBracket = regexp.MustCompile(`\\\[([\s\S]*?)\\\]`)
	bareBracket    = regexp.MustCompile(`\[([\s\S]*?)\]`)
	blankLine      = regexp.MustCompile(`\n[ \t]*\n`)
	mathToken      = regexp.MustCompile(MathStartPlaceholder + `(\d+)` + MathEndPlaceholder)
	placeholderRef = regexp.MustCompile(`CODEBLOCK_\d+`)
)

// DefaultTriggers returns the tokens that mark bracketed text as a formula.
func DefaultTriggers() []string {
	return []string{`\beta`, `\frac`, `_`, `^`, `\epsilon`, `\left`, `\right`, `\cdots`}
}

// FormulaOptions tunes bracket formula detection.
type FormulaOptions struct {
	Triggers     []string // nil selects DefaultTriggers
	SkipLinkText bool     // leave [text](url), [text][ref] and ![alt] alone
}

func (o FormulaOptions) triggers() []string {
	if o.Triggers == nil {
		return DefaultTriggers()
	}
	return o.Triggers
}

// IsFormula reports whether text contains at least one trigger token.
// The test is approximate: prose with underscores or carets, citation
// markers like [^1] and snake_case names all qualify.
func IsFormula(text string, triggers []string) bool {
	for _, t := range triggers {
		if t != "" && strings.Contains(text, t) {
			return true
		}
	}
	return false
}

// NormalizeFormulas rewrites \[...\] to $$...$$, then rewrites bare [...]
// spans holding a trigger token. Text already inside $$...$$ and spans that
// reach across a code placeholder are left unchanged.
func NormalizeFormulas(text string, opts FormulaOptions) string {
	text = escapedBracket.ReplaceAllStringFunc(text, func(m string) string {
		return "$$" + escapedBracket.FindStringSubmatch(m)[1] + "$$"
	})

	var b strings.Builder
	last := 0
	for _, loc := range mathSpans(text) {
		b.WriteString(rewriteBrackets(text[last:loc[0]], opts))
		b.WriteString(text[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(rewriteBrackets(text[last:], opts))
	return b.String()
}

// RewriteBracketFormulas applies only the bare-bracket rewrite. The sink
// runs it over live editor text after insertion.
func RewriteBracketFormulas(text string, triggers []string) string {
	return rewriteBrackets(text, FormulaOptions{Triggers: triggers})
}

func rewriteBrackets(seg string, opts FormulaOptions) string {
	matches := bareBracket.FindAllStringSubmatchIndex(seg, -1)
	if matches == nil {
		return seg
	}
	triggers := opts.triggers()

	var b strings.Builder
	last := 0
	for _, m := range matches {
		inner := seg[m[2]:m[3]]
		b.WriteString(seg[last:m[0]])
		switch {
		case !IsFormula(inner, triggers),
			placeholderRef.MatchString(inner),
			opts.SkipLinkText && isLinkText(seg, m[0], m[1]):
			b.WriteString(seg[m[0]:m[1]])
		default:
			b.WriteString("$$" + inner + "$$")
		}
		last = m[1]
	}
	b.WriteString(seg[last:])
	return b.String()
}

// isLinkText reports whether seg[start:end] is the bracket part of a
// Markdown link, reference link or image.
func isLinkText(seg string, start, end int) bool {
	if start > 0 && seg[start-1] == '!' {
		return true
	}
	return end < len(seg) && (seg[end] == '(' || seg[end] == '[')
}

// mathSpans returns the byte ranges of $$...$$ spans. A span never crosses
// a blank line; an opener that would is treated as a literal $$ and the
// next $$ becomes the candidate opener.
func mathSpans(text string) [][2]int {
	var spans [][2]int
	pos := 0
	for {
		open := strings.Index(text[pos:], "$$")
		if open < 0 {
			return spans
		}
		open += pos
		n := strings.Index(text[open+2:], "$$")
		if n < 0 {
			return spans
		}
		end := open + 2 + n + 2
		if blankLine.MatchString(text[open:end]) {
			pos = open + 2
			continue
		}
		spans = append(spans, [2]int{open, end})
		pos = end
	}
}

// ProtectMath swaps every $$...$$ span for a placeholder and returns the
// spans by index.
func ProtectMath(text string) (string, []string) {
	var (
		spans []string
		b     strings.Builder
	)
	last := 0
	for _, loc := range mathSpans(text) {
		b.WriteString(text[last:loc[0]])
		spans = append(spans, text[loc[0]:loc[1]])
		b.WriteString(MathStartPlaceholder + strconv.Itoa(len(spans)-1) + MathEndPlaceholder)
		last = loc[1]
	}
	if spans == nil {
		return text, nil
	}
	b.WriteString(text[last:])
	return b.String(), spans
}

// RestoreMath puts protected spans back with &, < and > escaped.
func RestoreMath(html string, spans []string) string {
	if len(spans) == 0 {
		return html
	}
	return mathToken.ReplaceAllStringFunc(html, func(m string) string {
		i, err := strconv.Atoi(mathToken.FindStringSubmatch(m)[1])
		if err != nil || i >= len(spans) {
			return m
		}
		return EscapeCode(spans[i])
	})
}
