package pipeline

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// CodeBlock is one fenced block lifted out of the Markdown source.
// Language is always resolved: the fence tag, or the detector's guess.
type CodeBlock struct {
	Language string
	Code     string
}

const fence = "```"

var (
	// Fence with an optional word tag on the opening line.
	taggedFence = regexp.MustCompile(fence + `(\w*)\s*\n([\s\S]*?)` + fence)

	// Anything else between two fences, including single-line fences.
	untaggedFence = regexp.MustCompile(fence + `([\s\S]*?)` + fence)

	codeEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

	lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// NormalizeLineEndings converts \r\n and lone \r to \n.
func NormalizeLineEndings(src string) string {
	return lineEndings.Replace(src)
}

// squeezeBlankLines collapses runs of blank lines to one. Placeholders
// leave extra newlines around each lifted block.
func squeezeBlankLines(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	run := 0
	for _, r := range text {
		if r == '\n' {
			run++
			if run > 2 {
				continue
			}
		} else {
			run = 0
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Placeholder returns the token that stands in for block n.
func Placeholder(n int) string {
	return fmt.Sprintf("CODEBLOCK_%d", n)
}

// EscapeCode escapes exactly &, < and > for use inside <code>.
func EscapeCode(code string) string {
	return codeEscaper.Replace(code)
}

// CodeMarkup renders the canonical markup for a code block.
func CodeMarkup(language, code string) string {
	return `<pre><code class="language-` + language + `">` + EscapeCode(code) + `</code></pre>`
}

// ProtectFences replaces every fenced block in src with a CODEBLOCK_n
// placeholder set in its own paragraph and returns the blocks by index.
// Tagged fences are taken first, then untagged ones, so numbering follows
// that order rather than source position when both kinds are mixed.
func ProtectFences(src string, detector *LanguageDetector) (string, []CodeBlock) {
	var blocks []CodeBlock

	add := func(language, code string) string {
		code = trimCode(code)
		if language == "" {
			language = detector.Detect(code)
		}
		blocks = append(blocks, CodeBlock{Language: language, Code: code})
		return "\n\n" + Placeholder(len(blocks)-1) + "\n\n"
	}

	out := taggedFence.ReplaceAllStringFunc(src, func(m string) string {
		sub := taggedFence.FindStringSubmatch(m)
		return add(sub[1], sub[2])
	})
	out = untaggedFence.ReplaceAllStringFunc(out, func(m string) string {
		sub := untaggedFence.FindStringSubmatch(m)
		return add("", sub[1])
	})

	return out, blocks
}

// ExtractCodeBlocks lists the fenced blocks of src in placeholder order.
func ExtractCodeBlocks(src string, detector *LanguageDetector) []CodeBlock {
	_, blocks := ProtectFences(src, detector)
	return blocks
}

// trimCode drops surrounding blank lines and trailing whitespace while
// keeping the first line's indentation.
func trimCode(code string) string {
	code = strings.TrimRightFunc(code, unicode.IsSpace)
	if !strings.Contains(code, "\n") {
		return strings.TrimSpace(code)
	}
	for {
		i := strings.IndexByte(code, '\n')
		if i < 0 || strings.TrimSpace(code[:i]) != "" {
			return code
		}
		code = code[i+1:]
	}
}
