package pipeline

import (
	"html"
	"regexp"
	"strconv"
	"strings"
)

var (
	paragraphPlaceholder  = regexp.MustCompile(`<p>\s*CODEBLOCK_(\d+)\s*</p>`)
	barePlaceholder       = regexp.MustCompile(`CODEBLOCK_(\d+)`)
	tildePlaceholder      = regexp.MustCompile(`(?:<del>|~+)CODEBLOCK_PLACEHOLDER_(\d+)(?:</del>|~+)`)
	underscorePlaceholder = regexp.MustCompile(`__CODE_(\d+)__|<strong>CODE_(\d+)</strong>`)
	numberedPre           = regexp.MustCompile(`<pre\s+class=["']code(\d+)["']>([\s\S]*?)</pre>`)
	paragraphFence        = regexp.MustCompile(`<p>` + fence + `([\s\S]*?)` + fence + `</p>`)
	fenceBody             = regexp.MustCompile(`^(\w*)\s*\n([\s\S]*?)$`)
	unclassedCode         = regexp.MustCompile(`<pre><code>([\s\S]*?)</code></pre>`)
	lineBreak             = regexp.MustCompile(`<br\s*/?>`)
)

// encodedFence replaces literal fences that survive every repair.
const encodedFence = "&#96;&#96;&#96;"

// RepairResidualFences rewrites code placeholders and renderer residue in
// rendered HTML into canonical <pre><code class="language-X"> markup.
// Indexed forms look up blocks; when the index is out of range the residue
// text itself is re-detected where it carries code, and left alone where it
// is only a token. Unclassed <pre><code> blocks get a detected class, and
// any remaining ``` outside code is entity-encoded. Repaired markup and
// exact occurrences of trusted fragments are held aside until the end so
// no pass rescans finished code.
func RepairResidualFences(htmlContent string, blocks []CodeBlock, detector *LanguageDetector, trusted []string) string {
	var held shield
	htmlContent = held.holdAll(htmlContent, trusted)

	lookup := func(index string) (string, bool) {
		i, err := strconv.Atoi(index)
		if err != nil || i < 0 || i >= len(blocks) {
			return "", false
		}
		b := blocks[i]
		lang := b.Language
		if lang == "" {
			lang = detector.Detect(b.Code)
		}
		return held.hold(CodeMarkup(lang, b.Code)), true
	}

	byIndex := func(re *regexp.Regexp) func(string) string {
		return func(m string) string {
			sub := re.FindStringSubmatch(m)
			for _, idx := range sub[1:] {
				if idx == "" {
					continue
				}
				if markup, ok := lookup(idx); ok {
					return markup
				}
			}
			return m
		}
	}

	out := paragraphPlaceholder.ReplaceAllStringFunc(htmlContent, byIndex(paragraphPlaceholder))
	out = barePlaceholder.ReplaceAllStringFunc(out, byIndex(barePlaceholder))
	out = tildePlaceholder.ReplaceAllStringFunc(out, byIndex(tildePlaceholder))
	out = underscorePlaceholder.ReplaceAllStringFunc(out, byIndex(underscorePlaceholder))

	out = numberedPre.ReplaceAllStringFunc(out, func(m string) string {
		sub := numberedPre.FindStringSubmatch(m)
		if markup, ok := lookup(sub[1]); ok {
			return markup
		}
		code := html.UnescapeString(sub[2])
		return held.hold(CodeMarkup(detector.Detect(code), code))
	})

	out = paragraphFence.ReplaceAllStringFunc(out, func(m string) string {
		content := paragraphFence.FindStringSubmatch(m)[1]
		content = html.UnescapeString(lineBreak.ReplaceAllString(content, "\n"))
		if parts := fenceBody.FindStringSubmatch(content); parts != nil {
			code := strings.TrimSpace(parts[2])
			lang := parts[1]
			if lang == "" {
				lang = detector.Detect(code)
			}
			return held.hold(CodeMarkup(lang, code))
		}
		code := strings.TrimSpace(strings.ReplaceAll(content, fence, ""))
		return held.hold(CodeMarkup(detector.Detect(code), code))
	})

	out = unclassedCode.ReplaceAllStringFunc(out, func(m string) string {
		content := unclassedCode.FindStringSubmatch(m)[1]
		lang := detector.Detect(html.UnescapeString(content))
		return held.hold(`<pre><code class="language-` + lang + `">` + content + `</code></pre>`)
	})

	return held.release(strings.ReplaceAll(out, fence, encodedFence))
}
