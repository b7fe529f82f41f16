package pipeline

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer strips unsafe markup from rendered HTML when raw HTML was
// allowed through the renderer.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer creates a Sanitizer on bluemonday's UGC policy, extended
// with task-list checkboxes, language classes on code and data URI images.
func NewSanitizer() *Sanitizer {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("type", "checked", "disabled").OnElements("input")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^language-[\w+#-]+$`)).OnElements("code")
	p.AllowDataURIImages()
	return &Sanitizer{policy: p}
}

// Sanitize cleans htmlContent. Exact occurrences of trusted fragments are
// held aside and come back byte-identical.
func (s *Sanitizer) Sanitize(htmlContent string, trusted []string) string {
	var held shield
	htmlContent = held.holdAll(htmlContent, trusted)
	return held.release(s.policy.Sanitize(htmlContent))
}
