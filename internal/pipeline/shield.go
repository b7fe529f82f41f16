package pipeline

import (
	"regexp"
	"strconv"
	"strings"
)

// Generated markup is parked behind Private Use Area tokens while later
// passes run, so nothing rescans or sanitizes code that is already final.
const (
	ShieldStartPlaceholder = "\uE002"
	ShieldEndPlaceholder   = "\uE003"
)

var shieldToken = regexp.MustCompile(ShieldStartPlaceholder + `(\d+)` + ShieldEndPlaceholder)

// shield holds finished markup fragments by index.
type shield struct {
	parts []string
}

// hold stores markup and returns its token.
func (s *shield) hold(markup string) string {
	s.parts = append(s.parts, markup)
	return ShieldStartPlaceholder + strconv.Itoa(len(s.parts)-1) + ShieldEndPlaceholder
}

// holdAll replaces every exact occurrence of each fragment with a token.
func (s *shield) holdAll(text string, fragments []string) string {
	for _, f := range fragments {
		if f == "" || !strings.Contains(text, f) {
			continue
		}
		text = strings.ReplaceAll(text, f, s.hold(f))
	}
	return text
}

// release swaps tokens back for their markup.
func (s *shield) release(text string) string {
	if len(s.parts) == 0 {
		return text
	}
	return shieldToken.ReplaceAllStringFunc(text, func(m string) string {
		i, err := strconv.Atoi(shieldToken.FindStringSubmatch(m)[1])
		if err != nil || i >= len(s.parts) {
			return m
		}
		return s.parts[i]
	})
}
