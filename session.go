package woniuimport

import "sync"

// Session holds the most recent conversion result. Each import begins a new
// generation; only the latest begun generation may commit, so a slow
// conversion finishing after a newer one started is dropped.
type Session struct {
	mu   sync.Mutex
	gen  uint64
	html string
	has  bool
}

// Begin starts a new generation and returns it.
func (s *Session) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	return s.gen
}

// Commit stores html as the result if gen is still the latest generation.
// It reports whether the result was stored.
func (s *Session) Commit(gen uint64, html string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return false
	}
	s.html, s.has = html, true
	return true
}

// Result returns the stored HTML and whether there is one.
func (s *Session) Result() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.html, s.has
}

// Clear discards the stored result. In-flight generations may still commit.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.html, s.has = "", false
}
