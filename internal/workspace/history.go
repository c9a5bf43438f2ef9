package workspace

// History is a bounded ring of executed command lines, newest last. It is
// in-memory only; nothing persists across restarts.
type History struct {
	entries []string
	cap     int
}

// DefaultHistorySize bounds the ring when the config does not say otherwise.
const DefaultHistorySize = 512

// NewHistory creates a ring holding at most capacity entries.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &History{cap: capacity}
}

// Push records a command line. Consecutive duplicates collapse.
func (h *History) Push(line string) {
	if line == "" {
		return
	}
	if n := len(h.entries); n > 0 && h.entries[n-1] == line {
		return
	}
	h.entries = append(h.entries, line)
	if len(h.entries) > h.cap {
		h.entries = h.entries[len(h.entries)-h.cap:]
	}
}

// Len returns the number of stored entries.
func (h *History) Len() int { return len(h.entries) }

// At returns the i-th entry from the end: At(0) is the most recent.
func (h *History) At(i int) (string, bool) {
	if i < 0 || i >= len(h.entries) {
		return "", false
	}
	return h.entries[len(h.entries)-1-i], true
}

// WithPrefix returns entries starting with prefix, most recent first.
func (h *History) WithPrefix(prefix string) []string {
	var out []string
	for i := len(h.entries) - 1; i >= 0; i-- {
		if prefix == "" || len(h.entries[i]) >= len(prefix) && h.entries[i][:len(prefix)] == prefix {
			out = append(out, h.entries[i])
		}
	}
	return out
}
