package telemetry

// History is a bounded record of population counts, oldest first.
type History struct {
	values []int
	start  int
	count  int
}

// NewHistory creates a history holding at most size values.
func NewHistory(size int) *History {
	if size < 1 {
		size = 50
	}
	return &History{values: make([]int, size)}
}

// Push appends a value, dropping the oldest when full.
func (h *History) Push(v int) {
	n := len(h.values)
	if h.count < n {
		h.values[(h.start+h.count)%n] = v
		h.count++
		return
	}
	h.values[h.start] = v
	h.start = (h.start + 1) % n
}

// Values returns a copy of the recorded values, oldest first.
func (h *History) Values() []int {
	out := make([]int, h.count)
	for i := range out {
		out[i] = h.values[(h.start+i)%len(h.values)]
	}
	return out
}

// Len returns the number of recorded values.
func (h *History) Len() int { return h.count }

// Cap returns the maximum number of values kept.
func (h *History) Cap() int { return len(h.values) }

// Max returns the largest recorded value, or 0 when empty.
func (h *History) Max() int {
	m := 0
	for i := 0; i < h.count; i++ {
		m = max(m, h.values[(h.start+i)%len(h.values)])
	}
	return m
}

// Reset empties the history.
func (h *History) Reset() {
	h.start, h.count = 0, 0
}
