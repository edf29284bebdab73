package components

// ActionRing is a fixed-capacity ring of the most recent actions.
type ActionRing struct {
	buf  []Action
	next int
	n    int
}

// NewActionRing creates a ring holding up to capacity actions.
func NewActionRing(capacity int) ActionRing {
	if capacity < 1 {
		capacity = 1
	}
	return ActionRing{buf: make([]Action, capacity)}
}

// Push records an action, overwriting the oldest when full.
func (r *ActionRing) Push(a Action) {
	r.buf[r.next] = a
	r.next = (r.next + 1) % len(r.buf)
	if r.n < len(r.buf) {
		r.n++
	}
}

// Len returns the number of stored actions.
func (r *ActionRing) Len() int { return r.n }

// Full reports whether the ring holds capacity actions.
func (r *ActionRing) Full() bool { return r.n == len(r.buf) }

// Last returns the most recent action.
func (r *ActionRing) Last() (Action, bool) {
	if r.n == 0 {
		return 0, false
	}
	return r.buf[(r.next-1+len(r.buf))%len(r.buf)], true
}

// Looping reports whether the ring is full of one repeated action.
func (r *ActionRing) Looping() (Action, bool) {
	if !r.Full() {
		return 0, false
	}
	first := r.buf[0]
	for _, a := range r.buf[1:] {
		if a != first {
			return 0, false
		}
	}
	return first, true
}
