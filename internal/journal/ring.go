package journal

import (
	"slices"
	"sync"
)

// DefaultRingSize is the ring capacity the TUI activity pane uses.
const DefaultRingSize = 256

// Ring keeps the most recent events in memory for the activity pane. It is
// safe for concurrent use.
type Ring struct {
	mu   sync.Mutex
	buf  []Event
	next int  // slot the next Push writes
	full bool // buf has wrapped at least once
}

// NewRing creates a ring holding up to size events; size <= 0 means
// DefaultRingSize.
func NewRing(size int) *Ring {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Ring{buf: make([]Event, size)}
}

// Push records e, evicting the oldest event once the ring is full.
func (r *Ring) Push(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf[r.next] = e
	r.next++
	if r.next == len(r.buf) {
		r.next = 0
		r.full = true
	}
}

// Emit makes a Ring usable as a Recorder on its own.
func (r *Ring) Emit(e Event) { r.Push(e) }

// snapshot returns the buffered events oldest first. Callers hold r.mu.
func (r *Ring) snapshot() []Event {
	if !r.full {
		return append([]Event(nil), r.buf[:r.next]...)
	}
	out := make([]Event, 0, len(r.buf))
	out = append(out, r.buf[r.next:]...)
	return append(out, r.buf[:r.next]...)
}

// Last returns up to n of the newest events, oldest first, or nil when n <= 0
// or the ring is empty.
func (r *Ring) Last(n int) []Event {
	if n <= 0 {
		return nil
	}
	r.mu.Lock()
	all := r.snapshot()
	r.mu.Unlock()

	if len(all) == 0 {
		return nil
	}
	return all[max(0, len(all)-n):]
}

// Matching returns up to n of the newest events that pass f, oldest first.
func (r *Ring) Matching(f Filter, n int) []Event {
	if n <= 0 {
		return nil
	}
	r.mu.Lock()
	all := r.snapshot()
	r.mu.Unlock()

	var out []Event
	for i := len(all) - 1; i >= 0 && len(out) < n; i-- {
		if f.Match(all[i]) {
			out = append(out, all[i])
		}
	}
	slices.Reverse(out)
	return out
}

// Len returns how many events are buffered.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.full {
		return len(r.buf)
	}
	return r.next
}

// Cap returns the ring capacity.
func (r *Ring) Cap() int { return len(r.buf) }

// Errors counts buffered events at error level.
func (r *Ring) Errors() int {
	return len(r.Matching(Filter{Level: LevelError}, r.Cap()))
}
