package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Filter selects events when reading a journal back. Zero fields match
// everything.
type Filter struct {
	Kind     string // prefix, e.g. "bulk"
	Level    Level  // minimum level
	Resource string
	Session  string
}

// Match reports whether e passes f.
func (f Filter) Match(e Event) bool {
	if f.Kind != "" && !strings.HasPrefix(string(e.Kind), f.Kind) {
		return false
	}
	if f.Level != "" && e.Level.Rank() < f.Level.Rank() {
		return false
	}
	if f.Resource != "" && e.Resource != f.Resource {
		return false
	}
	if f.Session != "" && e.SessionID != f.Session {
		return false
	}
	return true
}

// Tail returns the last n events in r that match f, oldest first.
// Lines that are not valid events are skipped.
func Tail(r io.Reader, n int, f Filter) ([]Event, error) {
	if n <= 0 {
		return nil, nil
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)

	ring := NewRing(n)
	for scanner.Scan() {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var e Event
		if json.Unmarshal(raw, &e) != nil {
			continue
		}
		if f.Match(e) {
			ring.Push(e)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	return ring.Last(n), nil
}

// Format renders e as one human-readable line.
func Format(e Event) string {
	lvl := strings.ToUpper(string(e.Level))
	if lvl == "" {
		lvl = "?"
	}
	parts := []string{fmt.Sprintf("%s %-5s %-15s", e.Time.Format("15:04:05.000"), lvl, e.Kind)}

	if e.Method != "" {
		parts = append(parts, e.Method+" "+e.Path)
	}
	if e.Status != 0 {
		parts = append(parts, fmt.Sprintf("%d", e.Status))
	}
	if e.Resource != "" {
		parts = append(parts, "res="+e.Resource)
	}
	if e.Count > 0 {
		parts = append(parts, fmt.Sprintf("n=%d", e.Count))
	}
	ms := e.DurMs
	if ms == 0 && e.Dur > 0 {
		ms = float64(e.Dur) / float64(time.Millisecond)
	}
	if ms > 0 {
		parts = append(parts, fmt.Sprintf("(%.1fms)", ms))
	}
	if e.Msg != "" {
		parts = append(parts, e.Msg)
	}
	if e.Err != "" {
		parts = append(parts, "err="+e.Err)
	}
	return strings.Join(parts, " ")
}
