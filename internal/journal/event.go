// Package journal records what stockroom did: API requests, bulk actions and
// session changes.
//
// Events are typed structs serialized as JSONL lines. The Journal writes
// events asynchronously via a buffered channel and a background drain
// goroutine. An optional Ring keeps the most recent events in memory for the
// TUI's activity pane.
package journal

import (
	"encoding/json"
	"time"
)

// Level defines event severity for filtering.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Rank orders levels for minimum-level filtering. Unknown levels rank as
// debug.
func (l Level) Rank() int {
	switch l {
	case LevelInfo:
		return 1
	case LevelWarn:
		return 2
	case LevelError:
		return 3
	default:
		return 0
	}
}

// Kind identifies the category of an event.
// Dot-delimited: "<subsystem>.<action>".
type Kind string

const (
	KindRequest      Kind = "api.request"
	KindRequestError Kind = "api.error"

	KindDelete Kind = "bulk.delete"
	KindExport Kind = "bulk.export"
	KindEdit   Kind = "record.edit"

	KindLogin  Kind = "session.login"
	KindLogout Kind = "session.logout"
)

// Event is one journal record. Every field except Kind and Time is optional.
type Event struct {
	Time      time.Time     `json:"t"`
	Level     Level         `json:"level,omitempty"`
	Kind      Kind          `json:"kind"`
	SessionID string        `json:"session_id,omitempty"` // same for one process run
	RequestID string        `json:"rid,omitempty"`
	Method    string        `json:"method,omitempty"`
	Path      string        `json:"path,omitempty"`
	Status    int           `json:"status,omitempty"`
	Resource  string        `json:"resource,omitempty"`
	Count     int           `json:"count,omitempty"`
	Dur       time.Duration `json:"-"`
	DurMs     float64       `json:"dur_ms,omitempty"` // computed from Dur at marshal time
	Err       string        `json:"err,omitempty"`
	Msg       string        `json:"msg,omitempty"`
}

// MarshalJSON converts Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type alias Event
	a := struct {
		alias
	}{alias: alias(e)}
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}

// Recorder accepts events. *Journal satisfies it; a nil Recorder is valid
// wherever one is optional.
type Recorder interface {
	Emit(Event)
}
