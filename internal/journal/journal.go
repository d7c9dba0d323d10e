package journal

// Goroutine safety:
// The drain goroutine is the sole reader of j.ch and the sole writer to j.w.
// j.mu protects only the ring pointer. The ring's own mutex covers Push and
// reads; drain releases j.mu before calling Push.

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/abelbrown/stockroom/internal/logging"
)

// FileName is the journal file inside the data directory.
const FileName = "activity.jsonl"

// chanSize is the capacity of the async write channel.
const chanSize = 1024

type entry struct {
	data []byte
	ev   Event
}

// Journal serializes events as JSONL via an async background writer.
type Journal struct {
	mu        sync.Mutex
	ring      *Ring
	sessionID string
	ch        chan entry
	w         io.Writer
	closer    io.Closer
	dropped   atomic.Uint64 // full channel, encode failure or write error
	closed    atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a Journal writing JSONL to w. Call Close to flush and stop.
func New(w io.Writer) *Journal {
	j := &Journal{
		sessionID: strings.ReplaceAll(uuid.NewString(), "-", "")[:16],
		ch:        make(chan entry, chanSize),
		w:         w,
		done:      make(chan struct{}),
	}
	go j.drain()
	return j
}

// Open appends to <dataDir>/activity.jsonl.
func Open(dataDir string) (*Journal, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	f, err := os.OpenFile(Path(dataDir), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	j := New(f)
	j.closer = f
	return j, nil
}

// Path returns the journal file for dataDir.
func Path(dataDir string) string {
	return filepath.Join(dataDir, FileName)
}

// Discard returns a Journal that drops output. Close it like any other.
func Discard() *Journal {
	return New(io.Discard)
}

func (j *Journal) drain() {
	defer close(j.done)
	for e := range j.ch {
		if _, err := j.w.Write(e.data); err != nil {
			j.dropped.Add(1)
		}

		j.mu.Lock()
		ring := j.ring
		j.mu.Unlock()

		if ring != nil {
			ring.Push(e.ev)
		}
	}
}

// Emit queues e for writing. It sets Time (if zero), Level (if empty) and
// SessionID. Never blocks: when the channel is full or the journal is
// closed the event is dropped and counted.
func (j *Journal) Emit(e Event) {
	defer func() {
		// Close raced the closed check.
		if recover() != nil {
			j.dropped.Add(1)
		}
	}()

	if j.closed.Load() {
		j.dropped.Add(1)
		return
	}

	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	if e.Level == "" {
		e.Level = LevelInfo
		if e.Err != "" {
			e.Level = LevelError
		}
	}
	e.SessionID = j.sessionID

	data, err := json.Marshal(e)
	if err != nil {
		j.dropped.Add(1)
		return
	}
	data = append(data, '\n')

	select {
	case j.ch <- entry{data: data, ev: e}:
	default:
		j.dropped.Add(1)
	}
}

// SetRing attaches a ring for live inspection.
func (j *Journal) SetRing(r *Ring) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ring = r
}

// SessionID identifies this process run in the journal.
func (j *Journal) SessionID() string { return j.sessionID }

// Dropped returns the number of events dropped since creation.
func (j *Journal) Dropped() uint64 {
	return j.dropped.Load()
}

// Close flushes pending events and stops the drain goroutine. Idempotent.
func (j *Journal) Close() error {
	var err error
	j.closeOnce.Do(func() {
		j.closed.Store(true)
		close(j.ch)
		<-j.done

		if d := j.dropped.Load(); d > 0 {
			logging.Warn("journal events dropped", "count", d, "session", j.sessionID)
		}
		if j.closer != nil {
			err = j.closer.Close()
		}
	})
	return err
}

// Emit sends e to r if r is non-nil.
func Emit(r Recorder, e Event) {
	if r != nil {
		r.Emit(e)
	}
}
