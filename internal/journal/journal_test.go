package journal

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestEmitWritesValidJSONL(t *testing.T) {
	var buf bytes.Buffer
	j := New(&buf)

	j.Emit(Event{Kind: KindRequest, Method: "GET", Path: "/inventory/", Status: 200})
	j.Close()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["kind"] != "api.request" {
		t.Errorf("expected kind=api.request, got %v", decoded["kind"])
	}
	if decoded["level"] != "info" {
		t.Errorf("expected level=info, got %v", decoded["level"])
	}
	if decoded["status"] != float64(200) {
		t.Errorf("expected status=200, got %v", decoded["status"])
	}
}

func TestEmitDefaults(t *testing.T) {
	var buf bytes.Buffer
	j := New(&buf)

	before := time.Now()
	j.Emit(Event{Kind: KindRequestError, Err: "boom"})
	j.Close()
	after := time.Now()

	var ev Event
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.Time.Before(before) || ev.Time.After(after) {
		t.Errorf("time %v not in [%v, %v]", ev.Time, before, after)
	}
	if ev.Level != LevelError {
		t.Errorf("an event with Err should default to error, got %q", ev.Level)
	}
	if len(ev.SessionID) != 16 || ev.SessionID != j.SessionID() {
		t.Errorf("unexpected session id %q", ev.SessionID)
	}
}

func TestDurToMs(t *testing.T) {
	var buf bytes.Buffer
	j := New(&buf)

	j.Emit(Event{Kind: KindRequest, Dur: 1500 * time.Millisecond})
	j.Close()

	var decoded map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["dur_ms"] != float64(1500) {
		t.Errorf("expected dur_ms=1500, got %v", decoded["dur_ms"])
	}
}

func TestOmitempty(t *testing.T) {
	var buf bytes.Buffer
	j := New(&buf)

	j.Emit(Event{Kind: KindLogin})
	j.Close()

	line := strings.TrimSpace(buf.String())
	for _, field := range []string{"dur_ms", "count", "rid", "method", "path", "status", "resource", "err", "msg"} {
		if strings.Contains(line, `"`+field+`"`) {
			t.Errorf("expected field %q to be omitted, but found in: %s", field, line)
		}
	}
}

func TestConcurrentEmit(t *testing.T) {
	var buf bytes.Buffer
	j := New(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.Emit(Event{Kind: KindRequest})
		}()
	}
	wg.Wait()
	j.Close()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 100 {
		t.Errorf("expected 100 lines, got %d", len(lines))
	}
}

func TestCloseIdempotentAndDropsLateEvents(t *testing.T) {
	var buf bytes.Buffer
	j := New(&buf)

	j.Emit(Event{Kind: KindLogin})
	if err := j.Close(); err != nil {
		t.Fatal(err)
	}
	if err := j.Close(); err != nil {
		t.Fatal(err)
	}
	j.Emit(Event{Kind: KindLogout})

	if got := strings.Count(buf.String(), "\n"); got != 1 {
		t.Errorf("expected 1 line, got %d", got)
	}
	if j.Dropped() != 1 {
		t.Errorf("expected 1 dropped event, got %d", j.Dropped())
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteErrorCountsAsDropped(t *testing.T) {
	j := New(failWriter{})
	j.Emit(Event{Kind: KindLogin})
	j.Close()
	if j.Dropped() != 1 {
		t.Errorf("expected 1 dropped event, got %d", j.Dropped())
	}
}

type blockingWriter struct{ release chan struct{} }

func (w blockingWriter) Write(p []byte) (int, error) {
	<-w.release
	return len(p), nil
}

func TestEmitDropsWhenFull(t *testing.T) {
	w := blockingWriter{release: make(chan struct{})}
	j := New(w)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range chanSize + 10 {
			j.Emit(Event{Kind: KindRequest})
		}
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Emit blocked on a full buffer")
	}

	// The drain goroutine may hold one event in Write.
	if d := j.Dropped(); d < 9 {
		t.Errorf("expected at least 9 dropped events, got %d", d)
	}
	close(w.release)
	j.Close()
}

func TestRingAttached(t *testing.T) {
	j := Discard()
	ring := NewRing(4)
	j.SetRing(ring)

	j.Emit(Event{Kind: KindDelete, Resource: "inventory", Count: 2})
	j.Close()

	got := ring.Last(1)
	if len(got) != 1 || got[0].Resource != "inventory" || got[0].Count != 2 {
		t.Fatalf("ring did not receive the event: %+v", got)
	}
}

func TestOpenAppends(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 2; i++ {
		j, err := Open(dir)
		if err != nil {
			t.Fatal(err)
		}
		j.Emit(Event{Kind: KindLogin, Count: i + 1})
		if err := j.Close(); err != nil {
			t.Fatal(err)
		}
	}

	f, err := os.Open(Path(dir))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	events, err := Tail(f, 10, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 || events[0].Count != 1 || events[1].Count != 2 {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestTailFilters(t *testing.T) {
	var buf bytes.Buffer
	j := New(&buf)
	j.Emit(Event{Kind: KindRequest, Path: "/inventory/"})
	j.Emit(Event{Kind: KindDelete, Resource: "inventory", Count: 1})
	j.Emit(Event{Kind: KindDelete, Resource: "users", Count: 2})
	j.Emit(Event{Kind: KindRequestError, Err: "timeout"})
	j.Close()
	buf.WriteString("not json\n")

	tests := []struct {
		name   string
		n      int
		filter Filter
		want   []Kind
	}{
		{"all", 10, Filter{}, []Kind{KindRequest, KindDelete, KindDelete, KindRequestError}},
		{"last two", 2, Filter{}, []Kind{KindDelete, KindRequestError}},
		{"kind prefix", 10, Filter{Kind: "bulk"}, []Kind{KindDelete, KindDelete}},
		{"resource", 10, Filter{Resource: "users"}, []Kind{KindDelete}},
		{"min level", 10, Filter{Level: LevelWarn}, []Kind{KindRequestError}},
		{"zero", 0, Filter{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := Tail(bytes.NewReader(buf.Bytes()), tt.n, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			var kinds []Kind
			for _, e := range events {
				kinds = append(kinds, e.Kind)
			}
			if len(kinds) != len(tt.want) {
				t.Fatalf("got %v, want %v", kinds, tt.want)
			}
			for i := range kinds {
				if kinds[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", kinds, tt.want)
				}
			}
		})
	}
}

func TestFormat(t *testing.T) {
	e := Event{
		Time:   time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
		Level:  LevelError,
		Kind:   KindRequestError,
		Method: "GET",
		Path:   "/orders/",
		Status: 502,
		Dur:    12 * time.Millisecond,
		Err:    "bad gateway",
	}
	got := Format(e)
	for _, want := range []string{"09:30:00.000", "ERROR", "api.error", "GET /orders/", "502", "(12.0ms)", "err=bad gateway"} {
		if !strings.Contains(got, want) {
			t.Errorf("Format() = %q, missing %q", got, want)
		}
	}
}
