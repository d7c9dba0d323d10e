package journal

import (
	"sync"
	"testing"
)

func TestRingLast(t *testing.T) {
	r := NewRing(8)
	for i := 0; i < 8; i++ {
		r.Push(Event{Kind: KindRequest, Count: i})
	}

	last3 := r.Last(3)
	if len(last3) != 3 {
		t.Fatalf("expected 3, got %d", len(last3))
	}
	for i, e := range last3 {
		if want := i + 5; e.Count != want {
			t.Errorf("last3[%d].Count=%d, want %d", i, e.Count, want)
		}
	}
}

func TestRingWrapAround(t *testing.T) {
	r := NewRing(4)
	for i := 0; i < 6; i++ {
		r.Push(Event{Kind: KindRequest, Count: i})
	}
	// the two oldest were evicted
	got := r.Last(4)
	for i, e := range got {
		if want := i + 2; e.Count != want {
			t.Errorf("got[%d].Count=%d, want %d", i, e.Count, want)
		}
	}
	if r.Len() != 4 || r.Cap() != 4 {
		t.Errorf("Len=%d Cap=%d, want 4/4", r.Len(), r.Cap())
	}
}

func TestRingEdges(t *testing.T) {
	r := NewRing(0)
	if r.Cap() != DefaultRingSize {
		t.Errorf("Cap=%d, want %d", r.Cap(), DefaultRingSize)
	}
	if r.Last(5) != nil {
		t.Error("empty ring should return nil")
	}
	r.Push(Event{Kind: KindLogin})
	if r.Last(0) != nil {
		t.Error("Last(0) should return nil")
	}
	if got := r.Last(100); len(got) != 1 {
		t.Errorf("expected 1, got %d", len(got))
	}
}

func TestRingErrors(t *testing.T) {
	r := NewRing(3)
	r.Push(Event{Level: LevelError})
	r.Push(Event{Level: LevelInfo})
	r.Push(Event{Level: LevelError})
	r.Push(Event{Level: LevelInfo}) // evicts the first error
	if got := r.Errors(); got != 1 {
		t.Errorf("Errors()=%d, want 1", got)
	}
}

func TestRingConcurrent(t *testing.T) {
	r := NewRing(64)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for k := 0; k < 100; k++ {
				r.Push(Event{Kind: KindRequest})
			}
		}()
		go func() {
			defer wg.Done()
			for k := 0; k < 100; k++ {
				_ = r.Last(10)
			}
		}()
	}
	wg.Wait()
	if r.Len() != 64 {
		t.Errorf("Len=%d, want 64", r.Len())
	}
}

func TestRingMatching(t *testing.T) {
	r := NewRing(5)
	r.Push(Event{Kind: KindRequest, Resource: "users", Count: 0})
	r.Push(Event{Kind: KindDelete, Resource: "users", Count: 1})
	r.Push(Event{Kind: KindRequest, Resource: "orders", Count: 2})
	r.Push(Event{Kind: KindDelete, Resource: "users", Count: 3})
	r.Push(Event{Kind: KindDelete, Resource: "orders", Count: 4})
	r.Push(Event{Kind: KindDelete, Resource: "users", Count: 5}) // evicts 0

	got := r.Matching(Filter{Kind: "bulk", Resource: "users"}, 2)
	if len(got) != 2 || got[0].Count != 3 || got[1].Count != 5 {
		t.Errorf("Matching = %+v, want counts 3 and 5", got)
	}
	if got := r.Matching(Filter{Kind: "api"}, 10); len(got) != 1 || got[0].Count != 2 {
		t.Errorf("api events = %+v, want only count 2", got)
	}
	if r.Matching(Filter{}, 0) != nil {
		t.Error("Matching with n=0 should return nil")
	}
}
