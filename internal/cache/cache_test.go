package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MileWhile/Auramax/internal/chunker"
)

func TestGetOrCompute_MissThenHit(t *testing.T) {
	c := New()

	computed := 0
	compute := func() (*Entry, error) {
		computed++
		return &Entry{
			DocumentName: "doc.txt",
			Chunks:       []chunker.Chunk{{Index: 0, Text: "hello"}},
		}, nil
	}

	entry, hit, err := c.GetOrCompute("fp-1", compute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hit {
		t.Error("first call must be a miss")
	}
	if entry.DocumentName != "doc.txt" {
		t.Errorf("unexpected entry %+v", entry)
	}

	entry2, hit, err := c.GetOrCompute("fp-1", compute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hit {
		t.Error("second call must be a hit")
	}
	if entry2 != entry {
		t.Error("hit must return the stored entry")
	}
	if computed != 1 {
		t.Errorf("compute ran %d times, want 1", computed)
	}
}

func TestGetOrCompute_SingleFlight(t *testing.T) {
	c := New()

	var computations atomic.Int32
	gate := make(chan struct{})
	compute := func() (*Entry, error) {
		computations.Add(1)
		<-gate // hold all concurrent callers in one flight
		return &Entry{DocumentName: "shared.txt"}, nil
	}

	const callers = 16
	var wg sync.WaitGroup
	results := make([]*Entry, callers)
	started := make(chan struct{}, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			started <- struct{}{}
			entry, _, err := c.GetOrCompute("fp-shared", compute)
			if err != nil {
				t.Errorf("caller %d: %v", i, err)
				return
			}
			results[i] = entry
		}(i)
	}

	for i := 0; i < callers; i++ {
		<-started
	}
	close(gate)
	wg.Wait()

	if n := computations.Load(); n != 1 {
		t.Errorf("compute ran %d times for concurrent callers, want 1", n)
	}
	for i, e := range results {
		if e == nil || e.DocumentName != "shared.txt" {
			t.Errorf("caller %d got %+v", i, e)
		}
	}
}

func TestGetOrCompute_SharedFlightReportsHit(t *testing.T) {
	c := New()

	computing := make(chan struct{})
	gate := make(chan struct{})

	var execHit, sharerHit bool
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, hit, err := c.GetOrCompute("fp-join", func() (*Entry, error) {
			close(computing)
			<-gate
			return &Entry{DocumentName: "joined.txt"}, nil
		})
		if err != nil {
			t.Errorf("executing caller: %v", err)
		}
		execHit = hit
	}()

	<-computing // the flight is now in progress
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, hit, err := c.GetOrCompute("fp-join", func() (*Entry, error) {
			t.Error("sharer must not run its own compute")
			return nil, nil
		})
		if err != nil {
			t.Errorf("sharing caller: %v", err)
		}
		sharerHit = hit
	}()

	// Give the sharer a moment to join the flight before releasing it.
	time.Sleep(20 * time.Millisecond)
	close(gate)
	wg.Wait()

	if execHit {
		t.Error("the caller that ran the compute must report a miss")
	}
	if !sharerHit {
		t.Error("a caller that reused an in-flight computation must report a hit")
	}
}

func TestGetOrCompute_ErrorNotCached(t *testing.T) {
	c := New()

	calls := 0
	failing := func() (*Entry, error) {
		calls++
		return nil, errors.New("boom")
	}

	if _, _, err := c.GetOrCompute("fp-err", failing); err == nil {
		t.Fatal("expected error")
	}
	if _, _, err := c.GetOrCompute("fp-err", failing); err == nil {
		t.Fatal("expected error on retry")
	}
	if calls != 2 {
		t.Errorf("failed compute ran %d times, want 2 (errors must not be cached)", calls)
	}
	if c.Len() != 0 {
		t.Errorf("cache holds %d entries after failures, want 0", c.Len())
	}
}

func TestGet_DistinctFingerprints(t *testing.T) {
	c := New()
	c.GetOrCompute("fp-a", func() (*Entry, error) { return &Entry{DocumentName: "a"}, nil })
	c.GetOrCompute("fp-b", func() (*Entry, error) { return &Entry{DocumentName: "b"}, nil })

	a, ok := c.Get("fp-a")
	if !ok || a.DocumentName != "a" {
		t.Errorf("fp-a lookup failed: %+v %v", a, ok)
	}
	b, ok := c.Get("fp-b")
	if !ok || b.DocumentName != "b" {
		t.Errorf("fp-b lookup failed: %+v %v", b, ok)
	}
	if _, ok := c.Get("fp-missing"); ok {
		t.Error("expected miss for unknown fingerprint")
	}
}
