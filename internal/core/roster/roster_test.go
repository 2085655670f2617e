package roster

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ogurasousui/codex-face-attendance/internal/core/face"
)

type stubClock struct {
	mu  sync.Mutex
	now time.Time
}

func (s *stubClock) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *stubClock) advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = s.now.Add(d)
}

type countingSource struct {
	calls     atomic.Int32
	err       error
	block     chan struct{}
	candidate []face.Candidate
}

func (s *countingSource) CachedDescriptors(ctx context.Context) ([]face.Candidate, error) {
	s.calls.Add(1)
	if s.block != nil {
		<-s.block
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.candidate, nil
}

func TestCache_ReusesSnapshotWithinTTL(t *testing.T) {
	t.Parallel()

	clk := &stubClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	src := &countingSource{candidate: []face.Candidate{{EmployeeID: "emp-1", Descriptor: face.Descriptor{1}}}}
	cache := NewCache(src, time.Minute, clk)

	for i := 0; i < 3; i++ {
		got, err := cache.Candidates(context.Background())
		if err != nil {
			t.Fatalf("Candidates returned error: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("expected 1 candidate, got %d", len(got))
		}
	}
	if src.calls.Load() != 1 {
		t.Fatalf("expected single load, got %d", src.calls.Load())
	}

	clk.advance(2 * time.Minute)
	if _, err := cache.Candidates(context.Background()); err != nil {
		t.Fatalf("Candidates returned error: %v", err)
	}
	if src.calls.Load() != 2 {
		t.Fatalf("expected reload after ttl, got %d loads", src.calls.Load())
	}
}

func TestCache_Invalidate(t *testing.T) {
	t.Parallel()

	clk := &stubClock{now: time.Now().UTC()}
	src := &countingSource{}
	cache := NewCache(src, time.Hour, clk)

	if _, err := cache.Candidates(context.Background()); err != nil {
		t.Fatalf("Candidates returned error: %v", err)
	}
	cache.Invalidate()
	if _, err := cache.Candidates(context.Background()); err != nil {
		t.Fatalf("Candidates returned error: %v", err)
	}
	if src.calls.Load() != 2 {
		t.Fatalf("expected reload after invalidate, got %d loads", src.calls.Load())
	}
}

func TestCache_CoalescesConcurrentLoads(t *testing.T) {
	t.Parallel()

	src := &countingSource{block: make(chan struct{})}
	cache := NewCache(src, time.Hour, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Candidates(context.Background()); err != nil {
				t.Errorf("Candidates returned error: %v", err)
			}
		}()
	}

	// 全員が singleflight に入るまで待ってから解放する
	time.Sleep(50 * time.Millisecond)
	close(src.block)
	wg.Wait()

	if src.calls.Load() != 1 {
		t.Fatalf("expected one coalesced load, got %d", src.calls.Load())
	}
}

func TestCache_PropagatesSourceError(t *testing.T) {
	t.Parallel()

	boom := errors.New("db down")
	cache := NewCache(&countingSource{err: boom}, time.Minute, nil)

	if _, err := cache.Candidates(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected source error, got %v", err)
	}
}

type gatedSource struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	result  []face.Candidate
}

func (s *gatedSource) CachedDescriptors(ctx context.Context) ([]face.Candidate, error) {
	if s.calls.Add(1) == 1 {
		close(s.started)
	}
	select {
	case <-s.release:
		return s.result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestCache_CancelledCallerDoesNotFailSharedLoad(t *testing.T) {
	t.Parallel()

	src := &gatedSource{
		started: make(chan struct{}),
		release: make(chan struct{}),
		result:  []face.Candidate{{EmployeeID: "emp-1", Descriptor: face.Descriptor{1}}},
	}
	cache := NewCache(src, time.Minute, nil)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := cache.Candidates(ctxA)
		errA <- err
	}()
	<-src.started

	type result struct {
		got []face.Candidate
		err error
	}
	resB := make(chan result, 1)
	go func() {
		got, err := cache.Candidates(context.Background())
		resB <- result{got: got, err: err}
	}()

	time.Sleep(20 * time.Millisecond)
	cancelA()

	select {
	case err := <-errA:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected cancelled caller to get context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting for the shared load")
	}

	close(src.release)

	select {
	case r := <-resB:
		if r.err != nil {
			t.Fatalf("expected live caller to succeed, got %v", r.err)
		}
		if len(r.got) != 1 || r.got[0].EmployeeID != "emp-1" {
			t.Fatalf("unexpected candidates: %+v", r.got)
		}
	case <-time.After(time.Second):
		t.Fatal("live caller did not receive the shared load")
	}

	if n := src.calls.Load(); n != 1 {
		t.Fatalf("expected a single shared load, got %d", n)
	}
}

func TestCache_LoadTimeoutBoundsSharedLoad(t *testing.T) {
	t.Parallel()

	src := &gatedSource{started: make(chan struct{}), release: make(chan struct{})}
	cache := NewCache(src, time.Minute, nil, WithLoadTimeout(20*time.Millisecond))

	if _, err := cache.Candidates(context.Background()); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected load to be bounded by its own timeout, got %v", err)
	}
}
