package parallel

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// =============================================================================
// WorkerPool Creation Tests
// =============================================================================

func TestWorkerPool_Create(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	if pool.Workers() != 4 {
		t.Errorf("Workers() = %d, want 4", pool.Workers())
	}
	if !pool.IsRunning() {
		t.Error("Pool should be running after creation")
	}
}

func TestWorkerPool_CreateZeroWorkers(t *testing.T) {
	pool := NewWorkerPool(0)
	defer pool.Close()

	expected := runtime.GOMAXPROCS(0)
	if pool.Workers() != expected {
		t.Errorf("Workers() = %d, want %d (GOMAXPROCS)", pool.Workers(), expected)
	}
}

// =============================================================================
// Submit / Call Tests
// =============================================================================

func TestWorkerPool_Submit(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	done := make(chan struct{})
	if !pool.Submit(func() { close(done) }) {
		t.Fatal("Submit() = false on a running pool")
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("submitted work did not run")
	}
}

func TestWorkerPool_Submit_Nil(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	if pool.Submit(nil) {
		t.Error("Submit(nil) = true, want false")
	}
}

func TestWorkerPool_Call(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	boom := errors.New("boom")
	if err := pool.Call(context.Background(), func() error { return nil }); err != nil {
		t.Errorf("Call() = %v, want nil", err)
	}
	if err := pool.Call(context.Background(), func() error { return boom }); !errors.Is(err, boom) {
		t.Errorf("Call() = %v, want %v", err, boom)
	}
}

func TestWorkerPool_CallContextDone(t *testing.T) {
	pool := NewWorkerPool(1)
	defer pool.Close()

	release := make(chan struct{})
	pool.Submit(func() { <-release })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := pool.Call(ctx, func() error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Call() = %v, want context.Canceled", err)
	}
	close(release)
}

func TestWorkerPool_CallAfterClose(t *testing.T) {
	pool := NewWorkerPool(1)
	pool.Close()

	ran := false
	err := pool.Call(context.Background(), func() error {
		ran = true
		return nil
	})
	if !errors.Is(err, ErrClosed) {
		t.Errorf("Call() = %v, want ErrClosed", err)
	}
	if ran {
		t.Error("work ran on a closed pool")
	}
	if pool.Submit(func() {}) {
		t.Error("Submit() = true on a closed pool")
	}
}

// =============================================================================
// Single Worker (binding actor) Tests
// =============================================================================

func TestWorkerPool_SingleWorkerPreservesOrder(t *testing.T) {
	pool := NewWorkerPool(1)
	defer pool.Close()

	var mu sync.Mutex
	var order []int

	var wg sync.WaitGroup
	wg.Add(50)
	for i := range 50 {
		pool.Submit(func() {
			defer wg.Done()
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})
	}
	wg.Wait()

	for i, v := range order {
		if v != i {
			t.Fatalf("order[%d] = %d, want %d", i, v, i)
		}
	}
}

func TestWorkerPool_SingleWorkerNeverOverlaps(t *testing.T) {
	pool := NewWorkerPool(1)
	defer pool.Close()

	var inFlight, maxInFlight atomic.Int32
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = pool.Call(context.Background(), func() error {
				n := inFlight.Add(1)
				for {
					m := maxInFlight.Load()
					if n <= m || maxInFlight.CompareAndSwap(m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				inFlight.Add(-1)
				return nil
			})
		}()
	}
	wg.Wait()

	if maxInFlight.Load() != 1 {
		t.Errorf("max in-flight = %d, want 1", maxInFlight.Load())
	}
}

// =============================================================================
// Close Tests
// =============================================================================

func TestWorkerPool_CloseIdempotent(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Close()
	pool.Close()

	if pool.IsRunning() {
		t.Error("Pool should not be running after Close")
	}
}

func TestWorkerPool_CloseRunsPendingWork(t *testing.T) {
	pool := NewWorkerPool(1)

	var counter atomic.Int64
	release := make(chan struct{})
	pool.Submit(func() { <-release })
	for range 5 {
		pool.Submit(func() { counter.Add(1) })
	}
	if pool.QueuedWork() == 0 {
		t.Error("QueuedWork() = 0 with blocked worker and pending work")
	}

	close(release)
	pool.Close()

	if counter.Load() != 5 {
		t.Errorf("counter = %d, want 5", counter.Load())
	}
}

func TestWorkerPool_NoGoroutineLeak(t *testing.T) {
	before := runtime.NumGoroutine()

	for range 10 {
		pool := NewWorkerPool(4)
		_ = pool.Call(context.Background(), func() error { return nil })
		pool.Close()
	}

	deadline := time.Now().Add(2 * time.Second)
	for runtime.NumGoroutine() > before+2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if after := runtime.NumGoroutine(); after > before+2 {
		t.Errorf("goroutines: before=%d after=%d", before, after)
	}
}
