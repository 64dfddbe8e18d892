package gate

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestAcquireRespectsBound(t *testing.T) {
	g := New(3)
	ctx := context.Background()

	var running atomic.Int32
	var peak atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := g.Acquire(ctx); err != nil {
				t.Errorf("acquire: %v", err)
				return
			}
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			g.Release()
		}()
	}
	wg.Wait()

	if p := peak.Load(); p > 3 {
		t.Fatalf("observed %d concurrent holders, bound is 3", p)
	}
}

func TestAcquireHonorsContext(t *testing.T) {
	g := New(1)
	if err := g.Acquire(context.Background()); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := g.Acquire(ctx); err == nil {
		t.Fatal("expected context error while gate is full")
	}
	g.Release()
}

func TestRaisingLimitWakesWaiters(t *testing.T) {
	g := New(1)
	ctx := context.Background()
	if err := g.Acquire(ctx); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	admitted := make(chan struct{})
	go func() {
		if err := g.Acquire(ctx); err != nil {
			t.Errorf("acquire: %v", err)
			return
		}
		close(admitted)
	}()

	time.Sleep(10 * time.Millisecond)
	if err := g.SetLimit(2); err != nil {
		t.Fatalf("set limit: %v", err)
	}

	select {
	case <-admitted:
	case <-time.After(time.Second):
		t.Fatal("waiter not admitted after limit raise")
	}
	g.Release()
	g.Release()
}

func TestLoweringLimitDoesNotInterruptHolders(t *testing.T) {
	g := New(4)
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		if err := g.Acquire(ctx); err != nil {
			t.Fatalf("acquire: %v", err)
		}
	}

	if err := g.SetLimit(1); err != nil {
		t.Fatalf("set limit: %v", err)
	}
	snap := g.Snapshot()
	if snap.Running != 4 || snap.Limit != 1 {
		t.Fatalf("snapshot = %+v, want running 4 limit 1", snap)
	}

	// New work waits until occupancy falls below the lowered bound.
	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := g.Acquire(waitCtx); err == nil {
		t.Fatal("expected acquire to block under lowered limit")
	}

	for i := 0; i < 4; i++ {
		g.Release()
	}
	if err := g.Acquire(ctx); err != nil {
		t.Fatalf("acquire after drain: %v", err)
	}
	g.Release()
}

func TestSetLimitValidatesRange(t *testing.T) {
	g := New(4)
	if err := g.SetLimit(0); err == nil {
		t.Fatal("expected error for limit 0")
	}
	if err := g.SetLimit(11); err == nil {
		t.Fatal("expected error for limit 11")
	}
	if got := g.Limit(); got != 4 {
		t.Fatalf("limit changed to %d after rejected updates", got)
	}
}
