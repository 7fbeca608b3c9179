package syncer

import (
	"context"
	"testing"
	"time"
)

func TestNewPacerZeroIntervalNeverBlocks(t *testing.T) {
	pacer := NewPacer(0)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 100; i++ {
		if err := pacer.Wait(ctx); err != nil {
			t.Fatalf("unexpected wait error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Fatalf("noop pacer blocked for %s", elapsed)
	}
}

func TestPacerSpacesCalls(t *testing.T) {
	pacer := NewPacer(30 * time.Millisecond)
	ctx := context.Background()

	// burst of one: the first call is free
	start := time.Now()
	if err := pacer.Wait(ctx); err != nil {
		t.Fatalf("first wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 20*time.Millisecond {
		t.Fatalf("first wait should be immediate, took %s", elapsed)
	}

	start = time.Now()
	if err := pacer.Wait(ctx); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
		t.Fatalf("second wait should be paced, took %s", elapsed)
	}
}

func TestPacerHonorsCancellation(t *testing.T) {
	pacer := NewPacer(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	if err := pacer.Wait(ctx); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	cancel()
	if err := pacer.Wait(ctx); err == nil {
		t.Fatal("expected error from canceled context")
	}
}
