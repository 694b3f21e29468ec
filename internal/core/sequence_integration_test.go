package core_test

import (
	"context"
	"sync"
	"testing"

	"boq-procurement/internal/core"
)

func TestSequence_FirstIssueAndPeek(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewSequenceService(pool)
	ctx := context.Background()

	next, err := svc.PeekNext(ctx, "HR")
	if err != nil {
		t.Fatalf("PeekNext failed: %v", err)
	}
	if next != 1 {
		t.Errorf("PeekNext on fresh location = %d, want 1", next)
	}

	serial, err := svc.Next(ctx, "HR")
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if serial != 1 {
		t.Errorf("first serial = %d, want 1", serial)
	}

	// Peeking never consumes a serial.
	if _, err := svc.PeekNext(ctx, "HR"); err != nil {
		t.Fatalf("PeekNext failed: %v", err)
	}
	serial, err = svc.Next(ctx, "HR")
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if serial != 2 {
		t.Errorf("second serial = %d, want 2", serial)
	}
}

func TestSequence_LocationsAreIndependent(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewSequenceService(pool)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Next(ctx, "HR"); err != nil {
			t.Fatalf("Next(HR) failed: %v", err)
		}
	}
	serial, err := svc.Next(ctx, "MH")
	if err != nil {
		t.Fatalf("Next(MH) failed: %v", err)
	}
	if serial != 1 {
		t.Errorf("MH serial = %d, want 1 (independent of HR)", serial)
	}
}

func TestSequence_ConcurrentIssueIsGapless(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewSequenceService(pool)
	ctx := context.Background()

	const workers = 10
	serials := make(chan int64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			serial, err := svc.Next(ctx, "HR")
			if err != nil {
				t.Errorf("concurrent Next failed: %v", err)
				return
			}
			serials <- serial
		}()
	}
	wg.Wait()
	close(serials)

	seen := make(map[int64]bool)
	for s := range serials {
		if seen[s] {
			t.Errorf("serial %d issued twice", s)
		}
		seen[s] = true
	}
	for want := int64(1); want <= workers; want++ {
		if !seen[want] {
			t.Errorf("serial %d never issued (gap)", want)
		}
	}
}
