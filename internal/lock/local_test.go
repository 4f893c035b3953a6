package lock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/shelter-inventory-service/internal/apperr"
)

func TestLocalLocker_MutualExclusion(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		inside  int
		maxSeen int
		mu      sync.Mutex
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(ctx, ItemKey("t1", "item-1"))
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
			release()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Errorf("expected at most one holder, saw %d", maxSeen)
	}
	if l.size() != 0 {
		t.Errorf("expected arena to be empty, has %d keys", l.size())
	}
}

func TestLocalLocker_DifferentKeysDoNotContend(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	releaseA, err := l.Acquire(ctx, ItemKey("t1", "a"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer releaseA()

	timeout, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	releaseB, err := l.Acquire(timeout, ItemKey("t1", "b"))
	if err != nil {
		t.Fatalf("expected second key to be free: %v", err)
	}
	releaseB()
}

func TestLocalLocker_ContextCancelled(t *testing.T) {
	l := NewLocalLocker()
	key := OrderKey("t1", "po-1")

	release, err := l.Acquire(context.Background(), key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Acquire(ctx, key)
	if !errors.Is(err, apperr.ErrBusy) {
		t.Fatalf("expected busy error, got %v", err)
	}

	release()
	release() // second call is a no-op

	if l.size() != 0 {
		t.Errorf("expected arena to be empty, has %d keys", l.size())
	}
}
