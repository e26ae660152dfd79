package locks_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goliatone/go-polycontent/internal/locks"
)

func TestKeyedSerializesSameKey(t *testing.T) {
	table := locks.NewKeyed()
	var active, maxActive int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = table.Do("c1", func() error {
				current := atomic.AddInt32(&active, 1)
				for {
					seen := atomic.LoadInt32(&maxActive)
					if current <= seen || atomic.CompareAndSwapInt32(&maxActive, seen, current) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&active, -1)
				return nil
			})
		}()
	}
	wg.Wait()

	if maxActive != 1 {
		t.Fatalf("expected at most one holder per key, saw %d", maxActive)
	}
	if table.Len() != 0 {
		t.Fatalf("expected lock table to be drained, got %d", table.Len())
	}
}

func TestKeyedAllowsDifferentKeys(t *testing.T) {
	table := locks.NewKeyed()
	unlockA := table.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := table.Lock("b")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("expected lock on a different key not to block")
	}
}

func TestKeyedUnlockIsIdempotent(t *testing.T) {
	table := locks.NewKeyed()
	unlock := table.Lock("a")
	unlock()
	unlock()
	if table.Len() != 0 {
		t.Fatalf("expected empty table")
	}
}
