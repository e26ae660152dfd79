// Package locks provides mutual exclusion scoped to a string key.
package locks

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
)

type entry struct {
	mu   sync.Mutex
	refs int
}

// Keyed hands out one mutex per key. Entries are reference counted and
// removed once no goroutine holds or waits on them, so the table does not
// grow with the number of keys ever seen.
type Keyed struct {
	entries *xsync.MapOf[string, *entry]
}

// NewKeyed returns an empty lock table.
func NewKeyed() *Keyed {
	return &Keyed{entries: xsync.NewMapOf[string, *entry]()}
}

// Lock blocks until the lock for key is held and returns its release func.
func (k *Keyed) Lock(key string) (unlock func()) {
	e, _ := k.entries.Compute(key, func(old *entry, loaded bool) (*entry, bool) {
		if !loaded {
			old = &entry{}
		}
		old.refs++
		return old, false
	})
	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()
			k.entries.Compute(key, func(old *entry, loaded bool) (*entry, bool) {
				if !loaded {
					return old, true
				}
				old.refs--
				return old, old.refs <= 0
			})
		})
	}
}

// Do runs fn while holding the lock for key.
func (k *Keyed) Do(key string, fn func() error) error {
	unlock := k.Lock(key)
	defer unlock()
	return fn()
}

// Len reports how many keys currently have holders or waiters.
func (k *Keyed) Len() int {
	return k.entries.Size()
}
