package storage

import "sync"

type lockKey struct {
	tenant string
	kind   string
	id     string
}

type refLock struct {
	mu   sync.Mutex
	refs int
}

// lockTable hands out one mutex per key and drops it once no caller holds
// or waits on it, so the table only grows with concurrent writers.
type lockTable struct {
	mu    sync.Mutex
	locks map[lockKey]*refLock
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[lockKey]*refLock)}
}

func (t *lockTable) lock(k lockKey) func() {
	t.mu.Lock()
	l, ok := t.locks[k]
	if !ok {
		l = &refLock{}
		t.locks[k] = l
	}
	l.refs++
	t.mu.Unlock()

	l.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Unlock()
			t.mu.Lock()
			l.refs--
			if l.refs == 0 {
				delete(t.locks, k)
			}
			t.mu.Unlock()
		})
	}
}

func (t *lockTable) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.locks)
}
