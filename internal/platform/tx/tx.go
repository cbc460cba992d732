package tx

import (
	"context"
	"sync"
)

// KeyedLocker serializes work that shares a key while letting different keys
// run in parallel.
type KeyedLocker struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	ch   chan struct{}
	refs int
}

func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{locks: map[string]*keyedEntry{}}
}

// WithinKey runs fn while holding the lock for key. It gives up with the
// context's error if the lock cannot be taken before ctx is done.
func (l *KeyedLocker) WithinKey(ctx context.Context, key string, fn func(context.Context) error) error {
	entry := l.acquireRef(key)
	defer l.releaseRef(key, entry)

	select {
	case entry.ch <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-entry.ch }()
	return fn(ctx)
}

func (l *KeyedLocker) acquireRef(key string) *keyedEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.locks[key]
	if !ok {
		entry = &keyedEntry{ch: make(chan struct{}, 1)}
		l.locks[key] = entry
	}
	entry.refs++
	return entry
}

func (l *KeyedLocker) releaseRef(key string, entry *keyedEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, key)
	}
}
