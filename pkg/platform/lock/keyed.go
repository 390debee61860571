// Package lock provides per-key serialization primitives.
//
// The issuance workflow performs read-modify-write sequences against issuer
// and user records with no multi-entity transaction, so concurrent requests
// touching the same issuer (rotating auth token) or the same user (one-time
// code, DID) must be serialized. KeyedMutex covers a single process;
// RedisLocker covers multi-instance deployments.
package lock

import (
	"context"
	"sync"
)

// Locker acquires an exclusive lock on a key and returns its release func.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// KeyedMutex is an in-process Locker backed by reference-counted mutexes.
// Entries are removed once the last holder releases, so the map does not grow
// with the key space.
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[string]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{entries: make(map[string]*keyedEntry)}
}

// Acquire blocks until the key's mutex is held or ctx is done.
func (k *KeyedMutex) Acquire(ctx context.Context, key string) (func(), error) {
	k.mu.Lock()
	entry, ok := k.entries[key]
	if !ok {
		entry = &keyedEntry{}
		k.entries[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	acquired := make(chan struct{})
	go func() {
		entry.mu.Lock()
		close(acquired)
	}()

	select {
	case <-acquired:
		return func() { k.release(key, entry) }, nil
	case <-ctx.Done():
		// The goroutine will still take the mutex; hand it straight back.
		go func() {
			<-acquired
			k.release(key, entry)
		}()
		return nil, ctx.Err()
	}
}

func (k *KeyedMutex) release(key string, entry *keyedEntry) {
	entry.mu.Unlock()

	k.mu.Lock()
	entry.refs--
	if entry.refs == 0 {
		delete(k.entries, key)
	}
	k.mu.Unlock()
}
