// Copyright (c) 2026 ToeiRei
// Pinvault - PIN-gated API key vault
// This source code is licensed under the MIT license found in the LICENSE file.

// package state provides a concurrency-safe, in-memory cache for the
// unlocked secret key during an authenticated session. The key lives here
// for the lifetime of the process only; it is never persisted separately
// from the credential record on disk.
package state // import "github.com/toeirei/pinvault/internal/state"

import "sync"

// SessionKey is the process-wide mailbox for the unlocked key. It uses a
// byte slice instead of a string so the value can be explicitly zeroed.
var SessionKey = &keyMailbox{}

type keyMailbox struct {
	value []byte
	mu    sync.RWMutex
}

// Set stores a copy of the unlocked key, overwriting any existing value.
func (k *keyMailbox) Set(key []byte) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if key == nil {
		k.value = nil
		return
	}
	// Store a copy so the caller's slice isn't held by the cache.
	k.value = make([]byte, len(key))
	copy(k.value, key)
}

// Get retrieves a copy of the unlocked key, or nil when locked. The caller
// is responsible for zeroing the returned slice after use.
func (k *keyMailbox) Get() []byte {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if k.value == nil {
		return nil
	}
	out := make([]byte, len(k.value))
	copy(out, k.value)
	return out
}

// Clear wipes the cached key from memory.
func (k *keyMailbox) Clear() {
	k.mu.Lock()
	defer k.mu.Unlock()
	for i := range k.value {
		k.value[i] = 0
	}
	k.value = nil
}
