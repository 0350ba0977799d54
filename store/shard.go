// Package store implements the slot-partitioned key/value engine: a
// Shard owns a contiguous range of hash slots and the keys that hash
// into it, with lazy (check-on-access) expiration; a Storage composite
// holds an ordered list of shards that covers the full keyspace
// exactly once.
package store

import (
	"sync"
	"time"

	"github.com/code-100-precent/lingshard/hashslot"
)

// Value is what a key maps to: the stored bytes and an optional
// absolute expiry. A zero ExpiresAt means the key never expires.
type Value struct {
	Data      []byte
	ExpiresAt time.Time
}

func (v Value) expired(now time.Time) bool {
	return !v.ExpiresAt.IsZero() && !now.Before(v.ExpiresAt)
}

// SlotRange is a half-open range of hash slots, [Lo, Hi).
type SlotRange struct {
	Lo, Hi int
}

func (r SlotRange) Contains(slot int) bool { return slot >= r.Lo && slot < r.Hi }

// Shard is one executor's owned portion of the keyspace: a concurrent
// map guarded by a single RWMutex, plus an insertion counter used by
// tests and introspection to observe write activity.
type Shard struct {
	mu      sync.RWMutex
	data    map[string]Value
	slots   SlotRange
	inserts uint64
}

// NewShard creates a shard owning the half-open slot range [lo, hi).
func NewShard(lo, hi int) *Shard {
	return &Shard{
		data:  make(map[string]Value),
		slots: SlotRange{Lo: lo, Hi: hi},
	}
}

// Slots reports the slot range this shard owns.
func (s *Shard) Slots() SlotRange { return s.slots }

// OwnsKey reports whether key's hash slot falls in this shard's range.
func (s *Shard) OwnsKey(key string) bool {
	return s.slots.Contains(hashslot.OfString(key))
}

// Get returns the value for key, applying lazy expiry: an expired
// entry is evicted on the access that discovers it rather than by a
// background sweep.
func (s *Shard) Get(key string, now time.Time) (Value, bool) {
	s.mu.RLock()
	v, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return Value{}, false
	}
	if v.expired(now) {
		s.mu.Lock()
		if cur, ok := s.data[key]; ok && cur.expired(now) {
			delete(s.data, key)
		}
		s.mu.Unlock()
		return Value{}, false
	}
	return v, true
}

// Set stores value for key and returns the previous value, if any and
// not already expired.
func (s *Shard) Set(key string, value Value, now time.Time) (Value, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, existed := s.data[key]
	s.data[key] = value
	s.inserts++
	if existed && old.expired(now) {
		return Value{}, false
	}
	return old, existed
}

// Del removes key and reports whether it was present (and unexpired).
func (s *Shard) Del(key string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return false
	}
	delete(s.data, key)
	return !v.expired(now)
}

// Mutate applies fn to the current value of key (ok=false if absent or
// expired) and stores whatever fn returns when store=true. It is the
// building block for APPEND/INCR/EXPIRE-style read-modify-write
// commands that must not race with a concurrent Get/Set on the same
// key.
func (s *Shard) Mutate(key string, now time.Time, fn func(v Value, ok bool) (next Value, store bool)) (Value, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.data[key]
	if ok && cur.expired(now) {
		ok = false
		cur = Value{}
	}
	next, store := fn(cur, ok)
	if store {
		s.data[key] = next
		s.inserts++
		return next, true
	}
	delete(s.data, key)
	return Value{}, false
}

// Inserts returns the number of Set/Mutate-store calls observed, for
// tests and introspection.
func (s *Shard) Inserts() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inserts
}

// Len reports the number of entries currently stored, including
// expired-but-not-yet-evicted ones.
func (s *Shard) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
