package store

import "github.com/code-100-precent/lingshard/hashslot"

// Storage is the composite view over every shard in the process: an
// ordered list of (SlotRange, *Shard) pairs covering [0, hashslot.Slots)
// exactly once. Each executor is handed one Shard via Part; Storage
// itself is read-only after New and safe to share across executors so
// any of them can resolve which shard owns a given key.
type Storage struct {
	shards []*Shard
}

// New partitions the keyspace into n contiguous, roughly equal shards.
// n must be at least 1.
func New(n int) *Storage {
	if n < 1 {
		n = 1
	}
	shards := make([]*Shard, n)
	base := hashslot.Slots / n
	rem := hashslot.Slots % n
	lo := 0
	for i := 0; i < n; i++ {
		size := base
		if i == n-1 {
			size += rem
		}
		hi := lo + size
		shards[i] = NewShard(lo, hi)
		lo = hi
	}
	return &Storage{shards: shards}
}

// Shards returns the ordered shard list.
func (s *Storage) Shards() []*Shard { return s.shards }

// Part selects shards[i % len(shards)], the same "part index modulo
// shard count" rule the executor bootstrap and the dialer use to
// agree on which shard belongs to which executor.
func (s *Storage) Part(i int) *Shard {
	return s.shards[i%len(s.shards)]
}

// ShardForSlot returns the shard owning slot. Slot ranges are
// contiguous and exhaustive, so this always succeeds for a valid slot.
func (s *Storage) ShardForSlot(slot int) *Shard {
	// Shards are ordered and equally (or near-equally) sized, so a
	// linear scan is fine at this shard count (tens, not thousands);
	// a binary search would be premature here.
	for _, sh := range s.shards {
		if sh.slots.Contains(slot) {
			return sh
		}
	}
	return nil
}

// ShardForKey returns the shard owning key's hash slot.
func (s *Storage) ShardForKey(key string) *Shard {
	return s.ShardForSlot(hashslot.OfString(key))
}

// ShardIndexForKey returns the index (into Shards()) of the shard
// owning key, used by the dialer to decide whether a key is local.
func (s *Storage) ShardIndexForKey(key string) int {
	slot := hashslot.OfString(key)
	for i, sh := range s.shards {
		if sh.slots.Contains(slot) {
			return i
		}
	}
	return -1
}
