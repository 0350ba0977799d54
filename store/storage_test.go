package store

import (
	"testing"
	"time"

	"github.com/code-100-precent/lingshard/hashslot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionCoversKeyspaceExactly(t *testing.T) {
	for _, n := range []int{1, 3, 4, 7, 16} {
		s := New(n)
		covered := make([]bool, hashslot.Slots)
		for _, sh := range s.Shards() {
			r := sh.Slots()
			for slot := r.Lo; slot < r.Hi; slot++ {
				require.False(t, covered[slot], "slot %d covered twice with n=%d", slot, n)
				covered[slot] = true
			}
		}
		for slot, ok := range covered {
			require.True(t, ok, "slot %d not covered with n=%d", slot, n)
		}
	}
}

func TestPartIsModularRotation(t *testing.T) {
	s := New(4)
	for i := 0; i < 12; i++ {
		assert.Same(t, s.Shards()[i%4], s.Part(i))
	}
}

func TestShardForKeyMatchesHashslot(t *testing.T) {
	s := New(5)
	for _, k := range []string{"a", "foo", "user:42", "x"} {
		want := hashslot.OfString(k)
		sh := s.ShardForKey(k)
		assert.True(t, sh.Slots().Contains(want))
		assert.True(t, sh.OwnsKey(k))
	}
}

func TestLazyExpiry(t *testing.T) {
	sh := NewShard(0, hashslot.Slots)
	now := time.Unix(1000, 0)
	sh.Set("k", Value{Data: []byte("v"), ExpiresAt: now.Add(time.Second)}, now)

	_, ok := sh.Get("k", now.Add(500*time.Millisecond))
	assert.True(t, ok)

	_, ok = sh.Get("k", now.Add(2*time.Second))
	assert.False(t, ok, "key must be evicted once past its expiry")
	assert.Equal(t, 0, sh.Len(), "lazy expiry must delete the entry on the access that finds it expired")
}

func TestSetReturnsPreviousValue(t *testing.T) {
	sh := NewShard(0, hashslot.Slots)
	now := time.Unix(0, 0)
	_, existed := sh.Set("k", Value{Data: []byte("first")}, now)
	assert.False(t, existed)

	old, existed := sh.Set("k", Value{Data: []byte("second")}, now)
	assert.True(t, existed)
	assert.Equal(t, "first", string(old.Data))
}
