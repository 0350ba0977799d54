package hashslot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOfIsDeterministic(t *testing.T) {
	keys := []string{"foo", "bar", "baz", "user:1000", ""}
	for _, k := range keys {
		a := OfString(k)
		b := OfString(k)
		assert.Equal(t, a, b, "hashing %q twice must agree", k)
	}
}

func TestOfIsWithinRange(t *testing.T) {
	for _, k := range []string{"a", "ab", "abc", "a-long-key-name-for-good-measure"} {
		s := OfString(k)
		assert.GreaterOrEqual(t, s, 0)
		assert.Less(t, s, Slots)
	}
}

func TestOfDistinguishesKeys(t *testing.T) {
	// Not a correctness proof, but guards against a degenerate hash
	// that maps everything to slot 0.
	seen := map[int]bool{}
	for i := 0; i < 256; i++ {
		seen[Of([]byte{byte(i)})] = true
	}
	assert.Greater(t, len(seen), 1)
}
