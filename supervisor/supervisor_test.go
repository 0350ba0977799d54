package supervisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignIDsAreMonotonic(t *testing.T) {
	s := New()
	var last uint64
	for i := 0; i < 100; i++ {
		c := s.Assign(Normal, "127.0.0.1:1234", "127.0.0.1:6379", 10+i)
		require.Greater(t, c.ID(), last)
		last = c.ID()
	}
}

func TestListFiltersByKindAndID(t *testing.T) {
	s := New()
	a := s.Assign(Normal, "a:1", "l:1", 1)
	b := s.Assign(Replica, "b:1", "l:1", 2)
	c := s.Assign(Normal, "c:1", "l:1", 3)

	normals := s.List([]Kind{Normal}, nil)
	assert.Len(t, normals, 2)

	byID := s.List(nil, []uint64{a.ID(), c.ID()})
	assert.Len(t, byID, 2)

	assert.Equal(t, "replica", b.Kind().String())
}

func TestSetNameIsVisibleToFormatLine(t *testing.T) {
	s := New()
	c := s.Assign(Normal, "127.0.0.1:9", "127.0.0.1:6379", 5)
	c.SetName("my-client")
	assert.Contains(t, c.FormatLine(), "name=my-client")
}
