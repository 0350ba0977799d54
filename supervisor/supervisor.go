// Package supervisor tracks per-connection metadata (id, kind, peer
// addresses, file descriptor, and an optional client-set name) across
// every executor in the process, so CLIENT LIST/INFO can be answered
// from any of them.
package supervisor

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Kind classifies a connection the way CLIENT LIST's TYPE filter does.
type Kind int

const (
	Normal Kind = iota
	Replica
	Master
	Pubsub
)

func (k Kind) String() string {
	switch k {
	case Normal:
		return "normal"
	case Replica:
		return "replica"
	case Master:
		return "master"
	case Pubsub:
		return "pubsub"
	default:
		return "unknown"
	}
}

// Connection is one tracked connection's metadata. Every field except
// name and the atomic stopped flag is immutable after creation; name is
// guarded by its own mutex
// since CLIENT SETNAME can race with CLIENT LIST/INFO from other
// connections.
type Connection struct {
	id      uint64
	kind    Kind
	addr    string
	laddr   string
	fd      int
	stopped atomic.Bool

	nameMu sync.RWMutex
	name   string
}

func (c *Connection) ID() uint64 { return c.id }
func (c *Connection) Kind() Kind { return c.kind }

func (c *Connection) SetName(name string) {
	c.nameMu.Lock()
	c.name = name
	c.nameMu.Unlock()
}

func (c *Connection) Name() string {
	c.nameMu.RLock()
	defer c.nameMu.RUnlock()
	return c.name
}

// Stop marks the connection as no longer active. Supervisor never
// removes stopped connections from its map by itself; callers that
// want the entry gone call Forget.
func (c *Connection) Stop() { c.stopped.Store(true) }

func (c *Connection) Stopped() bool { return c.stopped.Load() }

// FormatLine renders the "id=... addr=... laddr=... fd=... name=..."
// line both CLIENT LIST (one per connection) and CLIENT INFO (the
// caller's own connection) use.
func (c *Connection) FormatLine() string {
	return fmt.Sprintf("id=%d addr=%s laddr=%s fd=%d name=%s",
		c.id, c.addr, c.laddr, c.fd, c.Name())
}

// Supervisor is the process-wide connection registry: a monotonic
// connection-id counter plus a concurrent map from id to metadata.
type Supervisor struct {
	nextID atomic.Uint64

	mu    sync.RWMutex
	conns map[uint64]*Connection
}

// New creates an empty Supervisor.
func New() *Supervisor {
	return &Supervisor{conns: make(map[uint64]*Connection)}
}

// Assign registers a newly-accepted connection and returns its
// metadata handle, with a fresh, process-wide monotonically increasing
// id.
func (s *Supervisor) Assign(kind Kind, addr, laddr string, fd int) *Connection {
	id := s.nextID.Add(1)
	c := &Connection{id: id, kind: kind, addr: addr, laddr: laddr, fd: fd}
	s.mu.Lock()
	s.conns[id] = c
	s.mu.Unlock()
	return c
}

// Forget removes a connection's metadata once it has fully closed.
func (s *Supervisor) Forget(id uint64) {
	s.mu.Lock()
	delete(s.conns, id)
	s.mu.Unlock()
}

// Get looks up a connection by id.
func (s *Supervisor) Get(id uint64) (*Connection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.conns[id]
	return c, ok
}

// List returns every tracked connection whose Kind is in kinds (all
// kinds if kinds is empty), optionally filtered further to the given
// ids (no id filter if ids is empty). Stopped connections are included
// so CLIENT LIST reflects connections mid-teardown, matching the
// snapshot-scan semantics it is grounded on.
func (s *Supervisor) List(kinds []Kind, ids []uint64) []*Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var idSet map[uint64]bool
	if len(ids) > 0 {
		idSet = make(map[uint64]bool, len(ids))
		for _, id := range ids {
			idSet[id] = true
		}
	}
	kindOK := func(k Kind) bool {
		if len(kinds) == 0 {
			return true
		}
		for _, want := range kinds {
			if want == k {
				return true
			}
		}
		return false
	}

	out := make([]*Connection, 0, len(s.conns))
	for _, c := range s.conns {
		if !kindOK(c.kind) {
			continue
		}
		if idSet != nil && !idSet[c.id] {
			continue
		}
		out = append(out, c)
	}
	return out
}
