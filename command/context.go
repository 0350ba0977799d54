package command

import (
	"time"

	"github.com/code-100-precent/lingshard/store"
	"github.com/code-100-precent/lingshard/supervisor"
)

// Context is everything a Command's Apply needs: the local shard it is
// allowed to touch (the executor already routed the command here),
// the process-wide connection registry, and this request's own
// connection metadata.
//
// Storage is the full composite and is only used by the handful of
// multi-key commands (DEL/EXISTS with more than one key): unlike the
// original thread-per-core design, shards here are guarded by real
// mutexes, so touching a shard an executor doesn't own is safe - just
// uncontended most of the time - and a multi-key sweep does not need
// to migrate the connection anywhere. Single-key commands still route
// through Shard via the normal migration path so that path stays
// exercised and testable.
type Context struct {
	Shard      *store.Shard
	Storage    *store.Storage
	Supervisor *supervisor.Supervisor
	Conn       *supervisor.Connection
	Now        func() time.Time
	NodeID     string
}

func (c *Context) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
