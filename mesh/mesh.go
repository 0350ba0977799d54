// Package mesh implements the inter-executor hand-off channels and the
// per-executor routing view (Dialer) used to decide whether a command
// is local or must migrate its connection to the executor owning the
// key's shard.
package mesh

import (
	"net"

	"github.com/code-100-precent/lingshard/command"
	"github.com/code-100-precent/lingshard/resp"
	"github.com/code-100-precent/lingshard/supervisor"
)

// HandOff is everything the apply task must carry to a different
// executor when a command's key routes elsewhere: the live socket, the
// already-decoded command that triggered the migration, every frame
// already parsed off the wire but not yet applied (Residual - these
// must run, in order, before anything new is read off the socket), any
// bytes read but not yet assembled into a complete frame (Buffered),
// and the connection's existing supervisor metadata (its id must not
// change across a migration).
type HandOff struct {
	Conn     net.Conn
	Command  command.Command
	Residual []resp.Frame
	Buffered []byte
	Meta     *supervisor.Connection
}

// Mesh is a fixed set of multi-producer-single-consumer channels, one
// per executor: any executor can send a HandOff to any other, but only
// that executor's own bootstrap loop receives from its channel.
type Mesh struct {
	chans []chan HandOff
}

// New creates a Mesh with n executor channels.
func New(n int) *Mesh {
	m := &Mesh{chans: make([]chan HandOff, n)}
	for i := range m.chans {
		m.chans[i] = make(chan HandOff, 64)
	}
	return m
}

// Send hands off msg to executor index target.
func (m *Mesh) Send(target int, msg HandOff) {
	m.chans[target] <- msg
}

// Receive returns the channel executor index i should range over to
// accept incoming migrated connections.
func (m *Mesh) Receive(i int) <-chan HandOff {
	return m.chans[i]
}
