// Package executor bootstraps one executor: a goroutine pinned (via
// runtime.LockOSThread) to its own OS thread, owning one storage shard
// and accepting connections either from its own listener
// (SO_REUSEPORT) or a shared one, plus a mesh-receive loop that accepts
// connections migrated in from other executors.
package executor

import (
	"fmt"
	"net"
	"runtime"
	"syscall"
	"time"

	"github.com/code-100-precent/lingshard/command"
	"github.com/code-100-precent/lingshard/internal/logging"
	"github.com/code-100-precent/lingshard/mesh"
	"github.com/code-100-precent/lingshard/store"
	"github.com/code-100-precent/lingshard/supervisor"
)

// Executor owns exactly one shard and runs every connection whose keys
// route to that shard.
type Executor struct {
	index      int
	shard      *store.Shard
	dialer     *mesh.Dialer
	storage    *store.Storage
	supervisor *supervisor.Supervisor
	nodeID     string
	log        logging.Tagged
}

// New builds the executor for index i, bound to storage.Part(i) and
// dialer.Part(i).
func New(index int, storage *store.Storage, dialer *mesh.Dialer, sup *supervisor.Supervisor, nodeID string) *Executor {
	return &Executor{
		index:      index,
		shard:      storage.Part(index),
		dialer:     dialer.Part(index),
		storage:    storage,
		supervisor: sup,
		nodeID:     nodeID,
		log:        logging.Tag(fmt.Sprintf("executor %d", index)),
	}
}

func (e *Executor) commandContext(meta *supervisor.Connection) *command.Context {
	return &command.Context{
		Shard:      e.shard,
		Storage:    e.storage,
		Supervisor: e.supervisor,
		Conn:       meta,
		Now:        time.Now,
		NodeID:     e.nodeID,
	}
}

// Run pins this goroutine to an OS thread and runs the accept loop
// (over listener, which may be this executor's own SO_REUSEPORT
// listener or a shared one depending on platform support) alongside
// the mesh-receive loop, until listener is closed.
func (e *Executor) Run(listener net.Listener) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	go e.receiveMigrations()
	e.acceptLoop(listener)
}

func (e *Executor) acceptLoop(listener net.Listener) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			e.log.Warn("accept error: %v", err)
			return
		}
		if tc, ok := conn.(*net.TCPConn); ok {
			tc.SetNoDelay(true)
		}
		e.acceptNew(conn)
	}
}

func (e *Executor) acceptNew(conn net.Conn) {
	meta := e.supervisor.Assign(supervisor.Normal, conn.RemoteAddr().String(), conn.LocalAddr().String(), connFD(conn))
	h := newConnHandler(e, conn, meta)
	go h.serve()
}

// receiveMigrations accepts connections handed off from other
// executors and resumes their ingest/apply pipeline here, continuing
// from the migrating command and any bytes already buffered for it.
func (e *Executor) receiveMigrations() {
	for msg := range e.dialer.Mesh().Receive(e.index) {
		h := newConnHandler(e, msg.Conn, msg.Meta)
		go h.resume(msg.Buffered, msg.Residual, msg.Command)
	}
}

// connFD best-effort extracts the file descriptor for CLIENT LIST's
// fd= field, via the syscall.Conn interface net.TCPConn implements. It
// reports -1 for connections that don't support it (e.g. net.Pipe in
// tests).
func connFD(conn net.Conn) int {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return -1
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return -1
	}
	fd := -1
	raw.Control(func(f uintptr) { fd = int(f) })
	return fd
}
