package executor

import (
	"errors"
	"io"
	"net"
	"time"

	"github.com/code-100-precent/lingshard/command"
	"github.com/code-100-precent/lingshard/internal/logging"
	"github.com/code-100-precent/lingshard/mesh"
	"github.com/code-100-precent/lingshard/netio"
	"github.com/code-100-precent/lingshard/resp"
	"github.com/code-100-precent/lingshard/supervisor"
)

// connHandler runs one connection's two-task pipeline: ingest reads
// frames off the wire and hands them to apply over a channel, so a
// client pipelining several commands does not have to wait for each
// one's reply before its next request is read. apply consumes frames
// strictly in order, decodes them into Commands, and either executes
// them against the local shard or migrates the connection to whichever
// executor owns the command's key.
//
// Migration needs sole ownership of conn to hand off cleanly: before
// sending a HandOff, apply forces ingest's blocked Read to return via an
// already-expired read deadline and drains every frame ingest had already queued,
// so no pipelined command in flight at the moment of migration is ever
// lost - it travels with the HandOff as a residual frame and is applied
// on the new owner before any new bytes off the wire are read.
type connHandler struct {
	ex   *Executor
	conn net.Conn
	meta *supervisor.Connection
	log  logging.Tagged

	ingestDone    chan struct{}
	residualBytes []byte
}

func newConnHandler(ex *Executor, conn net.Conn, meta *supervisor.Connection) *connHandler {
	return &connHandler{
		ex:         ex,
		conn:       conn,
		meta:       meta,
		log:        ex.log,
		ingestDone: make(chan struct{}),
	}
}

// serve runs the ingest/apply pair over a freshly accepted connection
// with no buffered bytes yet.
func (h *connHandler) serve() {
	h.run(netio.NewReader(h.conn), nil)
}

// resume runs the ingest/apply pair after this executor took ownership
// of conn via a migration hand-off. first is the already-decoded
// command that triggered the migration and must run before anything
// else; residual is every frame the previous owner had already parsed
// off the wire but not yet applied, which must run next, in order,
// before any frame newly read from buffered/the socket.
func (h *connHandler) resume(buffered []byte, residual []resp.Frame, first command.Command) {
	h.conn.SetReadDeadline(time.Time{})
	pending := make([]pendingItem, 0, 1+len(residual))
	pending = append(pending, pendingItem{cmd: first, isCmd: true})
	for _, f := range residual {
		pending = append(pending, pendingItem{frame: f})
	}
	h.run(netio.NewReaderWithBuffered(h.conn, buffered), pending)
}

// pendingItem is either the already-decoded command that triggered a
// migration (isCmd, only ever at index 0 of a resumed connection's
// pending queue) or a frame ingest had already parsed but apply had
// not yet consumed at the moment of migration.
type pendingItem struct {
	cmd   command.Command
	frame resp.Frame
	isCmd bool
}

type frameOrErr struct {
	frame resp.Frame
	err   error
}

func (h *connHandler) run(r *netio.Reader, pending []pendingItem) {
	frames := make(chan frameOrErr, 16)
	go h.ingest(r, frames)
	h.apply(frames, pending)
}

// ingest pulls frames off the wire until the connection closes, a
// protocol error occurs, or a forced read deadline (set by stopIngest)
// interrupts a blocked Read for migration. It always pushes what it
// read to out, even after a deadline interrupts it elsewhere in the
// pipeline: apply (via stopIngest) keeps draining out until this
// goroutine exits, so a full channel can never deadlock this send and
// no successfully parsed frame is ever dropped.
func (h *connHandler) ingest(r *netio.Reader, out chan<- frameOrErr) {
	defer func() {
		h.residualBytes = r.TakeBuffered()
		close(h.ingestDone)
	}()
	defer close(out)
	for {
		f, err := r.ReadFrame()
		if err != nil {
			out <- frameOrErr{err: err}
			return
		}
		out <- frameOrErr{frame: f}
	}
}

// stopIngest forces the ingest task to stop reading and collects every
// frame it had already queued in frames before exiting. It returns only
// once ingest has fully exited, guaranteeing sole ownership of conn.
func (h *connHandler) stopIngest(frames <-chan frameOrErr) []resp.Frame {
	h.conn.SetReadDeadline(time.Now())
	var drained []resp.Frame
	for fe := range frames {
		if fe.err == nil {
			drained = append(drained, fe.frame)
		}
	}
	<-h.ingestDone
	return drained
}

func (h *connHandler) decodePending(p pendingItem) (command.Command, error) {
	if p.isCmd {
		return p.cmd, nil
	}
	return command.FromFrame(p.frame)
}

// apply decodes and executes frames strictly in the order ingest
// produced them, running any pending (migration-resumed) items first.
func (h *connHandler) apply(frames <-chan frameOrErr, pending []pendingItem) {
	w := netio.NewWriter(h.conn)
	migrated := false
	defer func() {
		if migrated {
			return
		}
		h.ex.supervisor.Forget(h.meta.ID())
		h.meta.Stop()
		h.conn.Close()
		// Keep receiving until ingest exits (the closed conn makes its
		// next Read fail) so its send on frames never blocks forever.
		for range frames {
		}
	}()

	for i, p := range pending {
		cmd, err := h.decodePending(p)
		if err != nil {
			h.writeProtocolError(w, err)
			return
		}
		if h.execute(cmd, w, frames, pending[i+1:]) {
			migrated = true
			return
		}
	}

	for fe := range frames {
		if fe.err != nil {
			h.onIngestError(fe.err, w)
			return
		}
		cmd, err := command.FromFrame(fe.frame)
		if err != nil {
			h.writeProtocolError(w, err)
			return
		}
		if h.execute(cmd, w, frames, nil) {
			migrated = true
			return
		}
	}
}

// execute runs cmd locally if its key (if any) belongs to this
// executor's shard, or migrates the connection to the owning executor.
// restPending is whatever pending items (see resume) had not yet been
// applied at the moment cmd was picked up; they must travel with the
// migration as residual frames, ahead of anything still in frames.
// execute returns true if the connection was migrated away (the caller
// must stop using conn after this point).
func (h *connHandler) execute(cmd command.Command, w *netio.Writer, frames <-chan frameOrErr, restPending []pendingItem) bool {
	key, hasKey := cmd.Key()
	if hasKey && !h.ex.dialer.IsLocal(key) {
		h.migrate(cmd, key, frames, restPending)
		return true
	}
	ctx := h.ex.commandContext(h.meta)
	reply := cmd.Apply(ctx)
	if werr := w.WriteFrame(reply); werr != nil {
		h.log.Warn("write failed for connection %d: %v", h.meta.ID(), werr)
	}
	return false
}

func (h *connHandler) migrate(cmd command.Command, key string, frames <-chan frameOrErr, restPending []pendingItem) {
	target := h.ex.dialer.TargetForKey(key)
	h.log.Info("migrating connection %d to executor %d for key routing", h.meta.ID(), target)

	// Regain sole ownership of the socket before handing it to another
	// executor's goroutine, collecting every frame already queued for
	// apply along the way so none of it is lost.
	drained := h.stopIngest(frames)

	residual := make([]resp.Frame, 0, len(restPending)+len(drained))
	for _, p := range restPending {
		// Only pending[0] is ever a decoded command (the migration
		// trigger itself); everything after it is an undecoded residual
		// frame from a previous hop.
		residual = append(residual, p.frame)
	}
	residual = append(residual, drained...)

	h.ex.dialer.HandOff(key, mesh.HandOff{
		Conn:     h.conn,
		Command:  cmd,
		Residual: residual,
		Buffered: h.residualBytes,
		Meta:     h.meta,
	})
}

func (h *connHandler) onIngestError(err error, w *netio.Writer) {
	switch {
	case errors.Is(err, io.EOF):
		// clean close, nothing to reply
	case errors.Is(err, netio.ErrConnectionReset):
		h.log.Info("connection %d reset by peer", h.meta.ID())
	default:
		var perr *resp.ProtocolError
		if errors.As(err, &perr) {
			w.WriteFrame(resp.Err(perr.Error()))
		} else {
			h.log.Warn("connection %d io error: %v", h.meta.ID(), err)
		}
	}
}

func (h *connHandler) writeProtocolError(w *netio.Writer, err error) {
	var perr *resp.ProtocolError
	if errors.As(err, &perr) {
		w.WriteFrame(resp.Err(perr.Error()))
		return
	}
	w.WriteFrame(resp.Err("ERR " + err.Error()))
}
