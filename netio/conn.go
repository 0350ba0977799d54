// Package netio wraps a net.Conn with the read-side framing buffer and
// write-side encode buffer a connection's ingest/apply tasks need,
// including the "grow by 4KiB of slack" refill rule and the ability to
// hand the unconsumed read buffer off to a different executor during
// cross-shard migration.
package netio

import (
	"errors"
	"io"
	"net"

	"github.com/code-100-precent/lingshard/resp"
)

// refillSlack is how much extra capacity Reader reserves on every
// short read, so a steady trickle of small frames does not force a
// reallocation per read.
const refillSlack = 4 * 1024

// ErrConnectionReset is returned when the peer closes mid-frame (the
// buffer held bytes but the read side still hit EOF).
var ErrConnectionReset = errors.New("netio: connection reset by peer")

// Reader reads RESP frames off a net.Conn, buffering partial reads.
type Reader struct {
	conn net.Conn
	buf  []byte
}

// NewReader wraps conn with an empty read buffer.
func NewReader(conn net.Conn) *Reader {
	return &Reader{conn: conn}
}

// NewReaderWithBuffered wraps conn, seeding the read buffer with bytes
// already pulled off the wire by a previous owner (used when a
// connection migrates to a different executor mid-stream).
func NewReaderWithBuffered(conn net.Conn, buffered []byte) *Reader {
	return &Reader{conn: conn, buf: buffered}
}

// TakeBuffered detaches and returns any bytes read but not yet
// consumed into a frame, leaving the Reader's buffer empty. The
// migration path uses this to carry residual bytes to the new owner.
func (r *Reader) TakeBuffered() []byte {
	b := r.buf
	r.buf = nil
	return b
}

func (r *Reader) fill() error {
	if cap(r.buf)-len(r.buf) < refillSlack {
		grown := make([]byte, len(r.buf), len(r.buf)+refillSlack)
		copy(grown, r.buf)
		r.buf = grown
	}
	n, err := r.conn.Read(r.buf[len(r.buf):cap(r.buf)])
	if n > 0 {
		r.buf = r.buf[:len(r.buf)+n]
	}
	return err
}

// ReadFrame returns the next complete frame on the connection. It
// returns io.EOF on a clean close with no partial frame buffered, and
// ErrConnectionReset if the peer closed mid-frame. A *resp.ProtocolError
// is fatal to the connection: the caller replies with it and closes.
func (r *Reader) ReadFrame() (resp.Frame, error) {
	for {
		n, err := resp.Check(r.buf)
		if err == nil {
			f, _, perr := resp.Parse(r.buf)
			r.buf = r.buf[n:]
			if perr != nil {
				return resp.Frame{}, perr
			}
			return f, nil
		}
		if !errors.Is(err, resp.ErrIncomplete) {
			return resp.Frame{}, err
		}
		if ferr := r.fill(); ferr != nil {
			if ferr == io.EOF {
				if len(r.buf) == 0 {
					return resp.Frame{}, io.EOF
				}
				return resp.Frame{}, ErrConnectionReset
			}
			return resp.Frame{}, ferr
		}
	}
}

// Writer encodes and writes RESP frames to a net.Conn, reusing a
// single scratch buffer across calls.
type Writer struct {
	conn net.Conn
	buf  []byte
}

// NewWriter wraps conn for frame writes.
func NewWriter(conn net.Conn) *Writer {
	return &Writer{conn: conn}
}

// WriteFrame encodes f and writes it to the connection in one Write
// call.
func (w *Writer) WriteFrame(f resp.Frame) error {
	w.buf = resp.Encode(w.buf[:0], f)
	_, err := w.conn.Write(w.buf)
	return err
}
