package command

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/code-100-precent/lingshard/resp"
)

// ErrEndOfStream signals a Parser has consumed every argument; it is
// the non-error terminal condition callers use to distinguish "no more
// optional arguments" from a real protocol error.
var ErrEndOfStream = errors.New("command: end of argument stream")

// Parser walks the argument frames of a command (everything after the
// command name in the request array) one at a time, the way each
// Command's own parse step pulls out its fields.
type Parser struct {
	args []resp.Frame
	pos  int
}

// NewParser wraps the argument frames following the command name.
func NewParser(args []resp.Frame) *Parser {
	return &Parser{args: args}
}

func (p *Parser) next() (resp.Frame, error) {
	if p.pos >= len(p.args) {
		return resp.Frame{}, ErrEndOfStream
	}
	f := p.args[p.pos]
	p.pos++
	return f, nil
}

// NextBytes returns the next argument's raw bytes, from a Bulk or
// Simple frame.
func (p *Parser) NextBytes() ([]byte, error) {
	f, err := p.next()
	if err != nil {
		return nil, err
	}
	switch f.Kind {
	case resp.KindBulk:
		return f.Bulk, nil
	case resp.KindSimple:
		return f.Str, nil
	default:
		return nil, &resp.ProtocolError{Msg: "protocol error: expected a bulk or simple string argument"}
	}
}

// NextString is NextBytes with a string conversion.
func (p *Parser) NextString() (string, error) {
	b, err := p.NextBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// NextInt parses the next argument as a base-10 integer.
func (p *Parser) NextInt() (int64, error) {
	s, err := p.NextString()
	if err != nil {
		return 0, err
	}
	n, perr := strconv.ParseInt(s, 10, 64)
	if perr != nil {
		return 0, &resp.ProtocolError{Msg: "protocol error: expected an integer argument"}
	}
	return n, nil
}

// Finish reports a protocol error if any argument remains unconsumed.
func (p *Parser) Finish() error {
	if p.pos < len(p.args) {
		return &resp.ProtocolError{Msg: "protocol error; expected end of frame, but there was more"}
	}
	return nil
}

// Remaining reports how many arguments are left unconsumed.
func (p *Parser) Remaining() int { return len(p.args) - p.pos }

// wrongArgs turns ErrEndOfStream on a required argument into the
// protocol error a missing argument actually is; any other error
// (e.g. a wrong frame type) passes through unchanged.
func wrongArgs(err error, cmdName string) error {
	if errors.Is(err, ErrEndOfStream) {
		return &resp.ProtocolError{Msg: fmt.Sprintf("ERR wrong number of arguments for '%s' command", cmdName)}
	}
	return err
}
