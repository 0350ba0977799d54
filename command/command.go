// Package command implements the closed set of commands this server
// understands: parsing a request array into a typed Command and
// applying it against a routed shard.
package command

import (
	"strings"
	"time"

	"github.com/code-100-precent/lingshard/resp"
)

// Command is a parsed request ready to execute.
type Command interface {
	// Key returns the routing key and true for commands that must run
	// on the shard owning that key's hash slot; false for commands
	// that are answered locally regardless of which executor received
	// them (PING, HELLO, CLIENT, ACL).
	Key() (string, bool)
	// Apply executes the command against ctx and returns the reply
	// frame to write back to the client.
	Apply(ctx *Context) resp.Frame
}

// FromFrame parses a request frame (which must be a RESP array of
// bulk/simple strings) into a Command. Unknown top-level commands
// return an *Unknown without requiring the rest of the frame to be
// well-formed for any particular command shape - matching the original
// protocol's rule that an unrecognized command name short-circuits
// before argument validation.
func FromFrame(f resp.Frame) (Command, error) {
	if f.Kind != resp.KindArray || len(f.Array) == 0 {
		return nil, &resp.ProtocolError{Msg: "protocol error: expected a non-empty command array"}
	}
	parser := NewParser(f.Array)
	name, err := parser.NextString()
	if err != nil {
		return nil, err
	}
	lower := strings.ToLower(name)

	switch lower {
	case "ping":
		return parsePing(parser)
	case "hello":
		return parseHello(parser)
	case "get":
		return parseGet(parser)
	case "set":
		return parseSet(parser)
	case "client":
		return parseClient(parser)
	case "acl":
		return parseAcl(parser)
	case "cluster":
		return parseCluster(parser)
	case "del":
		return parseDel(parser)
	case "exists":
		return parseExists(parser)
	case "type":
		return parseType(parser)
	case "append":
		return parseAppend(parser)
	case "incr":
		return parseIncr(parser, 1)
	case "incrby":
		return parseIncrBy(parser)
	case "strlen":
		return parseStrlen(parser)
	case "expire":
		return parseExpire(parser, time.Second)
	case "pexpire":
		return parseExpire(parser, time.Millisecond)
	case "ttl":
		return parseTTL(parser, time.Second)
	case "pttl":
		return parseTTL(parser, time.Millisecond)
	case "persist":
		return parsePersist(parser)
	default:
		return &Unknown{Name: name}, nil
	}
}
