package command

import (
	"fmt"
	"strings"

	"github.com/code-100-precent/lingshard/resp"
	"github.com/code-100-precent/lingshard/supervisor"
)

var clientHelpLines = []string{
	"CLIENT <subcommand> [<arg> [value] [opt] ...]. Subcommands are:",
	"ID",
	"    Return the ID of the current connection.",
	"INFO",
	"    Return information about the current client connection.",
	"LIST [options ...]",
	"    Return information about client connections. Options are:",
	"    TYPE (NORMAL|MASTER|REPLICA|PUBSUB)",
	"        Return clients of specified type.",
	"SETNAME <name>",
	"    Assign the name <name> to the current connection.",
	"SETINFO <option> <value>",
	"    Set client meta attr. Options are:",
	"    LIB-NAME",
	"        Name of the library sending the command.",
	"    LIB-VER",
	"        Version of the library sending the command.",
	"HELP",
	"    Print this help.",
}

func parseClient(p *Parser) (Command, error) {
	sub, err := p.NextString()
	if err == ErrEndOfStream {
		return &ClientHelp{}, nil
	}
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(sub) {
	case "setinfo":
		attr, err := p.NextString()
		if err != nil {
			return nil, wrongArgs(err, "client|setinfo")
		}
		val, err := p.NextString()
		if err != nil {
			return nil, wrongArgs(err, "client|setinfo")
		}
		if err := p.Finish(); err != nil {
			return nil, err
		}
		return &ClientSetInfo{Attr: attr, Value: val}, nil
	case "setname":
		name, err := p.NextString()
		if err != nil {
			return nil, wrongArgs(err, "client|setname")
		}
		if err := p.Finish(); err != nil {
			return nil, err
		}
		return &ClientSetName{Name: name}, nil
	case "id":
		if err := p.Finish(); err != nil {
			return nil, err
		}
		return &ClientID{}, nil
	case "info":
		if err := p.Finish(); err != nil {
			return nil, err
		}
		return &ClientInfo{}, nil
	case "list":
		return parseClientList(p)
	case "help":
		if err := p.Finish(); err != nil {
			return nil, err
		}
		return &ClientHelp{}, nil
	default:
		// Unrecognized subcommand: surface Unknown without requiring
		// the rest of the frame to parse cleanly.
		return &Unknown{Name: sub}, nil
	}
}

func parseClientList(p *Parser) (Command, error) {
	var kinds []supervisor.Kind
	var ids []uint64
	for {
		tok, err := p.NextString()
		if err == ErrEndOfStream {
			break
		}
		if err != nil {
			return nil, err
		}
		switch strings.ToLower(tok) {
		case "type":
			val, err := p.NextString()
			if err == ErrEndOfStream {
				kinds = append(kinds, supervisor.Normal)
				continue
			}
			if err != nil {
				return nil, err
			}
			kind, ok := parseClientType(val)
			if !ok {
				return nil, &resp.ProtocolError{Msg: "ERR Unknown client type, should be either normal / replica / master / pubsub."}
			}
			kinds = append(kinds, kind)
		case "id":
			for {
				n, err := p.NextInt()
				if err == ErrEndOfStream {
					break
				}
				if err != nil {
					return nil, err
				}
				ids = append(ids, uint64(n))
			}
		default:
			return nil, &resp.ProtocolError{Msg: fmt.Sprintf("ERR Unknown filter type '%s'", tok)}
		}
	}
	return &ClientList{Types: kinds, IDs: ids}, nil
}

func parseClientType(s string) (supervisor.Kind, bool) {
	switch strings.ToLower(s) {
	case "normal":
		return supervisor.Normal, true
	case "replica":
		return supervisor.Replica, true
	case "master":
		return supervisor.Master, true
	case "pubsub":
		return supervisor.Pubsub, true
	default:
		return 0, false
	}
}

// ClientHelp implements bare CLIENT and CLIENT HELP.
type ClientHelp struct{}

func (c *ClientHelp) Key() (string, bool) { return "", false }

func (c *ClientHelp) Apply(ctx *Context) resp.Frame {
	items := make([]resp.Frame, len(clientHelpLines))
	for i, line := range clientHelpLines {
		items[i] = resp.Simple(line)
	}
	return resp.Array(items)
}

// ClientSetInfo implements CLIENT SETINFO attr value. The attribute is
// not currently surfaced anywhere (CLIENT INFO/LIST never report
// LIB-NAME/LIB-VER), so this only validates and acknowledges it.
type ClientSetInfo struct{ Attr, Value string }

func (c *ClientSetInfo) Key() (string, bool)        { return "", false }
func (c *ClientSetInfo) Apply(ctx *Context) resp.Frame { return resp.Simple("OK") }

// ClientSetName implements CLIENT SETNAME name.
type ClientSetName struct{ Name string }

func (c *ClientSetName) Key() (string, bool) { return "", false }

func (c *ClientSetName) Apply(ctx *Context) resp.Frame {
	if ctx.Conn != nil {
		ctx.Conn.SetName(c.Name)
	}
	return resp.Simple("OK")
}

// ClientID implements CLIENT ID.
type ClientID struct{}

func (c *ClientID) Key() (string, bool) { return "", false }

func (c *ClientID) Apply(ctx *Context) resp.Frame {
	var id int64
	if ctx.Conn != nil {
		id = int64(ctx.Conn.ID())
	}
	return resp.Integer(id)
}

// ClientInfo implements CLIENT INFO.
type ClientInfo struct{}

func (c *ClientInfo) Key() (string, bool) { return "", false }

func (c *ClientInfo) Apply(ctx *Context) resp.Frame {
	if ctx.Conn == nil {
		return resp.Simple("")
	}
	return resp.Simple(ctx.Conn.FormatLine())
}

// ClientList implements CLIENT LIST [TYPE t] [ID id [id ...]], one
// reply line per matching connection.
type ClientList struct {
	Types []supervisor.Kind
	IDs   []uint64
}

func (c *ClientList) Key() (string, bool) { return "", false }

func (c *ClientList) Apply(ctx *Context) resp.Frame {
	conns := ctx.Supervisor.List(c.Types, c.IDs)
	items := make([]resp.Frame, len(conns))
	for i, conn := range conns {
		items[i] = resp.Simple(conn.FormatLine())
	}
	return resp.Array(items)
}
