package command

import "github.com/code-100-precent/lingshard/resp"

// ServerName and ServerVersion are the literal values HELLO reports.
const (
	ServerName    = "lingshard"
	ServerVersion = "0.1.0"
)

// Hello implements HELLO with no arguments, replying with a RESP3 map
// describing the server. This server does not negotiate RESP2 vs
// RESP3 (there is only one encoder, which already emits maps), so no
// protover argument is accepted.
type Hello struct{}

func parseHello(p *Parser) (Command, error) {
	if err := p.Finish(); err != nil {
		return nil, err
	}
	return &Hello{}, nil
}

func (c *Hello) Key() (string, bool) { return "", false }

func (c *Hello) Apply(ctx *Context) resp.Frame {
	var id int64
	if ctx.Conn != nil {
		id = int64(ctx.Conn.ID())
	}
	return resp.Map([]resp.MapEntry{
		{Key: resp.Simple("server"), Value: resp.Simple(ServerName)},
		{Key: resp.Simple("version"), Value: resp.Simple(ServerVersion)},
		{Key: resp.Simple("proto"), Value: resp.Integer(3)},
		{Key: resp.Simple("id"), Value: resp.Integer(id)},
		{Key: resp.Simple("mode"), Value: resp.Simple("standalone")},
		{Key: resp.Simple("role"), Value: resp.Simple("undefined")},
		{Key: resp.Simple("node_id"), Value: resp.Simple(ctx.NodeID)},
		{Key: resp.Simple("modules"), Value: resp.Array(nil)},
	})
}
