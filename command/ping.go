package command

import "github.com/code-100-precent/lingshard/resp"

// Ping implements PING [message].
type Ping struct {
	Msg    []byte
	HasMsg bool
}

func parsePing(p *Parser) (Command, error) {
	msg, err := p.NextBytes()
	if err == ErrEndOfStream {
		return &Ping{}, nil
	}
	if err != nil {
		return nil, err
	}
	if err := p.Finish(); err != nil {
		return nil, err
	}
	return &Ping{Msg: msg, HasMsg: true}, nil
}

func (c *Ping) Key() (string, bool) { return "", false }

func (c *Ping) Apply(ctx *Context) resp.Frame {
	if !c.HasMsg {
		return resp.Simple("PONG")
	}
	return resp.Bulk(c.Msg)
}
