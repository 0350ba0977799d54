package command

import "github.com/code-100-precent/lingshard/resp"

// Get implements GET key.
type Get struct {
	Key_ string
}

func parseGet(p *Parser) (Command, error) {
	key, err := p.NextString()
	if err != nil {
		return nil, wrongArgs(err, "get")
	}
	if err := p.Finish(); err != nil {
		return nil, err
	}
	return &Get{Key_: key}, nil
}

func (c *Get) Key() (string, bool) { return c.Key_, true }

func (c *Get) Apply(ctx *Context) resp.Frame {
	v, ok := ctx.Shard.Get(c.Key_, ctx.now())
	if !ok {
		return resp.Null()
	}
	return resp.Bulk(v.Data)
}
