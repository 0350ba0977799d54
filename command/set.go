package command

import (
	"strings"
	"time"

	"github.com/code-100-precent/lingshard/resp"
	"github.com/code-100-precent/lingshard/store"
)

// Set implements SET key value [EX seconds | PX milliseconds].
type Set struct {
	Key_      string
	Value     []byte
	Expire    time.Duration
	HasExpire bool
}

func parseSet(p *Parser) (Command, error) {
	key, err := p.NextString()
	if err != nil {
		return nil, wrongArgs(err, "set")
	}
	value, err := p.NextBytes()
	if err != nil {
		return nil, wrongArgs(err, "set")
	}
	s := &Set{Key_: key, Value: value}

	opt, err := p.NextString()
	if err == ErrEndOfStream {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	switch strings.ToUpper(opt) {
	case "EX":
		secs, err := p.NextInt()
		if err != nil {
			return nil, wrongArgs(err, "set")
		}
		s.Expire = time.Duration(secs) * time.Second
		s.HasExpire = true
	case "PX":
		ms, err := p.NextInt()
		if err != nil {
			return nil, wrongArgs(err, "set")
		}
		s.Expire = time.Duration(ms) * time.Millisecond
		s.HasExpire = true
	default:
		return nil, &resp.ProtocolError{Msg: "ERR currently 'SET' only supports the expiration option"}
	}
	if err := p.Finish(); err != nil {
		return nil, err
	}
	return s, nil
}

func (c *Set) Key() (string, bool) { return c.Key_, true }

func (c *Set) Apply(ctx *Context) resp.Frame {
	now := ctx.now()
	v := store.Value{Data: c.Value}
	if c.HasExpire {
		v.ExpiresAt = now.Add(c.Expire)
	}
	ctx.Shard.Set(c.Key_, v, now)
	return resp.Simple("OK")
}
