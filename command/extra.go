// Supplemented keyspace/string commands beyond the core PING/GET/SET/
// CLIENT/HELLO/ACL table - see SPEC_FULL.md's "Supplemented features".
// They all still hash to exactly one shard per key and route through
// the same Shard/migration path as GET/SET, except the multi-key forms
// of DEL/EXISTS which sweep the shared Storage directly (see Context).
package command

import (
	"strconv"
	"time"

	"github.com/code-100-precent/lingshard/resp"
	"github.com/code-100-precent/lingshard/store"
)

func parseKeys(p *Parser, cmdName string) ([]string, error) {
	var keys []string
	for {
		k, err := p.NextString()
		if err == ErrEndOfStream {
			break
		}
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return nil, &resp.ProtocolError{Msg: "ERR wrong number of arguments for '" + cmdName + "' command"}
	}
	return keys, nil
}

// Del implements DEL key [key ...].
type Del struct{ Keys []string }

func parseDel(p *Parser) (Command, error) {
	keys, err := parseKeys(p, "del")
	if err != nil {
		return nil, err
	}
	return &Del{Keys: keys}, nil
}

func (c *Del) Key() (string, bool) {
	if len(c.Keys) == 1 {
		return c.Keys[0], true
	}
	return "", false
}

func (c *Del) Apply(ctx *Context) resp.Frame {
	now := ctx.now()
	var count int64
	if len(c.Keys) == 1 && ctx.Shard != nil {
		if ctx.Shard.Del(c.Keys[0], now) {
			count++
		}
	} else {
		for _, k := range c.Keys {
			if sh := ctx.Storage.ShardForKey(k); sh != nil && sh.Del(k, now) {
				count++
			}
		}
	}
	return resp.Integer(count)
}

// Exists implements EXISTS key [key ...].
type Exists struct{ Keys []string }

func parseExists(p *Parser) (Command, error) {
	keys, err := parseKeys(p, "exists")
	if err != nil {
		return nil, err
	}
	return &Exists{Keys: keys}, nil
}

func (c *Exists) Key() (string, bool) {
	if len(c.Keys) == 1 {
		return c.Keys[0], true
	}
	return "", false
}

func (c *Exists) Apply(ctx *Context) resp.Frame {
	now := ctx.now()
	var count int64
	check := func(sh *store.Shard, k string) {
		if sh == nil {
			return
		}
		if _, ok := sh.Get(k, now); ok {
			count++
		}
	}
	if len(c.Keys) == 1 && ctx.Shard != nil {
		check(ctx.Shard, c.Keys[0])
	} else {
		for _, k := range c.Keys {
			check(ctx.Storage.ShardForKey(k), k)
		}
	}
	return resp.Integer(count)
}

// Type implements TYPE key. Every stored value is a string, so this
// only distinguishes present ("string") from absent ("none").
type Type struct{ Key_ string }

func parseType(p *Parser) (Command, error) {
	key, err := p.NextString()
	if err != nil {
		return nil, wrongArgs(err, "type")
	}
	if err := p.Finish(); err != nil {
		return nil, err
	}
	return &Type{Key_: key}, nil
}

func (c *Type) Key() (string, bool) { return c.Key_, true }

func (c *Type) Apply(ctx *Context) resp.Frame {
	if _, ok := ctx.Shard.Get(c.Key_, ctx.now()); ok {
		return resp.Simple("string")
	}
	return resp.Simple("none")
}

// Append implements APPEND key value.
type Append struct {
	Key_  string
	Value []byte
}

func parseAppend(p *Parser) (Command, error) {
	key, err := p.NextString()
	if err != nil {
		return nil, wrongArgs(err, "append")
	}
	val, err := p.NextBytes()
	if err != nil {
		return nil, wrongArgs(err, "append")
	}
	if err := p.Finish(); err != nil {
		return nil, err
	}
	return &Append{Key_: key, Value: val}, nil
}

func (c *Append) Key() (string, bool) { return c.Key_, true }

func (c *Append) Apply(ctx *Context) resp.Frame {
	now := ctx.now()
	var newLen int
	ctx.Shard.Mutate(c.Key_, now, func(v store.Value, ok bool) (store.Value, bool) {
		var data []byte
		if ok {
			data = append(append([]byte(nil), v.Data...), c.Value...)
		} else {
			data = append([]byte(nil), c.Value...)
		}
		newLen = len(data)
		expires := time.Time{}
		if ok {
			expires = v.ExpiresAt
		}
		return store.Value{Data: data, ExpiresAt: expires}, true
	})
	return resp.Integer(int64(newLen))
}

// Incr implements INCR key (Delta 1) and INCRBY key delta.
type Incr struct {
	Key_  string
	Delta int64
}

func parseIncr(p *Parser, delta int64) (Command, error) {
	key, err := p.NextString()
	if err != nil {
		return nil, wrongArgs(err, "incr")
	}
	if err := p.Finish(); err != nil {
		return nil, err
	}
	return &Incr{Key_: key, Delta: delta}, nil
}

// parseIncrBy parses INCRBY key delta into an Incr.
func parseIncrBy(p *Parser) (Command, error) {
	key, err := p.NextString()
	if err != nil {
		return nil, wrongArgs(err, "incrby")
	}
	delta, err := p.NextInt()
	if err != nil {
		return nil, wrongArgs(err, "incrby")
	}
	if err := p.Finish(); err != nil {
		return nil, err
	}
	return &Incr{Key_: key, Delta: delta}, nil
}

func (c *Incr) Key() (string, bool) { return c.Key_, true }

func (c *Incr) Apply(ctx *Context) resp.Frame {
	now := ctx.now()
	var result int64
	var parseErr error
	ctx.Shard.Mutate(c.Key_, now, func(v store.Value, ok bool) (store.Value, bool) {
		var cur int64
		if ok {
			n, err := strconv.ParseInt(string(v.Data), 10, 64)
			if err != nil {
				parseErr = err
				return v, ok
			}
			cur = n
		}
		result = cur + c.Delta
		expires := time.Time{}
		if ok {
			expires = v.ExpiresAt
		}
		return store.Value{Data: []byte(strconv.FormatInt(result, 10)), ExpiresAt: expires}, true
	})
	if parseErr != nil {
		return resp.Err("ERR value is not an integer or out of range")
	}
	return resp.Integer(result)
}

// Strlen implements STRLEN key.
type Strlen struct{ Key_ string }

func parseStrlen(p *Parser) (Command, error) {
	key, err := p.NextString()
	if err != nil {
		return nil, wrongArgs(err, "strlen")
	}
	if err := p.Finish(); err != nil {
		return nil, err
	}
	return &Strlen{Key_: key}, nil
}

func (c *Strlen) Key() (string, bool) { return c.Key_, true }

func (c *Strlen) Apply(ctx *Context) resp.Frame {
	v, ok := ctx.Shard.Get(c.Key_, ctx.now())
	if !ok {
		return resp.Integer(0)
	}
	return resp.Integer(int64(len(v.Data)))
}

// Expire implements EXPIRE/PEXPIRE key amount, amount measured in unit.
type Expire struct {
	Key_   string
	Amount int64
	Unit   time.Duration
}

func parseExpire(p *Parser, unit time.Duration) (Command, error) {
	key, err := p.NextString()
	if err != nil {
		return nil, wrongArgs(err, "expire")
	}
	amount, err := p.NextInt()
	if err != nil {
		return nil, wrongArgs(err, "expire")
	}
	if err := p.Finish(); err != nil {
		return nil, err
	}
	return &Expire{Key_: key, Amount: amount, Unit: unit}, nil
}

func (c *Expire) Key() (string, bool) { return c.Key_, true }

func (c *Expire) Apply(ctx *Context) resp.Frame {
	now := ctx.now()
	var applied bool
	ctx.Shard.Mutate(c.Key_, now, func(v store.Value, ok bool) (store.Value, bool) {
		if !ok {
			return v, false
		}
		applied = true
		v.ExpiresAt = now.Add(time.Duration(c.Amount) * c.Unit)
		return v, true
	})
	if applied {
		return resp.Integer(1)
	}
	return resp.Integer(0)
}

// TTL implements TTL/PTTL key, reporting remaining time in unit.
type TTL struct {
	Key_ string
	Unit time.Duration
}

func parseTTL(p *Parser, unit time.Duration) (Command, error) {
	key, err := p.NextString()
	if err != nil {
		return nil, wrongArgs(err, "ttl")
	}
	if err := p.Finish(); err != nil {
		return nil, err
	}
	return &TTL{Key_: key, Unit: unit}, nil
}

func (c *TTL) Key() (string, bool) { return c.Key_, true }

func (c *TTL) Apply(ctx *Context) resp.Frame {
	now := ctx.now()
	v, ok := ctx.Shard.Get(c.Key_, now)
	if !ok {
		return resp.Integer(-2)
	}
	if v.ExpiresAt.IsZero() {
		return resp.Integer(-1)
	}
	remaining := v.ExpiresAt.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	return resp.Integer(int64(remaining / c.Unit))
}

// Persist implements PERSIST key.
type Persist struct{ Key_ string }

func parsePersist(p *Parser) (Command, error) {
	key, err := p.NextString()
	if err != nil {
		return nil, wrongArgs(err, "persist")
	}
	if err := p.Finish(); err != nil {
		return nil, err
	}
	return &Persist{Key_: key}, nil
}

func (c *Persist) Key() (string, bool) { return c.Key_, true }

func (c *Persist) Apply(ctx *Context) resp.Frame {
	now := ctx.now()
	var removed bool
	ctx.Shard.Mutate(c.Key_, now, func(v store.Value, ok bool) (store.Value, bool) {
		if !ok {
			return v, false
		}
		if !v.ExpiresAt.IsZero() {
			removed = true
			v.ExpiresAt = time.Time{}
		}
		return v, true
	})
	if removed {
		return resp.Integer(1)
	}
	return resp.Integer(0)
}
