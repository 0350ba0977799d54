package command

import (
	"strings"

	"github.com/code-100-precent/lingshard/resp"
)

func parseAcl(p *Parser) (Command, error) {
	sub, err := p.NextString()
	if err != nil {
		return nil, wrongArgs(err, "acl")
	}
	switch strings.ToLower(sub) {
	case "cat":
		// Any error reading the optional category argument (wrong
		// frame type, etc.) is treated the same as it being absent.
		category, _ := p.NextString()
		if err := p.Finish(); err != nil {
			return nil, err
		}
		return &AclCat{Category: category}, nil
	default:
		return &Unknown{Name: sub}, nil
	}
}

// AclCat implements ACL CAT [category]. This is a stub: it reports the
// command succeeded without enumerating real ACL categories, since
// this server has no ACL rule engine to categorize commands against.
type AclCat struct {
	Category string
}

func (c *AclCat) Key() (string, bool) { return "", false }

func (c *AclCat) Apply(ctx *Context) resp.Frame {
	return resp.Simple("OK")
}
