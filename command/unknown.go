package command

import (
	"fmt"

	"github.com/code-100-precent/lingshard/resp"
)

// Unknown is the catch-all for any unrecognized command (or
// subcommand) name. Parsing it never fails - it always succeeds and
// is the connection's signal to skip finishing the rest of the frame.
type Unknown struct {
	Name string
}

func (c *Unknown) Key() (string, bool) { return "", false }

func (c *Unknown) Apply(ctx *Context) resp.Frame {
	return resp.Err(fmt.Sprintf("ERR unknown command '%s'", c.Name))
}
