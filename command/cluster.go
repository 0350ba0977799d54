package command

import (
	"strings"

	"github.com/code-100-precent/lingshard/resp"
)

func parseCluster(p *Parser) (Command, error) {
	sub, err := p.NextString()
	if err != nil {
		return nil, wrongArgs(err, "cluster")
	}
	switch strings.ToLower(sub) {
	case "myid":
		if err := p.Finish(); err != nil {
			return nil, err
		}
		return &ClusterMyID{}, nil
	default:
		return &Unknown{Name: sub}, nil
	}
}

// ClusterMyID implements CLUSTER MYID: the process-wide node identifier
// generated at startup (see cmd/lingshardd's uuid.NewString call), also
// surfaced in HELLO's reply. This server does not run a real cluster
// membership/gossip protocol; the id only identifies the process for
// introspection.
type ClusterMyID struct{}

func (c *ClusterMyID) Key() (string, bool) { return "", false }

func (c *ClusterMyID) Apply(ctx *Context) resp.Frame {
	return resp.Bulk([]byte(ctx.NodeID))
}
