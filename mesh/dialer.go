package mesh

import "github.com/code-100-precent/lingshard/store"

// Dialer is one executor's routing view: which shard index it itself
// owns, and how to compute the target shard/executor index for any
// key. Executor i and Dialer i always agree on "part(i)" - the same
// modular rotation Storage.Part uses - so routing decisions and shard
// ownership never disagree.
type Dialer struct {
	storage *store.Storage
	mesh    *Mesh
	self    int
}

// NewDialer builds the root routing view over storage and mesh.
func NewDialer(storage *store.Storage, mesh *Mesh) *Dialer {
	return &Dialer{storage: storage, mesh: mesh}
}

// Part returns the routing view for executor index part - the same
// "part index modulo shard count" selection Storage.Part uses, so
// Dialer.Part(i) and Storage.Part(i) always refer to the same shard.
func (d *Dialer) Part(part int) *Dialer {
	return &Dialer{storage: d.storage, mesh: d.mesh, self: part % len(d.storage.Shards())}
}

// Self returns this view's own executor index.
func (d *Dialer) Self() int { return d.self }

// TargetForKey returns the executor index owning key's hash slot.
func (d *Dialer) TargetForKey(key string) int {
	return d.storage.ShardIndexForKey(key)
}

// IsLocal reports whether key routes to this view's own executor.
func (d *Dialer) IsLocal(key string) bool {
	return d.TargetForKey(key) == d.self
}

// HandOff sends msg to the executor owning key.
func (d *Dialer) HandOff(key string, msg HandOff) {
	d.mesh.Send(d.TargetForKey(key), msg)
}

// Mesh exposes the underlying mesh so the executor bootstrap can
// receive on its own channel.
func (d *Dialer) Mesh() *Mesh { return d.mesh }
