package streaming

import (
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"voxelview/internal/scene"
	"voxelview/internal/world"
)

// Provenance records where a chunk's voxels came from.
type Provenance int

const (
	Remote Provenance = iota
	Local
)

func (p Provenance) String() string {
	if p == Local {
		return "local"
	}
	return "remote"
}

// Record is a live chunk. It owns Node and everything GPU-side beneath it.
type Record struct {
	Key        world.ChunkKey
	Node       *scene.Group
	Origin     mgl32.Vec3
	Provenance Provenance
}

// Release detaches the chunk from the scene and frees its GPU batch. Shared
// geometry and block materials are left alone.
func (r *Record) Release() {
	r.Node.Detach()
	r.Node.Release()
}

// Registry maps chunk keys to live records and tracks in-flight loads.
// It is only used from the render thread.
type Registry struct {
	parent   *scene.Group
	live     map[world.ChunkKey]*Record
	inFlight map[world.ChunkKey]struct{}
}

// NewRegistry creates a registry that attaches published chunks to parent.
func NewRegistry(parent *scene.Group) *Registry {
	return &Registry{
		parent:   parent,
		live:     make(map[world.ChunkKey]*Record),
		inFlight: make(map[world.ChunkKey]struct{}),
	}
}

func (r *Registry) Has(key world.ChunkKey) bool {
	_, ok := r.live[key]
	return ok
}

// Get returns the live record for key.
func (r *Registry) Get(key world.ChunkKey) (*Record, bool) {
	rec, ok := r.live[key]
	return rec, ok
}

func (r *Registry) MarkInFlight(key world.ChunkKey)  { r.inFlight[key] = struct{}{} }
func (r *Registry) ClearInFlight(key world.ChunkKey) { delete(r.inFlight, key) }

func (r *Registry) InFlight(key world.ChunkKey) bool {
	_, ok := r.inFlight[key]
	return ok
}

func (r *Registry) InFlightLen() int { return len(r.inFlight) }

// ResetInFlight forgets every in-flight key.
func (r *Registry) ResetInFlight() { clear(r.inFlight) }

// Publish attaches rec.Node to the scene and makes it live. The map entry and
// the scene attachment change together.
func (r *Registry) Publish(rec *Record) error {
	if r.Has(rec.Key) {
		return fmt.Errorf("%w: %v", ErrDuplicatePublish, rec.Key)
	}
	r.parent.Add(rec.Node)
	r.live[rec.Key] = rec
	return nil
}

// Remove detaches and releases the record for key. Missing keys are a no-op.
func (r *Registry) Remove(key world.ChunkKey) bool {
	rec, ok := r.live[key]
	if !ok {
		return false
	}
	delete(r.live, key)
	rec.Release()
	return true
}

// Snapshot returns the live records ordered by key.
func (r *Registry) Snapshot() []*Record {
	out := make([]*Record, 0, len(r.live))
	for _, rec := range r.live {
		out = append(out, rec)
	}
	slices.SortFunc(out, func(a, b *Record) int {
		if a.Key.X != b.Key.X {
			return a.Key.X - b.Key.X
		}
		return a.Key.Z - b.Key.Z
	})
	return out
}

func (r *Registry) Len() int { return len(r.live) }

// ReleaseAll removes every live record and returns how many there were.
func (r *Registry) ReleaseAll() int {
	n := len(r.live)
	for key, rec := range r.live {
		delete(r.live, key)
		rec.Release()
	}
	return n
}
