// Package scene is the retained scene graph chunks are attached to: groups,
// shared block geometry, a block material registry, and the GPU device that
// backs instanced meshes and line boxes.
//
// Ownership: a node owns the device handle it uploaded. Geometry and
// materials handed to a node are borrowed unless documented otherwise, and
// releasing the node never disposes them.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"voxelview/internal/world"
)

// Handle identifies a GPU resource on a Device. Zero means none.
type Handle uint32

// Device allocates and frees GPU resources.
type Device interface {
	UploadGeometry(g *Geometry) (Handle, error)
	UploadInstances(m *InstancedMesh) (Handle, error)
	UploadLines(l *LineBox) (Handle, error)
	Free(h Handle)
}

// Primitive is how a geometry's vertices are assembled.
type Primitive int

const (
	Triangles Primitive = iota
	Lines
)

// Geometry is vertex data shared by many nodes.
type Geometry struct {
	Name     string
	Vertices []float32
	Stride   int // floats per vertex
	Mode     Primitive
	Handle   Handle
}

// VertexCount returns the number of vertices in the geometry.
func (g *Geometry) VertexCount() int {
	if g.Stride == 0 {
		return 0
	}
	return len(g.Vertices) / g.Stride
}

// Material describes how a node is shaded.
type Material struct {
	Name        string
	Color       mgl32.Vec4
	Transparent bool
	DepthWrite  bool
}

// Clone returns an independent copy of m.
func (m *Material) Clone() *Material {
	c := *m
	return &c
}

// MaterialRegistry maps block ids to their shared material.
type MaterialRegistry map[world.BlockType]*Material

// DefaultMaterials builds an opaque material for every solid block.
func DefaultMaterials() MaterialRegistry {
	reg := make(MaterialRegistry)
	for _, b := range world.BlockTypes() {
		c := world.BlockColor(b)
		reg[b] = &Material{Name: b.String(), Color: c.Vec4(1), DepthWrite: true}
	}
	return reg
}

// Lookup returns the material for b.
func (r MaterialRegistry) Lookup(b world.BlockType) (*Material, bool) {
	m, ok := r[b]
	return m, ok && m != nil
}

// Context is everything chunk rendering borrows from the scene owner.
type Context struct {
	Scene     *Group
	World     *Group // chunk subtrees attach under this node
	Cube      *Geometry
	Wire      *Geometry
	Materials MaterialRegistry
	Device    Device
}

// NewContext uploads the shared cube and wireframe geometry and builds the
// root/world groups.
func NewContext(dev Device, mats MaterialRegistry) (*Context, error) {
	cube := &Geometry{Name: "cube", Vertices: world.CubeVertices, Stride: 6, Mode: Triangles}
	wire := &Geometry{Name: "wire", Vertices: world.CubeWireframeVertices, Stride: 3, Mode: Lines}

	var err error
	if cube.Handle, err = dev.UploadGeometry(cube); err != nil {
		return nil, err
	}
	if wire.Handle, err = dev.UploadGeometry(wire); err != nil {
		dev.Free(cube.Handle)
		return nil, err
	}

	root := NewGroup("scene")
	wg := NewGroup("world")
	root.Add(wg)
	return &Context{
		Scene:     root,
		World:     wg,
		Cube:      cube,
		Wire:      wire,
		Materials: mats,
		Device:    dev,
	}, nil
}

// Close releases every node still in the scene and then the shared geometry.
func (c *Context) Close() {
	c.Scene.Release()
	for _, g := range []*Geometry{c.Cube, c.Wire} {
		if g.Handle != 0 {
			c.Device.Free(g.Handle)
			g.Handle = 0
		}
	}
}
