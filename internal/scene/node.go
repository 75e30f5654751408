package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"voxelview/internal/world"
)

// Node is an element of the scene graph.
type Node interface {
	Parent() *Group
	// Release frees the GPU resources the node owns. Safe to call twice.
	Release()
	setParent(g *Group)
}

// Group is a translated container of nodes.
type Group struct {
	Name     string
	Position mgl32.Vec3

	parent   *Group
	children []Node
}

func NewGroup(name string) *Group {
	return &Group{Name: name}
}

func (g *Group) Parent() *Group     { return g.parent }
func (g *Group) setParent(p *Group) { g.parent = p }
func (g *Group) Len() int           { return len(g.children) }
func (g *Group) Children() []Node   { return append([]Node(nil), g.children...) }

// Add attaches n, detaching it from any previous parent.
func (g *Group) Add(n Node) {
	if p := n.Parent(); p != nil {
		p.Remove(n)
	}
	n.setParent(g)
	g.children = append(g.children, n)
}

// Remove detaches n and reports whether it was a child of g.
func (g *Group) Remove(n Node) bool {
	for i, c := range g.children {
		if c == n {
			g.children = append(g.children[:i], g.children[i+1:]...)
			n.setParent(nil)
			return true
		}
	}
	return false
}

// Detach removes g from its parent, if any.
func (g *Group) Detach() {
	if g.parent != nil {
		g.parent.Remove(g)
	}
}

// Release releases all descendants and empties the group.
func (g *Group) Release() {
	for _, c := range g.children {
		c.Release()
		c.setParent(nil)
	}
	g.children = nil
}

// WorldPosition sums translations from the root down to g.
func (g *Group) WorldPosition() mgl32.Vec3 {
	pos := g.Position
	for p := g.parent; p != nil; p = p.parent {
		pos = pos.Add(p.Position)
	}
	return pos
}

// Walk visits g and its descendants depth-first.
func (g *Group) Walk(fn func(n Node)) {
	fn(g)
	for _, c := range g.children {
		if cg, ok := c.(*Group); ok {
			cg.Walk(fn)
			continue
		}
		fn(c)
	}
}

// InstancedMesh draws one geometry many times, one transform per instance.
type InstancedMesh struct {
	Block      world.BlockType
	Geometry   *Geometry // borrowed
	Material   *Material // borrowed
	Transforms []mgl32.Mat4
	Handle     Handle

	device Device
	parent *Group
}

// NewInstancedMesh uploads the instance transforms to dev.
func NewInstancedMesh(dev Device, block world.BlockType, geo *Geometry, mat *Material, transforms []mgl32.Mat4) (*InstancedMesh, error) {
	m := &InstancedMesh{Block: block, Geometry: geo, Material: mat, Transforms: transforms, device: dev}
	h, err := dev.UploadInstances(m)
	if err != nil {
		return nil, err
	}
	m.Handle = h
	return m, nil
}

func (m *InstancedMesh) Parent() *Group     { return m.parent }
func (m *InstancedMesh) setParent(p *Group) { m.parent = p }

func (m *InstancedMesh) Release() {
	if m.Handle != 0 {
		m.device.Free(m.Handle)
		m.Handle = 0
	}
}

// LineBox is an axis-aligned wireframe box. It owns its material.
type LineBox struct {
	Min, Max mgl32.Vec3
	Geometry *Geometry // borrowed unit wireframe
	Material *Material // owned
	Handle   Handle

	device Device
	parent *Group
}

// NewLineBox uploads a wireframe box spanning [min, max].
func NewLineBox(dev Device, geo *Geometry, min, max mgl32.Vec3, mat *Material) (*LineBox, error) {
	l := &LineBox{Min: min, Max: max, Geometry: geo, Material: mat, device: dev}
	h, err := dev.UploadLines(l)
	if err != nil {
		return nil, err
	}
	l.Handle = h
	return l, nil
}

func (l *LineBox) Parent() *Group     { return l.parent }
func (l *LineBox) setParent(p *Group) { l.parent = p }

func (l *LineBox) Release() {
	if l.Handle != 0 {
		l.device.Free(l.Handle)
		l.Handle = 0
	}
	l.Material = nil
}

// Model returns the transform mapping the unit wireframe onto the box.
func (l *LineBox) Model() mgl32.Mat4 {
	center := l.Min.Add(l.Max).Mul(0.5)
	ext := l.Max.Sub(l.Min)
	return mgl32.Translate3D(center.X(), center.Y(), center.Z()).Mul4(mgl32.Scale3D(ext.X(), ext.Y(), ext.Z()))
}
