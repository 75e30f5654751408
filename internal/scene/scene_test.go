package scene

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"voxelview/internal/world"
)

func TestGroupAddRemove(t *testing.T) {
	a := NewGroup("a")
	b := NewGroup("b")
	child := NewGroup("child")

	a.Add(child)
	if child.Parent() != a {
		t.Fatalf("expected parent a, got %v", child.Parent())
	}

	// Re-adding elsewhere moves the node.
	b.Add(child)
	if a.Len() != 0 || b.Len() != 1 {
		t.Errorf("expected node moved to b, got a=%d b=%d", a.Len(), b.Len())
	}

	if !b.Remove(child) {
		t.Error("expected Remove to report true")
	}
	if b.Remove(child) {
		t.Error("expected second Remove to report false")
	}
	if child.Parent() != nil {
		t.Error("expected detached node to have no parent")
	}
}

func TestWorldPosition(t *testing.T) {
	root := NewGroup("root")
	root.Position = mgl32.Vec3{1, 2, 3}
	chunk := NewGroup("chunk")
	chunk.Position = mgl32.Vec3{16, 0, -16}
	root.Add(chunk)

	got := chunk.WorldPosition()
	want := mgl32.Vec3{17, 2, -13}
	if got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestContextBorrowsSharedGeometry(t *testing.T) {
	dev := NewHeadlessDevice()
	ctx, err := NewContext(dev, DefaultMaterials())
	if err != nil {
		t.Fatal(err)
	}
	if dev.Live("geometry") != 2 {
		t.Fatalf("expected 2 shared geometries, got %d", dev.Live("geometry"))
	}

	mat, ok := ctx.Materials.Lookup(world.BlockTypeStone)
	if !ok {
		t.Fatal("expected stone material")
	}
	mesh, err := NewInstancedMesh(dev, world.BlockTypeStone, ctx.Cube, mat,
		[]mgl32.Mat4{mgl32.Ident4(), mgl32.Translate3D(1, 0, 0)})
	if err != nil {
		t.Fatal(err)
	}
	hull, err := NewLineBox(dev, ctx.Wire, mgl32.Vec3{-8, -8, -8}, mgl32.Vec3{8, 8, 8}, mat.Clone())
	if err != nil {
		t.Fatal(err)
	}

	g := NewGroup("chunk")
	g.Add(mesh)
	g.Add(hull)
	ctx.World.Add(g)

	g.Release()
	g.Release()
	if dev.Live("instances") != 0 || dev.Live("lines") != 0 {
		t.Errorf("expected node resources freed, got %d live", dev.Live(""))
	}
	if dev.Live("geometry") != 2 {
		t.Errorf("expected shared geometry untouched, got %d", dev.Live("geometry"))
	}
	if ctx.Cube.Handle == 0 {
		t.Error("expected shared cube handle to survive node release")
	}

	ctx.Close()
	if dev.Live("") != 0 {
		t.Errorf("expected nothing live after Close, got %d", dev.Live(""))
	}
}

func TestUploadFailure(t *testing.T) {
	dev := NewHeadlessDevice()
	boom := errors.New("out of memory")
	dev.SetFailure(boom)

	_, err := NewInstancedMesh(dev, world.BlockTypeDirt, &Geometry{}, &Material{}, nil)
	if !errors.Is(err, boom) {
		t.Errorf("expected %v, got %v", boom, err)
	}
	if dev.Live("") != 0 {
		t.Errorf("expected no live handles, got %d", dev.Live(""))
	}
}

func TestLineBoxModel(t *testing.T) {
	l := &LineBox{Min: mgl32.Vec3{-8, -8, -8}, Max: mgl32.Vec3{8, 8, 8}}
	p := l.Model().Mul4x1(mgl32.Vec4{0.5, 0.5, 0.5, 1})
	if p.Vec3() != (mgl32.Vec3{8, 8, 8}) {
		t.Errorf("expected unit corner mapped to (8,8,8), got %v", p.Vec3())
	}
}

func TestMaterialClone(t *testing.T) {
	m := &Material{Name: "hull", Color: mgl32.Vec4{0, 1, 1, 0.35}, Transparent: true}
	c := m.Clone()
	c.Color[3] = 1
	if m.Color[3] != 0.35 {
		t.Error("expected clone to be independent of template")
	}
}
