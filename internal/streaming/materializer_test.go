package streaming

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"voxelview/internal/scene"
	"voxelview/internal/world"
)

func newSceneContext(t testing.TB) (*scene.Context, *scene.HeadlessDevice) {
	t.Helper()
	dev := scene.NewHeadlessDevice()
	sc, err := scene.NewContext(dev, scene.DefaultMaterials())
	if err != nil {
		t.Fatal(err)
	}
	return sc, dev
}

func TestMaterializeBatchesPerBlock(t *testing.T) {
	const size = 4
	sc, dev := newSceneContext(t)
	m := NewMaterializer(sc, size, 0.35)

	grid := world.NewVoxelGrid(size)
	grid.Set(size, 0, 0, 0, world.BlockTypeStone)
	grid.Set(size, 3, 0, 0, world.BlockTypeStone)
	grid.Set(size, 1, 2, 3, world.BlockTypeGrass)

	g, err := m.Build(world.KeyOf(2, -1), grid, Remote)
	if err != nil {
		t.Fatal(err)
	}
	if g.Position != (mgl32.Vec3{8, 0, -4}) {
		t.Errorf("expected origin (8,0,-4), got %v", g.Position)
	}

	meshes := map[world.BlockType]*scene.InstancedMesh{}
	var hull *scene.LineBox
	for _, n := range g.Children() {
		switch v := n.(type) {
		case *scene.InstancedMesh:
			meshes[v.Block] = v
		case *scene.LineBox:
			hull = v
		}
	}
	if len(meshes) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(meshes))
	}
	if n := len(meshes[world.BlockTypeStone].Transforms); n != 2 {
		t.Errorf("expected 2 stone instances, got %d", n)
	}
	grass := meshes[world.BlockTypeGrass]
	if got := grass.Transforms[0].Col(3).Vec3(); got != (mgl32.Vec3{-0.5, 0.5, 1.5}) {
		t.Errorf("expected grass at (-0.5,0.5,1.5), got %v", got)
	}
	if grass.Geometry != sc.Cube || grass.Material != sc.Materials[world.BlockTypeGrass] {
		t.Error("expected batches to borrow shared geometry and material")
	}

	if hull == nil {
		t.Fatal("expected a debug hull")
	}
	if hull.Min != (mgl32.Vec3{-2, -2, -2}) || hull.Max != (mgl32.Vec3{2, 2, 2}) {
		t.Errorf("expected hull [-2,2]^3, got %v..%v", hull.Min, hull.Max)
	}
	if !hull.Material.Transparent || hull.Material.Color.W() != 0.35 {
		t.Errorf("expected transparent hull at 0.35 opacity, got %+v", hull.Material)
	}
	if hull.Material == m.hull {
		t.Error("expected hull material to be a clone of the template")
	}

	g.Release()
	if dev.Live("instances") != 0 || dev.Live("lines") != 0 {
		t.Error("expected chunk resources released")
	}
}

func TestMaterializeAllAir(t *testing.T) {
	sc, dev := newSceneContext(t)
	m := NewMaterializer(sc, 4, 0.35)

	g, err := m.Build(world.KeyOf(0, 0), world.NewVoxelGrid(4), Local)
	if err != nil {
		t.Fatal(err)
	}
	if g.Len() != 1 || dev.Live("instances") != 0 {
		t.Errorf("expected only a hull, got %d children", g.Len())
	}
}

func TestMaterializeRejectsBadGrids(t *testing.T) {
	sc, dev := newSceneContext(t)
	m := NewMaterializer(sc, 4, 0.35)
	key := world.KeyOf(1, 1)

	_, err := m.Build(key, make(world.VoxelGrid, 63), Remote)
	var me *MaterializeError
	if !errors.As(err, &me) || me.Key != key {
		t.Errorf("expected MaterializeError for short grid, got %v", err)
	}

	bad := world.NewVoxelGrid(4)
	bad.Fill(world.BlockTypeStone)
	bad[10] = 99
	if _, err := m.Build(key, bad, Remote); !errors.As(err, &me) {
		t.Errorf("expected MaterializeError for unknown block, got %v", err)
	}
	if dev.Live("instances") != 0 {
		t.Error("expected nothing allocated")
	}
}

func TestMaterializeDeviceFailureReleasesPartial(t *testing.T) {
	sc, dev := newSceneContext(t)
	m := NewMaterializer(sc, 4, 0.35)
	grid := world.NewVoxelGrid(4)
	grid.Fill(world.BlockTypeDirt)

	// Instances upload fine; the hull fails.
	failing := &failLines{HeadlessDevice: dev, err: errors.New("no line buffers")}
	sc.Device = failing

	_, err := m.Build(world.KeyOf(0, 0), grid, Remote)
	var me *MaterializeError
	if !errors.As(err, &me) || !errors.Is(err, failing.err) {
		t.Fatalf("expected wrapped device error, got %v", err)
	}
	if dev.Live("instances") != 0 {
		t.Errorf("expected partial batch released, got %d", dev.Live("instances"))
	}
}

type failLines struct {
	*scene.HeadlessDevice
	err error
}

func (f *failLines) UploadLines(*scene.LineBox) (scene.Handle, error) { return 0, f.err }

func TestHullColor(t *testing.T) {
	if c := HullColor(Remote, 0.3); c != (mgl32.Vec4{0, 1, 1, 0.3}) {
		t.Errorf("expected cyan, got %v", c)
	}
	if c := HullColor(Local, 0.3); c != (mgl32.Vec4{1, 0, 0, 0.3}) {
		t.Errorf("expected red, got %v", c)
	}
}

func BenchmarkMaterialize(b *testing.B) {
	sc, _ := newSceneContext(b)
	m := NewMaterializer(sc, 16, 0.35)
	gen := world.NewFallbackGenerator(16, world.BlockTypeStone)
	grid, err := gen.Generate(world.KeyOf(0, 0))
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g, err := m.Build(world.KeyOf(0, 0), grid, Local)
		if err != nil {
			b.Fatal(err)
		}
		g.Release()
	}
}
