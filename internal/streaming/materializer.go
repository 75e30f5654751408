package streaming

import (
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/colornames"

	"voxelview/internal/profiling"
	"voxelview/internal/scene"
	"voxelview/internal/world"
)

// Materializer turns voxel grids into chunk subtrees: one instanced mesh per
// block id and a wireframe hull colored by provenance.
type Materializer struct {
	sc   *scene.Context
	size int
	hull *scene.Material // template; each chunk gets a clone
}

func NewMaterializer(sc *scene.Context, size int, hullOpacity float32) *Materializer {
	return &Materializer{
		sc:   sc,
		size: size,
		hull: &scene.Material{Name: "chunk-hull", Color: mgl32.Vec4{1, 1, 1, hullOpacity}, Transparent: true},
	}
}

// HullColor returns the debug hull color for chunks of the given provenance.
func HullColor(p Provenance, opacity float32) mgl32.Vec4 {
	c := colornames.Cyan
	if p == Local {
		c = colornames.Red
	}
	return rgba(c, opacity)
}

func rgba(c color.RGBA, alpha float32) mgl32.Vec4 {
	return mgl32.Vec4{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, alpha}
}

// Build creates the subtree for coord, translated to the chunk origin. On
// error nothing stays allocated.
func (m *Materializer) Build(coord world.ChunkCoord, grid world.VoxelGrid, prov Provenance) (*scene.Group, error) {
	defer profiling.Track("streaming.Materialize")()
	if m.hull == nil {
		return nil, &MaterializeError{Key: coord, Err: ErrCancelled}
	}
	if err := grid.Validate(m.size); err != nil {
		return nil, &MaterializeError{Key: coord, Err: err}
	}

	var batches [256][]mgl32.Mat4
	half := float32(m.size) / 2
	i := 0
	for z := 0; z < m.size; z++ {
		for y := 0; y < m.size; y++ {
			for x := 0; x < m.size; x++ {
				b := grid[i]
				i++
				if b == byte(world.BlockTypeAir) {
					continue
				}
				if !world.BlockType(b).Valid() {
					return nil, &MaterializeError{Key: coord, Err: fmt.Errorf("voxel (%d,%d,%d): unknown block id %d", x, y, z, b)}
				}
				batches[b] = append(batches[b], mgl32.Translate3D(
					-half+0.5+float32(x),
					-half+0.5+float32(y),
					-half+0.5+float32(z),
				))
			}
		}
	}

	g := scene.NewGroup("chunk " + coord.String())
	fail := func(err error) (*scene.Group, error) {
		g.Release()
		return nil, &MaterializeError{Key: coord, Err: err}
	}

	for b, transforms := range batches {
		if len(transforms) == 0 {
			continue
		}
		block := world.BlockType(b)
		mat, ok := m.sc.Materials.Lookup(block)
		if !ok {
			return fail(fmt.Errorf("no material for %v", block))
		}
		mesh, err := scene.NewInstancedMesh(m.sc.Device, block, m.sc.Cube, mat, transforms)
		if err != nil {
			return fail(fmt.Errorf("upload %v instances: %w", block, err))
		}
		g.Add(mesh)
	}

	hullMat := m.hull.Clone()
	hullMat.Color = HullColor(prov, m.hull.Color.W())
	hull, err := scene.NewLineBox(m.sc.Device, m.sc.Wire,
		mgl32.Vec3{-half, -half, -half}, mgl32.Vec3{half, half, half}, hullMat)
	if err != nil {
		return fail(fmt.Errorf("upload hull: %w", err))
	}
	g.Add(hull)

	g.Position = coord.Origin(m.size)
	return g, nil
}

// Release drops the hull template; Build fails afterwards.
func (m *Materializer) Release() {
	m.hull = nil
}
