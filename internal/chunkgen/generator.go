// Package chunkgen is a reference implementation of the remote chunk
// generator: value-noise terrain with caves and painted surface layers.
package chunkgen

import (
	"hash/fnv"
	"math"

	"voxelview/internal/chunkapi"
	"voxelview/internal/profiling"
	"voxelview/internal/world"
)

const (
	surfaceOctaves = 4
	caveOctaves    = 3
	persistence    = 0.5
	lacunarity     = 2.0
)

// SeedOf maps a textual world seed to the numeric noise seed.
func SeedOf(seed string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	return int64(h.Sum64())
}

// Generate builds the voxel grid described by p. Equal params give equal grids.
func Generate(p chunkapi.Params) world.VoxelGrid {
	defer profiling.Track("chunkgen.Generate")()

	size := p.Size
	half := size / 2
	seed := SeedOf(p.Seed)
	grid := world.NewVoxelGrid(size)

	baseX := p.CX*size - half
	baseY := p.CY*size - half
	baseZ := p.CZ*size - half

	for z := 0; z < size; z++ {
		wz := float64(baseZ + z)
		for x := 0; x < size; x++ {
			wx := float64(baseX + x)
			h := surfaceHeight(wx, wz, seed, p.SurfaceScale, size)
			for y := 0; y < size; y++ {
				wy := baseY + y
				if wy > h {
					break
				}
				if p.CavesScale > 0 {
					c := octaveNoise3D(wx*p.CavesScale, float64(wy)*p.CavesScale, wz*p.CavesScale, seed+1, caveOctaves, persistence, lacunarity)
					if c > p.CavesThreshold {
						continue
					}
				}
				grid[world.Index(size, x, y, z)] = byte(p.Base)
			}
		}
	}

	world.PaintLayer{Block: world.BlockTypeGrass, Depth: p.GrassDepth, Policy: world.PaintContiguous}.Apply(grid, size)
	world.PaintLayer{Block: world.BlockTypeDirt, Depth: p.DirtDepth, Offset: p.GrassDepth, Policy: world.PaintContiguous}.Apply(grid, size)
	return grid
}

// surfaceHeight returns the world Y of the terrain surface at (wx, wz).
// The surface stays within the middle three quarters of a cy=0 chunk.
func surfaceHeight(wx, wz float64, seed int64, scale float64, size int) int {
	n := octaveNoise2D(wx*scale, wz*scale, seed, surfaceOctaves, persistence, lacunarity)
	return int(math.Floor((n - 0.5) * float64(size) * 0.75))
}
