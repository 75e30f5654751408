package world

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// FallbackGenerator produces chunks locally when the remote generator is
// unavailable. Output is a solid block of Base with a grass skin and a dirt
// band of random depth; it is cheaper than the remote terrain and looks different.
//
// The dirt depth is drawn per call, so generating the same coordinate twice
// can give different results.
type FallbackGenerator struct {
	size  int
	base  BlockType
	grass int
	dirtMin,
	dirtMax int
	rng *rand.Rand
}

// FallbackOption customizes a FallbackGenerator.
type FallbackOption func(*FallbackGenerator)

// WithGrassDepth sets the depth of the contiguous grass skin.
func WithGrassDepth(depth int) FallbackOption {
	return func(g *FallbackGenerator) { g.grass = depth }
}

// WithDirtDepth sets the inclusive range the dirt depth is drawn from.
func WithDirtDepth(lo, hi int) FallbackOption {
	return func(g *FallbackGenerator) { g.dirtMin, g.dirtMax = lo, hi }
}

// WithRand replaces the random source used for the dirt depth.
func WithRand(r *rand.Rand) FallbackOption {
	return func(g *FallbackGenerator) { g.rng = r }
}

// NewFallbackGenerator creates a generator for chunks of the given side.
func NewFallbackGenerator(size int, base BlockType, opts ...FallbackOption) *FallbackGenerator {
	now := uint64(time.Now().UnixNano())
	g := &FallbackGenerator{
		size:    size,
		base:    base,
		grass:   2,
		dirtMin: 1,
		dirtMax: 4,
		rng:     rand.New(rand.NewPCG(now, now>>7|1)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate builds the voxel grid for coord. The coordinate does not influence
// the output; it is only reported in errors.
func (g *FallbackGenerator) Generate(coord ChunkCoord) (VoxelGrid, error) {
	if g.size <= 1 {
		return nil, fmt.Errorf("fallback %v: chunk size %d", coord, g.size)
	}
	if !g.base.Valid() || g.base == BlockTypeAir {
		return nil, fmt.Errorf("fallback %v: unusable base block %d", coord, g.base)
	}
	if g.dirtMin < 0 || g.dirtMax < g.dirtMin {
		return nil, fmt.Errorf("fallback %v: dirt depth range [%d,%d]", coord, g.dirtMin, g.dirtMax)
	}

	grid := NewVoxelGrid(g.size)
	grid.Fill(g.base)

	PaintLayer{Block: BlockTypeGrass, Depth: g.grass, Policy: PaintContiguous}.Apply(grid, g.size)

	dirt := g.dirtMin + g.rng.IntN(g.dirtMax-g.dirtMin+1)
	PaintLayer{Block: BlockTypeDirt, Depth: dirt, Offset: g.grass, Policy: PaintAny}.Apply(grid, g.size)

	return grid, nil
}
