package streaming

import (
	"math/rand/v2"

	"voxelview/internal/config"
	"voxelview/internal/world"
)

// Fallback generates a chunk locally when the remote endpoint gives up.
type Fallback interface {
	Generate(coord world.ChunkCoord) (world.VoxelGrid, error)
}

// FallbackFunc adapts a function to Fallback.
type FallbackFunc func(coord world.ChunkCoord) (world.VoxelGrid, error)

func (f FallbackFunc) Generate(coord world.ChunkCoord) (world.VoxelGrid, error) { return f(coord) }

// NewFallback builds the stock local generator from cfg. A nil rng keeps the
// generator's own time-seeded source.
func NewFallback(cfg config.Config, rng *rand.Rand) *world.FallbackGenerator {
	opts := []world.FallbackOption{
		world.WithGrassDepth(cfg.Fallback.GrassDepth),
		world.WithDirtDepth(cfg.Fallback.DirtDepthMin, cfg.Fallback.DirtDepthMax),
	}
	if rng != nil {
		opts = append(opts, world.WithRand(rng))
	}
	return world.NewFallbackGenerator(cfg.ChunkSize, cfg.Base(), opts...)
}
