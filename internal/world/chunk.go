package world

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// ChunkCoord identifies a chunk column in the infinite X/Z grid.
type ChunkCoord struct {
	X, Z int
}

// ChunkKey is the registry identity of a chunk. Equality is structural.
type ChunkKey = ChunkCoord

// KeyOf returns the key for chunk (cx, cz).
func KeyOf(cx, cz int) ChunkKey {
	return ChunkKey{X: cx, Z: cz}
}

// ChunkOf maps a world position to the chunk whose cube contains it.
// Chunks are centered on multiples of size, so this rounds x/size and z/size
// to the nearest integer (halves round away from zero).
func ChunkOf(pos mgl32.Vec3, size int) ChunkCoord {
	s := float64(size)
	return ChunkCoord{
		X: int(math.Round(float64(pos.X()) / s)),
		Z: int(math.Round(float64(pos.Z()) / s)),
	}
}

// Origin returns the world-space center of the chunk cube.
func (c ChunkCoord) Origin(size int) mgl32.Vec3 {
	return mgl32.Vec3{float32(c.X * size), 0, float32(c.Z * size)}
}

// Add offsets the coordinate by (dx, dz).
func (c ChunkCoord) Add(dx, dz int) ChunkCoord {
	return ChunkCoord{X: c.X + dx, Z: c.Z + dz}
}

func (c ChunkCoord) String() string {
	return strconv.Itoa(c.X) + "," + strconv.Itoa(c.Z)
}

// ParseChunkKey parses the "cx,cz" form produced by String.
func ParseChunkKey(s string) (ChunkKey, error) {
	xs, zs, ok := strings.Cut(s, ",")
	if !ok {
		return ChunkKey{}, fmt.Errorf("chunk key %q: missing comma", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return ChunkKey{}, fmt.Errorf("chunk key %q: %w", s, err)
	}
	z, err := strconv.Atoi(strings.TrimSpace(zs))
	if err != nil {
		return ChunkKey{}, fmt.Errorf("chunk key %q: %w", s, err)
	}
	return ChunkKey{X: x, Z: z}, nil
}

// Chebyshev returns max(|dx|, |dz|) between two chunks. It defines the
// keep/evict boundary.
func Chebyshev(a, b ChunkCoord) int {
	return max(abs(a.X-b.X), abs(a.Z-b.Z))
}

// Euclidean returns the length of the chunk offset (dx, dz). It defines load priority.
func Euclidean(dx, dz int) float64 {
	return math.Sqrt(float64(dx*dx + dz*dz))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
