package world

import "fmt"

// VoxelGrid is a flat chunk volume of size³ block ids indexed x + size*(y + size*z).
type VoxelGrid []byte

// NewVoxelGrid allocates an all-air grid for a chunk of the given side.
func NewVoxelGrid(size int) VoxelGrid {
	return make(VoxelGrid, Volume(size))
}

// Volume returns the number of voxels in a chunk of the given side.
func Volume(size int) int {
	return size * size * size
}

// Index converts local lattice coordinates to a flat grid index.
func Index(size, x, y, z int) int {
	return x + size*(y+size*z)
}

// Validate rejects grids whose length is not exactly size³.
func (g VoxelGrid) Validate(size int) error {
	if want := Volume(size); len(g) != want {
		return fmt.Errorf("voxel grid has %d bytes, want %d", len(g), want)
	}
	return nil
}

// At returns the block at local coordinates, or air when out of range.
func (g VoxelGrid) At(size, x, y, z int) BlockType {
	if x < 0 || x >= size || y < 0 || y >= size || z < 0 || z >= size {
		return BlockTypeAir
	}
	return BlockType(g[Index(size, x, y, z)])
}

// Set writes a block at local coordinates; out-of-range writes are ignored.
func (g VoxelGrid) Set(size, x, y, z int, b BlockType) {
	if x < 0 || x >= size || y < 0 || y >= size || z < 0 || z >= size {
		return
	}
	g[Index(size, x, y, z)] = byte(b)
}

// Fill sets every voxel to b.
func (g VoxelGrid) Fill(b BlockType) {
	for i := range g {
		g[i] = byte(b)
	}
}

// Counts tallies voxels per block id.
func (g VoxelGrid) Counts() map[BlockType]int {
	out := make(map[BlockType]int)
	for _, v := range g {
		out[BlockType(v)]++
	}
	return out
}
