package world

import (
	"github.com/go-gl/mathgl/mgl32"
)

// BlockType is a voxel block id as it travels on the wire: one byte per voxel.
type BlockType uint8

const (
	BlockTypeAir BlockType = iota
	BlockTypeStone
	BlockTypeDirt
	BlockTypeGrass
	BlockTypeSand
	BlockTypeGravel
	BlockTypeBedrock

	blockTypeCount
)

var blockNames = [blockTypeCount]string{
	BlockTypeAir:     "air",
	BlockTypeStone:   "stone",
	BlockTypeDirt:    "dirt",
	BlockTypeGrass:   "grass",
	BlockTypeSand:    "sand",
	BlockTypeGravel:  "gravel",
	BlockTypeBedrock: "bedrock",
}

// BlockTypes returns every non-air block id in enumeration order.
func BlockTypes() []BlockType {
	out := make([]BlockType, 0, blockTypeCount-1)
	for b := BlockTypeStone; b < blockTypeCount; b++ {
		out = append(out, b)
	}
	return out
}

// Valid reports whether b belongs to the block enumeration.
func (b BlockType) Valid() bool {
	return b < blockTypeCount
}

func (b BlockType) String() string {
	if !b.Valid() {
		return "unknown"
	}
	return blockNames[b]
}

var (
	// Unit cube with position and normal attributes, shared by every block instance.
	CubeVertices = []float32{
		// NORTH
		-0.5, -0.5, 0.5, 0, 0, 1,
		0.5, -0.5, 0.5, 0, 0, 1,
		0.5, 0.5, 0.5, 0, 0, 1,
		0.5, 0.5, 0.5, 0, 0, 1,
		-0.5, 0.5, 0.5, 0, 0, 1,
		-0.5, -0.5, 0.5, 0, 0, 1,

		// SOUTH
		0.5, -0.5, -0.5, 0, 0, -1,
		-0.5, -0.5, -0.5, 0, 0, -1,
		-0.5, 0.5, -0.5, 0, 0, -1,
		-0.5, 0.5, -0.5, 0, 0, -1,
		0.5, 0.5, -0.5, 0, 0, -1,
		0.5, -0.5, -0.5, 0, 0, -1,

		// WEST
		-0.5, -0.5, -0.5, -1, 0, 0,
		-0.5, -0.5, 0.5, -1, 0, 0,
		-0.5, 0.5, 0.5, -1, 0, 0,
		-0.5, 0.5, 0.5, -1, 0, 0,
		-0.5, 0.5, -0.5, -1, 0, 0,
		-0.5, -0.5, -0.5, -1, 0, 0,

		// EAST
		0.5, -0.5, 0.5, 1, 0, 0,
		0.5, -0.5, -0.5, 1, 0, 0,
		0.5, 0.5, -0.5, 1, 0, 0,
		0.5, 0.5, -0.5, 1, 0, 0,
		0.5, 0.5, 0.5, 1, 0, 0,
		0.5, -0.5, 0.5, 1, 0, 0,

		// TOP
		-0.5, 0.5, 0.5, 0, 1, 0,
		0.5, 0.5, 0.5, 0, 1, 0,
		0.5, 0.5, -0.5, 0, 1, 0,
		0.5, 0.5, -0.5, 0, 1, 0,
		-0.5, 0.5, -0.5, 0, 1, 0,
		-0.5, 0.5, 0.5, 0, 1, 0,

		// BOTTOM
		-0.5, -0.5, -0.5, 0, -1, 0,
		0.5, -0.5, -0.5, 0, -1, 0,
		0.5, -0.5, 0.5, 0, -1, 0,
		0.5, -0.5, 0.5, 0, -1, 0,
		-0.5, -0.5, 0.5, 0, -1, 0,
		-0.5, -0.5, -0.5, 0, -1, 0,
	}

	// Unit cube edges as line-segment pairs, used for chunk debug hulls.
	CubeWireframeVertices = []float32{
		-0.5, -0.5, -0.5, 0.5, -0.5, -0.5,
		0.5, -0.5, -0.5, 0.5, -0.5, 0.5,
		0.5, -0.5, 0.5, -0.5, -0.5, 0.5,
		-0.5, -0.5, 0.5, -0.5, -0.5, -0.5,
		-0.5, 0.5, -0.5, 0.5, 0.5, -0.5,
		0.5, 0.5, -0.5, 0.5, 0.5, 0.5,
		0.5, 0.5, 0.5, -0.5, 0.5, 0.5,
		-0.5, 0.5, 0.5, -0.5, 0.5, -0.5,
		-0.5, -0.5, -0.5, -0.5, 0.5, -0.5,
		0.5, -0.5, -0.5, 0.5, 0.5, -0.5,
		0.5, -0.5, 0.5, 0.5, 0.5, 0.5,
		-0.5, -0.5, 0.5, -0.5, 0.5, 0.5,
	}
)

// BlockColor returns the base albedo used for a block's material.
func BlockColor(b BlockType) mgl32.Vec3 {
	switch b {
	case BlockTypeStone:
		return mgl32.Vec3{0.50, 0.50, 0.52}
	case BlockTypeDirt:
		return mgl32.Vec3{0.45, 0.31, 0.18}
	case BlockTypeGrass:
		return mgl32.Vec3{0.33, 0.62, 0.24}
	case BlockTypeSand:
		return mgl32.Vec3{0.86, 0.80, 0.56}
	case BlockTypeGravel:
		return mgl32.Vec3{0.58, 0.55, 0.53}
	case BlockTypeBedrock:
		return mgl32.Vec3{0.20, 0.20, 0.20}
	default:
		return mgl32.Vec3{1.0, 0.0, 1.0} // Magenta (missing)
	}
}
