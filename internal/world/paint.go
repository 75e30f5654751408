package world

// PaintPolicy controls how a paint layer walks down a column.
type PaintPolicy int

const (
	// PaintContiguous paints an unbroken skin: the walk stops at the first air voxel.
	PaintContiguous PaintPolicy = iota
	// PaintAny paints every solid voxel inside the layer's band, gaps allowed.
	PaintAny
)

// PaintLayer recolors the top of every column. Offset skips that many layers
// below the topmost solid voxel before painting Depth layers.
type PaintLayer struct {
	Block  BlockType
	Depth  int
	Offset int
	Policy PaintPolicy
}

// Apply paints the layer into g in place. Air voxels are never painted.
func (l PaintLayer) Apply(g VoxelGrid, size int) {
	if l.Depth <= 0 {
		return
	}
	for z := 0; z < size; z++ {
		for x := 0; x < size; x++ {
			top := topSolid(g, size, x, z)
			if top < 0 {
				continue
			}
			switch l.Policy {
			case PaintContiguous:
				l.paintContiguous(g, size, x, z, top)
			default:
				l.paintAny(g, size, x, z, top)
			}
		}
	}
}

func (l PaintLayer) paintContiguous(g VoxelGrid, size, x, z, top int) {
	skipped, painted := 0, 0
	for y := top; y >= 0 && painted < l.Depth; y-- {
		i := Index(size, x, y, z)
		if BlockType(g[i]) == BlockTypeAir {
			return
		}
		if skipped < l.Offset {
			skipped++
			continue
		}
		g[i] = byte(l.Block)
		painted++
	}
}

func (l PaintLayer) paintAny(g VoxelGrid, size, x, z, top int) {
	hi := top - l.Offset
	lo := max(hi-l.Depth+1, 0)
	for y := hi; y >= lo; y-- {
		i := Index(size, x, y, z)
		if BlockType(g[i]) != BlockTypeAir {
			g[i] = byte(l.Block)
		}
	}
}

// topSolid returns the highest non-air y in column (x, z), or -1.
func topSolid(g VoxelGrid, size, x, z int) int {
	for y := size - 1; y >= 0; y-- {
		if BlockType(g[Index(size, x, y, z)]) != BlockTypeAir {
			return y
		}
	}
	return -1
}
