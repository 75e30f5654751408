package chunkgen

import (
	"bytes"
	"testing"

	"voxelview/internal/chunkapi"
	"voxelview/internal/world"
)

func testParams(cx, cz int) chunkapi.Params {
	return chunkapi.Params{
		Size: 16, Seed: "test", Base: world.BlockTypeStone,
		CX: cx, CZ: cz,
		SurfaceScale: 0.06, CavesScale: 0.18, CavesThreshold: 0.7,
		GrassDepth: 3, DirtDepth: 3,
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a := Generate(testParams(2, -5))
	b := Generate(testParams(2, -5))
	if !bytes.Equal(a, b) {
		t.Error("Expected identical grids for identical params")
	}
	if err := a.Validate(16); err != nil {
		t.Errorf("Expected CHUNK³ bytes: %v", err)
	}
}

func TestGenerateVariesBySeedAndCoord(t *testing.T) {
	a := Generate(testParams(0, 0))
	other := testParams(0, 0)
	other.Seed = "different"
	if bytes.Equal(a, Generate(other)) {
		t.Error("Expected different seeds to give different terrain")
	}
	if bytes.Equal(a, Generate(testParams(9, 9))) {
		t.Error("Expected different coordinates to give different terrain")
	}
}

func TestGenerateSurfaceIsPainted(t *testing.T) {
	p := testParams(1, 1)
	p.CavesScale = 0
	g := Generate(p)
	counts := g.Counts()
	if counts[world.BlockTypeGrass] == 0 {
		t.Error("Expected a grass surface")
	}
	if counts[world.BlockTypeDirt] == 0 {
		t.Error("Expected dirt under the grass")
	}
	if counts[world.BlockTypeAir] == 0 {
		t.Error("Expected air above the surface")
	}
	for z := 0; z < p.Size; z++ {
		for x := 0; x < p.Size; x++ {
			if b := g.At(p.Size, x, 0, z); b == world.BlockTypeAir {
				t.Fatalf("Expected solid ground at the chunk bottom (%d,%d)", x, z)
			}
		}
	}
}

func TestOctaveNoiseRange(t *testing.T) {
	for i := 0; i < 500; i++ {
		x := float64(i) * 0.37
		if n := octaveNoise2D(x, -x, 42, 4, 0.5, 2); n < 0 || n > 1 {
			t.Fatalf("octaveNoise2D out of [0,1]: %v", n)
		}
		if n := octaveNoise3D(x, x*0.5, -x, 42, 3, 0.5, 2); n < 0 || n > 1 {
			t.Fatalf("octaveNoise3D out of [0,1]: %v", n)
		}
	}
}

func BenchmarkGenerate(b *testing.B) {
	p := testParams(0, 0)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.CX = i
		_ = Generate(p)
	}
}
