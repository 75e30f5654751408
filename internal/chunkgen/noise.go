package chunkgen

import (
	"math"
)

// Value noise on an integer lattice. Every lattice point gets a pseudo-random
// value in [0,1] from a SplitMix64 finalizer, so output depends only on the
// inputs and the seed.

const golden = 0x9E3779B97F4A7C15

func mix64(v uint64) uint64 {
	v += golden
	v = (v ^ (v >> 30)) * 0xBF58476D1CE4E5B9
	v = (v ^ (v >> 27)) * 0x94D049BB133111EB
	return v ^ (v >> 31)
}

func lattice2(x, z, seed int64) float64 {
	return unit(mix64(uint64(x) + uint64(z)<<1 + uint64(seed)*golden))
}

func lattice3(x, y, z, seed int64) float64 {
	return unit(mix64(uint64(x)*golden + uint64(y)*0x517CC1B727220A95 + uint64(z)*0x6C62272E07BB0142 + uint64(seed)))
}

func unit(h uint64) float64 {
	return float64(h&0xFFFFFFFF) / float64(0xFFFFFFFF)
}

// smooth is 6t⁵ - 15t⁴ + 10t³.
func smooth(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func noise2(x, z float64, seed int64) float64 {
	fx, fz := math.Floor(x), math.Floor(z)
	ix, iz := int64(fx), int64(fz)
	tx, tz := smooth(x-fx), smooth(z-fz)

	near := lerp(lattice2(ix, iz, seed), lattice2(ix+1, iz, seed), tx)
	far := lerp(lattice2(ix, iz+1, seed), lattice2(ix+1, iz+1, seed), tx)
	return lerp(near, far, tz)
}

func noise3(x, y, z float64, seed int64) float64 {
	fx, fy, fz := math.Floor(x), math.Floor(y), math.Floor(z)
	ix, iy, iz := int64(fx), int64(fy), int64(fz)
	tx, ty, tz := smooth(x-fx), smooth(y-fy), smooth(z-fz)

	edge := func(dy, dz int64) float64 {
		return lerp(lattice3(ix, iy+dy, iz+dz, seed), lattice3(ix+1, iy+dy, iz+dz, seed), tx)
	}
	return lerp(lerp(edge(0, 0), edge(1, 0), ty), lerp(edge(0, 1), edge(1, 1), ty), tz)
}

// fractal sums octaves of sample, scaling amplitude by persistence and
// frequency by lacunarity per octave, and normalizes back to [0,1].
func fractal(octaves int, persistence, lacunarity float64, seed int64, sample func(freq float64, seed int64) float64) float64 {
	amp, freq, sum, norm := 1.0, 1.0, 0.0, 0.0
	for i := range octaves {
		sum += sample(freq, seed+int64(i*131)) * amp
		norm += amp
		amp *= persistence
		freq *= lacunarity
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}

func octaveNoise2D(x, z float64, seed int64, octaves int, persistence, lacunarity float64) float64 {
	return fractal(octaves, persistence, lacunarity, seed, func(f float64, s int64) float64 {
		return noise2(x*f, z*f, s)
	})
}

func octaveNoise3D(x, y, z float64, seed int64, octaves int, persistence, lacunarity float64) float64 {
	return fractal(octaves, persistence, lacunarity, seed, func(f float64, s int64) float64 {
		return noise3(x*f, y*f, z*f, s)
	})
}
