package gen

import "math"

// Gradient noise after Ken Perlin's original algorithm. Gradient directions come
// from an integer hash of the lattice point and the seed, so the field is a pure
// function of (x, y, seed). Values are roughly in [-1, 1].

// NoiseGenerator produces deterministic gradient noise from a seed.
type NoiseGenerator struct {
	seed int32
}

// NewNoiseGenerator creates a noise generator for the given seed.
func NewNoiseGenerator(seed int32) *NoiseGenerator {
	return &NoiseGenerator{seed: seed}
}

// hash returns a pseudo-random value in (-1, 1] for lattice point (x, y).
// All arithmetic wraps at 32 bits.
func (ng *NoiseGenerator) hash(x, y int32) float64 {
	n := x + y*57 + ng.seed
	n = (n << 13) ^ n
	m := (n*(n*n*15731+789221) + 1376312589) & 0x7fffffff
	return 1.0 - float64(m)/1073741824.0
}

func (ng *NoiseGenerator) gradient(x, y int32) (gx, gy float64) {
	d := ng.hash(x, y) * math.Pi
	return math.Cos(d), math.Sin(d)
}

// Noise2D returns 2D gradient noise for the given coordinates.
func (ng *NoiseGenerator) Noise2D(x, y float64) float64 {
	x0 := fastFloor(x)
	y0 := fastFloor(y)
	x1 := x0 + 1
	y1 := y0 + 1

	px := x - float64(x0)
	py := y - float64(y0)

	tlx, tly := ng.gradient(int32(x0), int32(y0))
	trx, try := ng.gradient(int32(x1), int32(y0))
	blx, bly := ng.gradient(int32(x0), int32(y1))
	brx, bry := ng.gradient(int32(x1), int32(y1))

	tl := dot2(tlx, tly, px, py)
	tr := dot2(trx, try, px-1, py)
	bl := dot2(blx, bly, px, py-1)
	br := dot2(brx, bry, px-1, py-1)

	top := lerpSmooth(tl, tr, px)
	bottom := lerpSmooth(bl, br, px)
	return lerpSmooth(top, bottom, py)
}

// OctaveNoise2D layers octaves of 2D noise: octave i is sampled at frequency 2^i
// with amplitude 1/2^i. The result is clamped to [-1, 1].
func (ng *NoiseGenerator) OctaveNoise2D(x, y float64, octaves int) float64 {
	var total float64
	frequency := 1.0
	for _i := 0; _i < octaves; _i++ {
		total += ng.Noise2D(x*frequency, y*frequency) / frequency
		frequency *= 2.0
	}
	return clamp(total, -1, 1)
}

func fastFloor(x float64) int {
	xi := int(x)
	if x < float64(xi) {
		return xi - 1
	}
	return xi
}

// smoothStep is the quintic fade 6t^5 - 15t^4 + 10t^3.
func smoothStep(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerpSmooth(a, b, t float64) float64 {
	t = smoothStep(t)
	return (1-t)*a + t*b
}

func dot2(gx, gy, x, y float64) float64 {
	return gx*x + gy*y
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
