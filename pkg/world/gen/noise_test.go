package gen

import (
	"math"
	"testing"
)

func TestNoise2DDeterministic(t *testing.T) {
	ng1 := NewNoiseGenerator(12345)
	ng2 := NewNoiseGenerator(12345)

	for i := 0; i < 100; i++ {
		x := float64(i) * 0.1
		y := float64(i) * 0.2
		if ng1.Noise2D(x, y) != ng2.Noise2D(x, y) {
			t.Fatalf("Noise2D not deterministic at (%f, %f)", x, y)
		}
	}
}

func TestNoise2DRange(t *testing.T) {
	ng := NewNoiseGenerator(42)

	for i := 0; i < 10000; i++ {
		x := float64(i)*0.37 - 500
		y := float64(i)*0.53 - 500
		v := ng.Noise2D(x, y)
		if v < -1.0 || v > 1.0 {
			t.Fatalf("Noise2D(%f, %f) = %f, out of [-1,1]", x, y, v)
		}
	}
}

func TestNoise2DZeroAtLattice(t *testing.T) {
	ng := NewNoiseGenerator(3)
	for x := -5; x <= 5; x++ {
		for y := -5; y <= 5; y++ {
			if v := ng.Noise2D(float64(x), float64(y)); math.Abs(v) > 1e-12 {
				t.Errorf("Noise2D(%d, %d) = %f, want 0", x, y, v)
			}
		}
	}
}

func TestOctaveNoise2DClamped(t *testing.T) {
	ng := NewNoiseGenerator(77)
	for i := 0; i < 5000; i++ {
		v := ng.OctaveNoise2D(float64(i)*0.013, float64(i)*0.029, 8)
		if v < -1.0 || v > 1.0 {
			t.Fatalf("OctaveNoise2D = %f, out of [-1,1]", v)
		}
	}
}

func TestNoiseSmoothness(t *testing.T) {
	ng := NewNoiseGenerator(42)
	step := 0.001
	maxDiff := 0.0

	for i := 0; i < 1000; i++ {
		x := float64(i) * 0.1
		v1 := ng.Noise2D(x, 0.5)
		v2 := ng.Noise2D(x+step, 0.5)
		if diff := math.Abs(v2 - v1); diff > maxDiff {
			maxDiff = diff
		}
	}

	if maxDiff > 0.05 {
		t.Errorf("noise not smooth: max diff for step %f = %f", step, maxDiff)
	}
}

func TestHashRange(t *testing.T) {
	ng := NewNoiseGenerator(-99)
	for x := int32(-50); x < 50; x++ {
		for y := int32(-50); y < 50; y++ {
			h := ng.hash(x, y)
			if h <= -1.0 || h > 1.0 {
				t.Fatalf("hash(%d, %d) = %f, want (-1, 1]", x, y, h)
			}
		}
	}
}

func TestFastFloor(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{0, 0},
		{1.5, 1},
		{-0.5, -1},
		{-1, -1},
		{-1.01, -2},
	}
	for _, tt := range tests {
		if got := fastFloor(tt.in); got != tt.want {
			t.Errorf("fastFloor(%f) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
