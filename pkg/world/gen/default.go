package gen

import "github.com/go-theft-craft/voxelstream/pkg/world/chunk"

const (
	minHeight = 32
	maxHeight = 64
	gridScale = 64.0
	octaves   = 3
)

// DefaultGenerator produces a rolling height field from layered gradient noise.
type DefaultGenerator struct {
	terrain *NoiseGenerator
}

// NewDefaultGenerator creates a DefaultGenerator from a seed.
func NewDefaultGenerator(seed int32) *DefaultGenerator {
	return &DefaultGenerator{terrain: NewNoiseGenerator(seed)}
}

func (g *DefaultGenerator) Generate(key chunk.Key) *chunk.Chunk {
	c := chunk.New()
	ox, oz := key.Origin()

	for x := 0; x < chunk.Width; x++ {
		for z := 0; z < chunk.Length; z++ {
			fillColumn(c, x, z, g.HeightAt(ox+x, oz+z))
		}
	}
	return c
}

// HeightAt returns the y of the surface block at a world column.
func (g *DefaultGenerator) HeightAt(blockX, blockZ int) int {
	noise := g.terrain.OctaveNoise2D(float64(blockX)/gridScale, float64(blockZ)/gridScale, octaves)
	return minHeight + int((maxHeight-minHeight)*(0.5+noise*0.5))
}
