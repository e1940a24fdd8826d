package gen

import "github.com/go-theft-craft/voxelstream/pkg/world/chunk"

const flatHeight = 4

// FlatGenerator generates a superflat world: stone y=0..3, grass at y=4.
type FlatGenerator struct{}

// NewFlatGenerator creates a FlatGenerator.
func NewFlatGenerator(_ int32) *FlatGenerator {
	return &FlatGenerator{}
}

func (g *FlatGenerator) Generate(_ chunk.Key) *chunk.Chunk {
	c := chunk.New()
	for x := 0; x < chunk.Width; x++ {
		for z := 0; z < chunk.Length; z++ {
			fillColumn(c, x, z, flatHeight)
		}
	}
	return c
}

func (g *FlatGenerator) HeightAt(_, _ int) int {
	return flatHeight
}
