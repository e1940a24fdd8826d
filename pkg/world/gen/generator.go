package gen

import "github.com/go-theft-craft/voxelstream/pkg/world/chunk"

// Block types produced by the generators.
const (
	BlockAir   uint32 = 0
	BlockStone uint32 = 1 // column fill
	BlockGrass uint32 = 2 // column surface
)

// Generator produces chunk data deterministically from a seed.
type Generator interface {
	Generate(key chunk.Key) *chunk.Chunk
	HeightAt(blockX, blockZ int) int
}

// New returns the generator named by kind: "flat" or "default".
func New(kind string, seed int32) Generator {
	switch kind {
	case "flat":
		return NewFlatGenerator(seed)
	default:
		return NewDefaultGenerator(seed)
	}
}

// fillColumn fills local column (x, z) with stone below height and grass at height.
func fillColumn(c *chunk.Chunk, x, z, height int) {
	if height >= chunk.Height {
		height = chunk.Height - 1
	}
	for y := 0; y < height; y++ {
		c.SetBlock(x, y, z, BlockStone)
	}
	if height >= 0 {
		c.SetBlock(x, height, z, BlockGrass)
	}
}
