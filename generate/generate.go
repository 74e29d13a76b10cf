// Package generate contains the procedural builders: parameterized houses,
// towers, wells, villages, and the terrain analysis that guides where to put
// them. Builders run their block traffic inside a buffered client scope so a
// whole structure goes out in batched writes.
package generate

import (
	"context"
	"math/rand"

	"github.com/voxelforge/gdmc-bridge/world"
)

var (
	airBlock = world.NewBlock("minecraft:air")

	flowers = []string{
		"minecraft:poppy", "minecraft:dandelion", "minecraft:blue_orchid",
		"minecraft:allium", "minecraft:azure_bluet", "minecraft:red_tulip",
		"minecraft:orange_tulip", "minecraft:white_tulip",
	}
)

// pick returns a random palette entry. Palettes weight the plain material by
// repetition, so worn variants show up sparsely.
func pick(rng *rand.Rand, palette []world.Block) world.Block {
	return palette[rng.Intn(len(palette))]
}

func put(ctx context.Context, c world.Client, pos world.Position, b world.Block) error {
	_, err := c.PlaceBlock(ctx, pos, b)
	return err
}

// fill places one block at every position of the solid cuboid spanned by the
// corners, drawing from the palette per position.
func fill(ctx context.Context, c world.Client, rng *rand.Rand, c1, c2 world.Position, palette []world.Block) error {
	for _, p := range world.CuboidPositions(c1, c2) {
		if err := put(ctx, c, p, pick(rng, palette)); err != nil {
			return err
		}
	}
	return nil
}

func fillUniform(ctx context.Context, c world.Client, c1, c2 world.Position, b world.Block) error {
	_, err := c.PlaceCuboid(ctx, c1, c2, b, false)
	return err
}

// stoneFloorPalette returns the floor palette for the given base material,
// mixing in cracked and cobbled variants when the base is stone-like.
func stoneFloorPalette(material string) []world.Block {
	base := world.NewBlock(material)
	cracked, cobble := base, base
	if material == "minecraft:stone_bricks" {
		cracked = world.NewBlock("minecraft:cracked_stone_bricks")
	}
	if material == "minecraft:stone_bricks" || material == "minecraft:stone" {
		cobble = world.NewBlock("minecraft:cobblestone")
	}
	return []world.Block{base, base, base, cracked, cobble}
}
