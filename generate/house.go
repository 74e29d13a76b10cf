package generate

import (
	"context"
	"math/rand"

	"github.com/voxelforge/gdmc-bridge/world"
)

// HouseOptions parameterizes BuildHouse. Zero values fall back to the
// reference dimensions.
type HouseOptions struct {
	Height        int
	Depth         int
	Width         int
	WallMaterial  string
	FloorMaterial string
}

func (o *HouseOptions) applyDefaults() {
	if o.Height <= 0 {
		o.Height = 5
	}
	if o.Depth <= 0 {
		o.Depth = 8
	}
	if o.Width <= 0 {
		o.Width = 5
	}
	// Odd width keeps the door centered.
	if o.Width%2 == 0 {
		o.Width++
	}
	if o.WallMaterial == "" {
		o.WallMaterial = "minecraft:oak_planks"
	}
	if o.FloorMaterial == "" {
		o.FloorMaterial = "minecraft:stone_bricks"
	}
}

// BuildHouse builds a pitched-roof house with the given corner position and
// dimensions, including a foundation, door, windows, and basic furnishing.
func BuildHouse(ctx context.Context, c world.Client, rng *rand.Rand, pos world.Position, opts HouseOptions) (map[string]any, error) {
	opts.applyDefaults()
	x, y, z := pos.X, pos.Y, pos.Z
	width, height, depth := opts.Width, opts.Height, opts.Depth

	err := c.Buffered(ctx, func() error {
		floorPalette := stoneFloorPalette(opts.FloorMaterial)
		wall := world.NewBlock(opts.WallMaterial)

		// Shell, floor, and a foundation for uneven terrain.
		if _, err := c.PlaceCuboid(ctx, pos, world.Position{X: x + width - 1, Y: y + height - 1, Z: z + depth - 1}, wall, true); err != nil {
			return err
		}
		if err := fill(ctx, c, rng, pos, world.Position{X: x + width - 1, Y: y, Z: z + depth - 1}, floorPalette); err != nil {
			return err
		}
		if err := fill(ctx, c, rng, pos, world.Position{X: x + width - 1, Y: y - 5, Z: z + depth - 1}, floorPalette); err != nil {
			return err
		}

		// Hollow out the interior.
		if err := fillUniform(ctx, c, world.Position{X: x + 1, Y: y + 1, Z: z + 1}, world.Position{X: x + width - 2, Y: y + height - 2, Z: z + depth - 2}, airBlock); err != nil {
			return err
		}

		// Door centered on the front wall, with cleared approach.
		doorX := x + width/2
		door := world.Block{ID: "minecraft:oak_door", States: map[string]string{"facing": "north", "hinge": "left"}}
		if err := put(ctx, c, world.Position{X: doorX, Y: y + 1, Z: z}, door); err != nil {
			return err
		}
		if err := fillUniform(ctx, c, world.Position{X: doorX - 1, Y: y + 1, Z: z - 1}, world.Position{X: doorX + 1, Y: y + 3, Z: z - 1}, airBlock); err != nil {
			return err
		}

		// Windows: front pair, sides every other block, one at the back.
		paneEW := world.Block{ID: "minecraft:glass_pane", States: map[string]string{"east": "true", "west": "true"}}
		paneNS := world.Block{ID: "minecraft:glass_pane", States: map[string]string{"north": "true", "south": "true"}}
		if width >= 5 {
			if err := put(ctx, c, world.Position{X: x + 1, Y: y + 2, Z: z}, paneEW); err != nil {
				return err
			}
			if err := put(ctx, c, world.Position{X: x + width - 2, Y: y + 2, Z: z}, paneEW); err != nil {
				return err
			}
		}
		for sideZ := z + 2; sideZ < z+depth-2; sideZ += 2 {
			if err := put(ctx, c, world.Position{X: x, Y: y + 2, Z: sideZ}, paneNS); err != nil {
				return err
			}
			if err := put(ctx, c, world.Position{X: x + width - 1, Y: y + 2, Z: sideZ}, paneNS); err != nil {
				return err
			}
		}
		if err := put(ctx, c, world.Position{X: x + width/2, Y: y + 2, Z: z + depth - 1}, paneEW); err != nil {
			return err
		}

		if err := buildRoof(ctx, c, pos, width, height, depth); err != nil {
			return err
		}

		// Light and furnishing.
		if err := put(ctx, c, world.Position{X: x + width/2, Y: y + height - 2, Z: z + depth/2}, world.NewBlock("minecraft:lantern")); err != nil {
			return err
		}
		if width >= 5 && depth >= 6 {
			bedFoot := world.Block{ID: "minecraft:red_bed", States: map[string]string{"facing": "west", "part": "foot"}}
			bedHead := world.Block{ID: "minecraft:red_bed", States: map[string]string{"facing": "west", "part": "head"}}
			if err := put(ctx, c, world.Position{X: x + width - 3, Y: y + 1, Z: z + depth - 2}, bedFoot); err != nil {
				return err
			}
			if err := put(ctx, c, world.Position{X: x + width - 3, Y: y + 1, Z: z + depth - 3}, bedHead); err != nil {
				return err
			}
			if err := put(ctx, c, world.Position{X: x + 1, Y: y + 1, Z: z + depth - 2}, world.NewBlock("minecraft:crafting_table")); err != nil {
				return err
			}
			if depth >= 8 {
				if err := put(ctx, c, world.Position{X: x + width/2, Y: y + 1, Z: z + 2}, world.NewBlock("minecraft:oak_fence")); err != nil {
					return err
				}
				if err := put(ctx, c, world.Position{X: x + width/2, Y: y + 2, Z: z + 2}, world.NewBlock("minecraft:torch")); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"type":     "house",
		"position": pos.Slice(),
		"dimensions": map[string]any{
			"width":  width,
			"height": height,
			"depth":  depth,
		},
		"materials": map[string]any{
			"walls": opts.WallMaterial,
			"floor": opts.FloorMaterial,
		},
	}, nil
}

// buildRoof lays a pitched stair roof along the Z axis with upside-down
// accent stairs on the gable ends and a plank ridge.
func buildRoof(ctx context.Context, c world.Client, pos world.Position, width, height, depth int) error {
	x, y, z := pos.X, pos.Y, pos.Z
	mid := x + width/2

	stairsEast := world.Block{ID: "minecraft:oak_stairs", States: map[string]string{"facing": "east"}}
	stairsWest := world.Block{ID: "minecraft:oak_stairs", States: map[string]string{"facing": "west"}}
	accentWest := world.Block{ID: "minecraft:oak_stairs", States: map[string]string{"facing": "west", "half": "top"}}
	accentEast := world.Block{ID: "minecraft:oak_stairs", States: map[string]string{"facing": "east", "half": "top"}}

	for dx := 1; dx <= width/2; dx++ {
		yy := y + height + 2 - dx
		if err := fillUniform(ctx, c, world.Position{X: mid - dx, Y: yy, Z: z - 1}, world.Position{X: mid - dx, Y: yy, Z: z + depth}, stairsEast); err != nil {
			return err
		}
		if err := fillUniform(ctx, c, world.Position{X: mid + dx, Y: yy, Z: z - 1}, world.Position{X: mid + dx, Y: yy, Z: z + depth}, stairsWest); err != nil {
			return err
		}
		for _, zz := range []int{z - 1, z + depth} {
			if err := put(ctx, c, world.Position{X: mid - dx + 1, Y: yy, Z: zz}, accentWest); err != nil {
				return err
			}
			if err := put(ctx, c, world.Position{X: mid + dx - 1, Y: yy, Z: zz}, accentEast); err != nil {
				return err
			}
		}
	}
	return fillUniform(ctx, c, world.Position{X: mid, Y: y + height + 1, Z: z - 1}, world.Position{X: mid, Y: y + height + 1, Z: z + depth}, world.NewBlock("minecraft:oak_planks"))
}
