package generate

import (
	"context"
	"math"
	"math/rand"
	"strings"

	"github.com/voxelforge/gdmc-bridge/world"
)

// TowerOptions parameterizes BuildTower. Zero values fall back to the
// reference dimensions.
type TowerOptions struct {
	Height   int
	Radius   int
	Material string
}

func (o *TowerOptions) applyDefaults() {
	if o.Height <= 0 {
		o.Height = 12
	}
	if o.Radius <= 0 {
		o.Radius = 3
	}
	if o.Material == "" {
		o.Material = "minecraft:stone_bricks"
	}
}

// BuildTower builds a cylindrical tower with a conical roof, door, window
// ring, interior lighting, and a banner on top. The position is the center
// of the base.
func BuildTower(ctx context.Context, c world.Client, rng *rand.Rand, pos world.Position, opts TowerOptions) (map[string]any, error) {
	opts.applyDefaults()
	x, y, z := pos.X, pos.Y, pos.Z
	height, radius := opts.Height, opts.Radius

	wallPalette := towerWallPalette(opts.Material)
	roofMaterial := "minecraft:dark_oak_planks"
	if strings.Contains(opts.Material, "stone") {
		roofMaterial = "minecraft:dark_prismarine"
	}
	roofBlock := world.NewBlock(roofMaterial)
	roofHeight := radius * 2

	err := c.Buffered(ctx, func() error {
		// Cylindrical shaft: ring of wall, hollow interior.
		for level := 0; level < height; level++ {
			for rx := -radius; rx <= radius; rx++ {
				for rz := -radius; rz <= radius; rz++ {
					dist := math.Sqrt(float64(rx*rx + rz*rz))
					p := world.Position{X: x + rx, Y: y + level, Z: z + rz}
					switch {
					case dist >= float64(radius-1) && dist <= float64(radius):
						if err := put(ctx, c, p, pick(rng, wallPalette)); err != nil {
							return err
						}
					case dist < float64(radius-1):
						if err := put(ctx, c, p, airBlock); err != nil {
							return err
						}
					}
				}
			}
		}

		// Conical roof.
		for level := 0; level <= roofHeight; level++ {
			roofRadius := float64(radius) * (1 - float64(level)/float64(roofHeight))
			for rx := -radius - 1; rx <= radius+1; rx++ {
				for rz := -radius - 1; rz <= radius+1; rz++ {
					if math.Sqrt(float64(rx*rx+rz*rz)) <= roofRadius {
						if err := put(ctx, c, world.Position{X: x + rx, Y: y + height + level, Z: z + rz}, roofBlock); err != nil {
							return err
						}
					}
				}
			}
		}

		// Door on the north face.
		doorX, doorZ := x, z-radius
		door := world.Block{ID: "minecraft:oak_door", States: map[string]string{"facing": "south", "hinge": "left"}}
		if err := put(ctx, c, world.Position{X: doorX, Y: y + 1, Z: doorZ}, door); err != nil {
			return err
		}
		if err := put(ctx, c, world.Position{X: doorX, Y: y + 2, Z: doorZ}, airBlock); err != nil {
			return err
		}

		// Window rings at one and two thirds of the height.
		glass := world.NewBlock("minecraft:glass")
		for _, windowY := range []int{height / 3, 2 * height / 3} {
			for direction := 0; direction < 4; direction++ {
				angle := float64(direction) * math.Pi / 2
				wx := x + int(float64(radius)*math.Cos(angle))
				wz := z + int(float64(radius)*math.Sin(angle))
				if wx == doorX && wz == doorZ {
					continue
				}
				if err := put(ctx, c, world.Position{X: wx, Y: y + windowY, Z: wz}, glass); err != nil {
					return err
				}
			}
		}

		// Lighting and the banner pole.
		lantern := world.NewBlock("minecraft:lantern")
		if err := put(ctx, c, world.Position{X: x, Y: y + 1, Z: z}, lantern); err != nil {
			return err
		}
		if err := put(ctx, c, world.Position{X: x, Y: y + height - 2, Z: z}, lantern); err != nil {
			return err
		}
		if err := put(ctx, c, world.Position{X: x, Y: y + height + roofHeight + 1, Z: z}, world.NewBlock("minecraft:oak_fence")); err != nil {
			return err
		}
		return put(ctx, c, world.Position{X: x, Y: y + height + roofHeight + 2, Z: z}, world.NewBlock("minecraft:red_banner"))
	})
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"type":     "tower",
		"position": pos.Slice(),
		"dimensions": map[string]any{
			"height":      height,
			"radius":      radius,
			"roof_height": roofHeight,
		},
		"materials": map[string]any{
			"walls": opts.Material,
			"roof":  roofMaterial,
		},
	}, nil
}

func towerWallPalette(material string) []world.Block {
	base := world.NewBlock(material)
	cracked, mossy := base, base
	if material == "minecraft:stone_bricks" {
		cracked = world.NewBlock("minecraft:cracked_stone_bricks")
		mossy = world.NewBlock("minecraft:mossy_stone_bricks")
	}
	return []world.Block{base, base, base, cracked, mossy}
}
