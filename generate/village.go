package generate

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/voxelforge/gdmc-bridge/world"
)

// VillageOptions parameterizes GenerateVillage.
type VillageOptions struct {
	Houses int
	Radius int
}

func (o *VillageOptions) applyDefaults() {
	if o.Houses <= 0 {
		o.Houses = 5
	}
	if o.Radius <= 0 {
		o.Radius = 30
	}
}

var houseMaterials = []string{
	"minecraft:oak_planks",
	"minecraft:spruce_planks",
	"minecraft:birch_planks",
	"minecraft:dark_oak_planks",
}

// GenerateVillage builds a well at the center and scatters houses around it
// on terrain-following positions, connected back to the well by paths. The
// build area must be designated; house positions falling outside it are
// skipped.
func GenerateVillage(ctx context.Context, c world.Client, rng *rand.Rand, center world.Position, opts VillageOptions) (map[string]any, error) {
	opts.applyDefaults()

	area, err := c.BuildArea(ctx)
	if err != nil {
		return nil, err
	}
	rect := area.Rect()
	heightmap, err := c.Heightmap(ctx, rect, world.MotionBlockingNoLeaves)
	if err != nil {
		return nil, err
	}
	if len(heightmap) == 0 {
		return nil, fmt.Errorf("no heightmap data for build area")
	}

	var structures []map[string]any

	if err := BuildWell(ctx, c, center); err != nil {
		return nil, err
	}
	structures = append(structures, map[string]any{
		"type":     "well",
		"position": center.Slice(),
	})

	for i := 0; i < opts.Houses; i++ {
		angle := rng.Float64() * 2 * math.Pi
		distance := float64(opts.Radius) * (0.3 + 0.6*rng.Float64())
		houseX := center.X + int(distance*math.Cos(angle))
		houseZ := center.Z + int(distance*math.Sin(angle))

		localX := houseX - rect.X
		localZ := houseZ - rect.Z
		if localX < 0 || localX >= len(heightmap) || localZ < 0 || localZ >= len(heightmap[localX]) {
			continue
		}
		// The heightmap reports the level above the surface.
		houseY := heightmap[localX][localZ] - 1

		housePos := world.Position{X: houseX, Y: houseY, Z: houseZ}
		houseOpts := HouseOptions{
			Height:       3 + rng.Intn(4),
			Depth:        6 + rng.Intn(4),
			Width:        5 + rng.Intn(3),
			WallMaterial: houseMaterials[rng.Intn(len(houseMaterials))],
		}
		info, err := BuildHouse(ctx, c, rng, housePos, houseOpts)
		if err != nil {
			return nil, err
		}
		structures = append(structures, info)

		if err := decorateArea(ctx, c, rng, housePos, houseOpts.Width, houseOpts.Depth); err != nil {
			return nil, err
		}
	}

	// Paths from each house back to the well.
	for _, s := range structures[1:] {
		posSlice := s["position"].([]int)
		end := world.Position{X: posSlice[0], Y: posSlice[1], Z: posSlice[2]}
		if err := buildPath(ctx, c, rng, center, end, rect, heightmap); err != nil {
			return nil, err
		}
	}

	return map[string]any{
		"type":       "village",
		"center":     center.Slice(),
		"radius":     opts.Radius,
		"structures": structures,
	}, nil
}

// BuildWell builds a stone well with cobblestone-wall posts, a slab roof, a
// water column, and a slab apron around the base.
func BuildWell(ctx context.Context, c world.Client, center world.Position) error {
	x, y, z := center.X, center.Y, center.Z

	return c.Buffered(ctx, func() error {
		stoneBricks := world.NewBlock("minecraft:stone_bricks")
		for dx := -2; dx <= 2; dx++ {
			for dz := -2; dz <= 2; dz++ {
				// Rounded base: drop the corners.
				if abs(dx) == 2 && abs(dz) == 2 {
					continue
				}
				if err := put(ctx, c, world.Position{X: x + dx, Y: y, Z: z + dz}, stoneBricks); err != nil {
					return err
				}
			}
		}

		wall := world.NewBlock("minecraft:cobblestone_wall")
		for _, corner := range [][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}} {
			for dy := 1; dy <= 2; dy++ {
				if err := put(ctx, c, world.Position{X: x + corner[0]*2, Y: y + dy, Z: z + corner[1]*2}, wall); err != nil {
					return err
				}
			}
		}

		fence := world.NewBlock("minecraft:oak_fence")
		for _, dx := range []int{-2, 0, 2} {
			for _, dz := range []int{-2, 0, 2} {
				if (dx == 0 && dz == 0) || (abs(dx) == 2 && abs(dz) == 2) {
					continue
				}
				if err := put(ctx, c, world.Position{X: x + dx, Y: y + 1, Z: z + dz}, fence); err != nil {
					return err
				}
			}
		}

		slab := world.NewBlock("minecraft:oak_slab")
		for dx := -1; dx <= 1; dx++ {
			for dz := -1; dz <= 1; dz++ {
				if err := put(ctx, c, world.Position{X: x + dx, Y: y + 3, Z: z + dz}, slab); err != nil {
					return err
				}
			}
		}

		water := world.NewBlock("minecraft:water")
		for dx := -1; dx <= 1; dx++ {
			for dz := -1; dz <= 1; dz++ {
				depth := 1
				if dx == 0 && dz == 0 {
					depth = 3
				}
				for dy := 1; dy <= depth; dy++ {
					if err := put(ctx, c, world.Position{X: x + dx, Y: y - dy, Z: z + dz}, water); err != nil {
						return err
					}
				}
			}
		}

		apron := world.NewBlock("minecraft:stone_slab")
		for dx := -3; dx <= 3; dx++ {
			for dz := -3; dz <= 3; dz++ {
				dist := math.Sqrt(float64(dx*dx + dz*dz))
				if dist >= 2.5 && dist <= 3.5 {
					if err := put(ctx, c, world.Position{X: x + dx, Y: y, Z: z + dz}, apron); err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
}

type decoration struct {
	base string
	top  string
}

var decorations = []decoration{
	{"minecraft:oak_fence", "minecraft:lantern"},
	{"minecraft:spruce_fence", "minecraft:flower_pot"},
	{"minecraft:barrel", ""},
	{"minecraft:campfire", ""},
	{"minecraft:composter", ""},
}

// decorateArea scatters props and greenery around a house footprint.
func decorateArea(ctx context.Context, c world.Client, rng *rand.Rand, pos world.Position, width, depth int) error {
	x, y, z := pos.X, pos.Y, pos.Z

	return c.Buffered(ctx, func() error {
		var spots []world.Position
		spots = append(spots, world.Position{X: x + width/2, Y: y, Z: z - 2})
		for sideZ := z + 2; sideZ < z+depth-2; sideZ += 3 {
			spots = append(spots, world.Position{X: x - 2, Y: y, Z: sideZ})
			spots = append(spots, world.Position{X: x + width + 1, Y: y, Z: sideZ})
		}
		spots = append(spots, world.Position{X: x + width/2, Y: y, Z: z + depth + 1})

		count := 2 + rng.Intn(4)
		if count > len(spots) {
			count = len(spots)
		}
		rng.Shuffle(len(spots), func(i, j int) { spots[i], spots[j] = spots[j], spots[i] })

		for _, spot := range spots[:count] {
			d := decorations[rng.Intn(len(decorations))]
			if err := put(ctx, c, spot, world.NewBlock(d.base)); err != nil {
				return err
			}
			if d.top == "" {
				continue
			}
			above := world.Position{X: spot.X, Y: spot.Y + 1, Z: spot.Z}
			if d.top == "minecraft:flower_pot" {
				flower := flowers[rng.Intn(len(flowers))]
				pot := world.Block{
					ID:   "minecraft:flower_pot",
					Data: fmt.Sprintf("{Contents:{id:%q}}", flower),
				}
				if err := put(ctx, c, above, pot); err != nil {
					return err
				}
			} else if err := put(ctx, c, above, world.NewBlock(d.top)); err != nil {
				return err
			}
		}

		// Greenery scatter, skipping the footprint itself.
		for i := 0; i < 5+rng.Intn(6); i++ {
			dx := rng.Intn(width+11) - 5
			dz := rng.Intn(depth+11) - 5
			if dx >= -1 && dx <= width && dz >= -1 && dz <= depth {
				continue
			}
			b := world.NewBlock("minecraft:short_grass")
			if rng.Float64() < 0.7 {
				b = world.NewBlock(flowers[rng.Intn(len(flowers))])
			}
			if err := put(ctx, c, world.Position{X: x + dx, Y: y + 1, Z: z + dz}, b); err != nil {
				return err
			}
		}
		return nil
	})
}

var pathPalette = []world.Block{
	world.NewBlock("minecraft:dirt_path"),
	world.NewBlock("minecraft:dirt_path"),
	world.NewBlock("minecraft:dirt_path"),
	world.NewBlock("minecraft:coarse_dirt"),
	world.NewBlock("minecraft:gravel"),
}

// buildPath lays a terrain-following path between two points, with the
// occasional lantern for night lighting.
func buildPath(ctx context.Context, c world.Client, rng *rand.Rand, start, end world.Position, rect world.Rect, heightmap [][]int) error {
	return c.Buffered(ctx, func() error {
		for _, point := range world.Line2D(start.X, start.Z, end.X, end.Z) {
			localX := point[0] - rect.X
			localZ := point[1] - rect.Z
			if localX < 0 || localX >= len(heightmap) || localZ < 0 || localZ >= len(heightmap[localX]) {
				continue
			}
			height := heightmap[localX][localZ] - 1
			if err := put(ctx, c, world.Position{X: point[0], Y: height, Z: point[1]}, pick(rng, pathPalette)); err != nil {
				return err
			}
			if rng.Float64() < 0.05 {
				if err := put(ctx, c, world.Position{X: point[0], Y: height + 1, Z: point[1]}, world.NewBlock("minecraft:lantern")); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
