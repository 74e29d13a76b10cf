package generate

import (
	"context"
	"math/rand"
	"testing"

	"github.com/voxelforge/gdmc-bridge/world"
)

// fakeWorld is a minimal in-memory backend: placements land in a map, reads
// come from canned data.
type fakeWorld struct {
	placed    map[world.Position]world.Block
	scopes    int
	buildArea world.Box
	heightmap [][]int
	biome     string
	blocks    map[world.Position]world.Block
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		placed: map[world.Position]world.Block{},
		blocks: map[world.Position]world.Block{},
		biome:  "minecraft:plains",
	}
}

func (f *fakeWorld) Version(ctx context.Context) (string, error) { return "1.21.4", nil }

func (f *fakeWorld) BuildArea(ctx context.Context) (world.Box, error) { return f.buildArea, nil }

func (f *fakeWorld) Block(ctx context.Context, pos world.Position) (world.Block, error) {
	if b, ok := f.blocks[pos]; ok {
		return b, nil
	}
	return world.NewBlock("minecraft:air"), nil
}

func (f *fakeWorld) Biome(ctx context.Context, pos world.Position) (string, error) {
	return f.biome, nil
}

func (f *fakeWorld) Heightmap(ctx context.Context, rect world.Rect, typ world.HeightmapType) ([][]int, error) {
	return f.heightmap, nil
}

func (f *fakeWorld) Players(ctx context.Context) ([]map[string]any, error)  { return nil, nil }
func (f *fakeWorld) Entities(ctx context.Context) ([]map[string]any, error) { return nil, nil }

func (f *fakeWorld) PlaceBlock(ctx context.Context, pos world.Position, b world.Block) (bool, error) {
	f.placed[pos] = b
	return true, nil
}

func (f *fakeWorld) PlaceCuboid(ctx context.Context, c1, c2 world.Position, b world.Block, hollow bool) (int, error) {
	positions := world.CuboidPositions(c1, c2)
	if hollow {
		positions = world.ShellPositions(c1, c2)
	}
	for _, p := range positions {
		f.placed[p] = b
	}
	return len(positions), nil
}

func (f *fakeWorld) PlaceEntities(ctx context.Context, entities []world.Entity) (string, error) {
	return "", nil
}

func (f *fakeWorld) PlaceStructure(ctx context.Context, s world.Structure) (string, error) {
	return "", nil
}

func (f *fakeWorld) RunCommand(ctx context.Context, command string) ([]world.CommandResult, error) {
	return nil, nil
}

func (f *fakeWorld) Flush(ctx context.Context) error { return nil }

func (f *fakeWorld) Buffered(ctx context.Context, fn func() error) error {
	f.scopes++
	return fn()
}

func testRand() *rand.Rand { return rand.New(rand.NewSource(1)) }

func TestBuildHouse(t *testing.T) {
	f := newFakeWorld()
	info, err := BuildHouse(context.Background(), f, testRand(), world.Position{X: 0, Y: 64, Z: 0}, HouseOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if info["type"] != "house" {
		t.Errorf("type = %v", info["type"])
	}
	dims := info["dimensions"].(map[string]any)
	if dims["width"] != 5 || dims["height"] != 5 || dims["depth"] != 8 {
		t.Errorf("dimensions = %v", dims)
	}
	if f.scopes != 1 {
		t.Errorf("house built in %d buffered scopes, want 1", f.scopes)
	}
	if len(f.placed) == 0 {
		t.Fatal("no blocks placed")
	}

	// Door sits centered on the front wall.
	door, ok := f.placed[world.Position{X: 2, Y: 65, Z: 0}]
	if !ok || door.ID != "minecraft:oak_door" {
		t.Errorf("front-center block = %v", door)
	}
}

func TestBuildHouseEvenWidthBecomesOdd(t *testing.T) {
	f := newFakeWorld()
	info, err := BuildHouse(context.Background(), f, testRand(), world.Position{X: 0, Y: 64, Z: 0}, HouseOptions{Width: 6})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dims := info["dimensions"].(map[string]any)
	if dims["width"] != 7 {
		t.Errorf("width = %v, want 7", dims["width"])
	}
}

func TestBuildTower(t *testing.T) {
	f := newFakeWorld()
	info, err := BuildTower(context.Background(), f, testRand(), world.Position{X: 0, Y: 64, Z: 0}, TowerOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info["type"] != "tower" {
		t.Errorf("type = %v", info["type"])
	}
	materials := info["materials"].(map[string]any)
	// Stone walls pair with a prismarine roof.
	if materials["roof"] != "minecraft:dark_prismarine" {
		t.Errorf("roof = %v", materials["roof"])
	}
	banner, ok := f.placed[world.Position{X: 0, Y: 64 + 12 + 6 + 2, Z: 0}]
	if !ok || banner.ID != "minecraft:red_banner" {
		t.Errorf("banner block = %v", banner)
	}
}

func TestBuildWell(t *testing.T) {
	f := newFakeWorld()
	if err := BuildWell(context.Background(), f, world.Position{X: 0, Y: 64, Z: 0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Central water column reaches three deep.
	for dy := 1; dy <= 3; dy++ {
		b, ok := f.placed[world.Position{X: 0, Y: 64 - dy, Z: 0}]
		if !ok || b.ID != "minecraft:water" {
			t.Errorf("column block at depth %d = %v", dy, b)
		}
	}
	// Corners of the base stay open.
	if _, ok := f.placed[world.Position{X: 2, Y: 64, Z: 2}]; ok {
		t.Error("base corner should be skipped")
	}
}

func flatHeightmap(sizeX, sizeZ, height int) [][]int {
	grid := make([][]int, sizeX)
	for x := range grid {
		grid[x] = make([]int, sizeZ)
		for z := range grid[x] {
			grid[x][z] = height
		}
	}
	return grid
}

func TestFindBuildPosition(t *testing.T) {
	t.Run("prefers flat ground", func(t *testing.T) {
		f := newFakeWorld()
		f.buildArea = world.Box{Offset: world.Position{X: 100, Y: 0, Z: 200}, Size: world.Position{X: 48, Y: 128, Z: 48}}
		grid := flatHeightmap(48, 48, 65)
		// Roughen everything outside a flat patch around (24, 24).
		for x := range grid {
			for z := range grid[x] {
				if x < 18 || x > 30 || z < 18 || z > 30 {
					grid[x][z] = 65 + (x*7+z*13)%20
				}
			}
		}
		f.heightmap = grid

		pos, avg, err := FindBuildPosition(context.Background(), f)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if avg != 65 {
			t.Errorf("avg height = %v, want 65", avg)
		}
		// Global coordinates include the build area offset.
		localX, localZ := pos.X-100, pos.Z-200
		if localX < 18 || localX > 30 || localZ < 18 || localZ > 30 {
			t.Errorf("picked (%d, %d), outside the flat patch", localX, localZ)
		}
	})

	t.Run("falls back to center", func(t *testing.T) {
		f := newFakeWorld()
		f.buildArea = world.Box{Offset: world.Position{X: 0, Y: 0, Z: 0}, Size: world.Position{X: 48, Y: 128, Z: 48}}
		// Everything above the buildable ceiling.
		f.heightmap = flatHeightmap(48, 48, 200)

		pos, _, err := FindBuildPosition(context.Background(), f)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pos.X != 24 || pos.Z != 24 {
			t.Errorf("fallback position = %v, want area center", pos)
		}
	})
}

func TestAnalyzeTerrain(t *testing.T) {
	f := newFakeWorld()
	rect := world.Rect{X: 0, Z: 0, SizeX: 16, SizeZ: 16}
	f.heightmap = flatHeightmap(16, 16, 65)

	result, err := AnalyzeTerrain(context.Background(), f, rect)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result["terrain_type"] != "very flat" {
		t.Errorf("terrain_type = %v", result["terrain_type"])
	}
	if result["primary_biome"] != "plains" {
		t.Errorf("primary_biome = %v", result["primary_biome"])
	}
	stats := result["height_statistics"].(map[string]any)
	if stats["min_height"] != 65 || stats["max_height"] != 65 {
		t.Errorf("height stats = %v", stats)
	}

	// The survey marks its bounds in red wool.
	corner, ok := f.placed[world.Position{X: 0, Y: 65, Z: 0}]
	if !ok || corner.ID != "minecraft:red_wool" {
		t.Errorf("bounds marker = %v", corner)
	}
}

func TestGenerateVillage(t *testing.T) {
	f := newFakeWorld()
	f.buildArea = world.Box{Offset: world.Position{X: -50, Y: 0, Z: -50}, Size: world.Position{X: 100, Y: 128, Z: 100}}
	f.heightmap = flatHeightmap(100, 100, 65)

	result, err := GenerateVillage(context.Background(), f, testRand(), world.Position{X: 0, Y: 64, Z: 0}, VillageOptions{Houses: 3, Radius: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	structures := result["structures"].([]map[string]any)
	if len(structures) < 1 || structures[0]["type"] != "well" {
		t.Fatalf("structures = %v", structures)
	}
	// Houses follow the terrain: heightmap 65 means surface block 64.
	for _, s := range structures[1:] {
		pos := s["position"].([]int)
		if pos[1] != 64 {
			t.Errorf("house at y=%d, want 64", pos[1])
		}
	}
}
