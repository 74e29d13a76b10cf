package generate

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/voxelforge/gdmc-bridge/world"
)

// Sampling parameters for terrain analysis and site search.
const (
	sampleStep     = 3
	sampleSize     = 7
	minBuildHeight = 60
	maxBuildHeight = 120
)

// FindBuildPosition scans the build area's heightmap for the flattest spot
// at a buildable elevation. Returns the site in global coordinates and the
// average surface height there. Falls back to the area center when nothing
// qualifies.
func FindBuildPosition(ctx context.Context, c world.Client) (world.Position, float64, error) {
	area, err := c.BuildArea(ctx)
	if err != nil {
		return world.Position{}, 0, err
	}
	rect := area.Rect()
	heightmap, err := c.Heightmap(ctx, rect, world.MotionBlockingNoLeaves)
	if err != nil {
		return world.Position{}, 0, err
	}
	if len(heightmap) == 0 || len(heightmap[0]) == 0 {
		return world.Position{}, 0, fmt.Errorf("no heightmap data for build area")
	}

	sizeX, sizeZ := len(heightmap), len(heightmap[0])
	margin := sampleSize + 2
	half := sampleSize / 2

	bestX, bestZ := -1, -1
	bestVariance := math.Inf(1)
	bestAvg := 0.0

	for x := margin; x < sizeX-margin; x += sampleStep {
		for z := margin; z < sizeZ-margin; z += sampleStep {
			avg, variance := sampleStats(heightmap, x-half, x+half, z-half, z+half)
			if avg < minBuildHeight || avg > maxBuildHeight {
				continue
			}
			if bestX < 0 || variance < bestVariance {
				bestVariance = variance
				bestX, bestZ = x, z
				bestAvg = avg
			}
		}
	}

	if bestX < 0 {
		bestX, bestZ = sizeX/2, sizeZ/2
		bestAvg = float64(heightmap[bestX][bestZ])
	}

	pos := world.Position{X: bestX + rect.X, Y: int(bestAvg), Z: bestZ + rect.Z}
	return pos, bestAvg, nil
}

func sampleStats(heightmap [][]int, x1, x2, z1, z2 int) (avg, variance float64) {
	var sum, count float64
	for x := x1; x <= x2; x++ {
		for z := z1; z <= z2; z++ {
			sum += float64(heightmap[x][z])
			count++
		}
	}
	avg = sum / count
	for x := x1; x <= x2; x++ {
		for z := z1; z <= z2; z++ {
			d := float64(heightmap[x][z]) - avg
			variance += d * d
		}
	}
	return avg, variance / count
}

// AnalyzeTerrain surveys the given region: height statistics, water and tree
// coverage, biome distribution, and building recommendations. It marks the
// surveyed bounds with a red-wool wireframe at the mid elevation.
func AnalyzeTerrain(ctx context.Context, c world.Client, rect world.Rect) (map[string]any, error) {
	heightmap, err := c.Heightmap(ctx, rect, world.MotionBlockingNoLeaves)
	if err != nil {
		return nil, err
	}
	if len(heightmap) == 0 || len(heightmap[0]) == 0 {
		return nil, fmt.Errorf("no heightmap data for region")
	}

	minH, maxH := heightmap[0][0], heightmap[0][0]
	var sum float64
	var count int
	for _, row := range heightmap {
		for _, h := range row {
			if h < minH {
				minH = h
			}
			if h > maxH {
				maxH = h
			}
			sum += float64(h)
			count++
		}
	}
	avgH := sum / float64(count)
	var variance float64
	for _, row := range heightmap {
		for _, h := range row {
			d := float64(h) - avgH
			variance += d * d
		}
	}
	stdDev := math.Sqrt(variance / float64(count))

	waterCount, treeCount := 0, 0
	biomeCounts := map[string]int{}
	samples := 0

	for x := 0; x < rect.SizeX; x += sampleStep {
		for z := 0; z < rect.SizeZ; z += sampleStep {
			if x >= len(heightmap) || z >= len(heightmap[x]) {
				continue
			}
			samples++
			height := heightmap[x][z]
			globalX, globalZ := rect.X+x, rect.Z+z

			if hasBlockBelow(ctx, c, globalX, globalZ, height, "water") {
				waterCount++
			}
			if hasBlockAbove(ctx, c, globalX, globalZ, height, "log") {
				treeCount++
			}

			biome, err := c.Biome(ctx, world.Position{X: globalX, Y: height, Z: globalZ})
			if err == nil && biome != "" {
				if i := strings.LastIndex(biome, ":"); i >= 0 {
					biome = biome[i+1:]
				}
				biomeCounts[biome]++
			}
		}
	}

	terrainType := classifyTerrain(stdDev)
	waterCoverage := coverage(waterCount, samples)
	treeDensity := coverage(treeCount, samples)
	waterDesc := describeWater(waterCoverage)
	treeDesc := describeTrees(treeDensity)
	primaryBiome, distribution := rankBiomes(biomeCounts)

	// Mark the surveyed bounds.
	midY := (minH + maxH) / 2
	if err := markBounds(ctx, c, rect, midY); err != nil {
		return nil, err
	}

	return map[string]any{
		"dimensions": map[string]any{
			"width": rect.SizeX,
			"depth": rect.SizeZ,
		},
		"height_statistics": map[string]any{
			"min_height":         minH,
			"max_height":         maxH,
			"average_height":     round2(avgH),
			"standard_deviation": round2(stdDev),
		},
		"terrain_type":       terrainType,
		"primary_biome":      primaryBiome,
		"biome_distribution": distribution,
		"water": map[string]any{
			"coverage":     round1(waterCoverage * 100),
			"description":  waterDesc,
			"sample_count": waterCount,
		},
		"vegetation": map[string]any{
			"tree_density": round1(treeDensity * 100),
			"description":  treeDesc,
			"sample_count": treeCount,
		},
		"build_recommendations": buildRecommendations(terrainType, primaryBiome, waterDesc, treeDesc, minH, maxH),
	}, nil
}

func hasBlockBelow(ctx context.Context, c world.Client, x, z, height int, fragment string) bool {
	floor := height - 10
	if floor < 58 {
		floor = 58
	}
	for y := floor; y < height+2; y++ {
		b, err := c.Block(ctx, world.Position{X: x, Y: y, Z: z})
		if err == nil && strings.Contains(b.ID, fragment) {
			return true
		}
	}
	return false
}

func hasBlockAbove(ctx context.Context, c world.Client, x, z, height int, fragment string) bool {
	for y := height; y < height+20; y++ {
		b, err := c.Block(ctx, world.Position{X: x, Y: y, Z: z})
		if err == nil && strings.Contains(b.ID, fragment) {
			return true
		}
	}
	return false
}

func markBounds(ctx context.Context, c world.Client, rect world.Rect, y int) error {
	return c.Buffered(ctx, func() error {
		wool := world.NewBlock("minecraft:red_wool")
		c1 := world.Position{X: rect.X, Y: y, Z: rect.Z}
		c2 := world.Position{X: rect.X + rect.SizeX - 1, Y: y, Z: rect.Z + rect.SizeZ - 1}
		for _, p := range world.WireframePositions(c1, c2) {
			if err := put(ctx, c, p, wool); err != nil {
				return err
			}
		}
		return nil
	})
}

func classifyTerrain(stdDev float64) string {
	switch {
	case stdDev < 3:
		return "very flat"
	case stdDev < 7:
		return "flat"
	case stdDev < 15:
		return "hilly"
	default:
		return "mountainous"
	}
}

func coverage(count, samples int) float64 {
	if samples == 0 {
		return 0
	}
	return float64(count) / float64(samples)
}

func describeWater(coverage float64) string {
	switch {
	case coverage > 0.5:
		return "extensive"
	case coverage > 0.2:
		return "moderate"
	case coverage > 0.05:
		return "light"
	default:
		return "none"
	}
}

func describeTrees(density float64) string {
	switch {
	case density > 0.2:
		return "heavily forested"
	case density > 0.1:
		return "forested"
	case density > 0.02:
		return "lightly forested"
	default:
		return "barren"
	}
}

// rankBiomes returns the most common biome and the top five by frequency.
func rankBiomes(counts map[string]int) (string, map[string]int) {
	type entry struct {
		name  string
		count int
	}
	entries := make([]entry, 0, len(counts))
	for name, count := range counts {
		entries = append(entries, entry{name, count})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].count > entries[j].count })

	primary := "unknown"
	if len(entries) > 0 {
		primary = entries[0].name
	}
	top := map[string]int{}
	for i, e := range entries {
		if i >= 5 {
			break
		}
		top[e.name] = e.count
	}
	return primary, top
}

func buildRecommendations(terrainType, primaryBiome, waterDesc, treeDesc string, minH, maxH int) []map[string]string {
	var recs []map[string]string
	add := func(kind, description string) {
		recs = append(recs, map[string]string{"type": kind, "description": description})
	}

	if terrainType == "very flat" || terrainType == "flat" {
		add("settlement", "Flat terrain is ideal for village-style settlements with connected buildings.")
	}
	if terrainType == "hilly" || terrainType == "mountainous" {
		add("multi-level", "Consider multi-level structures or buildings connected by bridges and walkways.")
		add("towers", "Towers and vertical structures work well in varied terrain.")
	}

	switch {
	case strings.Contains(primaryBiome, "desert"):
		add("palette", "Use sandstone, terracotta, and smooth stone for authentic desert builds.")
	case strings.Contains(primaryBiome, "forest"), strings.Contains(primaryBiome, "taiga"):
		add("palette", "Wood and stone materials blend well with the natural environment.")
	case strings.Contains(primaryBiome, "mountain"):
		add("style", "Consider dwarf-inspired designs carved into mountainsides.")
	case strings.Contains(primaryBiome, "plains"):
		add("style", "Traditional village-style structures work well in plains.")
	}

	if waterDesc == "moderate" || waterDesc == "extensive" {
		add("water", "Incorporate waterways into your design or build structures over water.")
	}
	if treeDesc == "forested" || treeDesc == "heavily forested" {
		add("vegetation", "Consider building treehouses or structures integrated with existing trees.")
	}
	if maxH-minH > 20 {
		add("elevation", "Use the natural elevation changes to create dramatic multi-level structures.")
	}
	return recs
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }
func round1(f float64) float64 { return math.Round(f*10) / 10 }
