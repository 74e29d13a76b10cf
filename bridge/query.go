package bridge

import (
	"context"

	"github.com/voxelforge/gdmc-bridge/bridge/session"
	"github.com/voxelforge/gdmc-bridge/world"
)

// Queries is the read-only side of the bridge. It shares the dispatcher's
// backend slot pool so reads and writes together respect one concurrency
// bound.
type Queries struct {
	sessions *session.Manager
	slots    chan struct{}
}

// NewQueries builds the query layer on the same slot pool the dispatcher
// uses.
func NewQueries(sessions *session.Manager, slots chan struct{}) *Queries {
	return &Queries{sessions: sessions, slots: slots}
}

func (q *Queries) run(ctx context.Context, op string, fn func(world.Client) (map[string]any, error)) (map[string]any, error) {
	client, err := q.sessions.Current()
	if err != nil {
		return nil, Normalize(op, err)
	}
	select {
	case q.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, Normalize(op, ctx.Err())
	}
	defer func() { <-q.slots }()

	result, err := fn(client)
	if err != nil {
		return nil, Normalize(op, err)
	}
	return result, nil
}

// BuildArea returns the operator-designated build area. An undesignated
// build area surfaces as a precondition failure, not an operation fault.
func (q *Queries) BuildArea(ctx context.Context) (map[string]any, error) {
	return q.run(ctx, "build_area", func(c world.Client) (map[string]any, error) {
		box, err := c.BuildArea(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"offset": box.Offset.Slice(),
			"size":   box.Size.Slice(),
			"end":    box.End().Slice(),
			"center": box.Center().Slice(),
		}, nil
	})
}

// BlockAt returns the block at the given coordinates. The backend's void-air
// sentinel is translated to an out-of-bounds failure and never surfaced as a
// block.
func (q *Queries) BlockAt(ctx context.Context, pos world.Position) (map[string]any, error) {
	const op = "block_at"
	return q.run(ctx, op, func(c world.Client) (map[string]any, error) {
		block, err := c.Block(ctx, pos)
		if err != nil {
			return nil, err
		}
		if block.ID == world.VoidAirID {
			return nil, OutOfBounds(op, pos)
		}
		result := map[string]any{
			"position": pos.Slice(),
			"id":       block.ID,
		}
		if len(block.States) > 0 {
			result["states"] = block.States
		}
		if block.Data != "" {
			result["data"] = block.Data
		}
		return result, nil
	})
}

// BiomeAt returns the biome id at the given coordinates. An empty biome id
// means the chunk is not loaded and surfaces as out of bounds.
func (q *Queries) BiomeAt(ctx context.Context, pos world.Position) (map[string]any, error) {
	const op = "biome_at"
	return q.run(ctx, op, func(c world.Client) (map[string]any, error) {
		biome, err := c.Biome(ctx, pos)
		if err != nil {
			return nil, err
		}
		if biome == "" {
			return nil, OutOfBounds(op, pos)
		}
		return map[string]any{
			"position": pos.Slice(),
			"biome":    biome,
		}, nil
	})
}

// HeightAt samples the named heightmap at one column. The backend reports
// the Y of the empty space above the surface; both that raw value and the
// derived top-block Y are returned.
func (q *Queries) HeightAt(ctx context.Context, x, z int, heightmapType string) (map[string]any, error) {
	const op = "height_at"
	typ, err := world.ParseHeightmapType(heightmapType)
	if err != nil {
		return nil, ValidationError(op, err)
	}
	return q.run(ctx, op, func(c world.Client) (map[string]any, error) {
		grid, err := c.Heightmap(ctx, world.Rect{X: x, Z: z, SizeX: 1, SizeZ: 1}, typ)
		if err != nil {
			return nil, err
		}
		if len(grid) == 0 || len(grid[0]) == 0 {
			return nil, OutOfBounds(op, world.Position{X: x, Z: z})
		}
		raw := grid[0][0]
		return map[string]any{
			"heightmap_type": string(typ),
			"position":       []int{x, z},
			"height":         raw - 1,
			"raw_height":     raw,
		}, nil
	})
}

// Players returns the online-player records verbatim.
func (q *Queries) Players(ctx context.Context) (map[string]any, error) {
	return q.run(ctx, "players", func(c world.Client) (map[string]any, error) {
		players, err := c.Players(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"count":   len(players),
			"players": players,
		}, nil
	})
}

// EntitiesList returns the loaded-entity records verbatim.
func (q *Queries) EntitiesList(ctx context.Context) (map[string]any, error) {
	return q.run(ctx, "entities", func(c world.Client) (map[string]any, error) {
		entities, err := c.Entities(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"count":    len(entities),
			"entities": entities,
		}, nil
	})
}

// Version returns the backend version. The session caches the value captured
// by the startup liveness check; no backend round trip happens here.
func (q *Queries) Version(ctx context.Context) (map[string]any, error) {
	if _, err := q.sessions.Current(); err != nil {
		return nil, Normalize("version", err)
	}
	return map[string]any{"version": q.sessions.Version()}, nil
}

// HeightmapTypes lists the closed heightmap enumeration. Static data; no
// session required.
func (q *Queries) HeightmapTypes() map[string]any {
	types := world.HeightmapTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return map[string]any{"heightmap_types": names}
}
