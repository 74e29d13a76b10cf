package world

import (
	"context"
	"errors"
)

// Backend condition sentinels. The HTTP adapter translates backend responses
// into these so callers can branch without parsing message text.
var (
	// ErrUnreachable reports that the backend could not be reached after the
	// configured retries.
	ErrUnreachable = errors.New("world backend unreachable")

	// ErrBuildAreaNotSet reports that no build area has been designated on
	// the backend. This is an expected operator condition, not a fault.
	ErrBuildAreaNotSet = errors.New("build area not set")

	// ErrNoHeightmapData reports that the requested heightmap type has no
	// data for the queried region.
	ErrNoHeightmapData = errors.New("heightmap data not available")
)

// Client is the synchronous world-mutation transport. Every method blocks on
// network I/O against the single backend connection; callers are responsible
// for keeping those calls off their request-acceptance path.
type Client interface {
	// Version returns the backend's reported version. Used as the liveness
	// check at session startup.
	Version(ctx context.Context) (string, error)

	// BuildArea returns the operator-designated build area, or
	// ErrBuildAreaNotSet when none has been designated.
	BuildArea(ctx context.Context) (Box, error)

	// Block returns the block at pos. Unloaded coordinates come back as the
	// VoidAirID sentinel; translation is the caller's concern.
	Block(ctx context.Context, pos Position) (Block, error)

	// Biome returns the biome id at pos, or "" for unloaded coordinates.
	Biome(ctx context.Context, pos Position) (string, error)

	// Heightmap loads the named heightmap over rect. Values encode the Y
	// level of the empty space immediately above the terrain.
	Heightmap(ctx context.Context, rect Rect, typ HeightmapType) ([][]int, error)

	// Players returns the online-player records as reported by the backend.
	Players(ctx context.Context) ([]map[string]any, error)

	// Entities returns the loaded-entity records as reported by the backend.
	Entities(ctx context.Context) ([]map[string]any, error)

	// PlaceBlock places a single block. In buffered mode the write is queued
	// and the reported success is provisional until Flush.
	PlaceBlock(ctx context.Context, pos Position, b Block) (bool, error)

	// PlaceCuboid fills or shells the cuboid spanned by the two corners,
	// which are taken as given in either order. Returns the block count.
	PlaceCuboid(ctx context.Context, corner1, corner2 Position, b Block, hollow bool) (int, error)

	// PlaceEntities submits the batch as a single backend call. There is no
	// partial-success accounting: a failure aborts the whole batch, and a
	// partially-applied batch is indistinguishable from an unapplied one.
	PlaceEntities(ctx context.Context, entities []Entity) (string, error)

	// PlaceStructure places a saved structure with optional rotation,
	// mirroring, and integrity randomization.
	PlaceStructure(ctx context.Context, s Structure) (string, error)

	// RunCommand submits one command line and returns the backend's result
	// tuples verbatim, in order.
	RunCommand(ctx context.Context, command string) ([]CommandResult, error)

	// Flush sends any buffered block writes.
	Flush(ctx context.Context) error

	// Buffered runs fn with write buffering enabled, restoring the previous
	// buffering mode and flushing when fn returns, even on error. The scope
	// is exclusive: concurrent Buffered calls serialize.
	Buffered(ctx context.Context, fn func() error) error
}
