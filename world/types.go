package world

import (
	"fmt"
	"math"
	"strings"
)

// VoidAirID is the sentinel block the backend reports for coordinates in
// unloaded or out-of-world chunks. It must never be surfaced as a normal
// block result.
const VoidAirID = "minecraft:void_air"

// MaxEntityBatch bounds how many entities a single place-entities request may
// carry. Larger batches are rejected before any world access.
const MaxEntityBatch = 50

// Position is a 3D integer world coordinate. Immutable once constructed.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Slice returns the coordinates as [x, y, z], the wire shape used in
// request and response payloads.
func (p Position) Slice() []int {
	return []int{p.X, p.Y, p.Z}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d, %d)", p.X, p.Y, p.Z)
}

// Rect is an axis-aligned 2D region on the X/Z plane.
type Rect struct {
	X     int `json:"x"`
	Z     int `json:"z"`
	SizeX int `json:"size_x"`
	SizeZ int `json:"size_z"`
}

// Box is an axis-aligned 3D region: an offset corner plus a non-negative size.
type Box struct {
	Offset Position `json:"offset"`
	Size   Position `json:"size"`
}

// End returns the corner opposite Offset (offset + size).
func (b Box) End() Position {
	return Position{b.Offset.X + b.Size.X, b.Offset.Y + b.Size.Y, b.Offset.Z + b.Size.Z}
}

// Rect projects the box onto the X/Z plane.
func (b Box) Rect() Rect {
	return Rect{X: b.Offset.X, Z: b.Offset.Z, SizeX: b.Size.X, SizeZ: b.Size.Z}
}

// Center returns the horizontal center of the box at the offset Y level.
func (b Box) Center() Position {
	return Position{b.Offset.X + b.Size.X/2, b.Offset.Y, b.Offset.Z + b.Size.Z/2}
}

// Block describes a namespaced block with optional states and an optional
// opaque SNBT data blob. The data blob is passed through to the backend
// unmodified.
type Block struct {
	ID     string            `json:"id"`
	States map[string]string `json:"states,omitempty"`
	Data   string            `json:"data,omitempty"`
}

// NewBlock is a convenience constructor for blocks without states or data.
func NewBlock(id string) Block {
	return Block{ID: id}
}

func (b Block) String() string {
	return fmt.Sprintf("Block(%s)", b.ID)
}

// Validate reports whether the block is well formed.
func (b Block) Validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return fmt.Errorf("block id must be a non-empty string")
	}
	return nil
}

// Entity describes an entity placement: a namespaced id, a position, and an
// optional opaque NBT blob.
type Entity struct {
	ID  string   `json:"id"`
	Pos Position `json:"pos"`
	NBT string   `json:"nbt,omitempty"`
}

// Structure describes a saved-structure placement request.
type Structure struct {
	Name      string   `json:"name"`
	Position  Position `json:"position"`
	Rotation  *int     `json:"rotation,omitempty"`
	Mirror    *bool    `json:"mirror,omitempty"`
	Integrity *float64 `json:"integrity,omitempty"`
	Seed      *int64   `json:"seed,omitempty"`
}

// HeightmapType names one of the backend's heightmap definitions. The set is
// closed; anything else is rejected before a backend call is made.
type HeightmapType string

const (
	WorldSurface           HeightmapType = "WORLD_SURFACE"
	MotionBlocking         HeightmapType = "MOTION_BLOCKING"
	MotionBlockingNoLeaves HeightmapType = "MOTION_BLOCKING_NO_LEAVES"
	OceanFloor             HeightmapType = "OCEAN_FLOOR"
)

// HeightmapTypes returns all valid heightmap types in a stable order.
func HeightmapTypes() []HeightmapType {
	return []HeightmapType{WorldSurface, MotionBlocking, MotionBlockingNoLeaves, OceanFloor}
}

// ParseHeightmapType validates s against the closed heightmap enumeration.
func ParseHeightmapType(s string) (HeightmapType, error) {
	for _, t := range HeightmapTypes() {
		if string(t) == s {
			return t, nil
		}
	}
	names := make([]string, 0, 4)
	for _, t := range HeightmapTypes() {
		names = append(names, string(t))
	}
	return "", fmt.Errorf("invalid heightmap type %q, must be one of: %s", s, strings.Join(names, ", "))
}

// CommandResult is one (success, message) tuple returned by the backend for a
// submitted command line. A single command may expand into several tuples.
type CommandResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// intFromNumber converts a JSON-decoded number to an int, rejecting
// fractional values.
func intFromNumber(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}
