package bridge

import (
	"context"
	"sync"

	"github.com/voxelforge/gdmc-bridge/world"
)

// mockClient records every backend call so tests can assert on call counts
// and argument pass-through.
type mockClient struct {
	mu    sync.Mutex
	calls []string

	version        string
	buildArea      world.Box
	buildAreaErr   error
	block          world.Block
	blockErr       error
	biome          string
	biomeErr       error
	heightmap      [][]int
	heightmapErr   error
	players        []map[string]any
	entities       []map[string]any
	placeOK        bool
	placeErr       error
	cuboidCount    int
	cuboidErr      error
	entitiesMsg    string
	entitiesErr    error
	structureMsg   string
	structureErr   error
	commandResults []world.CommandResult
	commandErr     error
	flushErr       error

	lastPos       world.Position
	lastBlock     world.Block
	lastCorner1   world.Position
	lastCorner2   world.Position
	lastHollow    bool
	lastEntities  []world.Entity
	lastStructure world.Structure
	lastCommand   string
	lastRect      world.Rect
	lastHeightmap world.HeightmapType
}

func newMockClient() *mockClient {
	return &mockClient{version: "1.21.4", placeOK: true}
}

func (m *mockClient) record(call string) {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()
}

func (m *mockClient) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockClient) Version(ctx context.Context) (string, error) {
	m.record("version")
	return m.version, nil
}

func (m *mockClient) BuildArea(ctx context.Context) (world.Box, error) {
	m.record("build_area")
	return m.buildArea, m.buildAreaErr
}

func (m *mockClient) Block(ctx context.Context, pos world.Position) (world.Block, error) {
	m.record("block")
	m.lastPos = pos
	return m.block, m.blockErr
}

func (m *mockClient) Biome(ctx context.Context, pos world.Position) (string, error) {
	m.record("biome")
	m.lastPos = pos
	return m.biome, m.biomeErr
}

func (m *mockClient) Heightmap(ctx context.Context, rect world.Rect, typ world.HeightmapType) ([][]int, error) {
	m.record("heightmap")
	m.lastRect = rect
	m.lastHeightmap = typ
	return m.heightmap, m.heightmapErr
}

func (m *mockClient) Players(ctx context.Context) ([]map[string]any, error) {
	m.record("players")
	return m.players, nil
}

func (m *mockClient) Entities(ctx context.Context) ([]map[string]any, error) {
	m.record("entities")
	return m.entities, nil
}

func (m *mockClient) PlaceBlock(ctx context.Context, pos world.Position, b world.Block) (bool, error) {
	m.record("place_block")
	m.lastPos = pos
	m.lastBlock = b
	return m.placeOK, m.placeErr
}

func (m *mockClient) PlaceCuboid(ctx context.Context, c1, c2 world.Position, b world.Block, hollow bool) (int, error) {
	m.record("place_cuboid")
	m.lastCorner1 = c1
	m.lastCorner2 = c2
	m.lastBlock = b
	m.lastHollow = hollow
	return m.cuboidCount, m.cuboidErr
}

func (m *mockClient) PlaceEntities(ctx context.Context, entities []world.Entity) (string, error) {
	m.record("place_entities")
	m.lastEntities = entities
	return m.entitiesMsg, m.entitiesErr
}

func (m *mockClient) PlaceStructure(ctx context.Context, s world.Structure) (string, error) {
	m.record("place_structure")
	m.lastStructure = s
	return m.structureMsg, m.structureErr
}

func (m *mockClient) RunCommand(ctx context.Context, command string) ([]world.CommandResult, error) {
	m.record("run_command")
	m.lastCommand = command
	return m.commandResults, m.commandErr
}

func (m *mockClient) Flush(ctx context.Context) error {
	m.record("flush")
	return m.flushErr
}

func (m *mockClient) Buffered(ctx context.Context, fn func() error) error {
	m.record("buffered")
	if err := fn(); err != nil {
		return err
	}
	return m.flushErr
}
