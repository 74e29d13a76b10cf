package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/voxelforge/gdmc-bridge/bridge"
	"github.com/voxelforge/gdmc-bridge/bridge/session"
	"github.com/voxelforge/gdmc-bridge/journal"
	"github.com/voxelforge/gdmc-bridge/world"
)

// stubClient answers backend calls with configurable canned data.
type stubClient struct {
	buildArea    world.Box
	buildAreaErr error
	block        world.Block
	biome        string
	heightmap    [][]int
	placeOK      bool
	commands     []world.CommandResult
}

func (s *stubClient) Version(ctx context.Context) (string, error) { return "1.21.4", nil }

func (s *stubClient) BuildArea(ctx context.Context) (world.Box, error) {
	return s.buildArea, s.buildAreaErr
}

func (s *stubClient) Block(ctx context.Context, pos world.Position) (world.Block, error) {
	return s.block, nil
}

func (s *stubClient) Biome(ctx context.Context, pos world.Position) (string, error) {
	return s.biome, nil
}

func (s *stubClient) Heightmap(ctx context.Context, rect world.Rect, typ world.HeightmapType) ([][]int, error) {
	return s.heightmap, nil
}

func (s *stubClient) Players(ctx context.Context) ([]map[string]any, error)  { return nil, nil }
func (s *stubClient) Entities(ctx context.Context) ([]map[string]any, error) { return nil, nil }

func (s *stubClient) PlaceBlock(ctx context.Context, pos world.Position, b world.Block) (bool, error) {
	return s.placeOK, nil
}

func (s *stubClient) PlaceCuboid(ctx context.Context, c1, c2 world.Position, b world.Block, hollow bool) (int, error) {
	return len(world.CuboidPositions(c1, c2)), nil
}

func (s *stubClient) PlaceEntities(ctx context.Context, entities []world.Entity) (string, error) {
	return "summoned", nil
}

func (s *stubClient) PlaceStructure(ctx context.Context, st world.Structure) (string, error) {
	return "placed", nil
}

func (s *stubClient) RunCommand(ctx context.Context, command string) ([]world.CommandResult, error) {
	return s.commands, nil
}

func (s *stubClient) Flush(ctx context.Context) error                     { return nil }
func (s *stubClient) Buffered(ctx context.Context, fn func() error) error { return fn() }

func newTestServer(t *testing.T) (*Server, *stubClient) {
	t.Helper()
	client := &stubClient{placeOK: true, biome: "minecraft:plains", heightmap: [][]int{{65}}}
	client.block = world.NewBlock("minecraft:stone")
	sessions := session.NewManager()
	if err := sessions.StartWithClient(context.Background(), client); err != nil {
		t.Fatalf("starting session: %v", err)
	}
	d := bridge.NewDispatcher(sessions, 4)
	q := bridge.NewQueries(sessions, d.Slots())
	return NewServer(d, q, nil, nil), client
}

func doRequest(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reqBody *bytes.Buffer
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
		reqBody = bytes.NewBuffer(encoded)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, reqBody)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, rec.Body.String())
	}
	return body
}

func errorKind(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeBody(t, rec)
	errObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("no error object in %s", rec.Body.String())
	}
	kind, _ := errObj["kind"].(string)
	return kind
}

func TestPlaceBlockEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, "POST", "/api/blocks", map[string]any{
		"position": []int{10, 64, -5},
		"block":    map[string]any{"id": "minecraft:stone"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Errorf("success = %v", body["success"])
	}
}

func TestPlaceBlockValidationStatus(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, "POST", "/api/blocks", map[string]any{
		"position": []int{10, 64},
		"block":    map[string]any{"id": "minecraft:stone"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if kind := errorKind(t, rec); kind != "validation_error" {
		t.Errorf("kind = %q", kind)
	}
}

func TestPlaceEntitiesOversizeBatch(t *testing.T) {
	s, _ := newTestServer(t)

	batch := make([]map[string]any, world.MaxEntityBatch+1)
	for i := range batch {
		batch[i] = map[string]any{"id": "minecraft:cow", "pos": []int{0, 64, 0}}
	}
	rec := doRequest(t, s, "POST", "/api/entities", map[string]any{"entities": batch})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRunCommandEndpoint(t *testing.T) {
	s, client := newTestServer(t)
	client.commands = []world.CommandResult{
		{Success: true, Message: "Set the time to 1000"},
		{Success: false, Message: "Unknown selector"},
	}

	rec := doRequest(t, s, "POST", "/api/commands", map[string]any{"command": "time set day"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	results, ok := body["results"].([]any)
	if !ok || len(results) != 2 {
		t.Fatalf("results = %v", body["results"])
	}
}

func TestBuildAreaPreconditionStatus(t *testing.T) {
	s, client := newTestServer(t)
	client.buildAreaErr = world.ErrBuildAreaNotSet

	rec := doRequest(t, s, "GET", "/api/build-area", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
	if kind := errorKind(t, rec); kind != "precondition_failed" {
		t.Errorf("kind = %q", kind)
	}
}

func TestBlockAtOutOfBoundsStatus(t *testing.T) {
	s, client := newTestServer(t)
	client.block = world.Block{ID: world.VoidAirID}

	rec := doRequest(t, s, "GET", "/api/blocks?x=100000&y=64&z=100000", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if kind := errorKind(t, rec); kind != "out_of_bounds" {
		t.Errorf("kind = %q", kind)
	}
}

func TestHeightmapEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, "GET", "/api/heightmap?x=10&z=20&type=WORLD_SURFACE", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["height"] != float64(64) || body["raw_height"] != float64(65) {
		t.Errorf("heights = %v / %v", body["height"], body["raw_height"])
	}
}

func TestSessionUnavailableStatus(t *testing.T) {
	sessions := session.NewManager()
	d := bridge.NewDispatcher(sessions, 4)
	q := bridge.NewQueries(sessions, d.Slots())
	s := NewServer(d, q, nil, nil)

	rec := doRequest(t, s, "GET", "/api/version", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

type stubJournal struct {
	entries []journal.Entry
}

func (s *stubJournal) Recent(ctx context.Context, n int) ([]journal.Entry, error) {
	if n < len(s.entries) {
		return s.entries[:n], nil
	}
	return s.entries, nil
}

func TestJournalEndpoint(t *testing.T) {
	client := &stubClient{placeOK: true}
	sessions := session.NewManager()
	if err := sessions.StartWithClient(context.Background(), client); err != nil {
		t.Fatalf("starting session: %v", err)
	}
	d := bridge.NewDispatcher(sessions, 4)
	q := bridge.NewQueries(sessions, d.Slots())

	t.Run("enabled", func(t *testing.T) {
		s := NewServer(d, q, nil, &stubJournal{entries: []journal.Entry{
			{ID: "op-1", Op: "place_block", OK: true},
		}})
		rec := doRequest(t, s, "GET", "/api/journal", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		body := decodeBody(t, rec)
		if body["count"] != float64(1) {
			t.Errorf("count = %v", body["count"])
		}
	})

	t.Run("disabled", func(t *testing.T) {
		s := NewServer(d, q, nil, nil)
		rec := doRequest(t, s, "GET", "/api/journal", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestStatusForKind(t *testing.T) {
	tests := []struct {
		kind bridge.Kind
		want int
	}{
		{bridge.KindValidation, http.StatusBadRequest},
		{bridge.KindSessionUnavailable, http.StatusServiceUnavailable},
		{bridge.KindConnection, http.StatusBadGateway},
		{bridge.KindPrecondition, http.StatusConflict},
		{bridge.KindOutOfBounds, http.StatusNotFound},
		{bridge.KindUnavailable, http.StatusNotFound},
		{bridge.KindOperationFailed, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusForKind(tt.kind); got != tt.want {
			t.Errorf("statusForKind(%s) = %d, want %d", tt.kind, got, tt.want)
		}
	}
}
