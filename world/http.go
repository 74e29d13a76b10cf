package world

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Options configures the HTTP adapter.
type Options struct {
	// Host is the base URL of the GDMC HTTP interface.
	Host string

	// Retries is the number of additional attempts after a failed request.
	Retries int

	// Timeout bounds each individual HTTP request.
	Timeout time.Duration

	// Buffering enables write buffering from the start. Most callers leave
	// this off and use Buffered scopes instead.
	Buffering bool

	// BufferLimit is the number of queued block writes that triggers an
	// automatic flush.
	BufferLimit int
}

const (
	defaultHost        = "http://localhost:9000"
	defaultRetries     = 2
	defaultTimeout     = 10 * time.Second
	defaultBufferLimit = 1024
	retryDelay         = 500 * time.Millisecond
)

// HTTPClient is the Client implementation backed by the GDMC HTTP interface.
// It owns one logical connection to the backend; all methods are safe for
// concurrent use, but the backend itself applies writes in arrival order.
type HTTPClient struct {
	host    string
	retries int
	http    *http.Client

	// scopeMu serializes Buffered scopes so one caller's buffering toggle
	// can never leak into another caller's writes.
	scopeMu sync.Mutex

	// mu guards the buffering flag and the queued writes.
	mu          sync.Mutex
	buffering   bool
	bufferLimit int
	buffer      []blockPlacement
}

type blockPlacement struct {
	ID    string            `json:"id"`
	X     int               `json:"x"`
	Y     int               `json:"y"`
	Z     int               `json:"z"`
	State map[string]string `json:"state,omitempty"`
	Data  string            `json:"data,omitempty"`
}

func placementFor(pos Position, b Block) blockPlacement {
	return blockPlacement{ID: b.ID, X: pos.X, Y: pos.Y, Z: pos.Z, State: b.States, Data: b.Data}
}

// NewHTTPClient constructs the adapter. Zero-valued options fall back to the
// reference defaults (retries=2, timeout=10s).
func NewHTTPClient(opts Options) *HTTPClient {
	if opts.Host == "" {
		opts.Host = defaultHost
	}
	if opts.Retries <= 0 {
		opts.Retries = defaultRetries
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.BufferLimit <= 0 {
		opts.BufferLimit = defaultBufferLimit
	}
	return &HTTPClient{
		host:        strings.TrimRight(opts.Host, "/"),
		retries:     opts.Retries,
		http:        &http.Client{Timeout: opts.Timeout},
		buffering:   opts.Buffering,
		bufferLimit: opts.BufferLimit,
	}
}

// do performs one backend request, retrying transport-level failures up to
// the configured retry count. HTTP error statuses are not retried; they carry
// backend semantics the caller needs to see.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, contentType string, body []byte) ([]byte, int, error) {
	u := c.host + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, 0, fmt.Errorf("%w: %v", ErrUnreachable, ctx.Err())
			case <-time.After(retryDelay):
			}
		}

		var reqBody io.Reader
		if body != nil {
			reqBody = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
		if err != nil {
			return nil, 0, err
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		return data, resp.StatusCode, nil
	}
	return nil, 0, fmt.Errorf("%w: %v", ErrUnreachable, lastErr)
}

// Version implements Client.
func (c *HTTPClient) Version(ctx context.Context) (string, error) {
	data, status, err := c.do(ctx, http.MethodGet, "/version", nil, "", nil)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("version query failed: %s", strings.TrimSpace(string(data)))
	}
	return strings.TrimSpace(string(data)), nil
}

// BuildArea implements Client.
func (c *HTTPClient) BuildArea(ctx context.Context) (Box, error) {
	data, status, err := c.do(ctx, http.MethodGet, "/buildarea", nil, "", nil)
	if err != nil {
		return Box{}, err
	}
	if status != http.StatusOK {
		if strings.Contains(strings.ToLower(string(data)), "build area") || status == http.StatusNotFound {
			return Box{}, ErrBuildAreaNotSet
		}
		return Box{}, fmt.Errorf("build area query failed: %s", strings.TrimSpace(string(data)))
	}
	var wire struct {
		XFrom int `json:"xFrom"`
		YFrom int `json:"yFrom"`
		ZFrom int `json:"zFrom"`
		XTo   int `json:"xTo"`
		YTo   int `json:"yTo"`
		ZTo   int `json:"zTo"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return Box{}, fmt.Errorf("malformed build area response: %v", err)
	}
	return Box{
		Offset: Position{wire.XFrom, wire.YFrom, wire.ZFrom},
		Size:   Position{wire.XTo - wire.XFrom, wire.YTo - wire.YFrom, wire.ZTo - wire.ZFrom},
	}, nil
}

func coordQuery(pos Position) url.Values {
	q := url.Values{}
	q.Set("x", strconv.Itoa(pos.X))
	q.Set("y", strconv.Itoa(pos.Y))
	q.Set("z", strconv.Itoa(pos.Z))
	return q
}

// Block implements Client.
func (c *HTTPClient) Block(ctx context.Context, pos Position) (Block, error) {
	q := coordQuery(pos)
	q.Set("includeState", "true")
	q.Set("includeData", "true")
	data, status, err := c.do(ctx, http.MethodGet, "/blocks", q, "", nil)
	if err != nil {
		return Block{}, err
	}
	if status != http.StatusOK {
		return Block{}, fmt.Errorf("block query failed: %s", strings.TrimSpace(string(data)))
	}
	var wire []struct {
		ID    string            `json:"id"`
		State map[string]string `json:"state"`
		Data  string            `json:"data"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return Block{}, fmt.Errorf("malformed block response: %v", err)
	}
	if len(wire) == 0 {
		return Block{}, fmt.Errorf("backend returned no block for %s", pos)
	}
	return Block{ID: wire[0].ID, States: wire[0].State, Data: wire[0].Data}, nil
}

// Biome implements Client. Unloaded coordinates come back as an empty id.
func (c *HTTPClient) Biome(ctx context.Context, pos Position) (string, error) {
	data, status, err := c.do(ctx, http.MethodGet, "/biomes", coordQuery(pos), "", nil)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("biome query failed: %s", strings.TrimSpace(string(data)))
	}
	var wire []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return "", fmt.Errorf("malformed biome response: %v", err)
	}
	if len(wire) == 0 {
		return "", nil
	}
	return wire[0].ID, nil
}

// Heightmap implements Client.
func (c *HTTPClient) Heightmap(ctx context.Context, rect Rect, typ HeightmapType) ([][]int, error) {
	q := url.Values{}
	q.Set("type", string(typ))
	q.Set("xFrom", strconv.Itoa(rect.X))
	q.Set("zFrom", strconv.Itoa(rect.Z))
	q.Set("xTo", strconv.Itoa(rect.X+rect.SizeX))
	q.Set("zTo", strconv.Itoa(rect.Z+rect.SizeZ))
	data, status, err := c.do(ctx, http.MethodGet, "/heightmap", q, "", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		if strings.Contains(strings.ToLower(string(data)), "heightmap") {
			return nil, ErrNoHeightmapData
		}
		return nil, fmt.Errorf("heightmap query failed: %s", strings.TrimSpace(string(data)))
	}
	var grid [][]int
	if err := json.Unmarshal(data, &grid); err != nil {
		return nil, fmt.Errorf("malformed heightmap response: %v", err)
	}
	return grid, nil
}

func (c *HTTPClient) listQuery(ctx context.Context, path string) ([]map[string]any, error) {
	data, status, err := c.do(ctx, http.MethodGet, path, nil, "", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%s query failed: %s", path, strings.TrimSpace(string(data)))
	}
	var out []map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("malformed %s response: %v", path, err)
	}
	return out, nil
}

// Players implements Client.
func (c *HTTPClient) Players(ctx context.Context) ([]map[string]any, error) {
	return c.listQuery(ctx, "/players")
}

// Entities implements Client.
func (c *HTTPClient) Entities(ctx context.Context) ([]map[string]any, error) {
	return c.listQuery(ctx, "/entities")
}

// PlaceBlock implements Client.
func (c *HTTPClient) PlaceBlock(ctx context.Context, pos Position, b Block) (bool, error) {
	if err := b.Validate(); err != nil {
		return false, err
	}

	c.mu.Lock()
	if c.buffering {
		c.buffer = append(c.buffer, placementFor(pos, b))
		needsFlush := len(c.buffer) >= c.bufferLimit
		c.mu.Unlock()
		if needsFlush {
			if err := c.Flush(ctx); err != nil {
				return false, err
			}
		}
		return true, nil
	}
	c.mu.Unlock()

	results, err := c.putBlocks(ctx, []blockPlacement{placementFor(pos, b)})
	if err != nil {
		return false, err
	}
	return len(results) > 0 && results[0], nil
}

// PlaceCuboid implements Client. The corners are iterated as given; hollow
// selects shell-only placement. The whole cuboid goes out as one batch.
func (c *HTTPClient) PlaceCuboid(ctx context.Context, corner1, corner2 Position, b Block, hollow bool) (int, error) {
	if err := b.Validate(); err != nil {
		return 0, err
	}
	var positions []Position
	if hollow {
		positions = ShellPositions(corner1, corner2)
	} else {
		positions = CuboidPositions(corner1, corner2)
	}
	placements := make([]blockPlacement, len(positions))
	for i, pos := range positions {
		placements[i] = placementFor(pos, b)
	}

	c.mu.Lock()
	if c.buffering {
		c.buffer = append(c.buffer, placements...)
		needsFlush := len(c.buffer) >= c.bufferLimit
		c.mu.Unlock()
		if needsFlush {
			if err := c.Flush(ctx); err != nil {
				return 0, err
			}
		}
		return len(placements), nil
	}
	c.mu.Unlock()

	if _, err := c.putBlocks(ctx, placements); err != nil {
		return 0, err
	}
	return len(placements), nil
}

func (c *HTTPClient) putBlocks(ctx context.Context, placements []blockPlacement) ([]bool, error) {
	if len(placements) == 0 {
		return nil, nil
	}
	body, err := json.Marshal(placements)
	if err != nil {
		return nil, err
	}
	data, status, err := c.do(ctx, http.MethodPut, "/blocks", nil, "application/json", body)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("block placement failed: %s", strings.TrimSpace(string(data)))
	}
	var wire []struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("malformed placement response: %v", err)
	}
	results := make([]bool, len(wire))
	for i, r := range wire {
		results[i] = r.Status == 1
	}
	return results, nil
}

// PlaceEntities implements Client.
func (c *HTTPClient) PlaceEntities(ctx context.Context, entities []Entity) (string, error) {
	type wireEntity struct {
		ID   string  `json:"id"`
		X    float64 `json:"x"`
		Y    float64 `json:"y"`
		Z    float64 `json:"z"`
		Data string  `json:"data,omitempty"`
	}
	wire := make([]wireEntity, len(entities))
	for i, e := range entities {
		wire[i] = wireEntity{
			ID:   e.ID,
			X:    float64(e.Pos.X),
			Y:    float64(e.Pos.Y),
			Z:    float64(e.Pos.Z),
			Data: e.NBT,
		}
	}
	body, err := json.Marshal(wire)
	if err != nil {
		return "", err
	}
	data, status, err := c.do(ctx, http.MethodPut, "/entities", nil, "application/json", body)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("entity placement failed: %s", strings.TrimSpace(string(data)))
	}
	return strings.TrimSpace(string(data)), nil
}

// PlaceStructure implements Client.
func (c *HTTPClient) PlaceStructure(ctx context.Context, s Structure) (string, error) {
	q := coordQuery(s.Position)
	q.Set("name", s.Name)
	if s.Rotation != nil {
		q.Set("rotate", strconv.Itoa(*s.Rotation))
	}
	if s.Mirror != nil {
		q.Set("mirror", strconv.FormatBool(*s.Mirror))
	}
	if s.Integrity != nil {
		q.Set("integrity", strconv.FormatFloat(*s.Integrity, 'f', -1, 64))
	}
	if s.Seed != nil {
		q.Set("seed", strconv.FormatInt(*s.Seed, 10))
	}
	data, status, err := c.do(ctx, http.MethodPost, "/structure", q, "", nil)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("structure placement failed: %s", strings.TrimSpace(string(data)))
	}
	return strings.TrimSpace(string(data)), nil
}

// RunCommand implements Client.
func (c *HTTPClient) RunCommand(ctx context.Context, command string) ([]CommandResult, error) {
	data, status, err := c.do(ctx, http.MethodPost, "/command", nil, "text/plain", []byte(command))
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("command failed: %s", strings.TrimSpace(string(data)))
	}
	var wire []struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("malformed command response: %v", err)
	}
	results := make([]CommandResult, len(wire))
	for i, r := range wire {
		results[i] = CommandResult{Success: r.Status == 1, Message: r.Message}
	}
	return results, nil
}

// Flush implements Client.
func (c *HTTPClient) Flush(ctx context.Context) error {
	c.mu.Lock()
	pending := c.buffer
	c.buffer = nil
	c.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}
	_, err := c.putBlocks(ctx, pending)
	return err
}

// Buffered implements Client. The previous buffering mode is restored and the
// queue flushed no matter how fn returns; a flush failure is reported only
// when fn itself succeeded.
func (c *HTTPClient) Buffered(ctx context.Context, fn func() error) error {
	c.scopeMu.Lock()
	defer c.scopeMu.Unlock()

	c.mu.Lock()
	prev := c.buffering
	c.buffering = true
	c.mu.Unlock()

	restore := func() error {
		c.mu.Lock()
		c.buffering = prev
		c.mu.Unlock()
		return c.Flush(ctx)
	}

	if err := fn(); err != nil {
		_ = restore() // best effort: partial work still flushes
		return err
	}
	return restore()
}
