package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/voxelforge/gdmc-bridge/bridge"
	"github.com/voxelforge/gdmc-bridge/generate"
	"github.com/voxelforge/gdmc-bridge/world"
)

// Server is the MCP surface of the bridge: mutating tools backed by the
// dispatcher, read-only resources backed by the query layer.
type Server struct {
	dispatcher *bridge.Dispatcher
	queries    *bridge.Queries
	mcpServer  *server.MCPServer
}

// NewServer builds the MCP server and registers all tools and resources.
func NewServer(dispatcher *bridge.Dispatcher, queries *bridge.Queries) *Server {
	s := &Server{
		dispatcher: dispatcher,
		queries:    queries,
	}
	s.initMCPServer()
	return s
}

func (s *Server) initMCPServer() {
	s.mcpServer = server.NewMCPServer(
		"GDMC Bridge",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions(`GDMC Bridge - MCP Interface

Manipulate a live Minecraft world through the GDMC HTTP interface.

WORKFLOW:
1. Read gdmc://build_area to learn where you are allowed to build.
2. Use analyze_terrain or find_build_position to pick a site.
3. Place blocks with place_block/place_cuboid, or generate whole
   structures with build_house, build_tower, and build_village.
4. Inspect the world through the gdmc:// resources.

AVAILABLE TOOLS:
- place_block: Place a single block
- place_cuboid: Fill or shell a rectangular region
- place_entities: Summon up to 50 entities in one call
- place_structure: Place a saved structure (rotation, mirror, integrity)
- run_command: Run a Minecraft command (no leading slash)
- build_house: Generate a furnished house
- build_tower: Generate a tower with a conical roof
- build_village: Generate a village with well, houses, and paths
- analyze_terrain: Survey terrain, water, trees, and biomes in a region
- find_build_position: Find the flattest buildable spot

Tool failures return JSON with a "kind" field (validation_error,
session_unavailable, connection_error, precondition_failed, out_of_bounds,
unavailable, operation_failed). Branch on the kind, not the message.`),
	)

	s.registerTools()
	s.registerResources()
}

// Serve runs the server on stdio until the client disconnects.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcpServer)
}

// HandleMessage processes one JSON-RPC message. Used to mount the MCP
// server on an HTTP endpoint.
func (s *Server) HandleMessage(ctx context.Context, message json.RawMessage) mcp.JSONRPCMessage {
	return s.mcpServer.HandleMessage(ctx, message)
}

// HTTPHandler returns an http.Handler that speaks MCP JSON-RPC over POST
// bodies, for mounting on the REST server.
func (s *Server) HTTPHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "reading request body", http.StatusBadRequest)
			return
		}
		response := s.HandleMessage(r.Context(), body)
		w.Header().Set("Content-Type", "application/json")
		if response == nil {
			// Notification: nothing to send back.
			w.WriteHeader(http.StatusAccepted)
			return
		}
		json.NewEncoder(w).Encode(response)
	})
}

func positionProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": description,
		"items":       map[string]interface{}{"type": "integer"},
		"minItems":    3,
		"maxItems":    3,
	}
}

func blockProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"id": map[string]interface{}{
				"type":        "string",
				"description": "Namespaced block id, e.g. minecraft:stone",
			},
			"states": map[string]interface{}{
				"type":        "object",
				"description": "Block state properties as string key/value pairs",
			},
			"data": map[string]interface{}{
				"type":        "string",
				"description": "Optional SNBT block entity data",
			},
		},
		"required": []string{"id"},
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "place_block",
		Description: "Place a single block at a position",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"position": positionProperty("World position as [x, y, z]"),
				"block":    blockProperty("Block to place"),
			},
			Required: []string{"position", "block"},
		},
	}, s.dispatchTool("place_block"))

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "place_cuboid",
		Description: "Fill or shell the cuboid spanned by two corners with one block type",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"corner1": positionProperty("First corner as [x, y, z]"),
				"corner2": positionProperty("Opposite corner as [x, y, z]"),
				"block":   blockProperty("Block to fill with"),
				"hollow": map[string]interface{}{
					"type":        "boolean",
					"description": "Place only the shell, leaving the interior untouched",
				},
			},
			Required: []string{"corner1", "corner2", "block"},
		},
	}, s.dispatchTool("place_cuboid"))

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "place_entities",
		Description: "Summon a batch of entities (1 to 50 per call)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"entities": map[string]interface{}{
					"type":        "array",
					"description": "Entities to summon",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"id":  map[string]interface{}{"type": "string", "description": "Namespaced entity id"},
							"pos": positionProperty("Spawn position as [x, y, z]"),
							"nbt": map[string]interface{}{"type": "string", "description": "Optional SNBT entity data"},
						},
						"required": []string{"id", "pos"},
					},
					"minItems": 1,
					"maxItems": world.MaxEntityBatch,
				},
			},
			Required: []string{"entities"},
		},
	}, s.dispatchTool("place_entities"))

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "place_structure",
		Description: "Place a saved structure with optional rotation, mirroring, and integrity",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name":     map[string]interface{}{"type": "string", "description": "Structure name, e.g. minecraft:end_city"},
				"position": positionProperty("Placement position as [x, y, z]"),
				"rotation": map[string]interface{}{
					"type":        "integer",
					"description": "Quarter-turn rotation steps (0-3)",
				},
				"mirror":    map[string]interface{}{"type": "boolean", "description": "Mirror the structure"},
				"integrity": map[string]interface{}{"type": "number", "description": "Completeness 0.0-1.0"},
				"seed":      map[string]interface{}{"type": "integer", "description": "Seed for integrity randomization"},
			},
			Required: []string{"name", "position"},
		},
	}, s.dispatchTool("place_structure"))

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "run_command",
		Description: "Run a Minecraft command and return its result tuples (no leading slash)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"command": map[string]interface{}{
					"type":        "string",
					"description": "Command without the leading slash, e.g. 'time set day'",
				},
			},
			Required: []string{"command"},
		},
	}, s.dispatchTool("run_command"))

	s.registerGeneratorTools()
}

// dispatchTool adapts one named dispatcher operation into an MCP handler.
func (s *Server) dispatchTool(op string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})
		result, err := s.dispatcher.Dispatch(ctx, op, args)
		if err != nil {
			return errorResult(err), nil
		}
		return jsonResult(result), nil
	}
}

func (s *Server) registerGeneratorTools() {
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "build_house",
		Description: "Generate a furnished pitched-roof house at a position",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"position": positionProperty("Corner position as [x, y, z]"),
				"width":    map[string]interface{}{"type": "integer", "description": "House width (made odd for the door)"},
				"height":   map[string]interface{}{"type": "integer", "description": "Wall height"},
				"depth":    map[string]interface{}{"type": "integer", "description": "House depth"},
				"wall_material": map[string]interface{}{
					"type":        "string",
					"description": "Wall block id, default minecraft:oak_planks",
				},
				"floor_material": map[string]interface{}{
					"type":        "string",
					"description": "Floor block id, default minecraft:stone_bricks",
				},
			},
			Required: []string{"position"},
		},
	}, s.handleBuildHouse)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "build_tower",
		Description: "Generate a cylindrical tower with a conical roof",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"position": positionProperty("Base center position as [x, y, z]"),
				"height":   map[string]interface{}{"type": "integer", "description": "Tower height, default 12"},
				"radius":   map[string]interface{}{"type": "integer", "description": "Tower radius, default 3"},
				"material": map[string]interface{}{
					"type":        "string",
					"description": "Wall block id, default minecraft:stone_bricks",
				},
			},
			Required: []string{"position"},
		},
	}, s.handleBuildTower)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "build_village",
		Description: "Generate a village: central well, houses on the terrain, connecting paths",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"center": positionProperty("Village center as [x, y, z]"),
				"houses": map[string]interface{}{"type": "integer", "description": "Number of houses, default 5"},
				"radius": map[string]interface{}{"type": "integer", "description": "Village radius, default 30"},
			},
			Required: []string{"center"},
		},
	}, s.handleBuildVillage)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "analyze_terrain",
		Description: "Survey a region: height statistics, water, trees, biomes, and build recommendations",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"x":      map[string]interface{}{"type": "integer", "description": "Region west edge"},
				"z":      map[string]interface{}{"type": "integer", "description": "Region north edge"},
				"size_x": map[string]interface{}{"type": "integer", "description": "Region width"},
				"size_z": map[string]interface{}{"type": "integer", "description": "Region depth"},
			},
			Required: []string{"x", "z", "size_x", "size_z"},
		},
	}, s.handleAnalyzeTerrain)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "find_build_position",
		Description: "Find the flattest buildable spot in the designated build area",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleFindBuildPosition)
}

func newRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

func intArg(args map[string]interface{}, key string) (int, bool) {
	f, ok := args[key].(float64)
	if !ok {
		return 0, false
	}
	return int(f), true
}

func (s *Server) handleBuildHouse(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	pos, err := world.PositionFromPayload(args["position"])
	if err != nil {
		return errorResult(bridge.ValidationError("build_house", err)), nil
	}
	opts := generate.HouseOptions{}
	opts.Width, _ = intArg(args, "width")
	opts.Height, _ = intArg(args, "height")
	opts.Depth, _ = intArg(args, "depth")
	opts.WallMaterial, _ = args["wall_material"].(string)
	opts.FloorMaterial, _ = args["floor_material"].(string)

	result, err := s.dispatcher.Do(ctx, "build_house", func(c world.Client) (map[string]any, error) {
		return generate.BuildHouse(ctx, c, newRand(), pos, opts)
	})
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(result), nil
}

func (s *Server) handleBuildTower(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	pos, err := world.PositionFromPayload(args["position"])
	if err != nil {
		return errorResult(bridge.ValidationError("build_tower", err)), nil
	}
	opts := generate.TowerOptions{}
	opts.Height, _ = intArg(args, "height")
	opts.Radius, _ = intArg(args, "radius")
	opts.Material, _ = args["material"].(string)

	result, err := s.dispatcher.Do(ctx, "build_tower", func(c world.Client) (map[string]any, error) {
		return generate.BuildTower(ctx, c, newRand(), pos, opts)
	})
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(result), nil
}

func (s *Server) handleBuildVillage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	center, err := world.PositionFromPayload(args["center"])
	if err != nil {
		return errorResult(bridge.ValidationError("build_village", err)), nil
	}
	opts := generate.VillageOptions{}
	opts.Houses, _ = intArg(args, "houses")
	opts.Radius, _ = intArg(args, "radius")

	result, err := s.dispatcher.Do(ctx, "build_village", func(c world.Client) (map[string]any, error) {
		return generate.GenerateVillage(ctx, c, newRand(), center, opts)
	})
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(result), nil
}

func (s *Server) handleAnalyzeTerrain(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	rect := world.Rect{}
	var ok bool
	if rect.X, ok = intArg(args, "x"); !ok {
		return errorResult(bridge.ValidationError("analyze_terrain", fmt.Errorf("x must be an integer"))), nil
	}
	if rect.Z, ok = intArg(args, "z"); !ok {
		return errorResult(bridge.ValidationError("analyze_terrain", fmt.Errorf("z must be an integer"))), nil
	}
	if rect.SizeX, ok = intArg(args, "size_x"); !ok || rect.SizeX <= 0 {
		return errorResult(bridge.ValidationError("analyze_terrain", fmt.Errorf("size_x must be a positive integer"))), nil
	}
	if rect.SizeZ, ok = intArg(args, "size_z"); !ok || rect.SizeZ <= 0 {
		return errorResult(bridge.ValidationError("analyze_terrain", fmt.Errorf("size_z must be a positive integer"))), nil
	}

	result, err := s.dispatcher.Do(ctx, "analyze_terrain", func(c world.Client) (map[string]any, error) {
		return generate.AnalyzeTerrain(ctx, c, rect)
	})
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(result), nil
}

func (s *Server) handleFindBuildPosition(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.dispatcher.Do(ctx, "find_build_position", func(c world.Client) (map[string]any, error) {
		pos, avgHeight, err := generate.FindBuildPosition(ctx, c)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"position":       pos.Slice(),
			"average_height": avgHeight,
		}, nil
	})
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(result), nil
}

func (s *Server) registerResources() {
	type staticResource struct {
		uri         string
		name        string
		description string
		read        func(ctx context.Context) (map[string]any, error)
	}

	static := []staticResource{
		{
			uri:         "gdmc://build_area",
			name:        "Build area",
			description: "The operator-designated build area: offset, size, end, and center",
			read:        func(ctx context.Context) (map[string]any, error) { return s.queries.BuildArea(ctx) },
		},
		{
			uri:         "gdmc://players",
			name:        "Online players",
			description: "Players currently online, with positions",
			read:        func(ctx context.Context) (map[string]any, error) { return s.queries.Players(ctx) },
		},
		{
			uri:         "gdmc://entities",
			name:        "Loaded entities",
			description: "Entities currently loaded in the world",
			read:        func(ctx context.Context) (map[string]any, error) { return s.queries.EntitiesList(ctx) },
		},
		{
			uri:         "gdmc://version",
			name:        "Backend version",
			description: "The world backend's reported version",
			read:        func(ctx context.Context) (map[string]any, error) { return s.queries.Version(ctx) },
		},
		{
			uri:         "gdmc://heightmap_types",
			name:        "Heightmap types",
			description: "The valid heightmap type names",
			read:        func(ctx context.Context) (map[string]any, error) { return s.queries.HeightmapTypes(), nil },
		},
	}

	for _, r := range static {
		read := r.read
		uri := r.uri
		s.mcpServer.AddResource(mcp.NewResource(
			r.uri, r.name,
			mcp.WithResourceDescription(r.description),
			mcp.WithMIMEType("application/json"),
		), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			result, err := read(ctx)
			if err != nil {
				return nil, err
			}
			return resourceJSON(uri, result)
		})
	}

	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(
		"gdmc://block/{x}/{y}/{z}", "Block at position",
		mcp.WithTemplateDescription("The block at the given coordinates, with states and data"),
		mcp.WithTemplateMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		pos, err := positionFromURI(request.Params.URI, "gdmc://block/")
		if err != nil {
			return nil, err
		}
		result, err := s.queries.BlockAt(ctx, pos)
		if err != nil {
			return nil, err
		}
		return resourceJSON(request.Params.URI, result)
	})

	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(
		"gdmc://biome/{x}/{y}/{z}", "Biome at position",
		mcp.WithTemplateDescription("The biome id at the given coordinates"),
		mcp.WithTemplateMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		pos, err := positionFromURI(request.Params.URI, "gdmc://biome/")
		if err != nil {
			return nil, err
		}
		result, err := s.queries.BiomeAt(ctx, pos)
		if err != nil {
			return nil, err
		}
		return resourceJSON(request.Params.URI, result)
	})

	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(
		"gdmc://heightmap/{type}/{x}/{z}", "Surface height at column",
		mcp.WithTemplateDescription("The named heightmap sampled at one column; height is the top block Y"),
		mcp.WithTemplateMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		parts := strings.Split(strings.TrimPrefix(request.Params.URI, "gdmc://heightmap/"), "/")
		if len(parts) != 3 {
			return nil, fmt.Errorf("heightmap URI must be gdmc://heightmap/{type}/{x}/{z}")
		}
		x, err1 := strconv.Atoi(parts[1])
		z, err2 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("heightmap coordinates must be integers")
		}
		result, err := s.queries.HeightAt(ctx, x, z, parts[0])
		if err != nil {
			return nil, err
		}
		return resourceJSON(request.Params.URI, result)
	})
}

func positionFromURI(uri, prefix string) (world.Position, error) {
	parts := strings.Split(strings.TrimPrefix(uri, prefix), "/")
	if len(parts) != 3 {
		return world.Position{}, fmt.Errorf("URI must carry exactly 3 coordinates")
	}
	coords := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return world.Position{}, fmt.Errorf("coordinate %q must be an integer", p)
		}
		coords[i] = n
	}
	return world.Position{X: coords[0], Y: coords[1], Z: coords[2]}, nil
}

func resourceJSON(uri string, v any) ([]mcp.ResourceContents, error) {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(encoded),
		},
	}, nil
}

func jsonResult(v any) *mcp.CallToolResult {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err))
	}
	return mcp.NewToolResultText(string(encoded))
}

// errorResult renders a classified error as kind-tagged JSON so agents can
// branch on the failure class.
func errorResult(err error) *mcp.CallToolResult {
	payload := map[string]any{
		"kind":    string(bridge.KindOf(err)),
		"message": err.Error(),
	}
	var be *bridge.Error
	if errors.As(err, &be) {
		payload["message"] = be.Message
		if be.Op != "" {
			payload["operation"] = be.Op
		}
		if len(be.Args) > 0 {
			payload["args"] = be.Args
		}
	}
	encoded, _ := json.Marshal(payload)
	return mcp.NewToolResultError(string(encoded))
}
