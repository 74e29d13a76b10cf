// Package api provides the HTTP REST surface of the bridge.
//
// The api package implements:
//   - RESTful endpoints for world mutations and queries
//   - Error taxonomy mapping to HTTP status codes
//   - Operation journal inspection
//   - WebSocket upgrade handling for mutation-event observers
//   - MCP JSON-RPC mounting at /mcp
//
// Endpoints:
//
// Mutations:
//   - POST /api/blocks - Place a single block
//   - POST /api/cuboids - Fill or shell a cuboid region
//   - POST /api/entities - Summon a batch of entities (up to 50)
//   - POST /api/structures - Place a saved structure
//   - POST /api/commands - Run a Minecraft command
//
// Queries:
//   - GET /api/build-area - The operator-designated build area
//   - GET /api/blocks?x&y&z - Block at a position
//   - GET /api/biomes?x&y&z - Biome at a position
//   - GET /api/heightmap?x&z&type - Surface height at a column
//   - GET /api/heightmap-types - Valid heightmap type names
//   - GET /api/players - Online players
//   - GET /api/entities - Loaded entities
//   - GET /api/version - Backend version
//   - GET /api/journal?limit - Recent dispatched operations
//
// Request/Response Format:
//
// All endpoints accept and return JSON. Mutation bodies carry the same
// argument objects as the corresponding MCP tools:
//
//	{
//	  "position": [10, 64, -5],
//	  "block": {"id": "minecraft:stone", "states": {"axis": "y"}}
//	}
//
// Error Handling:
//
// Failures are returned as JSON with the bridge's error kind, mapped onto
// HTTP statuses (validation_error 400, session_unavailable 503,
// connection_error 502, precondition_failed 409, out_of_bounds and
// unavailable 404, operation_failed 500):
//
//	{
//	  "error": {
//	    "kind": "precondition_failed",
//	    "message": "build area has not been set, run /setbuildarea in game",
//	    "operation": "build_area"
//	  }
//	}
package api
