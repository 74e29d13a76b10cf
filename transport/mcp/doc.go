// Package mcp exposes the bridge over the Model Context Protocol.
//
// The mcp package implements:
//   - MCP server with world-mutation tools and read-only resources
//   - Tool definitions for block, entity, structure, and command operations
//   - Procedural generator tools (houses, towers, villages, terrain survey)
//   - Stdio and HTTP transport modes
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - place_block: Place a single block at a position
//   - place_cuboid: Fill or shell a cuboid region with one block type
//   - place_entities: Summon a batch of entities (up to 50 per call)
//   - place_structure: Place a saved structure with rotation and mirroring
//   - run_command: Run a Minecraft command and return its result tuples
//   - build_house: Generate a parameterized house
//   - build_tower: Generate a cylindrical tower with a conical roof
//   - build_village: Generate a village with a well, houses, and paths
//   - analyze_terrain: Survey a region's terrain, water, trees, and biomes
//   - find_build_position: Find the flattest buildable spot in the build area
//
// MCP Resources:
//
// World state is exposed as resources under the gdmc:// scheme:
//   - gdmc://build_area, gdmc://players, gdmc://entities, gdmc://version,
//     gdmc://heightmap_types
//   - gdmc://block/{x}/{y}/{z}, gdmc://biome/{x}/{y}/{z},
//     gdmc://heightmap/{type}/{x}/{z} as parameterized templates
//
// Transport Modes:
//
// The server supports two transport modes:
//   - Stdio: Direct stdio communication for local MCP clients
//   - HTTP: mounted on the REST server's /mcp endpoint
//
// Every tool error carries a machine-readable kind (validation_error,
// session_unavailable, connection_error, precondition_failed, out_of_bounds,
// unavailable, operation_failed) so agents can branch on the failure class
// instead of parsing prose.
package mcp
