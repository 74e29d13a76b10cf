// Package world defines the data model for the Minecraft world bridge and
// the client adapter that talks to the GDMC HTTP interface.
//
// The package has two halves:
//  1. Command models (Position, Block, Entity, Structure, HeightmapType, Box)
//     with payload coercion from untyped request arguments, and
//  2. The Client interface plus the HTTPClient adapter that performs the
//     actual blocking world reads and writes.
//
// Command models are validated at construction time; a model that exists is
// a model that passed validation.
package world
