// Package ftl reads and writes the engine's skinned-model containers:
// vertex and face tables, texture maps, named vertex groups forming an
// inferred bone hierarchy, named selections, and action markers.
package ftl

import "arx-asset-codec/internal/mathutil"

// Vertex is one model vertex: position and normal.
type Vertex struct {
	Pos    mathutil.Vec3
	Normal mathutil.Vec3
}

// Face is a triangle. UV coordinates are per corner; TexID indexes the
// model's texture table, -1 meaning untextured.
type Face struct {
	Type     uint32
	Vids     [3]uint16
	TexID    int16
	U        [3]float32
	V        [3]float32
	TransVal float32
	Normal   mathutil.Vec3
}

// Group is a named vertex subset forming one node of the bone hierarchy.
// Parent is never stored on disk; it is recomputed from vertex
// containment on every decode and refreshed again on encode.
type Group struct {
	Name    string
	Origin  int32
	Indices []int32
	Parent  int // index into Groups, -1 for roots
}

// Selection is a named vertex subset outside the bone hierarchy.
type Selection struct {
	Name    string
	Indices []int32
}

// Action is a named marker bound to a single vertex (attachment points,
// hit spheres and the like).
type Action struct {
	Name   string
	Vertex int32
}

// Model is a fully decoded model container.
type Model struct {
	Name       string
	Origin     int32 // index of the model's origin vertex
	Verts      []Vertex
	Faces      []Face
	Textures   []string
	Groups     []Group
	Actions    []Action
	Selections []Selection
}

// On-disk record sizes, used for count validation.
const (
	primaryHeaderSize   = 4 + 4 + 512
	secondaryHeaderSize = 6 * 4
	dataHeaderSize      = 7*4 + 256
	vertexSize          = 32 + 12 + 12
	faceSize            = 4 + 12 + 6 + 2 + 12 + 12 + 6 + 6 + 4 + 12 + 36 + 4
	textureSize         = 256
	groupSize           = 256 + 4 + 4 + 4 + 4
	actionSize          = 256 + 4 + 4 + 4
	selectionSize       = 64 + 4 + 4
)

const magic = "FTL"

// ftlVersion is the only model container version the engine ships.
const ftlVersion = float32(0.83257)
