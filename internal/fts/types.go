// Package fts reads and writes the engine's compiled scene containers:
// a texture table, a fixed 160x160 cell grid of textured polygons, the
// pathfinding anchor graph, visibility portals, and room data with a
// room-to-room distance matrix. The payload inside the outer container
// is always imploded; see DecodeContainer / EncodeContainer.
package fts

import "arx-asset-codec/internal/mathutil"

// Grid dimensions are fixed by the engine.
const (
	GridSizeX = 160
	GridSizeZ = 160
)

// Polygon type flag bits.
const (
	PolyNoShadow    = 1 << 0
	PolyDoubleSided = 1 << 1
	PolyTrans       = 1 << 2
	PolyWater       = 1 << 3
	PolyGlow        = 1 << 4
	PolyIgnore      = 1 << 5
	PolyQuad        = 1 << 6
	PolyTiled       = 1 << 7
	PolyMetal       = 1 << 8
	PolyHide        = 1 << 9
	PolyStone       = 1 << 10
	PolyWood        = 1 << 11
	PolyGrass       = 1 << 12
	PolyEarth       = 1 << 13
	PolyNoCollide   = 1 << 14
	PolyLava        = 1 << 15
	PolyClimb       = 1 << 16
	PolyFall        = 1 << 17
	PolyNoPath      = 1 << 18
	PolyNoDraw      = 1 << 19
)

// TexVertex is one polygon corner: position plus texture coordinates.
type TexVertex struct {
	Pos mathutil.Vec3
	U   float32
	V   float32
}

// Polygon is one grid polygon. Quads (PolyQuad set) use all four corners
// and are stored with corners 2 and 3 diagonally swapped relative to
// natural winding; the codec preserves the stored order exactly because
// the renderer depends on it.
type Polygon struct {
	V             [4]TexVertex
	Tex           int32
	Norm          mathutil.Vec3
	Norm2         mathutil.Vec3
	VertexNormals [4]mathutil.Vec3
	TransVal      float32
	Area          float32
	Type          uint32
	Room          int16
}

func (p *Polygon) IsQuad() bool { return p.Type&PolyQuad != 0 }

// VertexCount is 4 for quads, 3 for triangles.
func (p *Polygon) VertexCount() int {
	if p.IsQuad() {
		return 4
	}
	return 3
}

// Centroid averages the used corners.
func (p *Polygon) Centroid() mathutil.Vec3 {
	n := p.VertexCount()
	var c mathutil.Vec3
	for i := 0; i < n; i++ {
		c = c.Add(p.V[i].Pos)
	}
	return c.Scale(1 / float32(n))
}

// TextureRef maps a container id to a texture path. Ids need not be
// contiguous but must be unique within a file.
type TextureRef struct {
	TC   int32
	Temp int32
	Path string
}

// Cell is one grid entry: its polygons plus a spatial index of anchor
// indices lying inside the cell (separate from the anchor graph).
type Cell struct {
	Polygons      []Polygon
	AnchorIndices []int32
}

// Anchor is a pathfinding graph node. Linked holds indices of connected
// anchors (undirected edges).
type Anchor struct {
	Pos    mathutil.Vec3
	Radius float32
	Height float32
	Flags  int16
	Linked []int32
}

// PortalVertex is one corner of a portal quad.
type PortalVertex struct {
	Pos mathutil.Vec3
	U   float32
	V   float32
}

// PortalQuad is the polygon part of a portal record. Bounding box,
// center and the duplicated runtime vertex blocks stored on disk are
// derived data and are recomputed on encode.
type PortalQuad struct {
	Type     int32
	V        [4]PortalVertex
	Norm     mathutil.Vec3
	Norm2    mathutil.Vec3
	TransVal float32
	Area     float32
	Room     int16
}

// Portal connects two rooms through a quad.
type Portal struct {
	Poly      PortalQuad
	Room1     int32
	Room2     int32
	UsePortal int16
}

// PolyRef locates a polygon indirectly: grid cell coordinates plus the
// index within that cell. References go stale whenever cell contents
// change, which is why Encode rebuilds all room reference lists.
type PolyRef struct {
	CellX int16
	CellZ int16
	Idx   int16
}

// Room is one visibility partition. Portals holds portal indices; Polys
// is rebuilt from polygon room ids on every encode.
type Room struct {
	Portals []int32
	Polys   []PolyRef
}

// RoomDist is one entry of the room-to-room distance matrix used by the
// engine's portal-culling heuristics.
type RoomDist struct {
	Distance float32
	Start    mathutil.Vec3
	End      mathutil.Vec3
}

// Scene is a fully decoded scene payload. Rooms always has one entry
// more than the engine's room count: index 0 doubles as the reserved
// "outside" room.
type Scene struct {
	Version       float32
	PlayerPos     mathutil.Vec3
	SceneOffset   mathutil.Vec3
	Textures      []TextureRef
	Cells         [GridSizeZ][GridSizeX]Cell
	Anchors       []Anchor
	Portals       []Portal
	Rooms         []Room
	RoomDistances [][]RoomDist
}

// PolyCount walks the grid and counts serialized polygons.
func (s *Scene) PolyCount() int {
	n := 0
	for z := 0; z < GridSizeZ; z++ {
		for x := 0; x < GridSizeX; x++ {
			n += len(s.Cells[z][x].Polygons)
		}
	}
	return n
}

// sceneVersion is the payload format version the engine ships.
const sceneVersion = float32(0.141)

// On-disk record sizes, used for count validation.
const (
	sceneHeaderSize = 6*4 + 12 + 12 + 2*4
	textureSize     = 4 + 4 + 256
	cellInfoSize    = 8
	polySize        = 4*20 + 4 + 12 + 12 + 4*12 + 4 + 4 + 4 + 4
	anchorSize      = 12 + 4 + 4 + 2 + 2
	portalPolySize  = 4 + 12 + 12 + 12 + 12 + 4*32 + 4*32 + 4*12 + 4 + 12 + 4 + 4 + 2 + 2
	portalSize      = portalPolySize + 4 + 4 + 2 + 2
	roomDataSize    = 4 + 4 + 6*4
	polyRefSize     = 8
	roomDistSize    = 4 + 12 + 12
)
