package fts

import (
	"arx-asset-codec/internal/binio"
	"arx-asset-codec/internal/codecerr"
	"arx-asset-codec/internal/mathutil"
)

func readVec3(r *binio.Reader) mathutil.Vec3 {
	return mathutil.Vec3{X: r.F32(), Y: r.F32(), Z: r.F32()}
}

// readTexVertex reads a FAST_VERTEX, which stores y before x.
func readTexVertex(r *binio.Reader) TexVertex {
	y := r.F32()
	x := r.F32()
	z := r.F32()
	return TexVertex{Pos: mathutil.Vec3{X: x, Y: y, Z: z}, U: r.F32(), V: r.F32()}
}

func readPolygon(r *binio.Reader) Polygon {
	var p Polygon
	for i := range p.V {
		p.V[i] = readTexVertex(r)
	}
	p.Tex = r.I32()
	p.Norm = readVec3(r)
	p.Norm2 = readVec3(r)
	for i := range p.VertexNormals {
		p.VertexNormals[i] = readVec3(r)
	}
	p.TransVal = r.F32()
	p.Area = r.F32()
	p.Type = r.U32()
	p.Room = r.I16()
	r.Skip(2) // padding
	return p
}

// Decode parses an uncompressed scene payload. Cross-reference problems
// (stale room polygon references, anchor indices out of range) and
// malformed counts abort; count mismatches against the header are
// reported as warnings.
func Decode(data []byte) (*Scene, []codecerr.Warning, error) {
	r := binio.NewReader(data)
	var warns []codecerr.Warning

	r.Section("scene header")
	s := &Scene{Version: r.F32()}
	sizeX := r.I32()
	sizeZ := r.I32()
	nbTextures, err := r.Count("texture", textureSize)
	if err != nil {
		return nil, nil, err
	}
	nbPolys, err := r.Count("polygon", polySize)
	if err != nil {
		return nil, nil, err
	}
	nbAnchors, err := r.Count("anchor", anchorSize)
	if err != nil {
		return nil, nil, err
	}
	s.PlayerPos = readVec3(r)
	s.SceneOffset = readVec3(r)
	nbPortals, err := r.Count("portal", portalSize)
	if err != nil {
		return nil, nil, err
	}
	nbRooms, err := r.Count("room", roomDataSize)
	if err != nil {
		return nil, nil, err
	}
	if err := r.Err(); err != nil {
		return nil, nil, err
	}
	if sizeX != GridSizeX || sizeZ != GridSizeZ {
		return nil, nil, codecerr.Formatf("scene header", 4, "grid size %dx%d, engine requires %dx%d",
			sizeX, sizeZ, GridSizeX, GridSizeZ)
	}

	r.Section("textures")
	s.Textures = make([]TextureRef, nbTextures)
	seenTC := make(map[int32]int, nbTextures)
	for i := range s.Textures {
		s.Textures[i] = TextureRef{TC: r.I32(), Temp: r.I32(), Path: r.Str(256)}
		if prev, dup := seenTC[s.Textures[i].TC]; dup {
			warns = append(warns, codecerr.Warnf("textures", i,
				"container id %d already used by texture %d", s.Textures[i].TC, prev))
		}
		seenTC[s.Textures[i].TC] = i
	}

	// The grid interleaves a per-cell descriptor with that cell's polygon
	// records and anchor indices, row-major with z outer.
	r.Section("cell grid")
	totalPolys := 0
	for z := 0; z < GridSizeZ; z++ {
		for x := 0; x < GridSizeX; x++ {
			nbPoly, err := r.Count("cell polygon", polySize)
			if err != nil {
				return nil, nil, err
			}
			nbCellAnchors, err := r.Count("cell anchor index", 4)
			if err != nil {
				return nil, nil, err
			}
			cell := &s.Cells[z][x]
			if nbPoly > 0 {
				cell.Polygons = make([]Polygon, nbPoly)
				for i := range cell.Polygons {
					cell.Polygons[i] = readPolygon(r)
				}
				totalPolys += nbPoly
			}
			if nbCellAnchors > 0 {
				cell.AnchorIndices = make([]int32, nbCellAnchors)
				for i := range cell.AnchorIndices {
					cell.AnchorIndices[i] = r.I32()
				}
			}
			if err := r.Err(); err != nil {
				return nil, nil, err
			}
		}
	}
	if totalPolys != nbPolys {
		warns = append(warns, codecerr.Warnf("cell grid", 0,
			"header declares %d polygons, grid holds %d", nbPolys, totalPolys))
	}

	r.Section("anchors")
	s.Anchors = make([]Anchor, nbAnchors)
	for i := range s.Anchors {
		a := &s.Anchors[i]
		a.Pos = readVec3(r)
		a.Radius = r.F32()
		a.Height = r.F32()
		nbLinked := int(r.I16())
		a.Flags = r.I16()
		if nbLinked > 0 {
			a.Linked = make([]int32, nbLinked)
			for j := range a.Linked {
				a.Linked[j] = r.I32()
			}
		}
		if err := r.Err(); err != nil {
			return nil, nil, err
		}
	}

	r.Section("portals")
	s.Portals = make([]Portal, nbPortals)
	for i := range s.Portals {
		s.Portals[i] = readPortal(r)
	}
	if err := r.Err(); err != nil {
		return nil, nil, err
	}

	// Room count is off by one in the data: a reserved "outside" room is
	// always serialized in addition to the declared count.
	r.Section("rooms")
	s.Rooms = make([]Room, nbRooms+1)
	for i := range s.Rooms {
		nbRoomPortals, err := r.Count("room portal index", 4)
		if err != nil {
			return nil, nil, err
		}
		nbRoomPolys, err := r.Count("room polygon reference", polyRefSize)
		if err != nil {
			return nil, nil, err
		}
		r.Skip(6 * 4) // padding
		room := &s.Rooms[i]
		if nbRoomPortals > 0 {
			room.Portals = make([]int32, nbRoomPortals)
			for j := range room.Portals {
				room.Portals[j] = r.I32()
			}
		}
		if nbRoomPolys > 0 {
			room.Polys = make([]PolyRef, nbRoomPolys)
			for j := range room.Polys {
				room.Polys[j] = PolyRef{CellX: r.I16(), CellZ: r.I16(), Idx: r.I16()}
				r.Skip(2) // padding
			}
		}
		if err := r.Err(); err != nil {
			return nil, nil, err
		}
	}

	r.Section("room distance matrix")
	dim := nbRooms + 1
	s.RoomDistances = make([][]RoomDist, dim)
	for i := range s.RoomDistances {
		s.RoomDistances[i] = make([]RoomDist, dim)
		for j := range s.RoomDistances[i] {
			s.RoomDistances[i][j] = RoomDist{
				Distance: r.F32(),
				Start:    readVec3(r),
				End:      readVec3(r),
			}
		}
	}
	if err := r.Err(); err != nil {
		return nil, nil, err
	}

	if err := s.validateCrossRefs(); err != nil {
		return nil, nil, err
	}
	return s, warns, nil
}

func readPortal(r *binio.Reader) Portal {
	var p Portal
	p.Poly.Type = r.I32()
	r.Skip(2 * 12) // min, max
	p.Poly.Norm = readVec3(r)
	p.Poly.Norm2 = readVec3(r)
	for i := range p.Poly.V {
		p.Poly.V[i].Pos = readVec3(r)
		r.Skip(4 + 4 + 4) // rhw, color, specular
		p.Poly.V[i].U = r.F32()
		p.Poly.V[i].V = r.F32()
	}
	r.Skip(4 * 32) // duplicated runtime vertex block
	r.Skip(4 * 12) // per-corner normals
	r.Skip(4)      // texture id, unused on portals
	r.Skip(12)     // center
	p.Poly.TransVal = r.F32()
	p.Poly.Area = r.F32()
	p.Poly.Room = r.I16()
	r.Skip(2) // misc
	p.Room1 = r.I32()
	p.Room2 = r.I32()
	p.UsePortal = r.I16()
	r.Skip(2) // padding
	return p
}

// validateCrossRefs rejects indices that point outside their target
// tables: these are FormatErrors, not recoverable warnings, because a
// caller editing such a scene would corrupt unrelated geometry.
func (s *Scene) validateCrossRefs() error {
	nbAnchors := len(s.Anchors)
	for z := 0; z < GridSizeZ; z++ {
		for x := 0; x < GridSizeX; x++ {
			for _, ai := range s.Cells[z][x].AnchorIndices {
				if ai < 0 || int(ai) >= nbAnchors {
					return codecerr.Formatf("cell grid", 0,
						"cell (%d,%d) references anchor %d of %d", x, z, ai, nbAnchors)
				}
			}
		}
	}
	for i, a := range s.Anchors {
		for _, l := range a.Linked {
			if l < 0 || int(l) >= nbAnchors {
				return codecerr.Formatf("anchors", i, "link to anchor %d of %d", l, nbAnchors)
			}
		}
	}
	for i, room := range s.Rooms {
		for _, pi := range room.Portals {
			if pi < 0 || int(pi) >= len(s.Portals) {
				return codecerr.Formatf("rooms", i, "portal index %d of %d", pi, len(s.Portals))
			}
		}
		for _, ref := range room.Polys {
			if ref.CellX < 0 || int(ref.CellX) >= GridSizeX || ref.CellZ < 0 || int(ref.CellZ) >= GridSizeZ {
				return codecerr.Formatf("rooms", i, "polygon reference outside grid: cell (%d,%d)", ref.CellX, ref.CellZ)
			}
			cell := &s.Cells[ref.CellZ][ref.CellX]
			if ref.Idx < 0 || int(ref.Idx) >= len(cell.Polygons) {
				return codecerr.Formatf("rooms", i,
					"polygon reference (%d,%d,%d) points past cell contents (%d polygons)",
					ref.CellX, ref.CellZ, ref.Idx, len(cell.Polygons))
			}
		}
	}
	return nil
}
