package fts

import (
	"arx-asset-codec/internal/binio"
	"arx-asset-codec/internal/codecerr"
	"arx-asset-codec/internal/mathutil"
)

func writeVec3(w *binio.Writer, v mathutil.Vec3) {
	w.F32(v.X)
	w.F32(v.Y)
	w.F32(v.Z)
}

// writeTexVertex writes a FAST_VERTEX, which stores y before x.
func writeTexVertex(w *binio.Writer, v TexVertex) {
	w.F32(v.Pos.Y)
	w.F32(v.Pos.X)
	w.F32(v.Pos.Z)
	w.F32(v.U)
	w.F32(v.V)
}

func writePolygon(w *binio.Writer, p *Polygon) {
	for i := range p.V {
		writeTexVertex(w, p.V[i])
	}
	w.I32(p.Tex)
	writeVec3(w, p.Norm)
	writeVec3(w, p.Norm2)
	for i := range p.VertexNormals {
		writeVec3(w, p.VertexNormals[i])
	}
	w.F32(p.TransVal)
	w.F32(p.Area)
	w.U32(p.Type)
	w.I16(p.Room)
	w.Pad(2)
}

// Encode serializes a scene payload. Header counts are recomputed from
// the record, and every room's polygon-reference list is rebuilt in a
// single grid pass, because stored (cell, index) references go stale the
// moment cell contents change. Polygons carrying a room id outside the
// room table are reassigned to their nearest neighbor's room and
// reported as warnings.
func Encode(s *Scene) ([]byte, []codecerr.Warning, error) {
	if len(s.Rooms) == 0 {
		return nil, nil, codecerr.Formatf("rooms", 0, "scene must carry at least the reserved outside room")
	}
	seenTC := make(map[int32]int, len(s.Textures))
	for i, t := range s.Textures {
		if prev, dup := seenTC[t.TC]; dup {
			return nil, nil, codecerr.Formatf("textures", i, "container id %d already used by texture %d", t.TC, prev)
		}
		seenTC[t.TC] = i
	}
	for i, room := range s.Rooms {
		for _, pi := range room.Portals {
			if pi < 0 || int(pi) >= len(s.Portals) {
				return nil, nil, codecerr.Formatf("rooms", i, "portal index %d of %d", pi, len(s.Portals))
			}
		}
	}
	for i, a := range s.Anchors {
		for _, l := range a.Linked {
			if l < 0 || int(l) >= len(s.Anchors) {
				return nil, nil, codecerr.Formatf("anchors", i, "link to anchor %d of %d", l, len(s.Anchors))
			}
		}
	}

	warns := s.rebuildRoomPolys()

	w := binio.NewWriter()
	w.F32(sceneVersion)
	w.I32(GridSizeX)
	w.I32(GridSizeZ)
	w.I32(int32(len(s.Textures)))
	w.I32(int32(s.PolyCount()))
	w.I32(int32(len(s.Anchors)))
	writeVec3(w, s.PlayerPos)
	writeVec3(w, s.SceneOffset)
	w.I32(int32(len(s.Portals)))
	w.I32(int32(len(s.Rooms) - 1))

	for _, t := range s.Textures {
		w.I32(t.TC)
		w.I32(t.Temp)
		w.Str(t.Path, 256)
	}

	for z := 0; z < GridSizeZ; z++ {
		for x := 0; x < GridSizeX; x++ {
			cell := &s.Cells[z][x]
			w.I32(int32(len(cell.Polygons)))
			w.I32(int32(len(cell.AnchorIndices)))
			for i := range cell.Polygons {
				writePolygon(w, &cell.Polygons[i])
			}
			for _, ai := range cell.AnchorIndices {
				w.I32(ai)
			}
		}
	}

	for _, a := range s.Anchors {
		writeVec3(w, a.Pos)
		w.F32(a.Radius)
		w.F32(a.Height)
		w.I16(int16(len(a.Linked)))
		w.I16(a.Flags)
		for _, l := range a.Linked {
			w.I32(l)
		}
	}

	for i := range s.Portals {
		writePortal(w, &s.Portals[i])
	}

	for i := range s.Rooms {
		room := &s.Rooms[i]
		w.I32(int32(len(room.Portals)))
		w.I32(int32(len(room.Polys)))
		w.Pad(6 * 4)
		for _, pi := range room.Portals {
			w.I32(pi)
		}
		for _, ref := range room.Polys {
			w.I16(ref.CellX)
			w.I16(ref.CellZ)
			w.I16(ref.Idx)
			w.Pad(2)
		}
	}

	dim := len(s.Rooms)
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			d := fallbackRoomDist(i, j)
			if i < len(s.RoomDistances) && j < len(s.RoomDistances[i]) {
				d = s.RoomDistances[i][j]
			}
			w.F32(d.Distance)
			writeVec3(w, d.Start)
			writeVec3(w, d.End)
		}
	}

	if err := w.Err(); err != nil {
		return nil, nil, err
	}
	return w.Bytes(), warns, nil
}

func writePortal(w *binio.Writer, p *Portal) {
	q := &p.Poly
	w.I32(q.Type)

	// Bounding box and center are derived from the corners.
	min, max := q.V[0].Pos, q.V[0].Pos
	var center mathutil.Vec3
	for _, v := range q.V {
		min = vecMin(min, v.Pos)
		max = vecMax(max, v.Pos)
		center = center.Add(v.Pos)
	}
	center = center.Scale(0.25)

	writeVec3(w, min)
	writeVec3(w, max)
	writeVec3(w, q.Norm)
	writeVec3(w, q.Norm2)
	for _, v := range q.V {
		writeVec3(w, v.Pos)
		w.Pad(4 + 4 + 4) // rhw, color, specular
		w.F32(v.U)
		w.F32(v.V)
	}
	w.Pad(4 * 32) // duplicated runtime vertex block
	w.Pad(4 * 12) // per-corner normals
	w.I32(0)      // texture id, unused on portals
	writeVec3(w, center)
	w.F32(q.TransVal)
	w.F32(q.Area)
	w.I16(q.Room)
	w.Pad(2)
	w.I32(p.Room1)
	w.I32(p.Room2)
	w.I16(p.UsePortal)
	w.Pad(2)
}

func vecMin(a, b mathutil.Vec3) mathutil.Vec3 {
	return mathutil.Vec3{X: min(a.X, b.X), Y: min(a.Y, b.Y), Z: min(a.Z, b.Z)}
}

func vecMax(a, b mathutil.Vec3) mathutil.Vec3 {
	return mathutil.Vec3{X: max(a.X, b.X), Y: max(a.Y, b.Y), Z: max(a.Z, b.Z)}
}

func fallbackRoomDist(i, j int) RoomDist {
	if i == j {
		return RoomDist{}
	}
	return RoomDist{Distance: 999999.0}
}

// rebuildRoomPolys regenerates every room's polygon-reference list from
// the grid. Polygons whose room id points outside the room table get the
// room of the nearest valid polygon by centroid distance (best-effort
// heuristic; room 0 when the scene has no valid polygon at all).
func (s *Scene) rebuildRoomPolys() []codecerr.Warning {
	var warns []codecerr.Warning

	var valid []located
	for z := 0; z < GridSizeZ; z++ {
		for x := 0; x < GridSizeX; x++ {
			for i := range s.Cells[z][x].Polygons {
				p := &s.Cells[z][x].Polygons[i]
				if int(p.Room) >= 0 && int(p.Room) < len(s.Rooms) {
					valid = append(valid, located{p.Centroid(), p.Room})
				}
			}
		}
	}

	for i := range s.Rooms {
		s.Rooms[i].Polys = s.Rooms[i].Polys[:0]
	}

	for z := 0; z < GridSizeZ; z++ {
		for x := 0; x < GridSizeX; x++ {
			for i := range s.Cells[z][x].Polygons {
				p := &s.Cells[z][x].Polygons[i]
				room := int(p.Room)
				if room < 0 || room >= len(s.Rooms) {
					reassigned := nearestRoom(p.Centroid(), valid)
					warns = append(warns, codecerr.Warnf("cell grid", i,
						"polygon in cell (%d,%d) had room %d of %d, reassigned to room %d",
						x, z, p.Room, len(s.Rooms), reassigned))
					p.Room = reassigned
					room = int(reassigned)
				}
				s.Rooms[room].Polys = append(s.Rooms[room].Polys,
					PolyRef{CellX: int16(x), CellZ: int16(z), Idx: int16(i)})
			}
		}
	}
	return warns
}

type located struct {
	centroid mathutil.Vec3
	room     int16
}

func nearestRoom(c mathutil.Vec3, valid []located) int16 {
	best := int16(0)
	bestDist := float32(0)
	for i, v := range valid {
		d := v.centroid.Sub(c).Dot(v.centroid.Sub(c))
		if i == 0 || d < bestDist {
			best = v.room
			bestDist = d
		}
	}
	return best
}
