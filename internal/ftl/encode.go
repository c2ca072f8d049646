package ftl

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

// Encode serializes a model container. Counts are taken from the slices
// as they stand, and group parents are re-inferred from membership first
// so the in-memory record never carries a stale hierarchy out of an
// encode.
func Encode(m *Model) ([]byte, error) {
	InferParents(m.Groups)

	for i, g := range m.Groups {
		if g.Origin < 0 || int(g.Origin) >= len(m.Verts) {
			return nil, codecerr.Formatf("groups", 0, "group %d origin %d outside vertex table (%d vertices)", i, g.Origin, len(m.Verts))
		}
	}

	w := binio.NewWriter()
	w.Str(magic, 4)
	w.F32(ftlVersion)
	w.Pad(512) // checksum

	w.I32(primaryHeaderSize + secondaryHeaderSize) // 3D data follows directly
	for i := 0; i < 5; i++ {
		w.I32(-1) // cylinder, progressive, clothes, collision, physics
	}

	w.I32(int32(len(m.Verts)))
	w.I32(int32(len(m.Faces)))
	w.I32(int32(len(m.Textures)))
	w.I32(int32(len(m.Groups)))
	w.I32(int32(len(m.Actions)))
	w.I32(int32(len(m.Selections)))
	w.I32(m.Origin)
	w.Str(m.Name, 256)

	for _, v := range m.Verts {
		w.Pad(32)
		writeVec3(w, v.Pos)
		writeVec3(w, v.Normal)
	}

	for _, f := range m.Faces {
		w.U32(f.Type)
		w.Pad(12) // rgb
		for _, vid := range f.Vids {
			w.U16(vid)
		}
		texid := f.TexID
		if int(texid) >= len(m.Textures) {
			texid = -1
		}
		w.I16(texid)
		for _, u := range f.U {
			w.F32(u)
		}
		for _, v := range f.V {
			w.F32(v)
		}
		w.Pad(12) // ou, ov
		w.F32(f.TransVal)
		writeVec3(w, f.Normal)
		w.Pad(36 + 4) // per-corner normals, temp
	}

	for _, name := range m.Textures {
		w.Str(name, 256)
	}

	for _, g := range m.Groups {
		w.Str(g.Name, 256)
		w.I32(g.Origin)
		w.I32(int32(len(g.Indices)))
		w.Pad(4 + 4) // runtime pointer, siz
	}
	for _, g := range m.Groups {
		for _, v := range g.Indices {
			w.I32(v)
		}
	}

	for _, a := range m.Actions {
		w.Str(a.Name, 256)
		w.I32(a.Vertex)
		w.Pad(4 + 4) // action, sfx
	}

	for _, s := range m.Selections {
		w.Str(s.Name, 64)
		w.I32(int32(len(s.Indices)))
		w.Pad(4) // runtime pointer
	}
	for _, s := range m.Selections {
		for _, v := range s.Indices {
			w.I32(v)
		}
	}

	if err := w.Err(); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}
