package ftl

import (
	"sort"

	"arx-asset-codec/internal/binio"
	"arx-asset-codec/internal/codecerr"
	"arx-asset-codec/internal/mathutil"
)

func readVec3(r *binio.Reader) mathutil.Vec3 {
	return mathutil.Vec3{X: r.F32(), Y: r.F32(), Z: r.F32()}
}

// Decode parses a raw model container. Warnings report recovered
// oddities: unused data chunks and dropped duplicate faces.
func Decode(data []byte) (*Model, []codecerr.Warning, error) {
	r := binio.NewReader(data)
	var warns []codecerr.Warning

	r.Section("primary header")
	ident := r.Bytes(4)
	version := r.F32()
	r.Skip(512) // checksum
	if err := r.Err(); err != nil {
		return nil, nil, err
	}
	if len(ident) < 3 || string(ident[:3]) != magic {
		return nil, nil, codecerr.Formatf("primary header", 0, "bad magic % x; compressed containers must be decompressed externally", ident)
	}
	if version != ftlVersion {
		return nil, nil, codecerr.Formatf("primary header", 4, "unsupported version %f", version)
	}

	r.Section("secondary header")
	offset3D := r.I32()
	offsets := [5]int32{r.I32(), r.I32(), r.I32(), r.I32(), r.I32()}
	if err := r.Err(); err != nil {
		return nil, nil, err
	}
	if offset3D <= 0 || int(offset3D) > len(data) {
		return nil, nil, codecerr.Formatf("secondary header", primaryHeaderSize, "invalid 3D data offset %d", offset3D)
	}
	names := [5]string{"cylinder", "progressive", "clothes", "collision sphere", "physics box"}
	for i, off := range offsets {
		if off > 0 {
			warns = append(warns, codecerr.Warnf("secondary header", i, "ignoring unused %s data at offset %d", names[i], off))
		}
	}

	// Reset the cursor over the whole file rather than the 3D chunk so
	// truncation errors keep reporting file offsets.
	r = binio.NewReader(data)
	r.Skip(int(offset3D))
	r.Section("3D data header")
	nbVerts, err := r.Count("vertex", vertexSize)
	if err != nil {
		return nil, nil, err
	}
	nbFaces, err := r.Count("face", faceSize)
	if err != nil {
		return nil, nil, err
	}
	nbMaps, err := r.Count("texture map", textureSize)
	if err != nil {
		return nil, nil, err
	}
	nbGroups, err := r.Count("group", groupSize)
	if err != nil {
		return nil, nil, err
	}
	nbActions, err := r.Count("action", actionSize)
	if err != nil {
		return nil, nil, err
	}
	nbSelections, err := r.Count("selection", selectionSize)
	if err != nil {
		return nil, nil, err
	}
	m := &Model{
		Origin: r.I32(),
		Name:   r.Str(256),
	}

	r.Section("vertices")
	m.Verts = make([]Vertex, nbVerts)
	for i := range m.Verts {
		r.Skip(32) // legacy transformed-vertex block
		m.Verts[i] = Vertex{Pos: readVec3(r), Normal: readVec3(r)}
	}

	r.Section("faces")
	faces := make([]Face, nbFaces)
	for i := range faces {
		f := &faces[i]
		f.Type = r.U32()
		r.Skip(12) // rgb, always zero
		f.Vids = [3]uint16{r.U16(), r.U16(), r.U16()}
		f.TexID = r.I16()
		for j := 0; j < 3; j++ {
			f.U[j] = r.F32()
		}
		for j := 0; j < 3; j++ {
			f.V[j] = r.F32()
		}
		r.Skip(12) // ou, ov
		f.TransVal = r.F32()
		f.Normal = readVec3(r)
		r.Skip(36 + 4) // per-corner normals (always zero), temp
	}
	m.Faces, warns = dropDuplicateFaces(faces, warns)

	r.Section("texture maps")
	m.Textures = make([]string, nbMaps)
	for i := range m.Textures {
		m.Textures[i] = r.Str(256)
	}

	r.Section("groups")
	m.Groups = make([]Group, nbGroups)
	counts := make([]int, nbGroups)
	for i := range m.Groups {
		m.Groups[i].Name = r.Str(256)
		m.Groups[i].Origin = r.I32()
		counts[i] = int(r.I32())
		r.Skip(4 + 4) // runtime pointer, siz
	}
	for i := range m.Groups {
		if counts[i] < 0 {
			return nil, nil, codecerr.Formatf("groups", r.Offset(), "group %d has negative index count %d", i, counts[i])
		}
		if counts[i] > r.Remaining()/4 {
			return nil, nil, codecerr.Formatf("groups", r.Offset(),
				"group %d index count %d exceeds remaining buffer (%d bytes)", i, counts[i], r.Remaining())
		}
		idx := make([]int32, counts[i])
		for j := range idx {
			idx[j] = r.I32()
		}
		m.Groups[i].Indices = idx
	}

	r.Section("actions")
	m.Actions = make([]Action, nbActions)
	for i := range m.Actions {
		m.Actions[i].Name = r.Str(256)
		m.Actions[i].Vertex = r.I32()
		r.Skip(4 + 4) // action, sfx
	}

	r.Section("selections")
	m.Selections = make([]Selection, nbSelections)
	selCounts := make([]int, nbSelections)
	for i := range m.Selections {
		m.Selections[i].Name = r.Str(64)
		selCounts[i] = int(r.I32())
		r.Skip(4) // runtime pointer
	}
	for i := range m.Selections {
		if selCounts[i] < 0 {
			return nil, nil, codecerr.Formatf("selections", r.Offset(), "selection %d has negative index count %d", i, selCounts[i])
		}
		if selCounts[i] > r.Remaining()/4 {
			return nil, nil, codecerr.Formatf("selections", r.Offset(),
				"selection %d index count %d exceeds remaining buffer (%d bytes)", i, selCounts[i], r.Remaining())
		}
		idx := make([]int32, selCounts[i])
		for j := range idx {
			idx[j] = r.I32()
		}
		m.Selections[i].Indices = idx
	}

	if err := r.Err(); err != nil {
		return nil, nil, err
	}

	for i, g := range m.Groups {
		if g.Origin < 0 || int(g.Origin) >= len(m.Verts) {
			return nil, nil, codecerr.Formatf("groups", 0, "group %d origin %d outside vertex table (%d vertices)", i, g.Origin, len(m.Verts))
		}
	}
	InferParents(m.Groups)

	return m, warns, nil
}

// dropDuplicateFaces removes faces whose vertex triple is a permutation
// of another face's. The earlier occurrence is dropped and the later one
// kept, and every drop is reported so skin tooling can account for the
// renumbering.
func dropDuplicateFaces(faces []Face, warns []codecerr.Warning) ([]Face, []codecerr.Warning) {
	seen := make(map[[3]uint16]int, len(faces))
	drop := make(map[int]bool)
	for i, f := range faces {
		key := sortedVids(f.Vids)
		if prev, ok := seen[key]; ok {
			drop[prev] = true
			warns = append(warns, codecerr.Warnf("faces", prev, "dropped: vertex tuple %v duplicates face %d", faces[prev].Vids, i))
		}
		seen[key] = i
	}
	if len(drop) == 0 {
		return faces, warns
	}
	kept := make([]Face, 0, len(faces)-len(drop))
	for i, f := range faces {
		if !drop[i] {
			kept = append(kept, f)
		}
	}
	return kept, warns
}

func sortedVids(v [3]uint16) [3]uint16 {
	s := []uint16{v[0], v[1], v[2]}
	sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
	return [3]uint16{s[0], s[1], s[2]}
}
