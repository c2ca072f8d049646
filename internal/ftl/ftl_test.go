package ftl

import (
	"encoding/binary"
	"errors"
	"reflect"
	"testing"

	"arx-asset-codec/internal/codecerr"
	"arx-asset-codec/internal/mathutil"
)

func testModel() *Model {
	return &Model{
		Name:   "human_base",
		Origin: 0,
		Verts: []Vertex{
			{Pos: mathutil.Vec3{X: 0, Y: 0, Z: 0}, Normal: mathutil.Vec3{Y: 1}},
			{Pos: mathutil.Vec3{X: 1, Y: 0, Z: 0}, Normal: mathutil.Vec3{Y: 1}},
			{Pos: mathutil.Vec3{X: 0, Y: 1, Z: 0}, Normal: mathutil.Vec3{Y: 1}},
			{Pos: mathutil.Vec3{X: 1, Y: 1, Z: 0}, Normal: mathutil.Vec3{Y: 1}},
			{Pos: mathutil.Vec3{X: 0, Y: 2, Z: 0}, Normal: mathutil.Vec3{Y: 1}},
		},
		Faces: []Face{
			{Vids: [3]uint16{0, 1, 2}, TexID: 0, U: [3]float32{0, 1, 0}, V: [3]float32{0, 0, 1}, TransVal: 0.5, Normal: mathutil.Vec3{Z: 1}},
			{Vids: [3]uint16{1, 3, 2}, TexID: -1},
		},
		Textures: []string{"graph\\obj3d\\textures\\npc_human_base_hero_head.bmp"},
		Groups: []Group{
			{Name: "all", Origin: 0, Indices: []int32{0, 1, 2, 3, 4}},
			{Name: "chest", Origin: 2, Indices: []int32{2, 3, 4}},
			{Name: "head", Origin: 4, Indices: []int32{4}},
		},
		Actions:    []Action{{Name: "primary_attach", Vertex: 1}},
		Selections: []Selection{{Name: "sel_head", Indices: []int32{2, 4}}},
	}
}

func TestRoundTrip(t *testing.T) {
	m := testModel()
	data, err := Encode(m)
	if err != nil {
		t.Fatal(err)
	}
	got, warns, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(warns) != 0 {
		t.Errorf("unexpected warnings: %v", warns)
	}
	if !reflect.DeepEqual(got, m) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, m)
	}
}

func TestParentInference(t *testing.T) {
	m := testModel()
	InferParents(m.Groups)
	// "all" is a root, "chest" hangs off "all" (origin 2 is in all's
	// list), "head" hangs off "chest" (origin 4 is in both, chest is
	// nearer in the backward scan).
	want := []int{-1, 0, 1}
	for i, g := range m.Groups {
		if g.Parent != want[i] {
			t.Errorf("group %d (%s): parent %d, want %d", i, g.Name, g.Parent, want[i])
		}
	}
}

func TestParentInferenceIdempotent(t *testing.T) {
	m := testModel()
	InferParents(m.Groups)
	first := make([]int, len(m.Groups))
	for i, g := range m.Groups {
		first[i] = g.Parent
	}
	InferParents(m.Groups)
	for i, g := range m.Groups {
		if g.Parent != first[i] {
			t.Fatalf("group %d parent changed on second run: %d -> %d", i, first[i], g.Parent)
		}
	}
}

func TestParentInferenceAcyclic(t *testing.T) {
	m := testModel()
	InferParents(m.Groups)
	for i := range m.Groups {
		seen := map[int]bool{}
		for p := i; p != -1; p = m.Groups[p].Parent {
			if seen[p] {
				t.Fatalf("cycle through group %d", p)
			}
			seen[p] = true
		}
	}
}

// Edits to group membership must be reflected on the next encode even if
// the record carries parents from a previous inference.
func TestEncodeRefreshesParents(t *testing.T) {
	m := testModel()
	InferParents(m.Groups)
	// Detach "head": its origin vertex no longer belongs to any group.
	m.Groups[0].Indices = []int32{0, 1, 2, 3}
	m.Groups[1].Indices = []int32{2, 3}
	if _, err := Encode(m); err != nil {
		t.Fatal(err)
	}
	if m.Groups[2].Parent != -1 {
		t.Errorf("head parent = %d after membership edit, want -1", m.Groups[2].Parent)
	}
}

func TestVertexGroupAssignment(t *testing.T) {
	m := testModel()
	owner := VertexGroupAssignment(m.Groups)
	// Vertex 4 is in groups 0, 1 and 2: the smallest index wins.
	want := map[int32]int{0: 0, 1: 0, 2: 0, 3: 0, 4: 0}
	if !reflect.DeepEqual(owner, want) {
		t.Errorf("assignment = %v, want %v", owner, want)
	}
}

func TestDuplicateFacesDropped(t *testing.T) {
	m := testModel()
	// A permutation of face 0's tuple: the earlier face is dropped.
	m.Faces = append(m.Faces, Face{Vids: [3]uint16{2, 0, 1}})
	data, err := Encode(m)
	if err != nil {
		t.Fatal(err)
	}
	got, warns, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Faces) != 2 {
		t.Fatalf("%d faces after dedup, want 2", len(got.Faces))
	}
	if got.Faces[0].Vids != m.Faces[1].Vids || got.Faces[1].Vids != [3]uint16{2, 0, 1} {
		t.Errorf("wrong faces kept: %v", got.Faces)
	}
	if len(warns) != 1 {
		t.Fatalf("dedup produced %d warnings, want 1", len(warns))
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	data, err := Encode(testModel())
	if err != nil {
		t.Fatal(err)
	}
	data[0] = 'X'
	_, _, err = Decode(data)
	var fe *codecerr.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("want FormatError, got %v", err)
	}
}

// An index count implying a read past the end of the buffer must fail
// the decode before any allocation is attempted.
func TestDecodeRejectsOversizedIndexCount(t *testing.T) {
	m := testModel()
	groupsOff := primaryHeaderSize + secondaryHeaderSize + dataHeaderSize +
		len(m.Verts)*vertexSize + len(m.Faces)*faceSize + len(m.Textures)*textureSize
	indexBytes := 0
	for _, g := range m.Groups {
		indexBytes += 4 * len(g.Indices)
	}
	selOff := groupsOff + len(m.Groups)*groupSize + indexBytes + len(m.Actions)*actionSize

	// The count field follows the record's name (and, for groups, the
	// origin vertex).
	cases := map[string]int{
		"group":     groupsOff + 256 + 4,
		"selection": selOff + 64,
	}
	for name, off := range cases {
		t.Run(name, func(t *testing.T) {
			data, err := Encode(m)
			if err != nil {
				t.Fatal(err)
			}
			binary.LittleEndian.PutUint32(data[off:], 0x7FFFFFFF)
			_, _, err = Decode(data)
			var fe *codecerr.FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("want FormatError, got %v", err)
			}
		})
	}
}

// Truncation offsets must locate the failure within the file, not within
// the 3D data chunk.
func TestDecodeTruncatedReportsFileOffset(t *testing.T) {
	data, err := Encode(testModel())
	if err != nil {
		t.Fatal(err)
	}
	chunkStart := primaryHeaderSize + secondaryHeaderSize
	_, _, err = Decode(data[:chunkStart+2])
	var te *codecerr.TruncationError
	if !errors.As(err, &te) {
		t.Fatalf("want TruncationError, got %v", err)
	}
	if te.Offset != chunkStart {
		t.Errorf("truncation offset %d, want %d", te.Offset, chunkStart)
	}
}

func TestDecodeTruncated(t *testing.T) {
	data, err := Encode(testModel())
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = Decode(data[:len(data)-40])
	var te *codecerr.TruncationError
	if !errors.As(err, &te) {
		t.Fatalf("want TruncationError, got %v", err)
	}
}

func TestEncodeRejectsBadOrigin(t *testing.T) {
	m := testModel()
	m.Groups[1].Origin = 99
	if _, err := Encode(m); err == nil {
		t.Fatal("out-of-range group origin accepted")
	}
}
