package fts

import (
	"encoding/binary"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"arx-asset-codec/internal/codecerr"
	"arx-asset-codec/internal/mathutil"
)

// testScene is a minimal scene: one quad in cell (0,0) belonging to room
// 2, a portal between the outside room and room 2, and a two-node anchor
// graph indexed from the same cell.
func testScene() *Scene {
	quad := Polygon{
		V: [4]TexVertex{
			{Pos: mathutil.Vec3{X: 10, Y: -5, Z: 20}, U: 0, V: 0},
			{Pos: mathutil.Vec3{X: 90, Y: -5, Z: 20}, U: 1, V: 0},
			{Pos: mathutil.Vec3{X: 10, Y: -5, Z: 90}, U: 0, V: 1},
			{Pos: mathutil.Vec3{X: 90, Y: -5, Z: 90}, U: 1, V: 1},
		},
		Tex:      1,
		Norm:     mathutil.Vec3{Y: -1},
		Norm2:    mathutil.Vec3{Y: -1},
		TransVal: 0,
		Area:     6400,
		Type:     PolyQuad | PolyStone,
		Room:     2,
	}
	for i := range quad.VertexNormals {
		quad.VertexNormals[i] = mathutil.Vec3{Y: -1}
	}

	s := &Scene{
		Version:     0.141,
		PlayerPos:   mathutil.Vec3{X: 50, Y: -180, Z: 50},
		SceneOffset: mathutil.Vec3{X: 0, Y: 0, Z: 0},
		Textures: []TextureRef{
			{TC: 1, Path: "graph\\obj3d\\textures\\l1_temple_floor.jpg"},
			{TC: 2, Path: "graph\\obj3d\\textures\\l1_temple_wall.jpg"},
		},
		Anchors: []Anchor{
			{Pos: mathutil.Vec3{X: 30, Y: -5, Z: 30}, Radius: 30, Height: 180, Linked: []int32{1}},
			{Pos: mathutil.Vec3{X: 70, Y: -5, Z: 70}, Radius: 30, Height: 180, Linked: []int32{0}},
		},
		Portals: []Portal{{
			Poly: PortalQuad{
				V: [4]PortalVertex{
					{Pos: mathutil.Vec3{X: 10, Y: -200, Z: 20}},
					{Pos: mathutil.Vec3{X: 90, Y: -200, Z: 20}},
					{Pos: mathutil.Vec3{X: 10, Y: 0, Z: 20}},
					{Pos: mathutil.Vec3{X: 90, Y: 0, Z: 20}},
				},
				Norm:  mathutil.Vec3{Z: 1},
				Norm2: mathutil.Vec3{Z: 1},
				Area:  16000,
			},
			Room1:     0,
			Room2:     2,
			UsePortal: 1,
		}},
		Rooms: []Room{
			{Portals: []int32{0}},
			{},
			{Portals: []int32{0}},
		},
	}
	s.Cells[0][0] = Cell{
		Polygons:      []Polygon{quad},
		AnchorIndices: []int32{0, 1},
	}
	s.RoomDistances = make([][]RoomDist, len(s.Rooms))
	for i := range s.RoomDistances {
		s.RoomDistances[i] = make([]RoomDist, len(s.Rooms))
		for j := range s.RoomDistances[i] {
			if i != j {
				s.RoomDistances[i][j] = RoomDist{
					Distance: float32(100*i + j),
					Start:    mathutil.Vec3{X: float32(i)},
					End:      mathutil.Vec3{X: float32(j)},
				}
			}
		}
	}
	return s
}

func TestRoundTrip(t *testing.T) {
	s := testScene()
	data, warns, err := Encode(s)
	if err != nil {
		t.Fatal(err)
	}
	if len(warns) != 0 {
		t.Fatalf("encode warnings: %v", warns)
	}
	got, warns, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(warns) != 0 {
		t.Errorf("decode warnings: %v", warns)
	}
	if !reflect.DeepEqual(got, s) {
		t.Errorf("round trip mismatch")
	}
	if got.PolyCount() != 1 {
		t.Errorf("PolyCount = %d, want 1", got.PolyCount())
	}
	if want := (PolyRef{CellX: 0, CellZ: 0, Idx: 0}); len(got.Rooms[2].Polys) != 1 || got.Rooms[2].Polys[0] != want {
		t.Errorf("room 2 polygon refs = %v", got.Rooms[2].Polys)
	}
}

// Stored (cell, index) references go stale when cell contents shift.
// Inserting a polygon at the front of a cell must move the existing
// references on the next encode.
func TestEncodeRefreshesStaleRefs(t *testing.T) {
	s := testScene()
	tri := Polygon{
		V: [4]TexVertex{
			{Pos: mathutil.Vec3{X: 0, Y: -5, Z: 0}},
			{Pos: mathutil.Vec3{X: 5, Y: -5, Z: 0}},
			{Pos: mathutil.Vec3{X: 0, Y: -5, Z: 5}},
		},
		Norm: mathutil.Vec3{Y: -1},
		Room: 1,
	}
	s.Cells[0][0].Polygons = append([]Polygon{tri}, s.Cells[0][0].Polygons...)

	data, warns, err := Encode(s)
	if err != nil {
		t.Fatal(err)
	}
	if len(warns) != 0 {
		t.Fatalf("encode warnings: %v", warns)
	}
	got, _, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if want := (PolyRef{0, 0, 0}); len(got.Rooms[1].Polys) != 1 || got.Rooms[1].Polys[0] != want {
		t.Errorf("room 1 refs = %v, want [%v]", got.Rooms[1].Polys, want)
	}
	if want := (PolyRef{0, 0, 1}); len(got.Rooms[2].Polys) != 1 || got.Rooms[2].Polys[0] != want {
		t.Errorf("room 2 refs = %v, want [%v]", got.Rooms[2].Polys, want)
	}
}

func TestEncodeReassignsOrphanRoom(t *testing.T) {
	s := testScene()
	orphan := s.Cells[0][0].Polygons[0]
	orphan.Room = 99
	s.Cells[2][3].Polygons = []Polygon{orphan}

	_, warns, err := Encode(s)
	if err != nil {
		t.Fatal(err)
	}
	if len(warns) != 1 {
		t.Fatalf("%d warnings, want 1: %v", len(warns), warns)
	}
	if got := s.Cells[2][3].Polygons[0].Room; got != 2 {
		t.Errorf("orphan reassigned to room %d, want 2 (nearest valid polygon)", got)
	}
}

func TestEncodeValidation(t *testing.T) {
	cases := []struct {
		name    string
		corrupt func(*Scene)
	}{
		{"no rooms", func(s *Scene) { s.Rooms = nil }},
		{"duplicate texture id", func(s *Scene) { s.Textures[1].TC = 1 }},
		{"room portal out of range", func(s *Scene) { s.Rooms[2].Portals[0] = 5 }},
		{"anchor link out of range", func(s *Scene) { s.Anchors[0].Linked[0] = 9 }},
	}
	for _, tc := range cases {
		s := testScene()
		tc.corrupt(s)
		if _, _, err := Encode(s); err == nil {
			t.Errorf("%s: accepted", tc.name)
		}
	}
}

func TestDecodeRejectsGridSize(t *testing.T) {
	data, _, err := Encode(testScene())
	if err != nil {
		t.Fatal(err)
	}
	binary.LittleEndian.PutUint32(data[4:], 10) // sizex
	_, _, err = Decode(data)
	var fe *codecerr.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("want FormatError, got %v", err)
	}
}

func TestDecodeRejectsOversizedCount(t *testing.T) {
	data, _, err := Encode(testScene())
	if err != nil {
		t.Fatal(err)
	}
	binary.LittleEndian.PutUint32(data[12:], 1<<20) // nb_textures
	_, _, err = Decode(data)
	var fe *codecerr.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("want FormatError, got %v", err)
	}
}

func TestDecodeDuplicateTextureWarning(t *testing.T) {
	data, _, err := Encode(testScene())
	if err != nil {
		t.Fatal(err)
	}
	// Second texture record starts one record past the 56-byte header.
	binary.LittleEndian.PutUint32(data[56+textureSize:], 1)
	_, warns, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(warns) != 1 {
		t.Fatalf("%d warnings, want 1: %v", len(warns), warns)
	}
}

func TestDecodeRejectsBadAnchorIndex(t *testing.T) {
	data, _, err := Encode(testScene())
	if err != nil {
		t.Fatal(err)
	}
	// Cell (0,0) layout: 8-byte descriptor, one polygon, then its two
	// anchor indices.
	off := 56 + 2*textureSize + cellInfoSize + polySize
	binary.LittleEndian.PutUint32(data[off:], 99)
	_, _, err = Decode(data)
	var fe *codecerr.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("want FormatError, got %v", err)
	}
}

func TestDecodeTruncated(t *testing.T) {
	data, _, err := Encode(testScene())
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = Decode(data[:200])
	var te *codecerr.TruncationError
	if !errors.As(err, &te) {
		t.Fatalf("want TruncationError, got %v", err)
	}
}

func TestContainerRoundTrip(t *testing.T) {
	s := testScene()
	data, warns, err := EncodeContainer(s)
	if err != nil {
		t.Fatal(err)
	}
	if len(warns) != 0 {
		t.Fatalf("encode warnings: %v", warns)
	}
	if len(data) <= payloadOffset {
		t.Fatalf("container is %d bytes, payload must start at %#x", len(data), payloadOffset)
	}
	got, warns, err := DecodeContainer(data, blastLiterals)
	if err != nil {
		t.Fatal(err)
	}
	if len(warns) != 0 {
		t.Errorf("decode warnings: %v", warns)
	}
	if !reflect.DeepEqual(got, s) {
		t.Errorf("container round trip mismatch")
	}
}

func TestContainerSizeMismatchWarning(t *testing.T) {
	data, _, err := EncodeContainer(testScene())
	if err != nil {
		t.Fatal(err)
	}
	// uncompressedsize sits after the 256-byte path, count and version.
	binary.LittleEndian.PutUint32(data[264:], 7)
	_, warns, err := DecodeContainer(data, blastLiterals)
	if err != nil {
		t.Fatal(err)
	}
	if len(warns) != 1 {
		t.Fatalf("%d warnings, want 1: %v", len(warns), warns)
	}
}

func TestContainerDecompressError(t *testing.T) {
	data, _, err := EncodeContainer(testScene())
	if err != nil {
		t.Fatal(err)
	}
	fail := func([]byte) ([]byte, error) { return nil, errors.New("corrupt stream") }
	_, _, err = DecodeContainer(data, fail)
	var fe *codecerr.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("want FormatError, got %v", err)
	}
}

// blastLiterals expands a literal-only implode stream, which is the only
// shape the paired compressor produces: after the two header bytes, a 0
// marker bit introduces 8 literal bits, and the single match symbol is
// the end-of-stream length code (seven zero code bits, eight set extra
// bits).
func blastLiterals(data []byte) ([]byte, error) {
	if len(data) < 2 {
		return nil, errors.New("stream shorter than header")
	}
	if data[0] != 0 || data[1] != 6 {
		return nil, fmt.Errorf("unexpected header % x", data[:2])
	}
	c := bitCursor{data: data[2:]}
	var out []byte
	for {
		marker, err := c.take(1)
		if err != nil {
			return nil, err
		}
		if marker == 0 {
			b, err := c.take(8)
			if err != nil {
				return nil, err
			}
			out = append(out, byte(b))
			continue
		}
		code, err := c.take(7)
		if err != nil {
			return nil, err
		}
		if code != 0 {
			return nil, fmt.Errorf("unexpected length code %#x", code)
		}
		extra, err := c.take(8)
		if err != nil {
			return nil, err
		}
		if extra != 0xFF {
			return nil, fmt.Errorf("unexpected length extra bits %#x", extra)
		}
		return out, nil
	}
}

type bitCursor struct {
	data []byte
	bit  int
}

// take reads n bits LSB-first.
func (c *bitCursor) take(n int) (uint32, error) {
	var v uint32
	for i := 0; i < n; i++ {
		idx := c.bit >> 3
		if idx >= len(c.data) {
			return 0, errors.New("bitstream exhausted")
		}
		v |= uint32(c.data[idx]>>(c.bit&7)&1) << i
		c.bit++
	}
	return v, nil
}
