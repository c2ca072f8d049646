package pose

import (
	"math"
	"testing"

	"arx-asset-codec/internal/ftl"
	"arx-asset-codec/internal/mathutil"
	"arx-asset-codec/internal/tea"
)

func poseModel() *ftl.Model {
	return &ftl.Model{
		Verts: []ftl.Vertex{
			{Pos: mathutil.Vec3{X: 0, Y: 0, Z: 0}},
			{Pos: mathutil.Vec3{X: 2, Y: 0, Z: 0}},
			{Pos: mathutil.Vec3{X: 5, Y: 5, Z: 5}}, // not in any group
		},
		Groups: []ftl.Group{
			{Name: "root", Origin: 0, Indices: []int32{0, 1}},
		},
	}
}

func approx(a, b mathutil.Vec3) bool {
	d := a.Sub(b)
	return math.Abs(float64(d.X)) < 1e-5 && math.Abs(float64(d.Y)) < 1e-5 && math.Abs(float64(d.Z)) < 1e-5
}

func TestApplyIdentity(t *testing.T) {
	m := poseModel()
	kf := &tea.Keyframe{Groups: []tea.GroupTransform{{Rotation: mathutil.QuatIdentity()}}}
	got := Apply(m, kf)
	for i := range m.Verts {
		if !approx(got[i], m.Verts[i].Pos) {
			t.Errorf("vertex %d moved under identity: %+v", i, got[i])
		}
	}
}

func TestApplyTranslation(t *testing.T) {
	m := poseModel()
	kf := &tea.Keyframe{Groups: []tea.GroupTransform{{
		Rotation:    mathutil.QuatIdentity(),
		Translation: mathutil.Vec3{Y: 3},
	}}}
	got := Apply(m, kf)
	if !approx(got[0], (mathutil.Vec3{Y: 3})) || !approx(got[1], (mathutil.Vec3{X: 2, Y: 3})) {
		t.Errorf("grouped vertices not translated: %+v", got[:2])
	}
	if !approx(got[2], m.Verts[2].Pos) {
		t.Errorf("ungrouped vertex moved: %+v", got[2])
	}
}

// A 180-degree rotation about Y, applied around the group origin.
func TestApplyRotationAboutOrigin(t *testing.T) {
	m := poseModel()
	kf := &tea.Keyframe{Groups: []tea.GroupTransform{{
		Rotation: mathutil.Quat{W: 0, Y: 1},
	}}}
	got := Apply(m, kf)
	if !approx(got[0], mathutil.Vec3{}) {
		t.Errorf("origin vertex moved: %+v", got[0])
	}
	if !approx(got[1], (mathutil.Vec3{X: -2})) {
		t.Errorf("rotated vertex = %+v, want (-2,0,0)", got[1])
	}
}

func TestApplyModelUnchanged(t *testing.T) {
	m := poseModel()
	before := m.Verts[1].Pos
	kf := &tea.Keyframe{Groups: []tea.GroupTransform{{
		Rotation:    mathutil.QuatIdentity(),
		Translation: mathutil.Vec3{X: 10},
	}}}
	Apply(m, kf)
	if m.Verts[1].Pos != before {
		t.Error("Apply mutated the model's rest pose")
	}
}
