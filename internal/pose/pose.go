// Package pose applies an animation keyframe to a model's vertices.
// Skinning is rigid and single-influence: every vertex follows exactly
// one group (the smallest-index group containing it), rotated about that
// group's origin vertex.
package pose

import (
	"arx-asset-codec/internal/ftl"
	"arx-asset-codec/internal/mathutil"
	"arx-asset-codec/internal/tea"
)

// Apply returns posed vertex positions for one keyframe. The model is
// not modified. Vertices owned by no group, or by a group the keyframe
// has no transform for, keep their rest position.
func Apply(m *ftl.Model, kf *tea.Keyframe) []mathutil.Vec3 {
	out := make([]mathutil.Vec3, len(m.Verts))
	for i := range m.Verts {
		out[i] = m.Verts[i].Pos
	}
	if len(kf.Groups) == 0 {
		return out
	}

	owner := ftl.VertexGroupAssignment(m.Groups)
	for vi := range out {
		g, ok := owner[int32(vi)]
		if !ok || g >= len(kf.Groups) {
			continue
		}
		gt := &kf.Groups[g]
		o := m.Groups[g].Origin
		if o < 0 || int(o) >= len(m.Verts) {
			continue
		}
		origin := m.Verts[o].Pos

		rel := out[vi].Sub(origin)
		// Zoom is stored as a delta from identity scale.
		rel = mathutil.Vec3{
			X: rel.X * (1 + gt.Scale.X),
			Y: rel.Y * (1 + gt.Scale.Y),
			Z: rel.Z * (1 + gt.Scale.Z),
		}
		rel = gt.Rotation.Rotate(rel)
		out[vi] = origin.Add(rel).Add(gt.Translation)
	}
	return out
}
