package raster

import (
	"math"

	"arx-asset-codec/internal/mathutil"
)

// Model space is y-down (engine convention), so the projection keeps +y
// pointing down the screen instead of negating it.

// viewMat is a row-major 3x3 rotation.
type viewMat [9]float64

// makeView builds the preview camera rotation: yaw about the vertical
// axis, then a downward pitch, both in degrees.
func makeView(yawDeg, pitchDeg float64) viewMat {
	yaw := yawDeg * math.Pi / 180
	pitch := pitchDeg * math.Pi / 180
	cy, sy := math.Cos(yaw), math.Sin(yaw)
	cp, sp := math.Cos(pitch), math.Sin(pitch)

	// Rx(pitch) * Ry(yaw)
	return viewMat{
		cy, 0, sy,
		sp * sy, cp, -sp * cy,
		-cp * sy, sp, cp * cy,
	}
}

func (m viewMat) mul(v mathutil.Vec3) [3]float64 {
	x, y, z := float64(v.X), float64(v.Y), float64(v.Z)
	return [3]float64{
		m[0]*x + m[1]*y + m[2]*z,
		m[3]*x + m[4]*y + m[5]*z,
		m[6]*x + m[7]*y + m[8]*z,
	}
}

// projectVertices transforms model vertices to screen coordinates.
// Orthographic: px, py are pixels, pz is the view-space depth kept for
// the z-buffer (larger = closer).
func projectVertices(verts []mathutil.Vec3, m viewMat, center [3]float64, scale float64, renderSize int) (px, py, pz []float64) {
	n := len(verts)
	px = make([]float64, n)
	py = make([]float64, n)
	pz = make([]float64, n)

	half := float64(renderSize) / 2
	for i, v := range verts {
		t := m.mul(v)
		px[i] = (t[0]-center[0])*scale + half
		py[i] = (t[1]-center[1])*scale + half
		pz[i] = -t[2]
	}
	return px, py, pz
}
