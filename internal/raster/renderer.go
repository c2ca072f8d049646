package raster

import (
	"image"
	"math"

	"arx-asset-codec/internal/ftl"
	"arx-asset-codec/internal/mathutil"
	"arx-asset-codec/internal/texture"
)

// Preview camera: a three-quarter view with a slight downward pitch.
const (
	defaultYaw   = 35.0
	defaultPitch = 20.0
)

// RenderModel renders a model to an NRGBA preview snapshot. positions
// overrides the model's rest-pose vertex positions when non-nil (posed
// rendering); it must be the same length as m.Verts. The result is
// size x size after supersampled rasterization and downsampling.
func RenderModel(m *ftl.Model, positions []mathutil.Vec3, resolver texture.Resolver, size, supersample int) *image.NRGBA {
	if positions == nil {
		positions = make([]mathutil.Vec3, len(m.Verts))
		for i := range m.Verts {
			positions[i] = m.Verts[i].Pos
		}
	}
	if len(positions) == 0 {
		return image.NewNRGBA(image.Rect(0, 0, size, size))
	}

	view := makeView(defaultYaw, defaultPitch)
	renderSize := size * supersample

	// Bounding box of the rotated model
	allMin := [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	allMax := [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, v := range positions {
		t := view.mul(v)
		for k := 0; k < 3; k++ {
			if t[k] < allMin[k] {
				allMin[k] = t[k]
			}
			if t[k] > allMax[k] {
				allMax[k] = t[k]
			}
		}
	}

	center := [3]float64{
		(allMin[0] + allMax[0]) / 2,
		(allMin[1] + allMax[1]) / 2,
		(allMin[2] + allMax[2]) / 2,
	}
	span := allMax[0] - allMin[0]
	if sy := allMax[1] - allMin[1]; sy > span {
		span = sy
	}
	if span < 0.001 {
		span = 0.001
	}

	margin := 16 * supersample
	scale := float64(renderSize-2*margin) / span

	fb := NewFrameBuffer(renderSize, renderSize)
	lc := DefaultLightConfig()

	px, py, pz := projectVertices(positions, view, center, scale, renderSize)

	// Per-texture decode results, including average fallback colors for
	// faces whose texture is missing on disk.
	texImgs := make(map[int16]*image.NRGBA)
	type rgba struct{ r, g, b, a uint8 }
	defaults := make(map[int16]rgba)
	lookup := func(id int16) (*image.NRGBA, rgba) {
		def := rgba{160, 160, 170, 255}
		if id < 0 || int(id) >= len(m.Textures) {
			return nil, def
		}
		if img, ok := texImgs[id]; ok {
			return img, defaults[id]
		}
		var img *image.NRGBA
		if resolver != nil {
			img = resolver.Resolve(m.Textures[id])
		}
		if img != nil {
			def.r, def.g, def.b, def.a = averageColor(img)
		}
		texImgs[id] = img
		defaults[id] = def
		return img, def
	}

	for i := range m.Faces {
		f := &m.Faces[i]
		tex, def := lookup(f.TexID)
		vi := [3]int{int(f.Vids[0]), int(f.Vids[1]), int(f.Vids[2])}
		uv := [3][2]float64{
			{float64(f.U[0]), float64(f.V[0])},
			{float64(f.U[1]), float64(f.V[1])},
			{float64(f.U[2]), float64(f.V[2])},
		}
		RasterizeTriangle(fb, px, py, pz, vi, uv, tex, def.r, def.g, def.b, def.a, &lc)
	}

	img := image.NewNRGBA(image.Rect(0, 0, renderSize, renderSize))
	copy(img.Pix, fb.Color)

	if supersample > 1 {
		img = Downsample(img, size)
	}
	return img
}

func averageColor(tex *image.NRGBA) (uint8, uint8, uint8, uint8) {
	b := tex.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return 160, 160, 170, 255
	}

	var sumR, sumG, sumB float64
	stride := tex.Stride
	for y := 0; y < h; y++ {
		off := y * stride
		for x := 0; x < w; x++ {
			i := off + x*4
			sumR += float64(tex.Pix[i])
			sumG += float64(tex.Pix[i+1])
			sumB += float64(tex.Pix[i+2])
		}
	}
	n := float64(w * h)
	return uint8(sumR/n + 0.5), uint8(sumG/n + 0.5), uint8(sumB/n + 0.5), 255
}
