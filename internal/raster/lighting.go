package raster

import "math"

// LightConfig holds precomputed lighting parameters for preview snapshots.
// Directions live in view space, after the model has been rotated.
type LightConfig struct {
	LightDir  [3]float64
	RimDir    [3]float64
	ViewDir   [3]float64
	HalfMain  [3]float64 // precomputed half-vector for Blinn-Phong
	Ambient   float64
	Hemi      float64
	Direct    float64
	Rim       float64
	SpecInt   float64
	SpecPow   float64
	Exposure  float64
	SRGBGamma float64
	InvGamma  float64
}

// DefaultLightConfig returns a key light from the upper left, a cool rim
// light and a hemisphere fill, tuned for dungeon-palette textures.
func DefaultLightConfig() LightConfig {
	lightDir := normalize3([3]float64{180, -260, 140})
	rimDir := normalize3([3]float64{-160, -130, -210})
	viewDir := normalize3([3]float64{0, 110, -400})

	halfMain := normalize3([3]float64{
		lightDir[0] - viewDir[0],
		lightDir[1] - viewDir[1],
		lightDir[2] - viewDir[2],
	})

	return LightConfig{
		LightDir:  lightDir,
		RimDir:    rimDir,
		ViewDir:   viewDir,
		HalfMain:  halfMain,
		Ambient:   0.55,
		Hemi:      0.50,
		Direct:    1.50,
		Rim:       0.60,
		SpecInt:   0.45,
		SpecPow:   12.0,
		Exposure:  1.05,
		SRGBGamma: 2.2,
		InvGamma:  1.0 / 2.2,
	}
}

func normalize3(v [3]float64) [3]float64 {
	l := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if l < 1e-12 {
		return [3]float64{}
	}
	return [3]float64{v[0] / l, v[1] / l, v[2] / l}
}

// Precomputed sRGB-to-linear lookup table (256 entries).
var srgbToLinear [256]float64

func init() {
	for i := 0; i < 256; i++ {
		srgbToLinear[i] = math.Pow(float64(i)/255.0, 2.2)
	}
}

// ACESTonemap applies ACES Filmic tone mapping to a linear value.
func ACESTonemap(x float64) float64 {
	return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
}
