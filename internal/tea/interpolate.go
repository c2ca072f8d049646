package tea

import "arx-asset-codec/internal/mathutil"

// Channel interpolation for keyframes that omit root translation or
// rotation. For a gap at keyframe i the nearest prior keyframe k and
// following keyframe j carrying the channel are blended with weight
// durationSum(k..i) / durationSum(k..j) toward j, so the fraction follows
// elapsed duration, not frame index. Rotations blend component-wise, not
// spherically, matching the engine. No extrapolation: gaps with no
// enclosing keyframe on one side stay unset.

// blendAt returns (prev, next, t) for keyframe i given the indices that
// carry the channel, or ok=false when i is not enclosed.
func (a *Animation) blendAt(i int, carriers []int) (k, j int, t float32, ok bool) {
	k, j = -1, -1
	for _, c := range carriers {
		if c <= i {
			k = c
		}
		if c >= i && j == -1 {
			j = c
		}
	}
	if k == -1 || j == -1 {
		return 0, 0, 0, false
	}
	if k == j {
		return k, j, 0, true
	}
	var before, after float64
	for f := k; f < i; f++ {
		before += a.Keyframes[f].Duration
	}
	for f := i; f < j; f++ {
		after += a.Keyframes[f].Duration
	}
	total := before + after
	if total <= 0 {
		return k, j, 0, true
	}
	return k, j, float32(before / total), true
}

// ResolvedTranslations returns one translation per keyframe, filling
// omitted channels by duration-weighted interpolation. Entries outside
// any enclosing pair remain nil.
func (a *Animation) ResolvedTranslations() []*mathutil.Vec3 {
	var carriers []int
	for i, kf := range a.Keyframes {
		if kf.Translation != nil {
			carriers = append(carriers, i)
		}
	}
	out := make([]*mathutil.Vec3, len(a.Keyframes))
	for i, kf := range a.Keyframes {
		if kf.Translation != nil {
			v := *kf.Translation
			out[i] = &v
			continue
		}
		k, j, t, ok := a.blendAt(i, carriers)
		if !ok {
			continue
		}
		v := a.Keyframes[k].Translation.Lerp(*a.Keyframes[j].Translation, t)
		out[i] = &v
	}
	return out
}

// ResolvedRotations is the rotation counterpart of ResolvedTranslations.
func (a *Animation) ResolvedRotations() []*mathutil.Quat {
	var carriers []int
	for i, kf := range a.Keyframes {
		if kf.Rotation != nil {
			carriers = append(carriers, i)
		}
	}
	out := make([]*mathutil.Quat, len(a.Keyframes))
	for i, kf := range a.Keyframes {
		if kf.Rotation != nil {
			q := *kf.Rotation
			out[i] = &q
			continue
		}
		k, j, t, ok := a.blendAt(i, carriers)
		if !ok {
			continue
		}
		q := a.Keyframes[k].Rotation.Blend(*a.Keyframes[j].Rotation, t)
		out[i] = &q
	}
	return out
}
