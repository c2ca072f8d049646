package tea

import (
	"math"

	"arx-asset-codec/internal/binio"
	"arx-asset-codec/internal/codecerr"
	"arx-asset-codec/internal/mathutil"
)

func writeVec3(w *binio.Writer, v mathutil.Vec3) {
	w.F32(v.X)
	w.F32(v.Y)
	w.F32(v.Z)
}

func writeQuat(w *binio.Writer, q mathutil.Quat) {
	w.F32(q.W)
	w.F32(q.X)
	w.F32(q.Y)
	w.F32(q.Z)
}

// Encode serializes a clip. Per-keyframe time_frame and the 24fps
// num_frame counter are recomputed from the in-memory durations, never
// trusted from a previous decode.
func Encode(a *Animation) ([]byte, error) {
	if a.Version != version2014 && a.Version != version2015 {
		return nil, codecerr.Formatf("header", 20, "unknown version %d", a.Version)
	}
	for i, kf := range a.Keyframes {
		if len(kf.Groups) != a.GroupCount {
			return nil, codecerr.Formatf("keyframe", 0,
				"keyframe %d has %d group transforms, clip declares %d", i, len(kf.Groups), a.GroupCount)
		}
	}

	w := binio.NewWriter()
	w.Str(identity, 20)
	w.U32(a.Version)
	w.Str(a.Name, 256)
	w.I32(int32(math.Round(a.TotalDuration() * fallbackFrameRate)))
	w.I32(int32(a.GroupCount))
	w.I32(int32(len(a.Keyframes)))

	elapsed := 0.0
	for _, kf := range a.Keyframes {
		w.I32(int32(math.Round(elapsed * fallbackFrameRate)))
		w.I32(kf.Flags)
		if a.Version == version2015 {
			w.Str(kf.Info, 256)
		}
		w.I32(1) // master_key_frame
		w.I32(1) // key_frame
		w.I32(boolI32(kf.Translation != nil))
		w.I32(boolI32(kf.Rotation != nil))
		w.I32(0) // key_morph
		w.I32(int32(math.Round(kf.Duration * 1000.0)))

		if kf.Translation != nil {
			writeVec3(w, *kf.Translation)
		}
		if kf.Rotation != nil {
			w.Pad(8) // legacy Euler angles
			writeQuat(w, *kf.Rotation)
		}

		for _, g := range kf.Groups {
			w.I32(g.Group)
			w.Pad(8) // legacy angles
			writeQuat(w, g.Rotation)
			writeVec3(w, g.Translation)
			writeVec3(w, g.Scale)
		}

		if kf.Sample == "" {
			w.I32(-1)
		} else {
			w.I32(0)
			w.Str(kf.Sample, 256)
			w.I32(0) // sample payload size; payloads are not carried through
		}
		w.I32(0) // num_sfx

		elapsed += kf.Duration
	}

	if err := w.Err(); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func boolI32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
