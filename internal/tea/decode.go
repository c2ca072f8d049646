package tea

import (
	"arx-asset-codec/internal/binio"
	"arx-asset-codec/internal/codecerr"
	"arx-asset-codec/internal/mathutil"
)

func readVec3(r *binio.Reader) mathutil.Vec3 {
	return mathutil.Vec3{X: r.F32(), Y: r.F32(), Z: r.F32()}
}

func readQuat(r *binio.Reader) mathutil.Quat {
	return mathutil.Quat{W: r.F32(), X: r.F32(), Y: r.F32(), Z: r.F32()}
}

// Decode parses an animation clip. Recoverable oddities (bad flags,
// non-positive durations, unexpected identity) are substituted with
// defaults and reported as warnings; structural problems abort.
func Decode(data []byte) (*Animation, []codecerr.Warning, error) {
	r := binio.NewReader(data)
	var warns []codecerr.Warning

	r.Section("header")
	ident := r.Str(20)
	version := r.U32()
	name := r.Str(256)
	nbFrames := r.I32()
	nbGroups := r.I32()
	nbKeyframes := r.I32()
	if err := r.Err(); err != nil {
		return nil, nil, err
	}
	if version != version2014 && version != version2015 {
		return nil, nil, codecerr.Formatf("header", 20, "unknown version %d", version)
	}
	if ident != identity {
		warns = append(warns, codecerr.Warnf("header", 0, "unexpected identity %q", ident))
	}
	if nbFrames < 0 || nbGroups < 0 || nbKeyframes < 0 {
		return nil, nil, codecerr.Formatf("header", 280,
			"negative counts: frames=%d groups=%d keyframes=%d", nbFrames, nbGroups, nbKeyframes)
	}
	kfSize := keyframe2014Size
	if version == version2015 {
		kfSize = keyframe2015Size
	}
	if int(nbKeyframes) > r.Remaining()/kfSize {
		return nil, nil, codecerr.Formatf("header", 288,
			"keyframe count %d exceeds remaining buffer (%d bytes)", nbKeyframes, r.Remaining())
	}
	if nbKeyframes > 0 && int(nbGroups) > r.Remaining()/groupAnimSize {
		return nil, nil, codecerr.Formatf("header", 284,
			"group count %d exceeds remaining buffer (%d bytes)", nbGroups, r.Remaining())
	}

	anim := &Animation{
		Name:       name,
		Version:    version,
		GroupCount: int(nbGroups),
		Keyframes:  make([]Keyframe, nbKeyframes),
	}

	for i := range anim.Keyframes {
		r.Section("keyframe")
		kf := &anim.Keyframes[i]

		r.Skip(4) // num_frame, recomputed on encode
		flags := r.I32()
		if version == version2015 {
			kf.Info = r.Str(256)
		}
		r.Skip(4 + 4) // master_key_frame, key_frame
		keyMove := r.I32()
		keyOrient := r.I32()
		keyMorph := r.I32()
		timeFrame := r.I32()
		if err := r.Err(); err != nil {
			return nil, nil, err
		}

		if timeFrame > 0 {
			kf.Duration = float64(timeFrame) / 1000.0
		} else {
			kf.Duration = 1.0 / fallbackFrameRate
			warns = append(warns, codecerr.Warnf("keyframe", i,
				"non-positive time_frame %d, using %.4fs", timeFrame, kf.Duration))
		}

		kf.Flags = flags
		if flags != FlagNone && flags != FlagFootstep {
			kf.Flags = FlagNone
			warns = append(warns, codecerr.Warnf("keyframe", i, "unknown flag %d, treating as none", flags))
		}

		if keyMove != 0 {
			v := readVec3(r)
			kf.Translation = &v
		}
		if keyOrient != 0 {
			r.Skip(8) // legacy Euler angles, superseded by the quaternion
			q := readQuat(r)
			kf.Rotation = &q
		}
		if keyMorph != 0 {
			r.Skip(16)
		}

		kf.Groups = make([]GroupTransform, nbGroups)
		for g := range kf.Groups {
			kf.Groups[g].Group = r.I32()
			r.Skip(8) // legacy angles
			kf.Groups[g].Rotation = readQuat(r)
			kf.Groups[g].Translation = readVec3(r)
			kf.Groups[g].Scale = readVec3(r)
		}

		numSample := r.I32()
		if numSample != -1 {
			kf.Sample = r.Str(256)
			size, err := r.Count("sample payload", 1)
			if err != nil {
				return nil, nil, err
			}
			r.Skip(size)
		}
		r.Skip(4) // num_sfx

		if err := r.Err(); err != nil {
			return nil, nil, err
		}
	}

	return anim, warns, nil
}
