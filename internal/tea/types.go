// Package tea reads and writes the engine's skeletal animation clips:
// sparse keyframes with per-keyframe durations, optional root
// translation/rotation channels, one local transform per skeletal group,
// and embedded sound-sample references.
package tea

import "arx-asset-codec/internal/mathutil"

// Flag values a keyframe may carry. Anything else is recovered to
// FlagNone with a warning.
const (
	FlagNone     int32 = -1
	FlagFootstep int32 = 9
)

// GroupTransform is the local transform of one skeletal group at one
// keyframe. Group is the group index back-reference, -1 when the group
// is inactive this frame.
type GroupTransform struct {
	Group       int32
	Rotation    mathutil.Quat
	Translation mathutil.Vec3
	Scale       mathutil.Vec3
}

// Keyframe is one timed sample. Duration is the hold time before the
// next keyframe, in seconds; absolute time is the running sum of prior
// durations. Translation and Rotation are nil when the channel is
// omitted on disk (see Resolved* for interpolation).
type Keyframe struct {
	Duration    float64
	Flags       int32
	Info        string // version-2015 annotation text
	Translation *mathutil.Vec3
	Rotation    *mathutil.Quat
	Groups      []GroupTransform
	Sample      string // embedded sound sample name, "" when absent
}

// Animation is a fully decoded clip.
type Animation struct {
	Name       string
	Version    uint32 // 2014 or 2015
	GroupCount int
	Keyframes  []Keyframe
}

// TotalDuration is the clip length in seconds.
func (a *Animation) TotalDuration() float64 {
	var sum float64
	for _, kf := range a.Keyframes {
		sum += kf.Duration
	}
	return sum
}

const (
	identity   = "THEA ANIM"
	headerSize = 20 + 4 + 256 + 4 + 4 + 4

	version2014 = 2014
	version2015 = 2015

	keyframe2014Size = 8 * 4
	keyframe2015Size = keyframe2014Size + 256
	groupAnimSize    = 4 + 8 + 16 + 12 + 12
	sampleSize       = 256 + 4

	// Substituted when a keyframe stores a non-positive duration.
	fallbackFrameRate = 24.0
)
