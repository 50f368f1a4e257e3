package effects

import (
	"math"

	"github.com/decker502/scrollscene/pkg/components"
)

// Signal pulse tuning.
const (
	PulseVelocityGain = 0.1
	PulseMaxSpeed     = 5.0
	PulseIndexOffset  = 0.3
	PulseOpacityPeak  = 0.8
	PulseScaleBoost   = 0.3
)

// PulseIntensity maps a velocity to [0,1]: |v|*gain capped at the max speed,
// normalized.
func PulseIntensity(velocity float64) float64 {
	return math.Min(math.Abs(velocity)*PulseVelocityGain, PulseMaxSpeed) / PulseMaxSpeed
}

// SignalPulse returns a mapping for pulses travelling along a path. Each
// target is shifted along the path by indexOffset; brightness and size swell
// mid-path and scale with scroll speed.
func SignalPulse(indexOffset float64) Mapping {
	return func(in Input) (components.PropertySet, error) {
		p := math.Mod(in.Phase+float64(in.Index)*indexOffset, 1)
		intensity := PulseIntensity(in.Velocity)
		swell := math.Sin(p * math.Pi)
		return components.PropertySet{
			components.PropX:       p * 100,
			components.PropOpacity: swell * PulseOpacityPeak * intensity,
			components.PropScale:   1 + swell*PulseScaleBoost*intensity,
		}, nil
	}
}

// SignalPulseNeutral is the resting state of a pulse.
func SignalPulseNeutral() components.PropertySet {
	return components.PropertySet{
		components.PropOpacity: 0,
		components.PropScale:   1,
	}
}
