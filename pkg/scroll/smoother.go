package scroll

import (
	"math"

	"github.com/decker502/scrollscene/pkg/utils"
)

// DefaultLerp is the per-frame (at 60 fps) fraction of the remaining distance
// the smoothed offset covers.
const DefaultLerp = 0.1

// Smoother is the ambient scroll-smoothing collaborator: hosts feed raw wheel
// deltas into it and it eases the visible offset toward the target. It serves
// both as the tracker's OffsetSource and as the VelocitySource read by
// velocity-driven effects.
type Smoother struct {
	target  float64
	current float64
	limit   float64
	lerp    float64

	velocity      float64
	velocityValid bool
}

// NewSmoother creates a smoother for a document that can scroll up to limit
// pixels.
func NewSmoother(limit float64) *Smoother {
	return &Smoother{
		limit: math.Max(0, limit),
		lerp:  DefaultLerp,
	}
}

// SetLimit changes the maximum scroll offset (after a relayout) and clamps
// the current position into range.
func (s *Smoother) SetLimit(limit float64) {
	s.limit = math.Max(0, limit)
	s.target = utils.Clamp(s.target, 0, s.limit)
	s.current = utils.Clamp(s.current, 0, s.limit)
}

// Limit returns the maximum scroll offset.
func (s *Smoother) Limit() float64 {
	return s.limit
}

// SetLerp changes the damping. Values are clamped to (0, 1]; 1 disables
// smoothing.
func (s *Smoother) SetLerp(lerp float64) {
	if lerp <= 0 {
		return
	}
	s.lerp = math.Min(lerp, 1)
}

// Lerp returns the current damping.
func (s *Smoother) Lerp() float64 {
	return s.lerp
}

// AddDelta moves the target by delta pixels (wheel, keys, touch).
func (s *Smoother) AddDelta(delta float64) {
	s.target = utils.Clamp(s.target+delta, 0, s.limit)
}

// ScrollTo sets the target offset; immediate also jumps the visible offset.
func (s *Smoother) ScrollTo(offset float64, immediate bool) {
	s.target = utils.Clamp(offset, 0, s.limit)
	if immediate {
		s.current = s.target
		s.velocity = 0
	}
}

// Target returns the offset the smoother is heading to.
func (s *Smoother) Target() float64 {
	return s.target
}

// Step advances the smoothed offset by dt seconds.
func (s *Smoother) Step(dt float64) {
	if dt <= 0 {
		return
	}
	prev := s.current
	// frame-rate independent damping: lerp is defined per 1/60 s
	factor := 1 - math.Exp(-s.lerp*60*dt)
	s.current = utils.Lerp(s.current, s.target, factor)
	if math.Abs(s.target-s.current) < 0.5 {
		s.current = s.target
	}
	s.velocity = (s.current - prev) / dt
	s.velocityValid = true
}

// ScrollOffset implements OffsetSource.
func (s *Smoother) ScrollOffset() (float64, bool) {
	return s.current, true
}

// SmoothedVelocity implements VelocitySource.
func (s *Smoother) SmoothedVelocity() (float64, bool) {
	return s.velocity, s.velocityValid
}
