package timeline

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/decker502/scrollscene/pkg/ecs"
	"github.com/decker502/scrollscene/pkg/utils"
)

// PropRange is the start and end value of one animated property.
type PropRange struct {
	From float64
	To   float64
}

// At returns the value for an eased progress.
func (r PropRange) At(p float64) float64 {
	return utils.Lerp(r.From, r.To, p)
}

// ColorRange is a color transition, blended in CIE-Lab.
type ColorRange struct {
	From colorful.Color
	To   colorful.Color
}

// At returns the blended color for an eased progress.
func (r ColorRange) At(p float64) colorful.Color {
	return r.From.BlendLab(r.To, p).Clamped()
}

// Segment animates a set of properties of one target over a time window.
type Segment struct {
	Target   ecs.EntityID
	Offset   float64
	Duration float64
	Ease     utils.EasingFunc // nil = linear
	Props    map[string]PropRange
	Colors   map[string]ColorRange

	// Repeat plays the window Repeat extra times; Yoyo reverses every other
	// cycle.
	Repeat int
	Yoyo   bool
}

// Span is the length of the segment including repeats.
func (s Segment) Span() float64 {
	return s.Duration * float64(s.Repeat+1)
}

// End is the time at which the segment has written its final value.
func (s Segment) End() float64 {
	return s.Offset + s.Span()
}

// LocalProgress maps timeline time to the un-eased progress of the segment.
// Outside the window the nearest boundary is returned; a zero duration is a
// step at Offset.
func (s Segment) LocalProgress(t float64) float64 {
	if s.Duration <= 0 {
		if t < s.Offset {
			return 0
		}
		return 1
	}

	span := s.Span()
	elapsed := utils.Clamp(t-s.Offset, 0, span)

	cycle := math.Floor(elapsed / s.Duration)
	local := elapsed - cycle*s.Duration
	if elapsed >= span {
		cycle = float64(s.Repeat)
		local = s.Duration
	}
	p := local / s.Duration
	if s.Yoyo && int(cycle)%2 == 1 {
		p = 1 - p
	}
	return p
}

// Progress is the eased local progress at time t.
func (s Segment) Progress(t float64) float64 {
	p := s.LocalProgress(t)
	if s.Ease != nil {
		p = s.Ease(p)
	}
	return p
}

// write stores the segment's values at time t, overwriting earlier writers.
// A pending segment only fills properties no earlier segment has written, so
// a tween queued after another does not mask it before it starts.
func (s Segment) write(t float64, v *Values) {
	pending := t < s.Offset
	p := s.Progress(t)
	for name, r := range s.Props {
		if _, set := v.Props[name]; set && pending {
			continue
		}
		v.Props[name] = r.At(p)
	}
	for name, r := range s.Colors {
		if _, set := v.Colors[name]; set && pending {
			continue
		}
		v.Colors[name] = r.At(p)
	}
}

// clone returns a copy whose maps are not shared with s.
func (s Segment) clone() Segment {
	out := s
	if s.Props != nil {
		out.Props = make(map[string]PropRange, len(s.Props))
		for k, v := range s.Props {
			out.Props[k] = v
		}
	}
	if s.Colors != nil {
		out.Colors = make(map[string]ColorRange, len(s.Colors))
		for k, v := range s.Colors {
			out.Colors[k] = v
		}
	}
	return out
}
