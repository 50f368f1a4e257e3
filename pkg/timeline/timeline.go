package timeline

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/decker502/scrollscene/pkg/components"
	"github.com/decker502/scrollscene/pkg/ecs"
)

// Mode selects what drives the timeline clock.
type Mode int

const (
	// ModeScrubbed timelines are evaluated at a trigger's progress.
	ModeScrubbed Mode = iota
	// ModeAutoplay timelines advance with wall-clock time once started.
	ModeAutoplay
)

// RepeatForever makes an autoplay timeline loop indefinitely.
const RepeatForever = -1

// Values are the evaluated properties of one target.
type Values struct {
	Props  components.PropertySet
	Colors map[string]colorful.Color
}

func newValues() *Values {
	return &Values{Props: components.PropertySet{}, Colors: map[string]colorful.Color{}}
}

// State maps each target to the values a timeline wrote for it.
type State map[ecs.EntityID]*Values

// Options configure a timeline.
type Options struct {
	Mode Mode
	// Stretch maps a scrubbed progress over the whole duration instead of
	// using it directly as time.
	Stretch bool
	Repeat  int // autoplay only; RepeatForever loops
	Yoyo    bool
}

// Timeline is an ordered set of segments evaluated at a single time value.
type Timeline struct {
	name     string
	opts     Options
	segments []Segment

	elapsed float64
	playing bool
}

// New creates an empty timeline.
func New(name string, opts Options) *Timeline {
	return &Timeline{name: name, opts: opts}
}

// Name returns the timeline name.
func (tl *Timeline) Name() string {
	return tl.name
}

// Mode returns the clock mode.
func (tl *Timeline) Mode() Mode {
	return tl.opts.Mode
}

// Add appends a segment. Among started segments, declaration order decides
// which one wins when two write the same property of the same target.
func (tl *Timeline) Add(seg Segment) {
	tl.segments = append(tl.segments, seg.clone())
}

// Segments returns the segments in declaration order.
func (tl *Timeline) Segments() []Segment {
	return tl.segments
}

// Targets returns every target the timeline writes, in first-use order.
func (tl *Timeline) Targets() []ecs.EntityID {
	seen := make(map[ecs.EntityID]bool)
	var ids []ecs.EntityID
	for _, s := range tl.segments {
		if !seen[s.Target] {
			seen[s.Target] = true
			ids = append(ids, s.Target)
		}
	}
	return ids
}

// Duration is the end of the latest segment.
func (tl *Timeline) Duration() float64 {
	d := 0.0
	for _, s := range tl.segments {
		d = math.Max(d, s.End())
	}
	return d
}

// Evaluate computes the values at t. For scrubbed timelines t is the trigger
// progress; for autoplay timelines it is timeline time. The result depends
// only on t.
func (tl *Timeline) Evaluate(t float64) State {
	if tl.opts.Mode == ModeScrubbed && tl.opts.Stretch {
		t *= tl.Duration()
	}
	return tl.evaluateAt(t)
}

func (tl *Timeline) evaluateAt(t float64) State {
	state := make(State)
	for _, s := range tl.segments {
		v, ok := state[s.Target]
		if !ok {
			v = newValues()
			state[s.Target] = v
		}
		s.write(t, v)
	}
	return state
}

// Play starts (or resumes) an autoplay timeline.
func (tl *Timeline) Play() {
	tl.playing = true
}

// Pause stops the clock without resetting it.
func (tl *Timeline) Pause() {
	tl.playing = false
}

// Restart rewinds the clock and plays.
func (tl *Timeline) Restart() {
	tl.elapsed = 0
	tl.playing = true
}

// Playing reports whether Advance moves the clock.
func (tl *Timeline) Playing() bool {
	return tl.playing
}

// Advance moves the autoplay clock by dt seconds.
func (tl *Timeline) Advance(dt float64) {
	if !tl.playing || dt <= 0 {
		return
	}
	tl.elapsed += dt
	if tl.Finished() {
		tl.playing = false
	}
}

// Elapsed returns the accumulated wall-clock time.
func (tl *Timeline) Elapsed() float64 {
	return tl.elapsed
}

// Finished reports whether a finite autoplay run has completed.
func (tl *Timeline) Finished() bool {
	if tl.opts.Repeat < 0 {
		return false
	}
	return tl.elapsed >= tl.Duration()*float64(tl.opts.Repeat+1)
}

// TimeAt maps elapsed wall-clock time to timeline time, applying repeat and
// yoyo.
func (tl *Timeline) TimeAt(elapsed float64) float64 {
	d := tl.Duration()
	if d <= 0 || elapsed <= 0 {
		return 0
	}

	cycle := math.Floor(elapsed / d)
	local := elapsed - cycle*d
	if tl.opts.Repeat >= 0 && elapsed >= d*float64(tl.opts.Repeat+1) {
		cycle = float64(tl.opts.Repeat)
		local = d
	}
	if tl.opts.Yoyo && int(cycle)%2 == 1 {
		return d - local
	}
	return local
}

// Current evaluates an autoplay timeline at its clock.
func (tl *Timeline) Current() State {
	return tl.evaluateAt(tl.TimeAt(tl.elapsed))
}

// Apply writes evaluated values into the targets' VisualComponent. Targets
// that no longer exist are skipped.
func Apply(em *ecs.EntityManager, state State) {
	for id, v := range state {
		vis, ok := ecs.GetComponent[*components.VisualComponent](em, id)
		if !ok {
			continue
		}
		for name, val := range v.Props {
			vis.Set(name, val)
		}
		for name, c := range v.Colors {
			vis.SetColor(name, c)
		}
	}
}

// Values returns the values written for id, or nil.
func (s State) Values(id ecs.EntityID) *Values {
	return s[id]
}
