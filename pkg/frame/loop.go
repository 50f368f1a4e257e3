package frame

import (
	"log"
	"sort"

	"github.com/decker502/scrollscene/pkg/scroll"
)

// Phase orders callbacks within a frame. Lower phases run first.
type Phase int

const (
	// PhaseBinding runs right after the scroll sample (scrub smoothing).
	PhaseBinding Phase = iota
	// PhaseTimeline evaluates timelines.
	PhaseTimeline
	// PhaseEffect runs velocity effects, after every timeline has written.
	PhaseEffect
)

func (p Phase) String() string {
	switch p {
	case PhaseBinding:
		return "binding"
	case PhaseTimeline:
		return "timeline"
	case PhaseEffect:
		return "effect"
	default:
		return "unknown"
	}
}

// Callback runs once per frame with the frame's scroll state.
type Callback func(dt float64, state scroll.State)

// Token identifies a registered callback.
type Token uint64

// Stepper is advanced before the scroll sample, typically a scroll.Smoother.
type Stepper interface {
	Step(dt float64)
}

type entry struct {
	token Token
	phase Phase
	fn    Callback
}

// Loop drives one frame: step the smoother, sample the tracker (which
// notifies its listeners), then run callbacks by phase in registration order.
// It is the only caller of Tracker.Sample.
type Loop struct {
	tracker *scroll.Tracker
	stepper Stepper
	entries []entry
	next    Token
	frames  uint64
	inTick  bool
}

// NewLoop creates a loop. stepper may be nil.
func NewLoop(tracker *scroll.Tracker, stepper Stepper) *Loop {
	return &Loop{tracker: tracker, stepper: stepper}
}

// Tracker returns the sampled tracker.
func (l *Loop) Tracker() *scroll.Tracker {
	return l.tracker
}

// Register adds a callback for phase and returns its cancellation token.
func (l *Loop) Register(phase Phase, fn Callback) Token {
	l.next++
	l.entries = append(l.entries, entry{token: l.next, phase: phase, fn: fn})
	sort.SliceStable(l.entries, func(i, j int) bool { return l.entries[i].phase < l.entries[j].phase })
	return l.next
}

// Cancel removes a callback. Unknown or repeated tokens are ignored; a
// callback cancelled during a tick does not run later in that tick.
func (l *Loop) Cancel(token Token) {
	for i, e := range l.entries {
		if e.token == token {
			rest := make([]entry, 0, len(l.entries)-1)
			rest = append(rest, l.entries[:i]...)
			l.entries = append(rest, l.entries[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered callbacks.
func (l *Loop) Len() int {
	return len(l.entries)
}

// Frames returns the number of completed ticks.
func (l *Loop) Frames() uint64 {
	return l.frames
}

// Tick runs one frame of dt seconds and returns the sampled state.
func (l *Loop) Tick(dt float64) scroll.State {
	if l.inTick {
		log.Printf("[FrameLoop] re-entrant Tick ignored")
		return l.tracker.State()
	}
	l.inTick = true
	defer func() { l.inTick = false }()

	if l.stepper != nil {
		l.stepper.Step(dt)
	}
	state := l.tracker.Sample(dt)

	snapshot := append([]entry(nil), l.entries...)
	for _, e := range snapshot {
		if !l.registered(e.token) {
			continue
		}
		e.fn(dt, state)
	}
	l.frames++
	return state
}

func (l *Loop) registered(token Token) bool {
	for _, e := range l.entries {
		if e.token == token {
			return true
		}
	}
	return false
}
