package scroll

import (
	"log"
	"math"
)

const (
	// DefaultMaxVelocity is the speed above which a sample is treated as
	// sensor noise (layout thrash, programmatic jumps).
	DefaultMaxVelocity = 10000.0
	// DefaultDeadZone is the |velocity| under which direction is idle.
	DefaultDeadZone = 4.0
)

// OffsetSource reports the current viewport scroll offset.
// ok is false when the environment cannot report a position.
type OffsetSource interface {
	ScrollOffset() (offset float64, ok bool)
}

// OffsetFunc adapts a function to OffsetSource.
type OffsetFunc func() (float64, bool)

// ScrollOffset implements OffsetSource.
func (f OffsetFunc) ScrollOffset() (float64, bool) {
	return f()
}

// VelocitySource is implemented by an ambient scroll-smoothing collaborator.
// Velocity effects prefer it over the raw tracker velocity when ok is true.
type VelocitySource interface {
	SmoothedVelocity() (velocity float64, ok bool)
}

// Listener receives the state of every accepted sample.
type Listener func(State)

// Subscription identifies a registered listener.
type Subscription uint64

type subscriber struct {
	id Subscription
	fn Listener
}

// Tracker samples the viewport scroll offset once per frame and derives
// velocity and direction. One tracker exists per page.
type Tracker struct {
	source      OffsetSource
	state       State
	hasOffset   bool
	maxVelocity float64
	deadZone    float64

	listeners []subscriber
	nextSubID Subscription
}

// NewTracker creates a tracker reading offsets from source.
func NewTracker(source OffsetSource) *Tracker {
	return &Tracker{
		source:      source,
		maxVelocity: DefaultMaxVelocity,
		deadZone:    DefaultDeadZone,
	}
}

// SetLimits overrides the noise cap and the direction dead-zone.
// Non-positive values keep the current setting.
func (t *Tracker) SetLimits(maxVelocity, deadZone float64) {
	if maxVelocity > 0 {
		t.maxVelocity = maxVelocity
	}
	if deadZone > 0 {
		t.deadZone = deadZone
	}
}

// State returns the last sampled state.
func (t *Tracker) State() State {
	return t.state
}

// Sample reads the source and updates the state, then notifies listeners in
// subscription order. dt is the time since the previous frame in seconds.
// Call it at most once per frame.
//
// When the source cannot report a position or dt is not positive, the last
// known state is returned unchanged and listeners are not notified.
func (t *Tracker) Sample(dt float64) State {
	if t.source == nil {
		return t.state
	}
	offset, ok := t.source.ScrollOffset()
	if !ok || math.IsNaN(offset) || math.IsInf(offset, 0) {
		return t.state
	}

	if !t.hasOffset {
		t.hasOffset = true
		t.state = State{Offset: offset, Direction: DirectionIdle, Frame: 1}
		t.notify()
		return t.state
	}
	if dt <= 0 {
		return t.state
	}

	velocity := (offset - t.state.Offset) / dt
	if math.Abs(velocity) > t.maxVelocity {
		// accept the jump, keep the previous velocity
		log.Printf("[ScrollTracker] Discarding velocity spike %.0f px/s (offset %.1f -> %.1f)", velocity, t.state.Offset, offset)
		velocity = t.state.Velocity
	}

	t.state = State{
		Offset:        offset,
		Velocity:      velocity,
		Direction:     t.directionOf(velocity),
		VelocityValid: true,
		Frame:         t.state.Frame + 1,
	}
	t.notify()
	return t.state
}

func (t *Tracker) directionOf(velocity float64) Direction {
	switch {
	case velocity > t.deadZone:
		return DirectionForward
	case velocity < -t.deadZone:
		return DirectionBackward
	default:
		return DirectionIdle
	}
}

// Subscribe registers a listener called after every accepted sample.
func (t *Tracker) Subscribe(fn Listener) Subscription {
	t.nextSubID++
	t.listeners = append(t.listeners, subscriber{id: t.nextSubID, fn: fn})
	return t.nextSubID
}

// Unsubscribe removes a listener. Unknown subscriptions are ignored, so it is
// safe to call more than once.
func (t *Tracker) Unsubscribe(id Subscription) {
	for i, s := range t.listeners {
		if s.id == id {
			t.listeners = append(t.listeners[:i:i], t.listeners[i+1:]...)
			return
		}
	}
}

// ListenerCount returns the number of registered listeners.
func (t *Tracker) ListenerCount() int {
	return len(t.listeners)
}

func (t *Tracker) notify() {
	// iterate over a copy so listeners may unsubscribe themselves
	listeners := make([]subscriber, len(t.listeners))
	copy(listeners, t.listeners)
	for _, s := range listeners {
		if !t.subscribed(s.id) {
			continue
		}
		s.fn(t.state)
	}
}

func (t *Tracker) subscribed(id Subscription) bool {
	for _, s := range t.listeners {
		if s.id == id {
			return true
		}
	}
	return false
}
