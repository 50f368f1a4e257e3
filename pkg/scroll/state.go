package scroll

// Direction is the scroll direction derived from the sign of velocity.
type Direction int

const (
	// DirectionIdle means |velocity| is inside the dead-zone.
	DirectionIdle Direction = iota
	// DirectionForward means the page scrolls down (offset grows).
	DirectionForward
	// DirectionBackward means the page scrolls up (offset shrinks).
	DirectionBackward
)

// String returns a readable name.
func (d Direction) String() string {
	switch d {
	case DirectionForward:
		return "forward"
	case DirectionBackward:
		return "backward"
	default:
		return "idle"
	}
}

// State is the viewport scroll state of one frame. The tracker is its only
// writer; everyone else receives copies.
type State struct {
	Offset    float64   // scroll offset in pixels
	Velocity  float64   // pixels per second, positive when scrolling forward
	Direction Direction // sign of Velocity with a dead-zone
	// VelocityValid is false until two samples exist; consumers that scale
	// with velocity must stay neutral before that.
	VelocityValid bool
	Frame         uint64 // number of accepted samples
}
