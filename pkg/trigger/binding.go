package trigger

import (
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/decker502/scrollscene/pkg/components"
	"github.com/decker502/scrollscene/pkg/scroll"
	"github.com/decker502/scrollscene/pkg/utils"
)

// Layout is the container markers resolve against: element boxes in document
// coordinates plus the viewport height.
type Layout interface {
	Element(name string) (components.Rect, bool)
	ViewportHeight() float64
}

// Callbacks are fired by UpdateProgress on progress transitions, mirroring
// the usual scroll-trigger hooks. Any of them may be nil.
type Callbacks struct {
	OnEnter     func()
	OnLeave     func()
	OnEnterBack func()
	OnLeaveBack func()
	OnToggle    func(active bool)
	OnUpdate    func(progress float64)
}

// Config describes a trigger binding as supplied by the page.
type Config struct {
	Name    string // for logs
	Trigger string // element whose box the markers refer to
	Start   string // default "top bottom"
	End     string // default "bottom top"
	Pin     bool
	// Scrub is the catch-up lag in seconds; 0 binds progress directly.
	Scrub     float64
	Callbacks Callbacks
}

// Extent is the parsed start/end marker pair.
type Extent struct {
	Start Marker
	End   Marker
	Pin   bool
}

// Binding maps the scroll offset to a normalized progress for one trigger
// extent and owns the pin of its section.
type Binding struct {
	name    string
	trigger string
	extent  Extent
	lag     float64
	cb      Callbacks

	start, end float64
	resolved   bool

	raw         float64 // progress from the latest scroll state
	progress    float64 // effective progress, raw smoothed by scrub lag
	initialized bool
	active      bool

	pinActive bool
	pinOffset float64
	disposed  bool
}

// NewBinding parses the markers of cfg. The binding is unresolved until
// Resolve is called.
func NewBinding(cfg Config) (*Binding, error) {
	startStr, endStr := cfg.Start, cfg.End
	if startStr == "" {
		startStr = "top bottom"
	}
	if endStr == "" {
		endStr = "bottom top"
	}

	start, err := ParseMarker(startStr)
	if err != nil {
		return nil, fmt.Errorf("start of %q: %w", cfg.Name, err)
	}
	if start.Relative {
		return nil, fmt.Errorf("start of %q: %w: start cannot be relative", cfg.Name, ErrInvalidMarker)
	}
	end, err := ParseMarker(endStr)
	if err != nil {
		return nil, fmt.Errorf("end of %q: %w", cfg.Name, err)
	}

	return &Binding{
		name:    cfg.Name,
		trigger: cfg.Trigger,
		extent:  Extent{Start: start, End: end, Pin: cfg.Pin},
		lag:     math.Max(0, cfg.Scrub),
		cb:      cfg.Callbacks,
	}, nil
}

// Name returns the binding name.
func (b *Binding) Name() string {
	return b.name
}

// Trigger returns the name of the element the markers refer to.
func (b *Binding) Trigger() string {
	return b.trigger
}

// Extent returns the parsed markers.
func (b *Binding) Extent() Extent {
	return b.extent
}

// Resolve converts the markers into absolute scroll offsets.
//
// A missing trigger element leaves the binding unresolved (neutral progress
// 0) and returns an error wrapping ErrResolution. When the end resolves at or
// before the start, the end is clamped to the start and an error wrapping
// ErrDegenerateExtent is returned; the binding is usable as a step function.
func (b *Binding) Resolve(layout Layout) error {
	b.resolved = false
	rect, ok := layout.Element(b.trigger)
	if !ok {
		return fmt.Errorf("%w: %s: element %q not found", ErrResolution, b.name, b.trigger)
	}

	vh := layout.ViewportHeight()
	start := rect.Y + b.extent.Start.Element.Resolve(rect.Height) - b.extent.Start.Viewport.Resolve(vh)

	var end float64
	if b.extent.End.Relative {
		end = start + b.extent.End.Distance.Resolve(vh)
	} else {
		end = rect.Y + b.extent.End.Element.Resolve(rect.Height) - b.extent.End.Viewport.Resolve(vh)
	}

	b.start, b.end, b.resolved = start, end, true
	if end <= start {
		b.end = start
		return fmt.Errorf("%w: %s: start %.1f, end %.1f", ErrDegenerateExtent, b.name, start, end)
	}
	return nil
}

// Invalidate drops the cached offsets. Call Resolve again after a layout
// change; an invalidated binding reports neutral progress.
func (b *Binding) Invalidate() {
	b.resolved = false
}

// Resolved reports whether offsets are available.
func (b *Binding) Resolved() bool {
	return b.resolved
}

// Offsets returns the resolved start and end scroll offsets.
func (b *Binding) Offsets() (start, end float64, ok bool) {
	return b.start, b.end, b.resolved
}

// ProgressAt returns the progress for a scroll offset. It is pure given the
// resolved offsets: unresolved bindings return 0 and a degenerate extent is a
// step at start.
func (b *Binding) ProgressAt(offset float64) float64 {
	if !b.resolved {
		return 0
	}
	if b.end <= b.start {
		if offset < b.start {
			return 0
		}
		return 1
	}
	return utils.Clamp01((offset - b.start) / (b.end - b.start))
}

// UpdateProgress recomputes progress from the frame's scroll state, updates
// the pin and fires callbacks. It returns ProgressAt(state.Offset).
func (b *Binding) UpdateProgress(state scroll.State) float64 {
	if b.disposed {
		return b.raw
	}

	p := b.ProgressAt(state.Offset)
	prev := b.raw
	if !b.initialized {
		prev = 0
		b.initialized = true
	}
	b.raw = p
	if b.lag == 0 {
		b.progress = p
	}

	b.updatePin(state.Offset)
	b.fireTransitions(prev, p)
	return p
}

// Step advances scrub smoothing by dt seconds. With a lag the effective
// progress covers ~98% of the distance to the raw progress within lag
// seconds.
func (b *Binding) Step(dt float64) {
	if b.lag == 0 || dt <= 0 {
		b.progress = b.raw
		return
	}
	factor := 1 - math.Exp(-4*dt/b.lag)
	b.progress = utils.Lerp(b.progress, b.raw, factor)
	if math.Abs(b.progress-b.raw) < 1e-4 {
		b.progress = b.raw
	}
}

// Progress returns the effective progress timelines are driven by.
func (b *Binding) Progress() float64 {
	return b.progress
}

// RawProgress returns the unsmoothed progress of the latest update.
func (b *Binding) RawProgress() float64 {
	return b.raw
}

// IsActive reports whether progress is strictly between 0 and 1.
func (b *Binding) IsActive() bool {
	return b.active
}

func (b *Binding) updatePin(offset float64) {
	if !b.extent.Pin || !b.resolved {
		b.pinActive, b.pinOffset = false, 0
		return
	}
	b.pinActive = b.raw > 0 && b.raw < 1
	switch {
	case offset <= b.start:
		b.pinOffset = 0
	case offset >= b.end:
		b.pinOffset = b.end - b.start
	default:
		b.pinOffset = offset - b.start
	}
}

// Pin returns whether the section is held and the y compensation to apply to
// its elements. After the end the offset stays at the pin distance so the
// section resumes normal flow from where it was released.
func (b *Binding) Pin() (active bool, offset float64) {
	return b.pinActive, b.pinOffset
}

// PinSpacing is the extra scroll distance a pinned binding consumes.
func (b *Binding) PinSpacing() float64 {
	if !b.extent.Pin || !b.resolved {
		return 0
	}
	return b.end - b.start
}

// ReleasePin drops the pin unconditionally, whether or not progress ever
// reached 1.
func (b *Binding) ReleasePin() {
	b.pinActive, b.pinOffset = false, 0
}

// Dispose releases the pin and detaches callbacks. Further updates are
// ignored. Safe to call more than once.
func (b *Binding) Dispose() {
	b.ReleasePin()
	b.cb = Callbacks{}
	b.disposed = true
}

// Disposed reports whether Dispose has been called.
func (b *Binding) Disposed() bool {
	return b.disposed
}

func (b *Binding) fireTransitions(prev, p float64) {
	switch {
	case p > prev:
		if prev <= 0 && p > 0 {
			b.call("onEnter", b.cb.OnEnter)
		}
		if prev < 1 && p >= 1 {
			b.call("onLeave", b.cb.OnLeave)
		}
	case p < prev:
		if prev >= 1 && p < 1 {
			b.call("onEnterBack", b.cb.OnEnterBack)
		}
		if prev > 0 && p <= 0 {
			b.call("onLeaveBack", b.cb.OnLeaveBack)
		}
	}

	active := p > 0 && p < 1
	if active != b.active {
		b.active = active
		if b.cb.OnToggle != nil {
			b.call("onToggle", func() { b.cb.OnToggle(active) })
		}
	}
	if p != prev && b.cb.OnUpdate != nil {
		b.call("onUpdate", func() { b.cb.OnUpdate(p) })
	}
}

// call runs a callback, containing panics so one faulty hook cannot break
// the frame.
func (b *Binding) call(hook string, fn func()) {
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Trigger] %s %s panicked: %v", b.name, hook, r)
		}
	}()
	fn()
}

// IsResolutionError reports whether err came from a missing trigger element.
func IsResolutionError(err error) bool {
	return errors.Is(err, ErrResolution)
}
