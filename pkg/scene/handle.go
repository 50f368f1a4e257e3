package scene

import (
	"errors"
	"fmt"
	"log"

	"github.com/decker502/scrollscene/pkg/components"
	"github.com/decker502/scrollscene/pkg/ecs"
	"github.com/decker502/scrollscene/pkg/effects"
	"github.com/decker502/scrollscene/pkg/frame"
	"github.com/decker502/scrollscene/pkg/scroll"
	"github.com/decker502/scrollscene/pkg/timeline"
	"github.com/decker502/scrollscene/pkg/trigger"
)

type scrubbed struct {
	binding *trigger.Binding
	tl      *timeline.Timeline
}

// Handle owns everything a mounted scene registered.
type Handle struct {
	name   string
	deps   Deps
	policy Policy
	scope  string

	bindings []*trigger.Binding
	scrubbed []scrubbed
	autoplay []*timeline.Timeline
	effects  []*effects.VelocityEffect

	snapshots     map[ecs.EntityID]components.VisualSnapshot
	snapshotOrder []ecs.EntityID
	pinned        map[ecs.EntityID]bool
	disposers     []func()

	subscription scroll.Subscription
	subscribed   bool
	tokens       []frame.Token

	active   bool
	disposed bool
}

// SetupFunc builds a scene.
type SetupFunc func(b *Builder) error

// Mount runs setup and wires the scene into the tracker and frame loop. If
// setup returns an error or panics, everything it registered is released and
// the error is returned; no handle escapes.
func Mount(name string, deps Deps, setup SetupFunc) (*Handle, error) {
	if err := deps.validate(); err != nil {
		return nil, fmt.Errorf("%w: mount %q: %v", ErrLifecycleMisuse, name, err)
	}

	h := &Handle{
		name:      name,
		deps:      deps,
		snapshots: make(map[ecs.EntityID]components.VisualSnapshot),
		pinned:    make(map[ecs.EntityID]bool),
		active:    true,
	}

	if err := runSetup(&Builder{h: h}, setup); err != nil {
		h.Dispose()
		return nil, fmt.Errorf("mount %q: %w", name, err)
	}

	for _, s := range h.scrubbed {
		h.snapshot(s.tl.Targets()...)
	}
	for _, tl := range h.autoplay {
		h.snapshot(tl.Targets()...)
	}

	h.subscription = deps.Tracker.Subscribe(h.onScroll)
	h.subscribed = true
	h.tokens = append(h.tokens,
		deps.Loop.Register(frame.PhaseBinding, h.stepBindings),
		deps.Loop.Register(frame.PhaseTimeline, h.evaluateTimelines),
		deps.Loop.Register(frame.PhaseEffect, h.evaluateEffects),
	)

	// Render the mount state before the first frame.
	state := deps.Tracker.State()
	h.onScroll(state)
	h.stepBindings(0, state)
	h.evaluateTimelines(0, state)

	log.Printf("[Scene] mounted %s: %d triggers, %d timelines, %d effects",
		name, len(h.bindings), len(h.scrubbed)+len(h.autoplay), len(h.effects))
	return h, nil
}

func runSetup(b *Builder, setup SetupFunc) (err error) {
	if setup == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("setup panicked: %v", r)
		}
	}()
	return setup(b)
}

// Name returns the scene name.
func (h *Handle) Name() string {
	return h.name
}

// Bindings returns the scene's triggers.
func (h *Handle) Bindings() []*trigger.Binding {
	return h.bindings
}

// Timelines returns the scrubbed timelines followed by the autoplay ones.
func (h *Handle) Timelines() []*timeline.Timeline {
	out := make([]*timeline.Timeline, 0, len(h.scrubbed)+len(h.autoplay))
	for _, s := range h.scrubbed {
		out = append(out, s.tl)
	}
	return append(out, h.autoplay...)
}

// Active reports the visibility flag.
func (h *Handle) Active() bool {
	return h != nil && h.active && !h.disposed
}

// Disposed reports whether Dispose has run.
func (h *Handle) Disposed() bool {
	return h == nil || h.disposed
}

// SetActive toggles timeline and effect work. Bindings and pins keep
// tracking scroll while inactive.
func (h *Handle) SetActive(active bool) error {
	if h == nil || h.disposed {
		return fmt.Errorf("%w: SetActive on disposed scene", ErrLifecycleMisuse)
	}
	if h.active && !active {
		h.flush()
	}
	h.active = active
	for _, e := range h.effects {
		e.SetActive(active)
	}
	return nil
}

// Relayout drops cached trigger offsets and resolves them against layout.
// Resolution failures are logged and returned joined; the scene stays
// mounted.
func (h *Handle) Relayout(layout Layout) error {
	if h == nil || h.disposed {
		return fmt.Errorf("%w: Relayout on disposed scene", ErrLifecycleMisuse)
	}
	if layout != nil {
		h.deps.Layout = layout
	}
	var errs []error
	for _, b := range h.bindings {
		b.Invalidate()
		if err := h.resolve(b); err != nil {
			errs = append(errs, err)
		}
	}
	h.onScroll(h.deps.Tracker.State())
	return errors.Join(errs...)
}

// resolve resolves one binding, logging rather than failing.
func (h *Handle) resolve(b *trigger.Binding) error {
	err := b.Resolve(h.deps.Layout)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, trigger.ErrDegenerateExtent):
		log.Printf("[Scene] %s: %v", h.name, err)
		return nil
	default:
		log.Printf("[Scene] %s: %v (trigger stays neutral)", h.name, err)
		return err
	}
}

// PinSpacing returns, per section name, the scroll distance consumed by this
// scene's pinned triggers.
func (h *Handle) PinSpacing() map[string]float64 {
	out := make(map[string]float64)
	for _, b := range h.bindings {
		if sp := b.PinSpacing(); sp > 0 {
			out[b.Trigger()] += sp
		}
	}
	return out
}

func (h *Handle) onScroll(state scroll.State) {
	for _, b := range h.bindings {
		b.UpdateProgress(state)
		h.applyPin(b)
	}
}

func (h *Handle) applyPin(b *trigger.Binding) {
	if !b.Extent().Pin {
		return
	}
	section, ok := h.deps.Layout.SectionOf(b.Trigger())
	if !ok {
		return
	}
	pin, ok := ecs.GetComponent[*components.PinComponent](h.deps.Entities, section)
	if !ok {
		return
	}
	pin.Active, pin.Offset = b.Pin()
	h.pinned[section] = true
}

func (h *Handle) stepBindings(dt float64, _ scroll.State) {
	for _, b := range h.bindings {
		b.Step(dt)
	}
}

func (h *Handle) evaluateTimelines(dt float64, _ scroll.State) {
	if !h.active {
		return
	}
	em := h.deps.Entities
	for _, s := range h.scrubbed {
		timeline.Apply(em, s.tl.Evaluate(s.binding.Progress()))
	}
	for _, tl := range h.autoplay {
		if !tl.Playing() && tl.Elapsed() == 0 {
			continue
		}
		tl.Advance(dt)
		timeline.Apply(em, tl.Current())
	}
}

// flush writes the final values of scrubbed timelines at the raw progress,
// so a scene deactivated mid-jump does not freeze halfway.
func (h *Handle) flush() {
	for _, s := range h.scrubbed {
		timeline.Apply(h.deps.Entities, s.tl.Evaluate(s.binding.RawProgress()))
	}
}

func (h *Handle) evaluateEffects(_ float64, state scroll.State) {
	if !h.active {
		return
	}
	for _, e := range h.effects {
		effects.Apply(h.deps.Entities, e.Evaluate(state, h.deps.velocitySource()))
	}
}

// Dispose releases the scene: it unsubscribes from the tracker, releases
// every pin, cancels frame callbacks, applies the disposal policy and runs
// collaborator disposers in reverse order. It is idempotent and nil-safe,
// and a panicking disposer is logged without stopping the rest.
func (h *Handle) Dispose() {
	if h == nil || h.disposed {
		return
	}
	h.disposed = true

	if h.subscribed {
		h.deps.Tracker.Unsubscribe(h.subscription)
		h.subscribed = false
	}

	for _, b := range h.bindings {
		b.Dispose()
	}
	for section := range h.pinned {
		if pin, ok := ecs.GetComponent[*components.PinComponent](h.deps.Entities, section); ok {
			pin.Active, pin.Offset = false, 0
		}
	}

	for _, t := range h.tokens {
		h.deps.Loop.Cancel(t)
	}
	h.tokens = nil

	for _, e := range h.effects {
		e.SetActive(false)
	}
	for _, tl := range h.autoplay {
		tl.Pause()
	}

	if h.policy == PolicyRevert {
		for _, id := range h.snapshotOrder {
			if !h.deps.Entities.Exists(id) {
				log.Printf("[Scene] %s: target %d was destroyed, not reverted", h.name, id)
				continue
			}
			if vis, ok := ecs.GetComponent[*components.VisualComponent](h.deps.Entities, id); ok {
				vis.Restore(h.snapshots[id])
			}
		}
	}

	for i := len(h.disposers) - 1; i >= 0; i-- {
		h.runDisposer(h.disposers[i])
	}
	h.disposers = nil

	log.Printf("[Scene] disposed %s", h.name)
}

func (h *Handle) runDisposer(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Scene] %s: disposer panicked: %v", h.name, r)
		}
	}()
	fn()
}
