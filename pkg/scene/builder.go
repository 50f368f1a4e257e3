package scene

import (
	"errors"
	"log"

	"github.com/decker502/scrollscene/pkg/components"
	"github.com/decker502/scrollscene/pkg/ecs"
	"github.com/decker502/scrollscene/pkg/effects"
	"github.com/decker502/scrollscene/pkg/frame"
	"github.com/decker502/scrollscene/pkg/scroll"
	"github.com/decker502/scrollscene/pkg/timeline"
	"github.com/decker502/scrollscene/pkg/trigger"
)

// Builder is handed to a scene's setup function. Everything created through
// it belongs to the scene and is released by Handle.Dispose, including when
// setup fails halfway.
type Builder struct {
	h *Handle
}

// Name returns the scene name.
func (b *Builder) Name() string {
	return b.h.name
}

// Deps returns the shared collaborators.
func (b *Builder) Deps() Deps {
	return b.h.deps
}

// Smoother returns the scroll smoother, or nil.
func (b *Builder) Smoother() *scroll.Smoother {
	return b.h.deps.Smoother
}

// SetPolicy sets the disposal policy (PolicyRevert by default).
func (b *Builder) SetPolicy(p Policy) {
	b.h.policy = p
}

// SetScope restricts Query to one section.
func (b *Builder) SetScope(section string) {
	b.h.scope = section
}

// Query selects elements within the scene's scope.
func (b *Builder) Query(selector string) []ecs.EntityID {
	return b.h.deps.Layout.Query(b.h.scope, selector)
}

// Trigger creates and resolves a binding. A missing trigger element is
// logged and leaves the binding neutral; a degenerate extent is logged and
// the binding acts as a step. Only malformed markers fail.
func (b *Builder) Trigger(cfg trigger.Config) (*trigger.Binding, error) {
	if cfg.Name == "" {
		cfg.Name = b.h.name
	}
	binding, err := trigger.NewBinding(cfg)
	if err != nil {
		return nil, err
	}
	b.h.bindings = append(b.h.bindings, binding)
	b.h.resolve(binding)
	return binding, nil
}

// Scrub adds a scrubbed timeline driven by binding's effective progress.
func (b *Builder) Scrub(binding *trigger.Binding, name string, opts timeline.Options) *timeline.Timeline {
	opts.Mode = timeline.ModeScrubbed
	tl := timeline.New(name, opts)
	b.h.scrubbed = append(b.h.scrubbed, scrubbed{binding: binding, tl: tl})
	return tl
}

// Autoplay adds a wall-clock timeline. It does not start until Play is
// called, typically from a trigger callback.
func (b *Builder) Autoplay(name string, opts timeline.Options) *timeline.Timeline {
	opts.Mode = timeline.ModeAutoplay
	tl := timeline.New(name, opts)
	b.h.autoplay = append(b.h.autoplay, tl)
	return tl
}

// Effect adds a velocity-driven effect.
func (b *Builder) Effect(cfg effects.Config) *effects.VelocityEffect {
	e := effects.NewVelocityEffect(cfg)
	b.h.effects = append(b.h.effects, e)
	b.h.snapshot(cfg.Targets...)
	return e
}

// OnFrame registers an extra per-frame callback, cancelled at disposal.
func (b *Builder) OnFrame(phase frame.Phase, fn frame.Callback) {
	b.h.tokens = append(b.h.tokens, b.h.deps.Loop.Register(phase, func(dt float64, s scroll.State) {
		if b.h.active {
			fn(dt, s)
		}
	}))
}

// Use initializes a collaborator now; its dispose func runs at disposal, in
// reverse order of Use calls.
func (b *Builder) Use(c Collaborator) error {
	if c == nil {
		return errors.New("nil collaborator")
	}
	dispose := c.Init()
	if dispose != nil {
		b.h.disposers = append(b.h.disposers, dispose)
	}
	return nil
}

// Defer registers a cleanup func run at disposal with the collaborator
// disposers.
func (b *Builder) Defer(fn func()) {
	if fn != nil {
		b.h.disposers = append(b.h.disposers, fn)
	}
}

// Snapshot records targets' current visual state for PolicyRevert.
// Timelines are snapshotted automatically when the scene finishes mounting.
func (b *Builder) Snapshot(targets ...ecs.EntityID) {
	b.h.snapshot(targets...)
}

func (h *Handle) snapshot(targets ...ecs.EntityID) {
	for _, id := range targets {
		if _, done := h.snapshots[id]; done {
			continue
		}
		vis, ok := ecs.GetComponent[*components.VisualComponent](h.deps.Entities, id)
		if !ok {
			log.Printf("[Scene] %s: target %d has no visual component", h.name, id)
			continue
		}
		h.snapshots[id] = vis.Snapshot()
		h.snapshotOrder = append(h.snapshotOrder, id)
	}
}
