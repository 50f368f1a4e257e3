package app

import (
	"fmt"
	"log"

	"github.com/decker502/scrollscene/pkg/config"
	"github.com/decker502/scrollscene/pkg/ecs"
	"github.com/decker502/scrollscene/pkg/frame"
	"github.com/decker502/scrollscene/pkg/page"
	"github.com/decker502/scrollscene/pkg/scene"
	"github.com/decker502/scrollscene/pkg/scroll"
)

// FrameDT is the fixed frame step used by the hosts.
const FrameDT = 1.0 / 60.0

// Runtime is one mounted page with its scroll pipeline: smoother, tracker,
// frame loop and scene manager. Hosts feed it input and ticks and draw its
// entities; a config reload builds a fresh Runtime.
type Runtime struct {
	cfg      *config.PageConfig
	em       *ecs.EntityManager
	doc      *page.Document
	smoother *scroll.Smoother
	tracker  *scroll.Tracker
	loop     *frame.Loop
	manager  *scene.Manager
}

// NewRuntime builds the page described by cfg and mounts its scenes. Scenes
// that fail to mount are logged and skipped; only a page that cannot be
// built is an error.
func NewRuntime(cfg *config.PageConfig) (*Runtime, error) {
	em := ecs.NewEntityManager()
	doc, err := page.Build(cfg, em)
	if err != nil {
		return nil, fmt.Errorf("failed to build page %s: %w", cfg.Name, err)
	}

	smoother := scroll.NewSmoother(doc.ScrollLimit())
	var source scroll.OffsetSource = smoother
	deps := scene.Deps{Entities: em, Smoother: smoother}
	if cfg.Smoothing.Disabled {
		// raw offsets: the tracker reads the target and effects fall back
		// to raw velocity
		source = scroll.OffsetFunc(func() (float64, bool) {
			return smoother.Target(), true
		})
		deps.Smoother = nil
	}

	tracker := scroll.NewTracker(source)
	loop := frame.NewLoop(tracker, smoother)
	deps.Tracker = tracker
	deps.Loop = loop

	r := &Runtime{
		cfg:      cfg,
		em:       em,
		doc:      doc,
		smoother: smoother,
		tracker:  tracker,
		loop:     loop,
		manager:  scene.NewManager(deps, doc),
	}
	if err := r.manager.MountPage(cfg); err != nil {
		log.Printf("[Runtime] page %s mounted with errors: %v", cfg.Name, err)
	}
	r.smoother.SetLimit(doc.ScrollLimit())
	r.loop.Tick(0)
	return r, nil
}

// Config returns the page configuration.
func (r *Runtime) Config() *config.PageConfig {
	return r.cfg
}

// Entities returns the entity manager holding the page.
func (r *Runtime) Entities() *ecs.EntityManager {
	return r.em
}

// Document returns the page layout.
func (r *Runtime) Document() *page.Document {
	return r.doc
}

// Manager returns the scene manager.
func (r *Runtime) Manager() *scene.Manager {
	return r.manager
}

// Loop returns the frame loop.
func (r *Runtime) Loop() *frame.Loop {
	return r.loop
}

// Smoother returns the scroll smoother.
func (r *Runtime) Smoother() *scroll.Smoother {
	return r.smoother
}

// Offset returns the scroll offset of the last frame.
func (r *Runtime) Offset() float64 {
	return r.tracker.State().Offset
}

// Wheel scrolls by notches of the configured wheel step. Positive notches
// scroll down the page.
func (r *Runtime) Wheel(notches float64) {
	r.smoother.AddDelta(notches * r.cfg.Smoothing.WheelStep)
}

// ScrollBy moves the target by delta pixels.
func (r *Runtime) ScrollBy(delta float64) {
	r.smoother.AddDelta(delta)
}

// Page scrolls by a fraction of the viewport height.
func (r *Runtime) Page(fraction float64) {
	r.smoother.AddDelta(fraction * r.doc.ViewportHeight())
}

// ScrollTo moves to an absolute offset.
func (r *Runtime) ScrollTo(offset float64, immediate bool) {
	r.smoother.ScrollTo(offset, immediate)
}

// Tick runs one frame.
func (r *Runtime) Tick(dt float64) scroll.State {
	return r.loop.Tick(dt)
}

// Resize changes the viewport and relayouts every scene. The scroll
// position is kept as a fraction of the scrollable range.
func (r *Runtime) Resize(width, height float64) error {
	if width == r.doc.ViewportWidth() && height == r.doc.ViewportHeight() {
		return nil
	}
	ratio := 0.0
	if limit := r.smoother.Limit(); limit > 0 {
		ratio = r.smoother.Target() / limit
	}
	err := r.manager.Resize(width, height)
	r.smoother.SetLimit(r.doc.ScrollLimit())
	r.smoother.ScrollTo(ratio*r.smoother.Limit(), true)
	log.Printf("[Runtime] resized to %.0fx%.0f, scroll limit %.0f", width, height, r.smoother.Limit())
	return err
}

// Close disposes every scene and frees the page's entities.
func (r *Runtime) Close() {
	r.manager.Close()
	removed := r.doc.Destroy()
	log.Printf("[Runtime] closed page %s: %d entities freed, %d left", r.cfg.Name, removed, r.em.Count())
}

// Reload builds a runtime for cfg at the same viewport and scroll offset,
// then closes r. On error r is left untouched.
func (r *Runtime) Reload(cfg *config.PageConfig) (*Runtime, error) {
	next, err := NewRuntime(cfg)
	if err != nil {
		return nil, err
	}
	if err := next.Resize(r.doc.ViewportWidth(), r.doc.ViewportHeight()); err != nil {
		log.Printf("[Runtime] relayout after reload: %v", err)
	}
	next.ScrollTo(r.smoother.Target(), true)
	next.Tick(FrameDT)
	r.Close()
	log.Printf("[Runtime] reloaded page %s", cfg.Name)
	return next, nil
}
