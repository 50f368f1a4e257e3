package effects

import (
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/decker502/scrollscene/pkg/components"
	"github.com/decker502/scrollscene/pkg/ecs"
	"github.com/decker502/scrollscene/pkg/scroll"
	"github.com/decker502/scrollscene/pkg/utils"
)

// ErrEffectEvaluation wraps mapping failures.
var ErrEffectEvaluation = errors.New("velocity effect evaluation failed")

// Input is what a mapping sees for one target in one frame.
type Input struct {
	Velocity float64 // px/s, signed
	Phase    float64 // [0,1), shared by all targets of the effect
	Index    int
	Count    int
}

// Mapping turns velocity and phase into properties for one target.
type Mapping func(in Input) (components.PropertySet, error)

// Config describes a velocity-driven effect.
type Config struct {
	Name    string
	Targets []ecs.EntityID
	// PhaseIncrement is added to the phase once per frame.
	PhaseIncrement float64
	Mapping        Mapping
	// Neutral is written when velocity is unavailable or the mapping fails.
	Neutral components.PropertySet
}

// VelocityEffect maps scroll velocity to per-target properties every frame,
// independent of any trigger progress.
type VelocityEffect struct {
	name      string
	targets   []ecs.EntityID
	increment float64
	mapping   Mapping
	neutral   components.PropertySet

	phase   float64
	active  bool
	failing bool
}

// NewVelocityEffect creates an active effect.
func NewVelocityEffect(cfg Config) *VelocityEffect {
	neutral := cfg.Neutral
	if neutral == nil {
		neutral = components.PropertySet{}
	}
	return &VelocityEffect{
		name:      cfg.Name,
		targets:   append([]ecs.EntityID(nil), cfg.Targets...),
		increment: cfg.PhaseIncrement,
		mapping:   cfg.Mapping,
		neutral:   neutral,
		active:    true,
	}
}

// Name returns the effect name.
func (e *VelocityEffect) Name() string {
	return e.name
}

// Targets returns the animated targets in index order.
func (e *VelocityEffect) Targets() []ecs.EntityID {
	return e.targets
}

// Phase returns the current phase.
func (e *VelocityEffect) Phase() float64 {
	return e.phase
}

// SetActive toggles evaluation. An inactive effect neither advances its phase
// nor produces values.
func (e *VelocityEffect) SetActive(active bool) {
	e.active = active
}

// Active reports whether the effect evaluates.
func (e *VelocityEffect) Active() bool {
	return e.active
}

// Evaluate advances the phase one frame and returns the properties of every
// target. The smoothed source is preferred when it reports a value; before
// the tracker has two samples and without a smoothed value every target gets
// the neutral set.
func (e *VelocityEffect) Evaluate(state scroll.State, smoothed scroll.VelocitySource) map[ecs.EntityID]components.PropertySet {
	if !e.active {
		return nil
	}
	e.phase = utils.Frac(e.phase + e.increment)

	velocity, ok := e.velocity(state, smoothed)
	if !ok || e.mapping == nil {
		return e.neutralSet()
	}

	out, err := e.mapAll(velocity)
	if err != nil {
		if !e.failing {
			log.Printf("[Effects] %s: %v, using neutral values", e.name, err)
		}
		e.failing = true
		return e.neutralSet()
	}
	if e.failing {
		log.Printf("[Effects] %s recovered", e.name)
		e.failing = false
	}
	return out
}

// Failing reports whether the last evaluation fell back to neutral values
// because of a mapping error.
func (e *VelocityEffect) Failing() bool {
	return e.failing
}

func (e *VelocityEffect) velocity(state scroll.State, smoothed scroll.VelocitySource) (float64, bool) {
	if smoothed != nil {
		if v, ok := smoothed.SmoothedVelocity(); ok && !math.IsNaN(v) {
			return v, true
		}
	}
	if state.VelocityValid {
		return state.Velocity, true
	}
	return 0, false
}

func (e *VelocityEffect) mapAll(velocity float64) (out map[ecs.EntityID]components.PropertySet, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: panic: %v", ErrEffectEvaluation, r)
		}
	}()

	out = make(map[ecs.EntityID]components.PropertySet, len(e.targets))
	for i, id := range e.targets {
		props, err := e.mapping(Input{Velocity: velocity, Phase: e.phase, Index: i, Count: len(e.targets)})
		if err != nil {
			return nil, fmt.Errorf("%w: target %d: %v", ErrEffectEvaluation, i, err)
		}
		for name, v := range props {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: target %d: %s is %v", ErrEffectEvaluation, i, name, v)
			}
		}
		out[id] = props
	}
	return out, nil
}

func (e *VelocityEffect) neutralSet() map[ecs.EntityID]components.PropertySet {
	out := make(map[ecs.EntityID]components.PropertySet, len(e.targets))
	for _, id := range e.targets {
		out[id] = e.neutral.Clone()
	}
	return out
}

// Apply writes effect output into the targets' VisualComponent.
func Apply(em *ecs.EntityManager, values map[ecs.EntityID]components.PropertySet) {
	for id, props := range values {
		vis, ok := ecs.GetComponent[*components.VisualComponent](em, id)
		if !ok {
			continue
		}
		for name, v := range props {
			vis.Set(name, v)
		}
	}
}
