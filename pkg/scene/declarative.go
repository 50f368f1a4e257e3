package scene

import (
	"fmt"
	"log"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/decker502/scrollscene/pkg/components"
	"github.com/decker502/scrollscene/pkg/config"
	"github.com/decker502/scrollscene/pkg/ecs"
	"github.com/decker502/scrollscene/pkg/effects"
	"github.com/decker502/scrollscene/pkg/timeline"
	"github.com/decker502/scrollscene/pkg/trigger"
	"github.com/decker502/scrollscene/pkg/utils"
)

// FromConfig returns the setup of a scene described in a page file.
func FromConfig(sc config.SceneConfig) SetupFunc {
	return func(b *Builder) error {
		if sc.Policy == "keep" {
			b.SetPolicy(PolicyKeep)
		}
		b.SetScope(sc.Scope)

		d := &declarative{
			b:         b,
			scene:     sc,
			timelines: make(map[string]*timeline.Timeline),
			bindings:  make(map[string]*trigger.Binding),
			scrubbed:  make(map[string]bool),
		}
		if err := d.buildTriggers(); err != nil {
			return err
		}
		if err := d.buildTimelines(); err != nil {
			return err
		}
		d.buildEffects()
		return nil
	}
}

type declarative struct {
	b         *Builder
	scene     config.SceneConfig
	timelines map[string]*timeline.Timeline
	bindings  map[string]*trigger.Binding
	scrubbed  map[string]bool
	// autoplay timelines started when their non-scrubbed trigger enters
	playOnEnter map[string][]string
	lerpSaved   bool
}

func (d *declarative) buildTriggers() error {
	d.playOnEnter = make(map[string][]string)
	for _, tl := range d.scene.Timelines {
		if tl.Trigger != "" && !d.isScrubbed(tl.Trigger) {
			d.playOnEnter[tl.Trigger] = append(d.playOnEnter[tl.Trigger], tl.Name)
		}
	}

	for _, tc := range d.scene.Triggers {
		name := tc.Name
		onEnter := d.actions(name, tc.OnEnter)
		cfg := trigger.Config{
			Name:    name,
			Trigger: tc.Trigger,
			Start:   tc.Start,
			End:     tc.End,
			Pin:     tc.Pin,
			Scrub:   tc.Scrub.Lag,
			Callbacks: trigger.Callbacks{
				OnEnter: func() {
					for _, tl := range d.playOnEnter[name] {
						if t := d.timelines[tl]; t != nil {
							t.Restart()
						}
					}
					if onEnter != nil {
						onEnter()
					}
				},
				OnLeave:     d.actions(name, tc.OnLeave),
				OnEnterBack: d.actions(name, tc.OnEnterBack),
				OnLeaveBack: d.actions(name, tc.OnLeaveBack),
			},
		}
		binding, err := d.b.Trigger(cfg)
		if err != nil {
			return err
		}
		d.bindings[name] = binding
		d.scrubbed[name] = tc.Scrub.Enabled
	}
	return nil
}

func (d *declarative) isScrubbed(triggerName string) bool {
	for _, tc := range d.scene.Triggers {
		if tc.Name == triggerName {
			return tc.Scrub.Enabled
		}
	}
	return false
}

// actions compiles a callback action list. Timelines are looked up when the
// callback fires, so triggers may refer to timelines declared after them.
func (d *declarative) actions(triggerName string, list []config.ActionConfig) func() {
	if len(list) == 0 {
		return nil
	}
	for _, a := range list {
		if a.SetLerp != nil {
			d.saveLerp()
		}
	}
	scene := d.b.Name()
	return func() {
		for _, a := range list {
			switch {
			case a.SetLerp != nil:
				if s := d.b.Smoother(); s != nil {
					s.SetLerp(*a.SetLerp)
				}
			case a.Play != "":
				if tl := d.timelines[a.Play]; tl != nil {
					tl.Play()
				}
			case a.Restart != "":
				if tl := d.timelines[a.Restart]; tl != nil {
					tl.Restart()
				}
			case a.Pause != "":
				if tl := d.timelines[a.Pause]; tl != nil {
					tl.Pause()
				}
			case a.Log != "":
				log.Printf("[Scene] %s/%s: %s", scene, triggerName, a.Log)
			}
		}
	}
}

// saveLerp restores the smoother damping on disposal once any action
// changes it.
func (d *declarative) saveLerp() {
	s := d.b.Smoother()
	if s == nil || d.lerpSaved {
		return
	}
	d.lerpSaved = true
	prev := s.Lerp()
	d.b.Defer(func() { s.SetLerp(prev) })
}

func (d *declarative) buildTimelines() error {
	for _, tc := range d.scene.Timelines {
		opts := timeline.Options{Stretch: tc.Stretch, Repeat: tc.Repeat, Yoyo: tc.Yoyo}

		var tl *timeline.Timeline
		if tc.Trigger != "" && d.scrubbed[tc.Trigger] {
			tl = d.b.Scrub(d.bindings[tc.Trigger], tc.Name, opts)
		} else {
			tl = d.b.Autoplay(tc.Name, opts)
		}
		d.timelines[tc.Name] = tl

		tb := timeline.NewBuilder(tl)
		last := newChain()
		for i, seg := range tc.Segments {
			if err := d.addSegment(tb, seg, last); err != nil {
				return fmt.Errorf("timeline %q segment %d: %w", tc.Name, i, err)
			}
		}
		if err := tb.Err(); err != nil {
			return err
		}
	}
	return nil
}

func (d *declarative) addSegment(tb *timeline.Builder, seg config.SegmentConfig, last *chain) error {
	targets := d.b.Query(seg.Targets)
	if len(targets) == 0 {
		log.Printf("[Scene] %s: %q matches nothing, segment skipped", d.b.Name(), seg.Targets)
		return nil
	}

	ease, err := utils.ParseEasing(seg.Ease)
	if err != nil {
		return err
	}
	from := timeline.FromStart
	each := 0.0
	if seg.Stagger != nil {
		each = seg.Stagger.Each
		if from, err = timeline.ParseFrom(seg.Stagger.From); err != nil {
			return err
		}
	}

	base := timeline.Segment{
		Duration: seg.DurationOr(config.DefaultDuration),
		Ease:     ease,
		Props:    make(map[string]timeline.PropRange, len(seg.Props)),
		Repeat:   seg.Repeat,
		Yoyo:     seg.Yoyo,
	}
	for name, r := range seg.Props {
		base.Props[name] = timeline.PropRange{From: r.From, To: r.To}
	}
	if len(seg.Colors) > 0 {
		if base.Colors, err = colorRanges(seg.Colors); err != nil {
			return err
		}
	}

	em := d.b.Deps().Entities
	pending := newChain()
	vary := func(i int, name string, r timeline.PropRange) timeline.PropRange {
		id := targets[i]
		if !seg.Props[name].HasFrom {
			r.From = last.value(em, id, name)
		}
		if v, ok := seg.Vary[name]; ok {
			delta := varyDelta(v, i, len(targets))
			if v.Apply == "from" {
				r.From += delta
			} else {
				r.To += delta
			}
		}
		pending.setValue(id, name, r.To)
		return r
	}
	varyColor := func(i int, name string, r timeline.ColorRange) timeline.ColorRange {
		id := targets[i]
		if seg.Colors[name].From == "" {
			r.From = last.color(em, id, name)
		}
		pending.setColor(id, name, r.To)
		return r
	}

	tb.AddStagger(timeline.Stagger{
		Base:       base,
		Targets:    targets,
		InterDelay: each,
		From:       from,
		Vary:       vary,
		VaryColor:  varyColor,
	}, seg.Position)

	last.merge(pending)
	return nil
}

// colorRanges parses the colors of a segment. A missing start color is left
// zero; it is resolved per target when the segment is expanded.
func colorRanges(colors map[string]config.ColorRange) (map[string]timeline.ColorRange, error) {
	out := make(map[string]timeline.ColorRange, len(colors))
	for name, c := range colors {
		to, err := config.ParseColor(c.To)
		if err != nil {
			return nil, err
		}
		var from colorful.Color
		if c.From != "" {
			if from, err = config.ParseColor(c.From); err != nil {
				return nil, err
			}
		}
		out[name] = timeline.ColorRange{From: from, To: to}
	}
	return out, nil
}

// chain holds, per target, where the tweens already added to a timeline
// leave each property. A "to"-only tween starts there, else from the mounted
// value.
type chain struct {
	values map[ecs.EntityID]components.PropertySet
	colors map[ecs.EntityID]map[string]colorful.Color
}

func newChain() *chain {
	return &chain{
		values: make(map[ecs.EntityID]components.PropertySet),
		colors: make(map[ecs.EntityID]map[string]colorful.Color),
	}
}

func (c *chain) setValue(id ecs.EntityID, name string, v float64) {
	if c.values[id] == nil {
		c.values[id] = components.PropertySet{}
	}
	c.values[id][name] = v
}

func (c *chain) setColor(id ecs.EntityID, name string, col colorful.Color) {
	if c.colors[id] == nil {
		c.colors[id] = make(map[string]colorful.Color)
	}
	c.colors[id][name] = col
}

func (c *chain) merge(other *chain) {
	for id, props := range other.values {
		for k, v := range props {
			c.setValue(id, k, v)
		}
	}
	for id, cols := range other.colors {
		for k, v := range cols {
			c.setColor(id, k, v)
		}
	}
}

func (c *chain) value(em *ecs.EntityManager, id ecs.EntityID, name string) float64 {
	if v, ok := c.values[id][name]; ok {
		return v
	}
	if vis, ok := ecs.GetComponent[*components.VisualComponent](em, id); ok {
		return vis.Get(name)
	}
	return components.DefaultValue(name)
}

func (c *chain) color(em *ecs.EntityManager, id ecs.EntityID, name string) colorful.Color {
	if col, ok := c.colors[id][name]; ok {
		return col
	}
	if vis, ok := ecs.GetComponent[*components.VisualComponent](em, id); ok {
		col, _ := vis.Color(name)
		return col
	}
	return colorful.Color{}
}

func varyDelta(v config.VaryConfig, i, n int) float64 {
	k := float64(i)
	if v.Origin == "center" {
		k = float64(i - n/2)
	}
	if v.Abs {
		k = math.Abs(k)
	}
	delta := v.Step * k
	if n > 0 {
		angle := float64(i) / float64(n) * 2 * math.Pi
		switch v.Wave {
		case "cos":
			delta += math.Cos(angle) * v.Amount
		case "sin":
			delta += math.Sin(angle) * v.Amount
		}
	}
	return delta
}

func (d *declarative) buildEffects() {
	for _, ec := range d.scene.Effects {
		targets := d.b.Query(ec.Targets)
		if len(targets) == 0 {
			log.Printf("[Scene] %s: effect %q matches nothing", d.b.Name(), ec.Name)
			continue
		}
		d.b.Effect(effects.Config{
			Name:           ec.Name,
			Targets:        targets,
			PhaseIncrement: ec.PhaseIncrement,
			Mapping:        effects.SignalPulse(ec.IndexOffset),
			Neutral:        effects.SignalPulseNeutral(),
		})
	}
}
