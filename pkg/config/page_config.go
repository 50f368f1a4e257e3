package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/decker502/scrollscene/pkg/timeline"
	"github.com/decker502/scrollscene/pkg/trigger"
	"github.com/decker502/scrollscene/pkg/utils"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid page config")

// Default page settings.
const (
	DefaultViewportWidth  = 1280.0
	DefaultViewportHeight = 800.0
	DefaultDuration       = 0.5
)

// Known velocity effect mappings.
const (
	MappingSignalPulse = "signalPulse"
)

// PageConfig describes a scroll-driven page: its sections and elements, and
// the scenes animating them.
type PageConfig struct {
	Name string `yaml:"name"`
	// Seed makes decorative jitter reproducible. Unset means a new layout on
	// every load.
	Seed      *int64          `yaml:"seed"`
	Viewport  ViewportConfig  `yaml:"viewport"`
	Smoothing SmoothingConfig `yaml:"smoothing"`
	Tracker   TrackerConfig   `yaml:"tracker"`
	Sections  []SectionConfig `yaml:"sections"`
	Scenes    []SceneConfig   `yaml:"scenes"`
}

// ViewportConfig is the initial viewport size in pixels.
type ViewportConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// SmoothingConfig configures the scroll smoother.
type SmoothingConfig struct {
	Lerp      float64 `yaml:"lerp"`      // per-frame damping at 60 fps, default 0.1
	Disabled  bool    `yaml:"disabled"`  // read raw offsets
	WheelStep float64 `yaml:"wheelStep"` // px per wheel notch, default 120
}

// TrackerConfig overrides tracker limits.
type TrackerConfig struct {
	MaxVelocity float64 `yaml:"maxVelocity"`
	DeadZone    float64 `yaml:"deadZone"`
}

// SectionConfig is a vertical band of the page.
type SectionConfig struct {
	Name       string          `yaml:"name"`
	Height     Length          `yaml:"height"` // % of viewport height
	Background string          `yaml:"background"`
	Elements   []ElementConfig `yaml:"elements"`
}

// ElementConfig is an element, or a row of Count elements named name-0..n-1.
type ElementConfig struct {
	Name    string   `yaml:"name"`
	Kind    string   `yaml:"kind"` // box, text, line, circle
	Label   string   `yaml:"label"`
	Classes []string `yaml:"classes"`

	X      Length `yaml:"x"`
	Y      Length `yaml:"y"`
	Width  Length `yaml:"width"`
	Height Length `yaml:"height"`

	Count  int          `yaml:"count"`
	StepX  Length       `yaml:"stepX"`
	StepY  Length       `yaml:"stepY"`
	Jitter JitterConfig `yaml:"jitter"`

	Props map[string]float64 `yaml:"props"`
	Fill  string             `yaml:"fill"`
}

// JitterConfig adds seeded random displacement in pixels.
type JitterConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// SceneConfig is one scene: triggers, timelines and effects scoped to a
// section.
type SceneConfig struct {
	Name      string           `yaml:"name"`
	Scope     string           `yaml:"scope"`
	Policy    string           `yaml:"policy"` // revert (default) or keep
	Triggers  []TriggerConfig  `yaml:"triggers"`
	Timelines []TimelineConfig `yaml:"timelines"`
	Effects   []EffectConfig   `yaml:"effects"`
}

// TriggerConfig is a trigger binding.
type TriggerConfig struct {
	Name    string `yaml:"name"`
	Trigger string `yaml:"trigger"`
	Start   string `yaml:"start"`
	End     string `yaml:"end"`
	Scrub   Scrub  `yaml:"scrub"`
	Pin     bool   `yaml:"pin"`

	OnEnter     []ActionConfig `yaml:"onEnter"`
	OnLeave     []ActionConfig `yaml:"onLeave"`
	OnEnterBack []ActionConfig `yaml:"onEnterBack"`
	OnLeaveBack []ActionConfig `yaml:"onLeaveBack"`
}

// ActionConfig is a callback action. Exactly one field is set.
type ActionConfig struct {
	SetLerp *float64 `yaml:"setLerp"` // change scroll damping
	Play    string   `yaml:"play"`    // timeline name
	Restart string   `yaml:"restart"`
	Pause   string   `yaml:"pause"`
	Log     string   `yaml:"log"`
}

// TimelineConfig is a timeline. With Trigger set it is scrubbed by that
// trigger; otherwise it autoplays once started by an action.
type TimelineConfig struct {
	Name     string          `yaml:"name"`
	Trigger  string          `yaml:"trigger"`
	Stretch  bool            `yaml:"stretch"`
	Repeat   int             `yaml:"repeat"`
	Yoyo     bool            `yaml:"yoyo"`
	Segments []SegmentConfig `yaml:"segments"`
}

// SegmentConfig is one tween, optionally staggered over its targets.
type SegmentConfig struct {
	Targets  string                `yaml:"targets"` // "#name" or ".class"
	Position string                `yaml:"position"`
	Duration *float64              `yaml:"duration"`
	Ease     string                `yaml:"ease"`
	Props    map[string]Range      `yaml:"props"`
	Colors   map[string]ColorRange `yaml:"colors"`
	Stagger  *StaggerConfig        `yaml:"stagger"`
	Vary     map[string]VaryConfig `yaml:"vary"`
	Repeat   int                   `yaml:"repeat"`
	Yoyo     bool                  `yaml:"yoyo"`
}

// StaggerConfig spreads a segment over its targets.
type StaggerConfig struct {
	Each float64 `yaml:"each"`
	From string  `yaml:"from"`
}

// VaryConfig derives a per-target value: step*k (|k| with Abs, k centered
// with origin "center") plus wave(2*pi*i/n)*amount, added to the "to" value
// or, with apply "from", the start value.
type VaryConfig struct {
	Step   float64 `yaml:"step"`
	Origin string  `yaml:"origin"` // start (default) or center
	Abs    bool    `yaml:"abs"`
	Wave   string  `yaml:"wave"` // cos or sin
	Amount float64 `yaml:"amount"`
	Apply  string  `yaml:"apply"` // to (default) or from
}

// EffectConfig is a velocity-driven effect.
type EffectConfig struct {
	Name           string  `yaml:"name"`
	Targets        string  `yaml:"targets"`
	Mapping        string  `yaml:"mapping"`
	PhaseIncrement float64 `yaml:"phaseIncrement"`
	IndexOffset    float64 `yaml:"indexOffset"`
}

// LoadPageConfig reads and validates a page file.
func LoadPageConfig(path string) (*PageConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read page config %s: %w", path, err)
	}
	cfg, err := ParsePageConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParsePageConfig decodes, defaults and validates a page document.
func ParsePageConfig(data []byte) (*PageConfig, error) {
	var cfg PageConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse page config YAML: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *PageConfig) applyDefaults() {
	if c.Viewport.Width <= 0 {
		c.Viewport.Width = DefaultViewportWidth
	}
	if c.Viewport.Height <= 0 {
		c.Viewport.Height = DefaultViewportHeight
	}
	if c.Smoothing.Lerp <= 0 {
		c.Smoothing.Lerp = 0.1
	}
	if c.Smoothing.WheelStep <= 0 {
		c.Smoothing.WheelStep = 120
	}
	for i := range c.Sections {
		s := &c.Sections[i]
		if s.Height.Value == 0 {
			s.Height = Pct(100)
		}
		for j := range s.Elements {
			e := &s.Elements[j]
			if e.Kind == "" {
				e.Kind = "box"
			}
			if e.Count == 0 {
				e.Count = 1
			}
		}
	}
	for i := range c.Scenes {
		sc := &c.Scenes[i]
		if sc.Policy == "" {
			sc.Policy = "revert"
		}
		for j := range sc.Effects {
			e := &sc.Effects[j]
			if e.PhaseIncrement == 0 {
				e.PhaseIncrement = 0.01
			}
			if e.IndexOffset == 0 && e.Mapping == MappingSignalPulse {
				e.IndexOffset = 0.3
			}
		}
	}
}

// Validate checks references and value grammars. Errors wrap
// ErrInvalidConfig.
func (c *PageConfig) Validate() error {
	if c.Name == "" {
		return invalid("page name is required")
	}
	if len(c.Sections) == 0 {
		return invalid("at least one section is required")
	}

	names := make(map[string]bool)
	addName := func(n string) error {
		if names[n] {
			return invalid("duplicate element name %q", n)
		}
		names[n] = true
		return nil
	}

	for i, s := range c.Sections {
		if s.Name == "" {
			return invalid("sections[%d]: name is required", i)
		}
		if s.Height.Value <= 0 {
			return invalid("section %q: height must be positive", s.Name)
		}
		if err := addName(s.Name); err != nil {
			return err
		}
		if err := validColor(s.Background); err != nil {
			return invalid("section %q: %v", s.Name, err)
		}
		for j, e := range s.Elements {
			if e.Count < 1 {
				return invalid("section %q element %d: count must be at least 1", s.Name, j)
			}
			if e.Name != "" {
				for _, n := range e.ElementNames() {
					if err := addName(n); err != nil {
						return err
					}
				}
			}
			if err := validColor(e.Fill); err != nil {
				return invalid("element %q: %v", e.Name, err)
			}
			switch e.Kind {
			case "box", "text", "line", "circle":
			default:
				return invalid("element %q: unknown kind %q", e.Name, e.Kind)
			}
		}
	}

	scenes := make(map[string]bool)
	for i, sc := range c.Scenes {
		if sc.Name == "" {
			return invalid("scenes[%d]: name is required", i)
		}
		if scenes[sc.Name] {
			return invalid("duplicate scene %q", sc.Name)
		}
		scenes[sc.Name] = true
		if err := sc.validate(names); err != nil {
			return err
		}
	}
	return nil
}

func (sc *SceneConfig) validate(elements map[string]bool) error {
	if sc.Policy != "revert" && sc.Policy != "keep" {
		return invalid("scene %q: policy must be revert or keep, got %q", sc.Name, sc.Policy)
	}
	if sc.Scope != "" && !elements[sc.Scope] {
		return invalid("scene %q: unknown scope %q", sc.Name, sc.Scope)
	}

	triggers := make(map[string]bool)
	timelines := make(map[string]bool)
	for _, tl := range sc.Timelines {
		timelines[tl.Name] = true
	}

	for i, t := range sc.Triggers {
		if t.Name == "" {
			return invalid("scene %q triggers[%d]: name is required", sc.Name, i)
		}
		triggers[t.Name] = true
		if t.Trigger == "" {
			return invalid("trigger %q: trigger element is required", t.Name)
		}
		if _, err := trigger.NewBinding(trigger.Config{Name: t.Name, Trigger: t.Trigger, Start: t.Start, End: t.End}); err != nil {
			return invalid("trigger %q: %v", t.Name, err)
		}
		for _, actions := range [][]ActionConfig{t.OnEnter, t.OnLeave, t.OnEnterBack, t.OnLeaveBack} {
			for _, a := range actions {
				if err := a.validate(timelines); err != nil {
					return invalid("trigger %q: %v", t.Name, err)
				}
			}
		}
	}

	for i, tl := range sc.Timelines {
		if tl.Name == "" {
			return invalid("scene %q timelines[%d]: name is required", sc.Name, i)
		}
		if tl.Trigger != "" && !triggers[tl.Trigger] {
			return invalid("timeline %q: unknown trigger %q", tl.Name, tl.Trigger)
		}
		if tl.Repeat < timeline.RepeatForever {
			return invalid("timeline %q: repeat must be -1 or more", tl.Name)
		}
		for j, seg := range tl.Segments {
			if err := seg.validate(); err != nil {
				return invalid("timeline %q segment %d: %v", tl.Name, j, err)
			}
		}
	}

	for _, e := range sc.Effects {
		if e.Mapping != MappingSignalPulse {
			return invalid("effect %q: unknown mapping %q", e.Name, e.Mapping)
		}
		if e.Targets == "" {
			return invalid("effect %q: targets are required", e.Name)
		}
	}
	return nil
}

func (seg *SegmentConfig) validate() error {
	if seg.Targets == "" {
		return errors.New("targets are required")
	}
	if seg.Duration != nil && *seg.Duration < 0 {
		return errors.New("duration cannot be negative")
	}
	if seg.Repeat < 0 {
		return errors.New("segment repeat cannot be negative")
	}
	if _, err := utils.ParseEasing(seg.Ease); err != nil {
		return err
	}
	if _, err := timeline.ResolvePosition(seg.Position, 0, 0, 0); err != nil {
		return err
	}
	for name, c := range seg.Colors {
		if err := validColor(c.From); err != nil {
			return fmt.Errorf("color %s: %v", name, err)
		}
		if c.To == "" {
			return fmt.Errorf("color %s: target color is required", name)
		}
		if err := validColor(c.To); err != nil {
			return fmt.Errorf("color %s: %v", name, err)
		}
	}
	if seg.Stagger != nil {
		if seg.Stagger.Each < 0 {
			return errors.New("stagger each cannot be negative")
		}
		if _, err := timeline.ParseFrom(seg.Stagger.From); err != nil {
			return err
		}
	}
	for name, v := range seg.Vary {
		if _, ok := seg.Props[name]; !ok {
			return fmt.Errorf("vary %s: property is not animated", name)
		}
		if v.Origin != "" && v.Origin != "start" && v.Origin != "center" {
			return fmt.Errorf("vary %s: origin must be start or center", name)
		}
		if v.Wave != "" && v.Wave != "cos" && v.Wave != "sin" {
			return fmt.Errorf("vary %s: wave must be cos or sin", name)
		}
		if v.Apply != "" && v.Apply != "to" && v.Apply != "from" {
			return fmt.Errorf("vary %s: apply must be to or from", name)
		}
	}
	return nil
}

func (a ActionConfig) validate(timelines map[string]bool) error {
	set := 0
	for _, s := range []string{a.Play, a.Restart, a.Pause} {
		if s != "" {
			set++
			if !timelines[s] {
				return fmt.Errorf("action refers to unknown timeline %q", s)
			}
		}
	}
	if a.SetLerp != nil {
		set++
		if *a.SetLerp <= 0 || *a.SetLerp > 1 {
			return fmt.Errorf("setLerp must be in (0, 1], got %v", *a.SetLerp)
		}
	}
	if a.Log != "" {
		set++
	}
	if set != 1 {
		return fmt.Errorf("action must set exactly one of setLerp, play, restart, pause, log")
	}
	return nil
}

// ElementNames returns the generated names of the element row.
func (e ElementConfig) ElementNames() []string {
	if e.Name == "" {
		return nil
	}
	if e.Count <= 1 {
		return []string{e.Name}
	}
	out := make([]string, e.Count)
	for i := range out {
		out[i] = fmt.Sprintf("%s-%d", e.Name, i)
	}
	return out
}

// DurationOr returns the segment duration or def.
func (seg SegmentConfig) DurationOr(def float64) float64 {
	if seg.Duration == nil {
		return def
	}
	return *seg.Duration
}

// ParseColor parses "#rgb" / "#rrggbb" colors.
func ParseColor(s string) (colorful.Color, error) {
	s = strings.TrimSpace(s)
	if len(s) == 4 && s[0] == '#' {
		s = "#" + strings.Repeat(s[1:2], 2) + strings.Repeat(s[2:3], 2) + strings.Repeat(s[3:4], 2)
	}
	return colorful.Hex(s)
}

func validColor(s string) error {
	if s == "" {
		return nil
	}
	_, err := ParseColor(s)
	return err
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
