package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Length is a page length: pixels, or a percentage of a reference size
// (viewport width for x and width, viewport height otherwise).
type Length struct {
	Value   float64
	Percent bool
}

// Px returns a pixel length.
func Px(v float64) Length {
	return Length{Value: v}
}

// Pct returns a percentage length.
func Pct(v float64) Length {
	return Length{Value: v, Percent: true}
}

// Resolve returns the length in pixels against a reference size.
func (l Length) Resolve(ref float64) float64 {
	if l.Percent {
		return l.Value / 100 * ref
	}
	return l.Value
}

// UnmarshalYAML accepts 120, "120", "120px" or "50%".
func (l *Length) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: length must be a scalar", node.Line)
	}
	parsed, err := ParseLength(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*l = parsed
	return nil
}

// ParseLength parses "120", "120px" or "50%".
func ParseLength(s string) (Length, error) {
	s = strings.TrimSpace(s)
	percent := false
	switch {
	case strings.HasSuffix(s, "%"):
		s, percent = strings.TrimSuffix(s, "%"), true
	case strings.HasSuffix(s, "px"):
		s = strings.TrimSuffix(s, "px")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Length{}, fmt.Errorf("invalid length %q", s)
	}
	return Length{Value: v, Percent: percent}, nil
}

// Scrub is the scrub setting of a trigger: false (not scrubbed), true
// (progress applied directly) or a number of seconds of catch-up lag.
type Scrub struct {
	Enabled bool
	Lag     float64
}

// UnmarshalYAML accepts a bool or a non-negative number.
func (s *Scrub) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: scrub must be a bool or a number", node.Line)
	}
	if b, err := strconv.ParseBool(node.Value); err == nil {
		*s = Scrub{Enabled: b}
		return nil
	}
	v, err := strconv.ParseFloat(node.Value, 64)
	if err != nil || v < 0 {
		return fmt.Errorf("line %d: scrub must be a bool or a non-negative number, got %q", node.Line, node.Value)
	}
	*s = Scrub{Enabled: true, Lag: v}
	return nil
}

// MarshalYAML writes the bool or number form.
func (s Scrub) MarshalYAML() (interface{}, error) {
	if s.Enabled && s.Lag > 0 {
		return s.Lag, nil
	}
	return s.Enabled, nil
}

// Range is an animated value. A single number means "to" (the start is the
// target's current value); a two-element list is [from, to].
type Range struct {
	From    float64
	To      float64
	HasFrom bool
}

// UnmarshalYAML accepts 1 or [0, 1].
func (r *Range) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		v, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid value %q", node.Line, node.Value)
		}
		*r = Range{To: v}
		return nil
	case yaml.SequenceNode:
		var pair []float64
		if err := node.Decode(&pair); err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		if len(pair) != 2 {
			return fmt.Errorf("line %d: range needs [from, to], got %d values", node.Line, len(pair))
		}
		*r = Range{From: pair[0], To: pair[1], HasFrom: true}
		return nil
	default:
		return fmt.Errorf("line %d: range must be a number or [from, to]", node.Line)
	}
}

// ColorRange is a color transition: "#hex" (to) or ["#from", "#to"].
type ColorRange struct {
	From string
	To   string
}

// UnmarshalYAML accepts "#fff" or ["#000", "#fff"].
func (r *ColorRange) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*r = ColorRange{To: node.Value}
		return nil
	case yaml.SequenceNode:
		var pair []string
		if err := node.Decode(&pair); err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		if len(pair) != 2 {
			return fmt.Errorf("line %d: color range needs [from, to]", node.Line)
		}
		*r = ColorRange{From: pair[0], To: pair[1]}
		return nil
	default:
		return fmt.Errorf("line %d: color must be a string or [from, to]", node.Line)
	}
}
