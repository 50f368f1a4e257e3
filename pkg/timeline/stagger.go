package timeline

import (
	"fmt"
	"math"
	"strings"

	"github.com/decker502/scrollscene/pkg/ecs"
)

// From selects which target starts first in a stagger.
type From int

const (
	FromStart From = iota
	FromEnd
	FromCenter
	FromEdges
)

// ParseFrom parses "start", "end", "center" or "edges" ("" = start).
func ParseFrom(s string) (From, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "start":
		return FromStart, nil
	case "end":
		return FromEnd, nil
	case "center":
		return FromCenter, nil
	case "edges":
		return FromEdges, nil
	default:
		return FromStart, fmt.Errorf("unknown stagger origin %q", s)
	}
}

// VaryFunc returns the range a property takes for target i, given the base
// range.
type VaryFunc func(i int, prop string, base PropRange) PropRange

// VaryColorFunc returns the color range target i takes for one color
// property.
type VaryColorFunc func(i int, prop string, base ColorRange) ColorRange

// Stagger repeats a base segment over an ordered list of targets, shifting
// each copy by InterDelay.
type Stagger struct {
	Base       Segment // Target is ignored
	Targets    []ecs.EntityID
	InterDelay float64
	From       From
	Vary       VaryFunc
	VaryColor  VaryColorFunc
}

// rank is the delay multiplier of target i.
func (st Stagger) rank(i int) float64 {
	n := len(st.Targets)
	mid := float64(n-1) / 2
	switch st.From {
	case FromEnd:
		return float64(n - 1 - i)
	case FromCenter:
		return math.Abs(float64(i) - mid)
	case FromEdges:
		return mid - math.Abs(float64(i)-mid)
	default:
		return float64(i)
	}
}

// Window returns the active interval of target i.
func (st Stagger) Window(i int) (start, end float64) {
	start = st.Base.Offset + st.rank(i)*st.InterDelay
	return start, start + st.Base.Span()
}

// End is the latest window end across all targets.
func (st Stagger) End() float64 {
	end := st.Base.Offset
	for i := range st.Targets {
		_, e := st.Window(i)
		end = math.Max(end, e)
	}
	return end
}

// Expand produces one segment per target. The base segment is not modified.
func (st Stagger) Expand() []Segment {
	out := make([]Segment, 0, len(st.Targets))
	for i, target := range st.Targets {
		seg := st.Base.clone()
		seg.Target = target
		seg.Offset, _ = st.Window(i)
		if st.Vary != nil {
			for name, r := range seg.Props {
				seg.Props[name] = st.Vary(i, name, r)
			}
		}
		if st.VaryColor != nil {
			for name, r := range seg.Colors {
				seg.Colors[name] = st.VaryColor(i, name, r)
			}
		}
		out = append(out, seg)
	}
	return out
}
