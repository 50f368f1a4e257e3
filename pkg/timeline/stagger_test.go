package timeline

import (
	"math"
	"testing"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/decker502/scrollscene/pkg/components"
	"github.com/decker502/scrollscene/pkg/ecs"
)

func fiveTargets() []ecs.EntityID {
	return []ecs.EntityID{1, 2, 3, 4, 5}
}

func TestStaggerWindows(t *testing.T) {
	st := Stagger{
		Base:       fade(0, 0, 0.2),
		Targets:    fiveTargets(),
		InterDelay: 0.1,
	}

	for i := range st.Targets {
		start, end := st.Window(i)
		wantStart := float64(i) * 0.1
		if math.Abs(start-wantStart) > eps || math.Abs(end-(wantStart+0.2)) > eps {
			t.Errorf("Window(%d) = [%v, %v], want [%v, %v]", i, start, end, wantStart, wantStart+0.2)
		}
	}

	// each window overlaps the next by duration - delay
	for i := 0; i < len(st.Targets)-1; i++ {
		_, end := st.Window(i)
		next, _ := st.Window(i + 1)
		if math.Abs((end-next)-0.1) > eps {
			t.Errorf("overlap between %d and %d = %v, want 0.1", i, i+1, end-next)
		}
	}

	if got := st.End(); math.Abs(got-0.6) > eps {
		t.Errorf("End() = %v, want 0.6", got)
	}
}

func TestStaggerExpandLeavesBaseUntouched(t *testing.T) {
	base := fade(0, 0.5, 0.2)
	st := Stagger{
		Base:       base,
		Targets:    fiveTargets(),
		InterDelay: 0.1,
		Vary: func(i int, prop string, r PropRange) PropRange {
			return PropRange{From: r.From, To: r.To - float64(i)*0.1}
		},
	}

	segs := st.Expand()
	if len(segs) != 5 {
		t.Fatalf("Expand() returned %d segments", len(segs))
	}
	for i, s := range segs {
		if s.Target != st.Targets[i] {
			t.Errorf("segment %d target = %d", i, s.Target)
		}
		if s.Duration != 0.2 {
			t.Errorf("segment %d duration changed to %v", i, s.Duration)
		}
		if want := 1 - float64(i)*0.1; math.Abs(s.Props[components.PropOpacity].To-want) > eps {
			t.Errorf("segment %d To = %v, want %v", i, s.Props[components.PropOpacity].To, want)
		}
	}
	if base.Offset != 0.5 || base.Props[components.PropOpacity].To != 1 {
		t.Errorf("base segment mutated: %+v", base)
	}
}

func TestStaggerFrom(t *testing.T) {
	tests := []struct {
		from From
		want []float64
	}{
		{FromStart, []float64{0, 1, 2, 3, 4}},
		{FromEnd, []float64{4, 3, 2, 1, 0}},
		{FromCenter, []float64{2, 1, 0, 1, 2}},
		{FromEdges, []float64{0, 1, 2, 1, 0}},
	}
	for _, tt := range tests {
		st := Stagger{Base: fade(0, 0, 1), Targets: fiveTargets(), InterDelay: 1, From: tt.from}
		for i, w := range tt.want {
			if start, _ := st.Window(i); math.Abs(start-w) > eps {
				t.Errorf("from %d: Window(%d) start = %v, want %v", tt.from, i, start, w)
			}
		}
	}
}

func TestParseFrom(t *testing.T) {
	for in, want := range map[string]From{"": FromStart, "end": FromEnd, "Center": FromCenter, "edges": FromEdges} {
		got, err := ParseFrom(in)
		if err != nil || got != want {
			t.Errorf("ParseFrom(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseFrom("random"); err == nil {
		t.Error("ParseFrom(random) should fail")
	}
}

func TestStaggerVaryColorPerTarget(t *testing.T) {
	white, _ := colorful.Hex("#ffffff")
	starts := map[ecs.EntityID]string{1: "#ff0000", 2: "#00ff00", 3: "#0000ff"}

	base := Segment{Duration: 1, Colors: map[string]ColorRange{components.ColorFill: {To: white}}}
	st := Stagger{
		Base:    base,
		Targets: []ecs.EntityID{1, 2, 3},
		VaryColor: func(i int, prop string, r ColorRange) ColorRange {
			r.From, _ = colorful.Hex(starts[ecs.EntityID(i+1)])
			return r
		},
	}

	for _, seg := range st.Expand() {
		got := seg.Colors[components.ColorFill]
		if got.From.Hex() != starts[seg.Target] {
			t.Errorf("target %d starts at %s, want %s", seg.Target, got.From.Hex(), starts[seg.Target])
		}
		if got.To.Hex() != "#ffffff" {
			t.Errorf("target %d ends at %s, want #ffffff", seg.Target, got.To.Hex())
		}
	}
	if c := base.Colors[components.ColorFill].From; c != (colorful.Color{}) {
		t.Errorf("base segment start changed to %s", c.Hex())
	}
}
