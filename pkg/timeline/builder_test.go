package timeline

import (
	"errors"
	"math"
	"testing"
)

func TestResolvePosition(t *testing.T) {
	// timeline ends at 2, previous insertion spans [1, 1.5]
	tests := []struct {
		pos  string
		want float64
	}{
		{"", 2},
		{">", 1.5},
		{"<", 1},
		{"+=0.2", 2.2},
		{"-=0.5", 1.5},
		{"<+=0.2", 1.2},
		{"<-=0.2", 0.8},
		{">-=0.1", 1.4},
		{"0.75", 0.75},
		{"-=5", 0},
	}
	for _, tt := range tests {
		got, err := ResolvePosition(tt.pos, 2, 1, 1.5)
		if err != nil {
			t.Errorf("ResolvePosition(%q) error: %v", tt.pos, err)
			continue
		}
		if math.Abs(got-tt.want) > eps {
			t.Errorf("ResolvePosition(%q) = %v, want %v", tt.pos, got, tt.want)
		}
	}
}

func TestResolvePositionInvalid(t *testing.T) {
	for _, pos := range []string{"abc", "<+", "<*=1", "+=x"} {
		if _, err := ResolvePosition(pos, 0, 0, 0); !errors.Is(err, ErrInvalidPosition) {
			t.Errorf("ResolvePosition(%q) error = %v, want ErrInvalidPosition", pos, err)
		}
	}
}

func TestBuilderSequencing(t *testing.T) {
	tl := New("sequence", Options{})
	b := NewBuilder(tl).
		Add(fade(1, 0, 1), "").
		Add(fade(2, 0, 0.5), "-=0.2").
		Add(fade(3, 0, 0.5), "<").
		Add(fade(4, 0, 0.2), ">+=0.1")
	if err := b.Err(); err != nil {
		t.Fatal(err)
	}

	want := []float64{0, 0.8, 0.8, 1.4}
	for i, seg := range tl.Segments() {
		if math.Abs(seg.Offset-want[i]) > eps {
			t.Errorf("segment %d offset = %v, want %v", i, seg.Offset, want[i])
		}
	}
	if got := tl.Duration(); math.Abs(got-1.6) > eps {
		t.Errorf("Duration() = %v, want 1.6", got)
	}
}

func TestBuilderStopsAtFirstError(t *testing.T) {
	tl := New("broken", Options{})
	b := NewBuilder(tl).Add(fade(1, 0, 1), "bogus").Add(fade(2, 0, 1), "")
	if !errors.Is(b.Err(), ErrInvalidPosition) {
		t.Fatalf("Err() = %v", b.Err())
	}
	if len(tl.Segments()) != 0 {
		t.Errorf("segments added after error: %d", len(tl.Segments()))
	}
}
