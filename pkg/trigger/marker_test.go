package trigger

import (
	"errors"
	"math"
	"testing"
)

func TestParseMarker(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Marker
	}{
		{"keyword pair", "top center", Marker{Element: Edge{Fraction: 0}, Viewport: Edge{Fraction: 0.5}}},
		{"bottom bottom", "bottom bottom", Marker{Element: Edge{Fraction: 1}, Viewport: Edge{Fraction: 1}}},
		{"single edge", "center", Marker{Element: Edge{Fraction: 0.5}}},
		{"percent and px", "25% 100px", Marker{Element: Edge{Fraction: 0.25}, Viewport: Edge{Pixels: 100}}},
		{"bare number", "top 80", Marker{Viewport: Edge{Pixels: 80}}},
		{"edge offset", "top+=50 center-=10%", Marker{Element: Edge{Pixels: 50}, Viewport: Edge{Fraction: 0.4}}},
		{"relative percent", "+=150%", Marker{Relative: true, Distance: Edge{Fraction: 1.5}}},
		{"relative negative px", "-=600", Marker{Relative: true, Distance: Edge{Pixels: -600}}},
		{"surrounding space", "  top top ", Marker{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMarker(tt.input)
			if err != nil {
				t.Fatalf("ParseMarker(%q) error: %v", tt.input, err)
			}
			if !markersClose(got, tt.want) {
				t.Errorf("ParseMarker(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseMarkerInvalid(t *testing.T) {
	inputs := []string{"", "middle top", "top center bottom", "+=abc", "top+=x", "12%% top"}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			_, err := ParseMarker(in)
			if !errors.Is(err, ErrInvalidMarker) {
				t.Errorf("ParseMarker(%q) error = %v, want ErrInvalidMarker", in, err)
			}
		})
	}
}

func TestMarkerStringRoundTrip(t *testing.T) {
	for _, in := range []string{"top center", "bottom 80%", "+=150%", "-=200px", "top+=40px bottom"} {
		m, err := ParseMarker(in)
		if err != nil {
			t.Fatalf("ParseMarker(%q): %v", in, err)
		}
		again, err := ParseMarker(m.String())
		if err != nil {
			t.Fatalf("ParseMarker(%q) of formatted %q: %v", in, m.String(), err)
		}
		if !markersClose(m, again) {
			t.Errorf("%q -> %q -> %+v, want %+v", in, m.String(), again, m)
		}
	}
}

func markersClose(a, b Marker) bool {
	const eps = 1e-9
	edgeClose := func(x, y Edge) bool {
		return math.Abs(x.Fraction-y.Fraction) < eps && math.Abs(x.Pixels-y.Pixels) < eps
	}
	return a.Relative == b.Relative &&
		edgeClose(a.Element, b.Element) &&
		edgeClose(a.Viewport, b.Viewport) &&
		edgeClose(a.Distance, b.Distance)
}
