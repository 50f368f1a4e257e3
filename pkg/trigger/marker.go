package trigger

import (
	"fmt"
	"strconv"
	"strings"
)

// Edge is a position along an axis of known size: Fraction*size + Pixels.
type Edge struct {
	Fraction float64
	Pixels   float64
}

// Resolve returns the position for an axis of the given size.
func (e Edge) Resolve(size float64) float64 {
	return e.Fraction*size + e.Pixels
}

// Marker is a symbolic scroll position, either a pair "element edge meets
// viewport edge" ("top center") or, for end markers only, a distance relative
// to the resolved start ("+=150%", percent of viewport height).
type Marker struct {
	Element  Edge
	Viewport Edge

	Relative bool
	Distance Edge // relative markers only; fraction of viewport height
}

// ParseMarker parses the marker grammar:
//
//	marker   = pair | relative
//	pair     = edge [ " " edge ]          element edge, then viewport edge
//	relative = ("+=" | "-=") length
//	edge     = (keyword | length) [ ("+=" | "-=") length ]
//	keyword  = "top" | "center" | "bottom"
//	length   = number [ "%" | "px" ]
//
// A pair with a single edge aligns that element edge with the viewport top.
func ParseMarker(s string) (Marker, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Marker{}, fmt.Errorf("%w: empty marker", ErrInvalidMarker)
	}

	if strings.HasPrefix(s, "+=") || strings.HasPrefix(s, "-=") {
		dist, err := parseLength(s[2:])
		if err != nil {
			return Marker{}, fmt.Errorf("%w: %q: %v", ErrInvalidMarker, s, err)
		}
		if s[0] == '-' {
			dist.Fraction, dist.Pixels = -dist.Fraction, -dist.Pixels
		}
		return Marker{Relative: true, Distance: dist}, nil
	}

	fields := strings.Fields(s)
	if len(fields) > 2 {
		return Marker{}, fmt.Errorf("%w: %q has more than two edges", ErrInvalidMarker, s)
	}

	elem, err := parseEdge(fields[0])
	if err != nil {
		return Marker{}, fmt.Errorf("%w: %q: %v", ErrInvalidMarker, s, err)
	}
	m := Marker{Element: elem}
	if len(fields) == 2 {
		view, err := parseEdge(fields[1])
		if err != nil {
			return Marker{}, fmt.Errorf("%w: %q: %v", ErrInvalidMarker, s, err)
		}
		m.Viewport = view
	}
	return m, nil
}

// String formats the marker back into the grammar accepted by ParseMarker.
func (m Marker) String() string {
	if m.Relative {
		if m.Distance.Fraction < 0 || (m.Distance.Fraction == 0 && m.Distance.Pixels < 0) {
			return "-=" + formatLength(Edge{-m.Distance.Fraction, -m.Distance.Pixels})
		}
		return "+=" + formatLength(m.Distance)
	}
	return formatLength(m.Element) + " " + formatLength(m.Viewport)
}

func parseEdge(tok string) (Edge, error) {
	base, offsetTok, sign := tok, "", 0.0
	if i := strings.Index(tok, "+="); i > 0 {
		base, offsetTok, sign = tok[:i], tok[i+2:], 1
	} else if i := strings.Index(tok, "-="); i > 0 {
		base, offsetTok, sign = tok[:i], tok[i+2:], -1
	}

	var edge Edge
	switch base {
	case "top":
		edge = Edge{Fraction: 0}
	case "center":
		edge = Edge{Fraction: 0.5}
	case "bottom":
		edge = Edge{Fraction: 1}
	default:
		l, err := parseLength(base)
		if err != nil {
			return Edge{}, err
		}
		edge = l
	}

	if offsetTok != "" {
		off, err := parseLength(offsetTok)
		if err != nil {
			return Edge{}, err
		}
		edge.Fraction += sign * off.Fraction
		edge.Pixels += sign * off.Pixels
	}
	return edge, nil
}

func parseLength(tok string) (Edge, error) {
	switch {
	case strings.HasSuffix(tok, "%"):
		v, err := strconv.ParseFloat(strings.TrimSuffix(tok, "%"), 64)
		if err != nil {
			return Edge{}, fmt.Errorf("bad percentage %q", tok)
		}
		return Edge{Fraction: v / 100}, nil
	case strings.HasSuffix(tok, "px"):
		v, err := strconv.ParseFloat(strings.TrimSuffix(tok, "px"), 64)
		if err != nil {
			return Edge{}, fmt.Errorf("bad pixel length %q", tok)
		}
		return Edge{Pixels: v}, nil
	default:
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return Edge{}, fmt.Errorf("bad length %q", tok)
		}
		return Edge{Pixels: v}, nil
	}
}

func formatLength(e Edge) string {
	switch {
	case e.Pixels == 0:
		return strconv.FormatFloat(e.Fraction*100, 'f', -1, 64) + "%"
	case e.Fraction == 0:
		return strconv.FormatFloat(e.Pixels, 'f', -1, 64) + "px"
	default:
		return strconv.FormatFloat(e.Fraction*100, 'f', -1, 64) + "%+=" + strconv.FormatFloat(e.Pixels, 'f', -1, 64) + "px"
	}
}
