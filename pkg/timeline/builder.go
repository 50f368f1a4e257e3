package timeline

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidPosition is returned for a malformed position parameter.
var ErrInvalidPosition = errors.New("invalid timeline position")

// Builder appends segments to a timeline using sequencing positions:
//
//	""      end of the timeline
//	">"     end of the previous insertion
//	"<"     start of the previous insertion
//	"+=x"   end of the timeline plus x ("-=x" minus)
//	"<+=x"  start of the previous insertion plus x ("<-=x" minus)
//	">+=x"  end of the previous insertion plus x (">-=x" minus)
//	"x"     absolute time
//
// Resolved offsets below zero are clamped to zero.
type Builder struct {
	tl        *Timeline
	lastStart float64
	lastEnd   float64
	err       error
}

// NewBuilder returns a builder appending to tl.
func NewBuilder(tl *Timeline) *Builder {
	return &Builder{tl: tl}
}

// Timeline returns the timeline under construction.
func (b *Builder) Timeline() *Timeline {
	return b.tl
}

// Err returns the first position error encountered.
func (b *Builder) Err() error {
	return b.err
}

// Add places seg at position.
func (b *Builder) Add(seg Segment, position string) *Builder {
	offset, ok := b.resolve(position)
	if !ok {
		return b
	}
	seg.Offset = offset
	b.tl.Add(seg)
	b.lastStart, b.lastEnd = offset, seg.End()
	return b
}

// AddStagger places a stagger group at position; the group's first window
// starts there.
func (b *Builder) AddStagger(st Stagger, position string) *Builder {
	offset, ok := b.resolve(position)
	if !ok {
		return b
	}
	st.Base = st.Base.clone()
	st.Base.Offset = offset
	for _, seg := range st.Expand() {
		b.tl.Add(seg)
	}
	b.lastStart, b.lastEnd = offset, st.End()
	return b
}

func (b *Builder) resolve(position string) (float64, bool) {
	if b.err != nil {
		return 0, false
	}
	offset, err := ResolvePosition(position, b.tl.Duration(), b.lastStart, b.lastEnd)
	if err != nil {
		b.err = fmt.Errorf("timeline %q: %w", b.tl.Name(), err)
		return 0, false
	}
	return offset, true
}

// ResolvePosition converts a position parameter into an absolute offset.
func ResolvePosition(position string, timelineEnd, prevStart, prevEnd float64) (float64, error) {
	pos := strings.TrimSpace(position)

	anchor := timelineEnd
	switch {
	case pos == "":
		return timelineEnd, nil
	case strings.HasPrefix(pos, "<"):
		anchor, pos = prevStart, pos[1:]
	case strings.HasPrefix(pos, ">"):
		anchor, pos = prevEnd, pos[1:]
	case !strings.HasPrefix(pos, "+=") && !strings.HasPrefix(pos, "-="):
		v, err := strconv.ParseFloat(pos, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidPosition, position)
		}
		return math.Max(0, v), nil
	}

	if pos == "" {
		return anchor, nil
	}
	if len(pos) < 3 || (pos[:2] != "+=" && pos[:2] != "-=") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPosition, position)
	}
	delta, err := strconv.ParseFloat(pos[2:], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPosition, position)
	}
	if pos[0] == '-' {
		delta = -delta
	}
	return math.Max(0, anchor+delta), nil
}
