package page

import (
	"errors"
	"fmt"
	"strings"

	"github.com/decker502/scrollscene/pkg/components"
	"github.com/decker502/scrollscene/pkg/ecs"
)

// ErrDuplicateElement is returned when an element name is reused.
var ErrDuplicateElement = errors.New("duplicate element name")

// ErrUnknownSection is returned when an element refers to a missing section.
var ErrUnknownSection = errors.New("unknown section")

// Section is a vertical band of the page. Sections are stacked in insertion
// order; Spacing is the extra scroll distance added after the section by a
// pinned trigger.
type Section struct {
	Name    string
	Height  float64
	Spacing float64
	Y       float64

	entity   ecs.EntityID
	heightFn func(viewportH float64) float64
}

// Entity returns the section's own element entity.
func (s *Section) Entity() ecs.EntityID {
	return s.entity
}

// Sizer computes an element's box relative to its section from the viewport
// width and the section height; it is re-run on every reflow.
type Sizer func(viewportW, sectionH float64) components.Rect

// Document is the page: sections and their elements as entities, plus the
// viewport. It implements trigger.Layout.
type Document struct {
	em        *ecs.EntityManager
	viewportW float64
	viewportH float64

	sections  []*Section
	byName    map[string]ecs.EntityID
	bySection map[string][]ecs.EntityID
	sizers    map[ecs.EntityID]Sizer
	height    float64
}

// NewDocument creates an empty page.
func NewDocument(em *ecs.EntityManager, viewportW, viewportH float64) *Document {
	return &Document{
		em:        em,
		viewportW: viewportW,
		viewportH: viewportH,
		byName:    make(map[string]ecs.EntityID),
		bySection: make(map[string][]ecs.EntityID),
		sizers:    make(map[ecs.EntityID]Sizer),
	}
}

// Entities returns the entity manager holding the page.
func (d *Document) Entities() *ecs.EntityManager {
	return d.em
}

// AddSection appends a section of the given height. The section is itself an
// element, named after it, with class "section".
func (d *Document) AddSection(name string, height float64) (*Section, error) {
	if _, exists := d.byName[name]; exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateElement, name)
	}
	id := d.em.CreateEntity()
	ecs.AddComponent(d.em, id, &components.ElementComponent{
		Name:    name,
		Classes: []string{"section"},
		Section: name,
		Kind:    components.KindSection,
		Local:   components.Rect{Width: d.viewportW, Height: height},
	})
	ecs.AddComponent(d.em, id, &components.PinComponent{})
	ecs.AddComponent(d.em, id, components.NewVisualComponent(nil))

	s := &Section{Name: name, Height: height, entity: id}
	d.sections = append(d.sections, s)
	d.byName[name] = id
	d.Reflow()
	return s, nil
}

// AddElement adds an element to a section. local is relative to the section
// top; initial seeds its VisualComponent.
func (d *Document) AddElement(section, name string, classes []string, kind string, local components.Rect, initial components.PropertySet) (ecs.EntityID, error) {
	if d.section(section) == nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}
	if name != "" {
		if _, exists := d.byName[name]; exists {
			return 0, fmt.Errorf("%w: %q", ErrDuplicateElement, name)
		}
	}

	id := d.em.CreateEntity()
	ecs.AddComponent(d.em, id, &components.ElementComponent{
		Name:    name,
		Classes: append([]string(nil), classes...),
		Section: section,
		Kind:    kind,
		Local:   local,
	})
	ecs.AddComponent(d.em, id, components.NewVisualComponent(initial))
	if name != "" {
		d.byName[name] = id
	}
	d.bySection[section] = append(d.bySection[section], id)
	d.Reflow()
	return id, nil
}

// SetSectionHeightFunc makes a section's height follow the viewport height.
func (d *Document) SetSectionHeightFunc(section string, fn func(viewportH float64) float64) {
	if s := d.section(section); s != nil {
		s.heightFn = fn
		d.Reflow()
	}
}

// SetSizer makes an element's box follow the viewport and section size.
func (d *Document) SetSizer(id ecs.EntityID, fn Sizer) {
	d.sizers[id] = fn
	d.Reflow()
}

// SetLabel sets the text drawn for an element.
func (d *Document) SetLabel(id ecs.EntityID, label string) {
	if el, ok := ecs.GetComponent[*components.ElementComponent](d.em, id); ok {
		el.Label = label
	}
}

// SetViewport changes the viewport size and reflows. Callers relayout their
// triggers afterwards.
func (d *Document) SetViewport(width, height float64) {
	d.viewportW, d.viewportH = width, height
	d.Reflow()
}

// ViewportHeight implements trigger.Layout.
func (d *Document) ViewportHeight() float64 {
	return d.viewportH
}

// ViewportWidth returns the viewport width.
func (d *Document) ViewportWidth() float64 {
	return d.viewportW
}

// Element implements trigger.Layout.
func (d *Document) Element(name string) (components.Rect, bool) {
	id, ok := d.byName[name]
	if !ok {
		return components.Rect{}, false
	}
	el, ok := ecs.GetComponent[*components.ElementComponent](d.em, id)
	if !ok {
		return components.Rect{}, false
	}
	return el.Rect, true
}

// Lookup returns the entity of a named element.
func (d *Document) Lookup(name string) (ecs.EntityID, bool) {
	id, ok := d.byName[name]
	return id, ok
}

// Sections returns the sections in page order.
func (d *Document) Sections() []*Section {
	return d.sections
}

// SectionOf returns the section entity owning an element, or the element
// itself when it is a section.
func (d *Document) SectionOf(name string) (ecs.EntityID, bool) {
	id, ok := d.byName[name]
	if !ok {
		return 0, false
	}
	el, ok := ecs.GetComponent[*components.ElementComponent](d.em, id)
	if !ok {
		return 0, false
	}
	s := d.section(el.Section)
	if s == nil {
		return 0, false
	}
	return s.entity, true
}

// SetSpacing sets the pin spacing after a section and reflows.
func (d *Document) SetSpacing(section string, spacing float64) {
	if s := d.section(section); s != nil {
		s.Spacing = spacing
		d.Reflow()
	}
}

// ClearSpacing removes all pin spacing.
func (d *Document) ClearSpacing() {
	for _, s := range d.sections {
		s.Spacing = 0
	}
	d.Reflow()
}

// Reflow stacks the sections and recomputes every element's document box.
func (d *Document) Reflow() {
	y := 0.0
	for _, s := range d.sections {
		if s.heightFn != nil {
			s.Height = s.heightFn(d.viewportH)
		}
		s.Y = y
		if el, ok := ecs.GetComponent[*components.ElementComponent](d.em, s.entity); ok {
			el.Local = components.Rect{Width: d.viewportW, Height: s.Height}
			el.Rect = components.Rect{X: 0, Y: y, Width: d.viewportW, Height: s.Height}
		}
		for _, id := range d.bySection[s.Name] {
			el, ok := ecs.GetComponent[*components.ElementComponent](d.em, id)
			if !ok {
				continue
			}
			if fn, sized := d.sizers[id]; sized {
				el.Local = fn(d.viewportW, s.Height)
			}
			el.Rect = el.Local
			el.Rect.Y += y
		}
		y += s.Height + s.Spacing
	}
	d.height = y
}

// Destroy removes every section and element entity of the page and empties
// the document. It returns the number of entities removed.
func (d *Document) Destroy() int {
	ids := ecs.GetEntitiesWith1[*components.ElementComponent](d.em)
	for _, id := range ids {
		d.em.DestroyEntity(id)
	}
	d.em.RemoveMarkedEntities()

	d.sections = nil
	d.byName = make(map[string]ecs.EntityID)
	d.bySection = make(map[string][]ecs.EntityID)
	d.sizers = make(map[ecs.EntityID]Sizer)
	d.height = 0
	return len(ids)
}

// Height is the full document height including pin spacing.
func (d *Document) Height() float64 {
	return d.height
}

// ScrollLimit is the largest scroll offset.
func (d *Document) ScrollLimit() float64 {
	if d.height <= d.viewportH {
		return 0
	}
	return d.height - d.viewportH
}

// Query returns the elements matching selector within section ("" = whole
// page), in insertion order. Selectors are "#name", ".class" or a bare name.
// Sections themselves only match "#name" or a bare name.
func (d *Document) Query(section, selector string) []ecs.EntityID {
	selector = strings.TrimSpace(selector)
	switch {
	case selector == "":
		return nil
	case strings.HasPrefix(selector, "#"):
		return d.queryName(section, selector[1:])
	case strings.HasPrefix(selector, "."):
		return d.queryClass(section, selector[1:])
	default:
		return d.queryName(section, selector)
	}
}

func (d *Document) queryName(section, name string) []ecs.EntityID {
	id, ok := d.byName[name]
	if !ok {
		return nil
	}
	if section != "" {
		el, ok := ecs.GetComponent[*components.ElementComponent](d.em, id)
		if !ok || el.Section != section {
			return nil
		}
	}
	return []ecs.EntityID{id}
}

func (d *Document) queryClass(section, class string) []ecs.EntityID {
	var out []ecs.EntityID
	for _, s := range d.sections {
		if section != "" && s.Name != section {
			continue
		}
		for _, id := range d.bySection[s.Name] {
			el, ok := ecs.GetComponent[*components.ElementComponent](d.em, id)
			if ok && el.HasClass(class) {
				out = append(out, id)
			}
		}
	}
	return out
}

func (d *Document) section(name string) *Section {
	for _, s := range d.sections {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// SectionName returns the name of the section owning an element.
func (d *Document) SectionName(name string) (string, bool) {
	id, ok := d.byName[name]
	if !ok {
		return "", false
	}
	el, ok := ecs.GetComponent[*components.ElementComponent](d.em, id)
	if !ok {
		return "", false
	}
	return el.Section, true
}
