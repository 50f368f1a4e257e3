package page

import (
	"errors"
	"testing"

	"github.com/decker502/scrollscene/pkg/components"
	"github.com/decker502/scrollscene/pkg/config"
	"github.com/decker502/scrollscene/pkg/ecs"
)

func newTestDocument(t *testing.T) *Document {
	t.Helper()
	doc := NewDocument(ecs.NewEntityManager(), 1000, 800)
	for _, s := range []struct {
		name   string
		height float64
	}{{"hero", 800}, {"wafer", 1200}, {"outro", 800}} {
		if _, err := doc.AddSection(s.name, s.height); err != nil {
			t.Fatal(err)
		}
	}
	add := func(section, name string, classes ...string) {
		if _, err := doc.AddElement(section, name, classes, components.KindBox, components.Rect{Y: 100, Height: 50}, nil); err != nil {
			t.Fatal(err)
		}
	}
	add("hero", "title", "heading")
	add("wafer", "disc")
	add("wafer", "frag-0", "fragment")
	add("wafer", "frag-1", "fragment")
	add("outro", "end", "heading")
	return doc
}

func TestReflowStacksSections(t *testing.T) {
	doc := newTestDocument(t)

	if r, ok := doc.Element("wafer"); !ok || r.Y != 800 || r.Height != 1200 {
		t.Errorf("wafer = %+v, %v", r, ok)
	}
	if r, _ := doc.Element("disc"); r.Y != 900 {
		t.Errorf("disc y = %v, want 900", r.Y)
	}
	if doc.Height() != 2800 || doc.ScrollLimit() != 2000 {
		t.Errorf("Height() = %v, ScrollLimit() = %v", doc.Height(), doc.ScrollLimit())
	}

	doc.SetSpacing("wafer", 600)
	if r, _ := doc.Element("end"); r.Y != 800+1200+600+100 {
		t.Errorf("end y after spacing = %v", r.Y)
	}
	if r, _ := doc.Element("disc"); r.Y != 900 {
		t.Errorf("spacing moved the pinned section itself: %v", r.Y)
	}
	doc.ClearSpacing()
	if doc.Height() != 2800 {
		t.Errorf("Height() after ClearSpacing = %v", doc.Height())
	}
}

func TestQuery(t *testing.T) {
	doc := newTestDocument(t)
	id := func(name string) ecs.EntityID {
		e, _ := doc.Lookup(name)
		return e
	}

	tests := []struct {
		section  string
		selector string
		want     []ecs.EntityID
	}{
		{"", ".fragment", []ecs.EntityID{id("frag-0"), id("frag-1")}},
		{"", ".heading", []ecs.EntityID{id("title"), id("end")}},
		{"outro", ".heading", []ecs.EntityID{id("end")}},
		{"", "#disc", []ecs.EntityID{id("disc")}},
		{"hero", "#disc", nil},
		{"", "disc", []ecs.EntityID{id("disc")}},
		{"", "#missing", nil},
		{"", ".section", nil},
	}
	for _, tt := range tests {
		got := doc.Query(tt.section, tt.selector)
		if len(got) != len(tt.want) {
			t.Errorf("Query(%q, %q) = %v, want %v", tt.section, tt.selector, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Query(%q, %q) = %v, want %v", tt.section, tt.selector, got, tt.want)
				break
			}
		}
	}
}

func TestAddElementErrors(t *testing.T) {
	doc := newTestDocument(t)
	if _, err := doc.AddElement("footer", "x", nil, components.KindBox, components.Rect{}, nil); !errors.Is(err, ErrUnknownSection) {
		t.Errorf("unknown section error = %v", err)
	}
	if _, err := doc.AddElement("hero", "disc", nil, components.KindBox, components.Rect{}, nil); !errors.Is(err, ErrDuplicateElement) {
		t.Errorf("duplicate element error = %v", err)
	}
	if _, err := doc.AddSection("hero", 100); !errors.Is(err, ErrDuplicateElement) {
		t.Errorf("duplicate section error = %v", err)
	}
}

func TestSectionOf(t *testing.T) {
	doc := newTestDocument(t)
	wafer, _ := doc.Lookup("wafer")
	if got, ok := doc.SectionOf("frag-1"); !ok || got != wafer {
		t.Errorf("SectionOf(frag-1) = %v, %v; want %v", got, ok, wafer)
	}
	if got, ok := doc.SectionOf("wafer"); !ok || got != wafer {
		t.Errorf("SectionOf(wafer) = %v, %v", got, ok)
	}
	if name, ok := doc.SectionName("end"); !ok || name != "outro" {
		t.Errorf("SectionName(end) = %q, %v", name, ok)
	}
}

func TestBuildFromConfig(t *testing.T) {
	seed := int64(3)
	cfg := &config.PageConfig{
		Name:     "built",
		Seed:     &seed,
		Viewport: config.ViewportConfig{Width: 1000, Height: 500},
		Sections: []config.SectionConfig{
			{Name: "one", Height: config.Pct(200), Background: "#102030"},
			{Name: "two", Height: config.Px(400), Elements: []config.ElementConfig{{
				Name: "bar", Kind: "box", Count: 3,
				X: config.Pct(10), Y: config.Pct(50), Width: config.Px(20), Height: config.Pct(10),
				StepX: config.Px(30), Jitter: config.JitterConfig{Y: 5},
				Props: map[string]float64{components.PropOpacity: 0.3},
				Fill:  "#ff0000",
			}}},
		},
	}

	build := func() *Document {
		doc, err := Build(cfg, ecs.NewEntityManager())
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		return doc
	}
	doc := build()

	if r, _ := doc.Element("one"); r.Height != 1000 {
		t.Errorf("section one height = %v, want 200%% of 500", r.Height)
	}
	for i, name := range []string{"bar-0", "bar-1", "bar-2"} {
		r, ok := doc.Element(name)
		if !ok {
			t.Fatalf("%s missing", name)
		}
		if wantX := 100 + float64(i)*30; r.X != wantX || r.Width != 20 || r.Height != 40 {
			t.Errorf("%s = %+v, want x %v", name, r, wantX)
		}
		if r.Y < 1000+200-5 || r.Y > 1000+200+5 {
			t.Errorf("%s y = %v outside jitter range", name, r.Y)
		}
	}
	if got := doc.Query("", ".bar"); len(got) != 3 {
		t.Errorf("row class query = %v", got)
	}

	id, _ := doc.Lookup("bar-1")
	vis, _ := ecs.GetComponent[*components.VisualComponent](doc.Entities(), id)
	if vis.Get(components.PropOpacity) != 0.3 {
		t.Errorf("initial opacity = %v", vis.Get(components.PropOpacity))
	}
	if c, ok := vis.Color(components.ColorFill); !ok || c.Hex() != "#ff0000" {
		t.Errorf("fill = %v, %v", c.Hex(), ok)
	}

	// the same seed gives the same layout
	again := build()
	for _, name := range []string{"bar-0", "bar-1", "bar-2"} {
		a, _ := doc.Element(name)
		b, _ := again.Element(name)
		if a != b {
			t.Errorf("%s differs across seeded builds: %+v vs %+v", name, a, b)
		}
	}

	// resizing re-derives percentage sizes
	doc.SetViewport(2000, 1000)
	if r, _ := doc.Element("one"); r.Height != 2000 {
		t.Errorf("section one height after resize = %v", r.Height)
	}
	if r, _ := doc.Element("bar-0"); r.X != 200 {
		t.Errorf("bar-0 x after resize = %v", r.X)
	}
}

func TestDestroyFreesEntities(t *testing.T) {
	doc := newTestDocument(t)
	em := doc.Entities()
	keep := em.CreateEntity()

	if got := doc.Destroy(); got != 8 {
		t.Errorf("Destroy removed %d entities, want 8", got)
	}
	if em.Count() != 1 || !em.Exists(keep) {
		t.Errorf("entities left = %d, want only the unrelated one", em.Count())
	}
	if _, ok := doc.Lookup("disc"); ok {
		t.Error("destroyed element still resolves")
	}
	if len(doc.Query("", ".fragment")) != 0 {
		t.Error("destroyed elements still match queries")
	}
	if doc.Height() != 0 {
		t.Errorf("height = %v, want 0", doc.Height())
	}
	if got := doc.Destroy(); got != 0 {
		t.Errorf("second Destroy removed %d entities", got)
	}
}
