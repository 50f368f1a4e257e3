package systems

import (
	"math"
	"testing"

	"github.com/gdamore/tcell/v2"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/decker502/scrollscene/pkg/components"
	"github.com/decker502/scrollscene/pkg/ecs"
	"github.com/decker502/scrollscene/pkg/page"
)

func almost(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestProject(t *testing.T) {
	el := &components.ElementComponent{
		Kind: components.KindBox,
		Rect: components.Rect{X: 100, Y: 1000, Width: 50, Height: 20},
	}
	vis := components.NewVisualComponent(components.PropertySet{
		components.PropScale:   2,
		components.PropY:       10,
		components.PropOpacity: 1.5,
	})

	box := Project(el, vis, 30, 900)

	if !almost(box.Width, 100) || !almost(box.Height, 40) {
		t.Errorf("size = %vx%v, want 100x40", box.Width, box.Height)
	}
	// center y: 1000 + 10 + 10 - 900 + 30 = 150
	if !almost(box.X, 75) || !almost(box.Y, 130) {
		t.Errorf("origin = (%v, %v), want (75, 130)", box.X, box.Y)
	}
	if box.Opacity != 1 {
		t.Errorf("opacity = %v, want clamped to 1", box.Opacity)
	}
	if box.HasFill {
		t.Error("no fill expected")
	}
}

func TestProjectNilVisualIsNeutral(t *testing.T) {
	el := &components.ElementComponent{Rect: components.Rect{X: 10, Y: 20, Width: 30, Height: 40}}
	box := Project(el, nil, 0, 0)
	if box.X != 10 || box.Y != 20 || box.Width != 30 || box.Height != 40 || box.Opacity != 1 {
		t.Errorf("unexpected box %+v", box)
	}
}

func TestScreenBoxVisible(t *testing.T) {
	tests := []struct {
		name string
		box  ScreenBox
		want bool
	}{
		{"inside", ScreenBox{X: 10, Y: 10, Width: 10, Height: 10, Opacity: 1}, true},
		{"partly above", ScreenBox{X: 10, Y: -5, Width: 10, Height: 10, Opacity: 1}, true},
		{"below", ScreenBox{X: 10, Y: 100, Width: 10, Height: 10, Opacity: 1}, false},
		{"left", ScreenBox{X: -20, Y: 10, Width: 10, Height: 10, Opacity: 1}, false},
		{"transparent", ScreenBox{X: 10, Y: 10, Width: 10, Height: 10}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.box.Visible(100, 100); got != tt.want {
				t.Errorf("Visible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func newTestPage(t *testing.T) (*ecs.EntityManager, *page.Document) {
	t.Helper()
	em := ecs.NewEntityManager()
	doc := page.NewDocument(em, 80, 40)
	if _, err := doc.AddSection("top", 40); err != nil {
		t.Fatal(err)
	}
	if _, err := doc.AddSection("pinned", 40); err != nil {
		t.Fatal(err)
	}
	return em, doc
}

func TestCollectBoxesOrderAndPin(t *testing.T) {
	em, doc := newTestPage(t)
	chip, err := doc.AddElement("pinned", "chip", nil, components.KindBox,
		components.Rect{X: 0, Y: 10, Width: 10, Height: 10}, nil)
	if err != nil {
		t.Fatal(err)
	}
	section, _ := doc.Lookup("pinned")
	pin, _ := ecs.GetComponent[*components.PinComponent](em, section)
	pin.Active, pin.Offset = true, 15

	boxes := CollectBoxes(em, doc, 40)
	if len(boxes) != 3 {
		t.Fatalf("got %d boxes, want 3", len(boxes))
	}
	for i := 0; i < 2; i++ {
		if boxes[i].Kind != components.KindSection {
			t.Errorf("box %d kind = %q, want section first", i, boxes[i].Kind)
		}
	}
	last := boxes[2]
	if last.Entity != chip {
		t.Fatalf("last box entity = %d, want %d", last.Entity, chip)
	}
	// document y 50, scroll 40, pin 15
	if !almost(last.Y, 25) {
		t.Errorf("chip y = %v, want 25", last.Y)
	}
	if !almost(boxes[1].Y, 15) {
		t.Errorf("pinned section y = %v, want 15", boxes[1].Y)
	}
}

func TestCollectBoxesKeepsOffsetAfterPinEnds(t *testing.T) {
	em, doc := newTestPage(t)
	section, _ := doc.Lookup("pinned")
	pin, _ := ecs.GetComponent[*components.PinComponent](em, section)
	pin.Active, pin.Offset = false, 20

	boxes := CollectBoxes(em, doc, 0)
	if !almost(boxes[1].Y, 60) {
		t.Errorf("section y = %v, want 60", boxes[1].Y)
	}
}

func TestTerminalRenderBoxAndText(t *testing.T) {
	em, doc := newTestPage(t)
	red, _ := colorful.Hex("#ff0000")

	box, _ := doc.AddElement("top", "box", nil, components.KindBox,
		components.Rect{X: 10, Y: 10, Width: 20, Height: 10}, nil)
	vis, _ := ecs.GetComponent[*components.VisualComponent](em, box)
	vis.SetColor(components.ColorFill, red)

	doc.AddElement("top", "title", nil, components.KindText,
		components.Rect{X: 0, Y: 30, Width: 80, Height: 2},
		components.PropertySet{components.PropLetterSpacing: 2})
	title, _ := doc.Lookup("title")
	doc.SetLabel(title, "AB")

	doc.AddElement("top", "ghost", nil, components.KindBox,
		components.Rect{X: 50, Y: 10, Width: 10, Height: 10},
		components.PropertySet{components.PropOpacity: 0})

	rs := NewTerminalRenderSystem(em, doc, 80, 40)
	grid := rs.Render(80, 40, 0)

	if got := grid.At(15, 15).Bg; !got.AlmostEqualRgb(red) {
		t.Errorf("box cell bg = %s, want %s", got.Hex(), red.Hex())
	}
	if got := grid.At(55, 15).Bg; got.AlmostEqualRgb(red) {
		t.Error("transparent element must not be drawn")
	}

	row := grid.Row(31)
	if row[38] != 'A' || row[41] != 'B' {
		t.Errorf("text row = %q, want A at 38 and B at 41", row)
	}
}

func TestTerminalRenderScrollsOut(t *testing.T) {
	em, doc := newTestPage(t)
	red, _ := colorful.Hex("#ff0000")
	box, _ := doc.AddElement("top", "box", nil, components.KindBox,
		components.Rect{X: 10, Y: 10, Width: 20, Height: 10}, nil)
	vis, _ := ecs.GetComponent[*components.VisualComponent](em, box)
	vis.SetColor(components.ColorFill, red)

	rs := NewTerminalRenderSystem(em, doc, 80, 40)
	grid := rs.Render(80, 40, 40)
	for y := 0; y < grid.Rows; y++ {
		for x := 0; x < grid.Cols; x++ {
			if grid.At(x, y).Bg.AlmostEqualRgb(red) {
				t.Fatalf("cell (%d, %d) still red after scrolling past", x, y)
			}
		}
	}
}

func TestTerminalRenderLineProgress(t *testing.T) {
	em, doc := newTestPage(t)
	doc.AddElement("top", "trace", nil, components.KindLine,
		components.Rect{X: 0, Y: 20, Width: 40, Height: 1},
		components.PropertySet{components.PropDrawProgress: 0.5})

	rs := NewTerminalRenderSystem(em, doc, 80, 40)
	grid := rs.Render(80, 40, 0)
	row := []rune(grid.Row(20))
	if row[19] != '─' || row[20] == '─' {
		t.Errorf("line row = %q, want 20 cells drawn", string(row))
	}
}

func TestTerminalDrawToSimulationScreen(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	defer screen.Fini()
	screen.SetSize(40, 20)

	em, doc := newTestPage(t)
	rs := NewTerminalRenderSystem(em, doc, 80, 40)
	rs.Draw(screen, 0)
	screen.Show()

	cols, rows := screen.Size()
	if cols != 40 || rows != 20 {
		t.Errorf("screen size = %dx%d, want 40x20", cols, rows)
	}
}
