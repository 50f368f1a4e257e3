package systems

import (
	"math"

	"github.com/gdamore/tcell/v2"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"

	"github.com/decker502/scrollscene/pkg/components"
	"github.com/decker502/scrollscene/pkg/ecs"
)

// Cell is one terminal cell of a rendered frame.
type Cell struct {
	Rune rune
	Fg   colorful.Color
	Bg   colorful.Color
}

// CellGrid is a frame rendered for a terminal of Cols x Rows cells.
type CellGrid struct {
	Cols, Rows int
	Cells      []Cell
}

func newCellGrid(cols, rows int, bg colorful.Color) *CellGrid {
	g := &CellGrid{Cols: cols, Rows: rows, Cells: make([]Cell, cols*rows)}
	for i := range g.Cells {
		g.Cells[i] = Cell{Rune: ' ', Fg: bg, Bg: bg}
	}
	return g
}

// At returns the cell at column x, row y.
func (g *CellGrid) At(x, y int) Cell {
	return g.Cells[y*g.Cols+x]
}

func (g *CellGrid) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Cols && y < g.Rows
}

func (g *CellGrid) fill(x, y int, c colorful.Color) {
	if g.inside(x, y) {
		cell := &g.Cells[y*g.Cols+x]
		cell.Rune = ' '
		cell.Bg = c
	}
}

func (g *CellGrid) put(x, y int, r rune, fg colorful.Color) {
	if g.inside(x, y) {
		cell := &g.Cells[y*g.Cols+x]
		cell.Rune = r
		cell.Fg = fg
	}
}

// Row returns row y as a string, for tests and debugging.
func (g *CellGrid) Row(y int) string {
	out := make([]rune, 0, g.Cols)
	for x := 0; x < g.Cols; x++ {
		out = append(out, g.At(x, y).Rune)
	}
	return string(out)
}

var (
	terminalBackground = colorful.Color{R: 0.04, G: 0.05, B: 0.08}
	terminalBoxColor   = colorful.Color{R: 0.35, G: 0.43, B: 0.55}
	terminalTextColor  = colorful.Color{R: 0.92, G: 0.94, B: 0.98}
)

// TerminalRenderSystem draws the page into a character grid. The page is
// scaled so that the viewport maps onto the whole terminal; opacity is
// approximated by blending towards the page background.
type TerminalRenderSystem struct {
	entityManager *ecs.EntityManager
	sections      SectionResolver
	viewportW     float64
	viewportH     float64
}

// NewTerminalRenderSystem creates a terminal renderer for a viewport of the
// given size in page pixels.
func NewTerminalRenderSystem(em *ecs.EntityManager, sections SectionResolver, viewportW, viewportH float64) *TerminalRenderSystem {
	return &TerminalRenderSystem{
		entityManager: em,
		sections:      sections,
		viewportW:     viewportW,
		viewportH:     viewportH,
	}
}

// SetViewport updates the page viewport size.
func (s *TerminalRenderSystem) SetViewport(width, height float64) {
	s.viewportW, s.viewportH = width, height
}

// Render produces a frame of cols x rows cells.
func (s *TerminalRenderSystem) Render(cols, rows int, scroll float64) *CellGrid {
	grid := newCellGrid(cols, rows, terminalBackground)
	if cols <= 0 || rows <= 0 || s.viewportW <= 0 || s.viewportH <= 0 {
		return grid
	}
	sx := float64(cols) / s.viewportW
	sy := float64(rows) / s.viewportH

	for _, box := range CollectBoxes(s.entityManager, s.sections, scroll) {
		if !box.Visible(s.viewportW, s.viewportH) {
			continue
		}
		x0 := int(math.Floor(box.X * sx))
		y0 := int(math.Floor(box.Y * sy))
		x1 := int(math.Ceil((box.X + box.Width) * sx))
		y1 := int(math.Ceil((box.Y + box.Height) * sy))
		if y1 == y0 {
			y1 = y0 + 1
		}

		switch box.Kind {
		case components.KindText:
			s.drawText(grid, box, x0, x1, (y0+y1)/2, sx)
			continue
		case components.KindLine:
			end := x0 + int(math.Round(float64(x1-x0)*box.DrawProgress))
			c := blend(box, terminalBoxColor)
			for x := x0; x < end; x++ {
				grid.put(x, (y0+y1)/2, '─', c)
			}
		case components.KindCircle:
			drawEllipse(grid, x0, y0, x1, y1, blend(box, terminalBoxColor))
		default:
			c := blend(box, terminalBoxColor)
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					grid.fill(x, y, c)
				}
			}
		}
		if box.Label != "" && box.Kind != components.KindSection {
			s.drawString(grid, box.Label, x0, x1, (y0+y1)/2, 0, blendWith(terminalTextColor, terminalBackground, box.Opacity))
		}
	}
	return grid
}

// Draw renders a frame sized to the screen and copies it cell by cell.
func (s *TerminalRenderSystem) Draw(screen tcell.Screen, scroll float64) {
	cols, rows := screen.Size()
	grid := s.Render(cols, rows, scroll)
	for y := 0; y < grid.Rows; y++ {
		for x := 0; x < grid.Cols; x++ {
			cell := grid.At(x, y)
			if cell.Rune == 0 {
				continue
			}
			style := tcell.StyleDefault.
				Foreground(toTcell(cell.Fg)).
				Background(toTcell(cell.Bg))
			screen.SetContent(x, y, cell.Rune, nil, style)
		}
	}
}

func (s *TerminalRenderSystem) drawText(grid *CellGrid, box ScreenBox, x0, x1, y int, sx float64) {
	spacing := int(math.Round(box.LetterSpacing * sx))
	s.drawString(grid, box.Label, x0, x1, y, spacing, blend(box, terminalTextColor))
}

// drawString centers str between columns x0 and x1. Wide runes take two
// cells; the second one is zeroed so that Draw skips it.
func (s *TerminalRenderSystem) drawString(grid *CellGrid, str string, x0, x1, y, spacing int, fg colorful.Color) {
	if str == "" {
		return
	}
	if spacing < 0 {
		spacing = 0
	}
	runes := []rune(str)
	width := runewidth.StringWidth(str) + spacing*(len(runes)-1)
	x := x0 + (x1-x0-width)/2
	for _, r := range runes {
		w := runewidth.RuneWidth(r)
		grid.put(x, y, r, fg)
		for i := 1; i < w; i++ {
			grid.put(x+i, y, 0, fg)
		}
		x += w + spacing
	}
}

func drawEllipse(grid *CellGrid, x0, y0, x1, y1 int, c colorful.Color) {
	cx := float64(x0+x1) / 2
	cy := float64(y0+y1) / 2
	rx := math.Max(0.5, float64(x1-x0)/2)
	ry := math.Max(0.5, float64(y1-y0)/2)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			dx := (float64(x) + 0.5 - cx) / rx
			dy := (float64(y) + 0.5 - cy) / ry
			if dx*dx+dy*dy <= 1 {
				grid.fill(x, y, c)
			}
		}
	}
}

func blend(box ScreenBox, fallback colorful.Color) colorful.Color {
	c := fallback
	if box.HasFill {
		c = box.Fill
	}
	return blendWith(c, terminalBackground, box.Opacity)
}

func blendWith(c, bg colorful.Color, opacity float64) colorful.Color {
	return bg.BlendRgb(c, clamp01(opacity)).Clamped()
}

func toTcell(c colorful.Color) tcell.Color {
	r, g, b := c.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}
