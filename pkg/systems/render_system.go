package systems

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/decker502/scrollscene/pkg/components"
	"github.com/decker502/scrollscene/pkg/ecs"
)

var (
	defaultBoxColor  = color.NRGBA{R: 90, G: 110, B: 140, A: 255}
	defaultTextColor = color.NRGBA{R: 235, G: 240, B: 250, A: 255}
	labelColor       = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// textHeightRatio 文字元素字号相对矩形高度的比例
const textHeightRatio = 0.8

// RenderSystem 把页面绘制到 ebiten 图像上
type RenderSystem struct {
	entityManager *ecs.EntityManager
	sections      SectionResolver
	fonts         *FontCache
	pixel         *ebiten.Image
}

// NewRenderSystem 创建渲染系统
// fonts 可以为 nil，此时不绘制文字
func NewRenderSystem(em *ecs.EntityManager, sections SectionResolver, fonts *FontCache) *RenderSystem {
	pixel := ebiten.NewImage(1, 1)
	pixel.Fill(color.White)
	return &RenderSystem{
		entityManager: em,
		sections:      sections,
		fonts:         fonts,
		pixel:         pixel,
	}
}

// Draw 按滚动偏移绘制所有可见元素
func (s *RenderSystem) Draw(screen *ebiten.Image, scroll float64) {
	bounds := screen.Bounds()
	vw, vh := float64(bounds.Dx()), float64(bounds.Dy())

	for _, box := range CollectBoxes(s.entityManager, s.sections, scroll) {
		if !box.Visible(vw, vh) {
			continue
		}
		switch box.Kind {
		case components.KindText:
			s.drawText(screen, box, box.Label)
			continue
		case components.KindLine:
			s.drawLine(screen, box)
		case components.KindCircle:
			s.drawCircle(screen, box)
		default:
			s.drawBox(screen, box)
		}
		if box.Label != "" && box.Kind != components.KindSection {
			s.drawLabel(screen, box)
		}
	}
}

func (s *RenderSystem) drawBox(screen *ebiten.Image, box ScreenBox) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(box.Width, box.Height)
	op.GeoM.Translate(-box.Width/2, -box.Height/2)
	op.GeoM.Rotate(box.Rotation * math.Pi / 180)
	op.GeoM.Translate(box.X+box.Width/2, box.Y+box.Height/2)
	op.ColorScale.ScaleWithColor(fillColor(box, defaultBoxColor))
	screen.DrawImage(s.pixel, op)
}

func (s *RenderSystem) drawCircle(screen *ebiten.Image, box ScreenBox) {
	r := math.Min(box.Width, box.Height) / 2
	vector.DrawFilledCircle(screen,
		float32(box.X+box.Width/2), float32(box.Y+box.Height/2), float32(r),
		fillColor(box, defaultBoxColor), true)
}

// drawLine 沿矩形绘制水平线条，长度为宽度乘以 DrawProgress
func (s *RenderSystem) drawLine(screen *ebiten.Image, box ScreenBox) {
	if box.DrawProgress <= 0 {
		return
	}
	y := float32(box.Y + box.Height/2)
	x0 := float32(box.X)
	x1 := float32(box.X + box.Width*box.DrawProgress)
	width := float32(math.Max(1, box.Height))
	vector.StrokeLine(screen, x0, y, x1, y, width, fillColor(box, defaultBoxColor), true)
}

// drawText 逐字排版文字，以便字间距可以动画
func (s *RenderSystem) drawText(screen *ebiten.Image, box ScreenBox, str string) {
	if s.fonts == nil || str == "" {
		return
	}
	face := s.fonts.Face(box.Height * textHeightRatio)
	clr := fillColor(box, defaultTextColor)

	total := 0.0
	runes := []rune(str)
	for i, r := range runes {
		total += text.Advance(string(r), face)
		if i < len(runes)-1 {
			total += box.LetterSpacing
		}
	}

	x := box.X + (box.Width-total)/2
	for _, r := range runes {
		op := &text.DrawOptions{}
		op.GeoM.Translate(x, box.Y+box.Height/2)
		op.LayoutOptions.SecondaryAlign = text.AlignCenter
		op.ColorScale.ScaleWithColor(clr)
		text.Draw(screen, string(r), face, op)
		x += text.Advance(string(r), face) + box.LetterSpacing
	}
}

func (s *RenderSystem) drawLabel(screen *ebiten.Image, box ScreenBox) {
	if s.fonts == nil {
		return
	}
	face := s.fonts.Face(math.Min(18, box.Height*0.4))
	op := &text.DrawOptions{}
	op.GeoM.Translate(box.X+box.Width/2, box.Y+box.Height/2)
	op.LayoutOptions.PrimaryAlign = text.AlignCenter
	op.LayoutOptions.SecondaryAlign = text.AlignCenter
	op.ColorScale.ScaleWithColor(withAlpha(labelColor, box.Opacity))
	text.Draw(screen, box.Label, face, op)
}

func fillColor(box ScreenBox, fallback color.NRGBA) color.NRGBA {
	c := fallback
	if box.HasFill {
		r, g, b := box.Fill.RGB255()
		c = color.NRGBA{R: r, G: g, B: b, A: 255}
	}
	return withAlpha(c, box.Opacity)
}

func withAlpha(c color.NRGBA, opacity float64) color.NRGBA {
	c.A = uint8(math.Round(float64(c.A) * clamp01(opacity)))
	return c
}
