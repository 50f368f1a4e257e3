package systems

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/decker502/scrollscene/pkg/components"
	"github.com/decker502/scrollscene/pkg/ecs"
)

// ScreenBox 投影到视口坐标并解析好视觉属性的元素
// 两个渲染系统都基于它绘制
type ScreenBox struct {
	Entity ecs.EntityID
	Kind   string
	Label  string

	X, Y          float64
	Width, Height float64

	Opacity       float64
	Rotation      float64
	LetterSpacing float64
	DrawProgress  float64

	Fill    colorful.Color
	HasFill bool
}

// Visible 判断矩形是否有部分落在给定尺寸的视口内且不完全透明
func (b ScreenBox) Visible(viewportW, viewportH float64) bool {
	if b.Opacity <= 0 {
		return false
	}
	return b.X+b.Width > 0 && b.X < viewportW && b.Y+b.Height > 0 && b.Y < viewportH
}

// Project 把元素的文档矩形映射到视口
// pinOffset 是所属区块的固定补偿；x、y、scale 来自视觉状态，scale 以矩形中心缩放
func Project(el *components.ElementComponent, vis *components.VisualComponent, pinOffset, scroll float64) ScreenBox {
	if vis == nil {
		vis = components.NewVisualComponent(nil)
	}
	scale := vis.Get(components.PropScale)
	if scale < 0 || math.IsNaN(scale) {
		scale = 0
	}
	w := el.Rect.Width * scale
	h := el.Rect.Height * scale
	cx := el.Rect.X + el.Rect.Width/2 + vis.Get(components.PropX)
	cy := el.Rect.Y + el.Rect.Height/2 + vis.Get(components.PropY) - scroll + pinOffset

	box := ScreenBox{
		Kind:          el.Kind,
		Label:         el.Label,
		X:             cx - w/2,
		Y:             cy - h/2,
		Width:         w,
		Height:        h,
		Opacity:       clamp01(vis.Get(components.PropOpacity)),
		Rotation:      vis.Get(components.PropRotation),
		LetterSpacing: vis.Get(components.PropLetterSpacing),
		DrawProgress:  clamp01(vis.Get(components.PropDrawProgress)),
	}
	if c, ok := vis.Color(components.ColorFill); ok {
		box.Fill = c.Clamped()
		box.HasFill = true
	}
	return box
}

// SectionResolver 按名称查找区块实体
type SectionResolver interface {
	Lookup(name string) (ecs.EntityID, bool)
}

// CollectBoxes 按滚动偏移投影页面上所有带视觉状态的元素
// 区块排在前面，背景绘制在内容之下；组内保持实体顺序
func CollectBoxes(em *ecs.EntityManager, sections SectionResolver, scroll float64) []ScreenBox {
	ids := ecs.GetEntitiesWith2[*components.ElementComponent, *components.VisualComponent](em)
	pins := make(map[string]float64)

	var backgrounds, content []ScreenBox
	for _, id := range ids {
		el, _ := ecs.GetComponent[*components.ElementComponent](em, id)
		vis, _ := ecs.GetComponent[*components.VisualComponent](em, id)

		pin, seen := pins[el.Section]
		if !seen {
			pin = sectionPinOffset(em, sections, el.Section)
			pins[el.Section] = pin
		}

		box := Project(el, vis, pin, scroll)
		box.Entity = id
		if el.Kind == components.KindSection {
			backgrounds = append(backgrounds, box)
		} else {
			content = append(content, box)
		}
	}
	return append(backgrounds, content...)
}

func sectionPinOffset(em *ecs.EntityManager, sections SectionResolver, name string) float64 {
	id, ok := sections.Lookup(name)
	if !ok {
		return 0
	}
	// 偏移不随 Active 清零：固定结束后区块保持在消耗的间距位置
	pin, ok := ecs.GetComponent[*components.PinComponent](em, id)
	if !ok {
		return 0
	}
	return pin.Offset
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
