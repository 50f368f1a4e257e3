package components

import (
	colorful "github.com/lucasb-eyer/go-colorful"
)

// 常用视觉属性名
// 时间轴可以驱动任意名称，渲染系统只识别以下属性
const (
	PropOpacity       = "opacity"
	PropScale         = "scale"
	PropX             = "x"
	PropY             = "y"
	PropRotation      = "rotation"
	PropLetterSpacing = "letterSpacing"
	PropBlur          = "blur"
	PropDrawProgress  = "drawProgress" // 描边进度，0 = 不可见，1 = 完整绘制

	ColorFill = "fill"
)

// PropertySet 具名标量视觉属性集合
type PropertySet map[string]float64

// Clone 返回独立副本
func (ps PropertySet) Clone() PropertySet {
	out := make(PropertySet, len(ps))
	for k, v := range ps {
		out[k] = v
	}
	return out
}

// DefaultValue 返回属性的中性值
// opacity、scale、drawProgress 为 1，其余为 0
func DefaultValue(name string) float64 {
	switch name {
	case PropOpacity, PropScale, PropDrawProgress:
		return 1
	default:
		return 0
	}
}

// VisualComponent 视觉状态组件
// 只有时间轴和效果写入，渲染系统读取
type VisualComponent struct {
	Props  PropertySet
	Colors map[string]colorful.Color
}

// NewVisualComponent 用初始属性创建视觉组件（允许传 nil）
func NewVisualComponent(initial PropertySet) *VisualComponent {
	props := PropertySet{}
	for k, v := range initial {
		props[k] = v
	}
	return &VisualComponent{
		Props:  props,
		Colors: make(map[string]colorful.Color),
	}
}

// Get 读取属性，未设置时返回中性值
func (v *VisualComponent) Get(name string) float64 {
	if val, ok := v.Props[name]; ok {
		return val
	}
	return DefaultValue(name)
}

// Set 写入属性
func (v *VisualComponent) Set(name string, value float64) {
	if v.Props == nil {
		v.Props = PropertySet{}
	}
	v.Props[name] = value
}

// Color 读取颜色属性
func (v *VisualComponent) Color(name string) (colorful.Color, bool) {
	c, ok := v.Colors[name]
	return c, ok
}

// SetColor 写入颜色属性
func (v *VisualComponent) SetColor(name string, c colorful.Color) {
	if v.Colors == nil {
		v.Colors = make(map[string]colorful.Color)
	}
	v.Colors[name] = c
}

// VisualSnapshot 视觉组件快照，用于把目标恢复到动画前的状态
type VisualSnapshot struct {
	props  PropertySet
	colors map[string]colorful.Color
}

// Snapshot 捕获当前状态
func (v *VisualComponent) Snapshot() VisualSnapshot {
	colors := make(map[string]colorful.Color, len(v.Colors))
	for k, c := range v.Colors {
		colors[k] = c
	}
	return VisualSnapshot{props: v.Props.Clone(), colors: colors}
}

// Restore 用快照替换当前状态
// 快照之后新写入的属性会被丢弃
func (v *VisualComponent) Restore(s VisualSnapshot) {
	v.Props = s.props.Clone()
	v.Colors = make(map[string]colorful.Color, len(s.colors))
	for k, c := range s.colors {
		v.Colors[k] = c
	}
}
