package components

// PinComponent 固定组件
// 触发器进行中时把区块固定在视口内
// Offset 加到元素的文档 y 上，渲染系统对被固定区块的所有元素应用该偏移
type PinComponent struct {
	Active bool
	Offset float64
}
