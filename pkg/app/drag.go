package app

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// DragScroller 把竖直方向的触摸或鼠标拖拽转换为滚动增量
// 与触屏一致：向上拖动页面时向下滚动
type DragScroller struct {
	active  bool
	touch   bool
	touchID ebiten.TouchID
	lastY   int
}

// Update 轮询输入，返回本帧的滚动增量（像素）
func (d *DragScroller) Update() float64 {
	if !d.active {
		if ids := inpututil.AppendJustPressedTouchIDs(nil); len(ids) > 0 {
			d.touch, d.touchID = true, ids[0]
			_, y := ebiten.TouchPosition(d.touchID)
			return d.step(true, y)
		}
		if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
			d.touch = false
			_, y := ebiten.CursorPosition()
			return d.step(true, y)
		}
		return 0
	}

	if d.touch {
		for _, id := range ebiten.AppendTouchIDs(nil) {
			if id == d.touchID {
				_, y := ebiten.TouchPosition(id)
				return d.step(true, y)
			}
		}
		return d.step(false, 0)
	}
	_, y := ebiten.CursorPosition()
	return d.step(ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft), y)
}

// step 用一次指针采样推进拖拽状态
func (d *DragScroller) step(down bool, y int) float64 {
	if !down {
		d.active = false
		return 0
	}
	if !d.active {
		d.active = true
		d.lastY = y
		return 0
	}
	delta := float64(d.lastY - y)
	d.lastY = y
	return delta
}

// Dragging 判断是否正在拖拽
func (d *DragScroller) Dragging() bool {
	return d.active
}
