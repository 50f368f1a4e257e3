// Package app 在 ebiten 窗口中运行滚动驱动的页面
//
// Runtime 持有一个页面的滚动管线和场景，终端宿主也复用它；
// App 在此之上负责窗口输入、绘制和热重载。
package app

import (
	"fmt"
	"image/color"
	"io"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/decker502/scrollscene/pkg/config"
	"github.com/decker502/scrollscene/pkg/systems"
)

// pageFraction 翻页键每次滚动的视口比例
const pageFraction = 0.9

var backgroundColor = color.RGBA{R: 10, G: 12, B: 20, A: 255}

// Config 应用启动配置
type Config struct {
	// Verbose 是否输出日志
	Verbose bool
	// Page 要挂载的页面
	Page *config.PageConfig
	// Reloads 推送修改后的页面，nil 表示关闭热重载
	Reloads <-chan *config.PageConfig
	// ShowStats 启动时显示调试信息
	ShowStats bool
}

// App 实现 ebiten.Game 接口
type App struct {
	runtime  *Runtime
	renderer *systems.RenderSystem
	fonts    *systems.FontCache
	reloads  <-chan *config.PageConfig

	drag      DragScroller
	perf      *PerfMonitor
	showStats bool

	layoutW, layoutH int
}

// NewApp 挂载页面并准备渲染
func NewApp(cfg Config) (*App, error) {
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}
	if cfg.Page == nil {
		return nil, fmt.Errorf("no page configured")
	}

	fonts, err := systems.NewFontCache()
	if err != nil {
		return nil, err
	}
	rt, err := NewRuntime(cfg.Page)
	if err != nil {
		return nil, err
	}

	perf, err := NewPerfMonitor(time.Second)
	if err != nil {
		log.Printf("[App] perf monitor disabled: %v", err)
	}

	a := &App{
		runtime:   rt,
		fonts:     fonts,
		reloads:   cfg.Reloads,
		perf:      perf,
		showStats: cfg.ShowStats,
	}
	a.renderer = systems.NewRenderSystem(rt.Entities(), rt.Document(), fonts)
	log.Printf("[App] page %s ready, %d scenes", cfg.Page.Name, len(rt.Manager().Scenes()))
	return a, nil
}

// Runtime 返回当前挂载的页面
func (a *App) Runtime() *Runtime {
	return a.runtime
}

// Update 处理输入并执行一帧
func (a *App) Update() error {
	a.applyReload()

	if a.layoutW > 0 && a.layoutH > 0 {
		if err := a.runtime.Resize(float64(a.layoutW), float64(a.layoutH)); err != nil {
			log.Printf("[App] resize: %v", err)
		}
	}

	a.handleInput()
	a.runtime.Tick(FrameDT)
	return nil
}

func (a *App) applyReload() {
	if a.reloads == nil {
		return
	}
	select {
	case cfg := <-a.reloads:
		next, err := a.runtime.Reload(cfg)
		if err != nil {
			log.Printf("[App] reload failed, keeping current page: %v", err)
			return
		}
		a.runtime = next
		a.renderer = systems.NewRenderSystem(next.Entities(), next.Document(), a.fonts)
	default:
	}
}

func (a *App) handleInput() {
	if _, dy := ebiten.Wheel(); dy != 0 {
		// 滚轮向上时 dy 为正，页面向顶部滚动
		a.runtime.Wheel(-dy)
	}
	if delta := a.drag.Update(); delta != 0 {
		a.runtime.ScrollBy(delta)
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace), inpututil.IsKeyJustPressed(ebiten.KeyPageDown):
		a.runtime.Page(pageFraction)
	case inpututil.IsKeyJustPressed(ebiten.KeyPageUp):
		a.runtime.Page(-pageFraction)
	case inpututil.IsKeyJustPressed(ebiten.KeyHome):
		a.runtime.ScrollTo(0, false)
	case inpututil.IsKeyJustPressed(ebiten.KeyEnd):
		a.runtime.ScrollTo(a.runtime.Smoother().Limit(), false)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		a.runtime.Wheel(0.1)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		a.runtime.Wheel(-0.1)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		a.showStats = !a.showStats
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}
}

// Draw 绘制页面和可选的调试信息
func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	a.renderer.Draw(screen, a.runtime.Offset())
	if a.showStats {
		ebitenutil.DebugPrintAt(screen, a.statsText(), 10, 10)
	}
}

func (a *App) statsText() string {
	state := a.runtime.Loop().Tracker().State()
	s := fmt.Sprintf("fps %.0f  offset %.0f/%.0f  v %.0f px/s %s",
		ebiten.ActualFPS(), state.Offset, a.runtime.Smoother().Limit(),
		state.Velocity, state.Direction)

	scenes := a.runtime.Manager().Scenes()
	active, timelines := 0, 0
	for _, h := range scenes {
		if h.Active() {
			active++
			timelines += len(h.Timelines())
		}
	}
	s += fmt.Sprintf("\nscenes %d/%d active, %d timelines", active, len(scenes), timelines)

	if a.perf != nil {
		s += "\n" + a.perf.Sample(time.Now()).String()
	}
	return s
}

// Layout 使用窗口尺寸作为页面视口
// 实际的尺寸调整在下一次 Update 开始时执行
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	a.layoutW, a.layoutH = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

// Close 销毁页面
func (a *App) Close() {
	a.runtime.Close()
}
