package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/decker502/scrollscene/pkg/config"
	"github.com/decker502/scrollscene/pkg/systems"
)

// Terminal cells are mapped to page pixels at this size, so a 100x30
// terminal shows an 800x480 viewport.
const (
	CellWidth  = 8
	CellHeight = 16
)

// Terminal hosts a page in a tcell screen.
type Terminal struct {
	screen   tcell.Screen
	runtime  *Runtime
	renderer *systems.TerminalRenderSystem
	reloads  <-chan *config.PageConfig
	status   bool
}

// NewTerminal mounts cfg sized to the screen. The screen must be
// initialized; the caller keeps ownership of it.
func NewTerminal(screen tcell.Screen, cfg *config.PageConfig, reloads <-chan *config.PageConfig) (*Terminal, error) {
	rt, err := NewRuntime(cfg)
	if err != nil {
		return nil, err
	}
	t := &Terminal{
		screen:  screen,
		runtime: rt,
		reloads: reloads,
		status:  true,
	}
	t.renderer = systems.NewTerminalRenderSystem(rt.Entities(), rt.Document(), 0, 0)
	t.resize()
	screen.EnableMouse()
	return t, nil
}

// Runtime returns the mounted page.
func (t *Terminal) Runtime() *Runtime {
	return t.runtime
}

func (t *Terminal) resize() {
	cols, rows := t.screen.Size()
	w, h := float64(cols*CellWidth), float64(rows*CellHeight)
	if w <= 0 || h <= 0 {
		return
	}
	if err := t.runtime.Resize(w, h); err != nil {
		log.Printf("[Terminal] resize: %v", err)
	}
	t.renderer.SetViewport(w, h)
}

// HandleEvent applies one input event. It returns false when the user asked
// to quit.
func (t *Terminal) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyDown:
			t.runtime.Wheel(0.5)
		case tcell.KeyUp:
			t.runtime.Wheel(-0.5)
		case tcell.KeyPgDn:
			t.runtime.Page(pageFraction)
		case tcell.KeyPgUp:
			t.runtime.Page(-pageFraction)
		case tcell.KeyHome:
			t.runtime.ScrollTo(0, false)
		case tcell.KeyEnd:
			t.runtime.ScrollTo(t.runtime.Smoother().Limit(), false)
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case 'j', ' ':
				t.runtime.Page(pageFraction)
			case 'k':
				t.runtime.Page(-pageFraction)
			case 's':
				t.status = !t.status
			}
		}
	case *tcell.EventMouse:
		buttons := ev.Buttons()
		if buttons&tcell.WheelDown != 0 {
			t.runtime.Wheel(1)
		}
		if buttons&tcell.WheelUp != 0 {
			t.runtime.Wheel(-1)
		}
	case *tcell.EventResize:
		t.screen.Sync()
		t.resize()
	}
	return true
}

// Frame applies a pending reload, runs one tick and draws.
func (t *Terminal) Frame(dt float64) {
	t.applyReload()
	state := t.runtime.Tick(dt)

	t.screen.Clear()
	t.renderer.Draw(t.screen, state.Offset)
	if t.status {
		t.drawStatus(fmt.Sprintf(" %s  %.0f/%.0f  %.0f px/s  [q]uit [s]tatus ",
			t.runtime.Config().Name, state.Offset, t.runtime.Smoother().Limit(), state.Velocity))
	}
	t.screen.Show()
}

func (t *Terminal) drawStatus(s string) {
	_, rows := t.screen.Size()
	style := tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver)
	for i, r := range []rune(s) {
		t.screen.SetContent(i, rows-1, r, nil, style)
	}
}

func (t *Terminal) applyReload() {
	if t.reloads == nil {
		return
	}
	select {
	case cfg := <-t.reloads:
		next, err := t.runtime.Reload(cfg)
		if err != nil {
			log.Printf("[Terminal] reload failed, keeping current page: %v", err)
			return
		}
		t.runtime = next
		t.renderer = systems.NewTerminalRenderSystem(next.Entities(), next.Document(),
			next.Document().ViewportWidth(), next.Document().ViewportHeight())
	default:
	}
}

// Run polls input and draws at about 60 frames per second until ctx is done
// or the user quits.
func (t *Terminal) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok || !t.HandleEvent(ev) {
				return nil
			}
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			t.Frame(dt)
		}
	}
}

// Close disposes the page.
func (t *Terminal) Close() {
	t.runtime.Close()
}
