package main

import (
	"math"
	"testing"

	"github.com/decker502/scrollscene/pkg/app"
	"github.com/decker502/scrollscene/pkg/components"
	"github.com/decker502/scrollscene/pkg/ecs"
	"github.com/decker502/scrollscene/pkg/embedded"
	"github.com/decker502/scrollscene/pkg/timeline"
)

func TestBundledPagesMount(t *testing.T) {
	embedded.Init(dataFS)

	names, err := embedded.Pages()
	if err != nil {
		t.Fatalf("Pages: %v", err)
	}
	if len(names) == 0 {
		t.Fatal("no bundled pages")
	}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			cfg, err := embedded.LoadPage(name)
			if err != nil {
				t.Fatalf("LoadPage: %v", err)
			}
			rt, err := app.NewRuntime(cfg)
			if err != nil {
				t.Fatalf("NewRuntime: %v", err)
			}
			defer rt.Close()

			if got, want := len(rt.Manager().Scenes()), len(cfg.Scenes); got != want {
				t.Fatalf("mounted %d of %d scenes", got, want)
			}
			for _, h := range rt.Manager().Scenes() {
				for _, b := range h.Bindings() {
					if !b.Resolved() {
						t.Errorf("scene %s: trigger %s did not resolve", h.Name(), b.Name())
					}
				}
			}

			// scroll through the whole page and back
			limit := rt.Smoother().Limit()
			for offset := 0.0; offset <= limit; offset += 97 {
				rt.ScrollTo(offset, false)
				rt.Tick(app.FrameDT)
			}
			for offset := limit; offset >= 0; offset -= 211 {
				rt.ScrollTo(offset, false)
				rt.Tick(app.FrameDT)
			}
		})
	}
}

func mountBundled(t *testing.T, name string) *app.Runtime {
	t.Helper()
	embedded.Init(dataFS)
	cfg, err := embedded.LoadPage(name)
	if err != nil {
		t.Fatalf("LoadPage: %v", err)
	}
	rt, err := app.NewRuntime(cfg)
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	t.Cleanup(rt.Close)
	return rt
}

func TestBundledScrubbedTimelinesFinish(t *testing.T) {
	names, err := embedded.Pages()
	if err != nil {
		t.Fatalf("Pages: %v", err)
	}
	for _, name := range names {
		rt := mountBundled(t, name)
		for _, h := range rt.Manager().Scenes() {
			for _, tl := range h.Timelines() {
				if tl.Mode() != timeline.ModeScrubbed {
					continue
				}
				// evaluated past its duration a timeline is at its final values
				end := tl.Evaluate(1)
				final := tl.Evaluate(1 + tl.Duration())
				for id, want := range final {
					got := end.Values(id)
					for prop, v := range want.Props {
						if math.Abs(got.Props[prop]-v) > 1e-9 {
							t.Errorf("%s/%s: target %d %s = %v at progress 1, want %v",
								name, tl.Name(), id, prop, got.Props[prop], v)
						}
					}
					for prop, c := range want.Colors {
						if !got.Colors[prop].AlmostEqualRgb(c) {
							t.Errorf("%s/%s: target %d %s = %s at progress 1, want %s",
								name, tl.Name(), id, prop, got.Colors[prop].Hex(), c.Hex())
						}
					}
				}
			}
		}
	}
}

func TestBundledScenesAtTriggerProgress(t *testing.T) {
	tests := []struct {
		scene    string
		selector string
		last     bool
		prop     string
		progress float64
		want     float64
	}{
		{"transistor", ".gate", false, components.PropOpacity, 0.1, 0},
		{"transistor", ".gate", false, components.PropOpacity, 0.3, 1},
		{"transistor", ".gate", false, components.PropOpacity, 1, 0.7},
		{"wafer", ".fragment", true, components.PropOpacity, 1, 1},
		{"circuits", ".trace", true, components.PropDrawProgress, 1, 1},
		{"future", ".point", true, components.PropOpacity, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.scene+tt.selector, func(t *testing.T) {
			rt := mountBundled(t, "semiconductor")
			h := rt.Manager().Scene(tt.scene)
			if h == nil || len(h.Bindings()) == 0 {
				t.Fatalf("scene %s has no trigger", tt.scene)
			}
			start, end, ok := h.Bindings()[0].Offsets()
			if !ok {
				t.Fatalf("scene %s trigger unresolved", tt.scene)
			}
			targets := rt.Document().Query(tt.scene, tt.selector)
			if len(targets) == 0 {
				t.Fatalf("%s matches nothing", tt.selector)
			}
			id := targets[0]
			if tt.last {
				id = targets[len(targets)-1]
			}

			rt.ScrollTo(start+tt.progress*(end-start), true)
			for i := 0; i < 200; i++ {
				rt.Tick(app.FrameDT)
			}

			vis, ok := ecs.GetComponent[*components.VisualComponent](rt.Entities(), id)
			if !ok {
				t.Fatal("target has no visual component")
			}
			if got := vis.Get(tt.prop); math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("%s %s at progress %v = %v, want %v", tt.selector, tt.prop, tt.progress, got, tt.want)
			}
		})
	}
}
