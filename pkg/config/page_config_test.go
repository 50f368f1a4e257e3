package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const minimalPage = `
name: demo
sections:
  - name: hero
    elements:
      - name: title
        kind: text
        fill: "#fff"
      - name: dot
        count: 3
        stepX: 10%
scenes:
  - name: hero
    scope: hero
    triggers:
      - name: scroll
        trigger: hero
        start: top top
        end: "+=150%"
        scrub: 0.5
        pin: true
    timelines:
      - name: fade
        trigger: scroll
        segments:
          - targets: .dot
            position: "<"
            ease: power2.out
            props:
              opacity: [0, 1]
              y: -30
            colors:
              fill: ["#000", "#4fc3f7"]
            stagger: {each: 0.1, from: center}
            vary:
              y: {step: -30}
`

func TestParsePageConfig(t *testing.T) {
	cfg, err := ParsePageConfig([]byte(minimalPage))
	if err != nil {
		t.Fatalf("ParsePageConfig: %v", err)
	}

	if cfg.Viewport.Width != DefaultViewportWidth || cfg.Viewport.Height != DefaultViewportHeight {
		t.Errorf("viewport defaults = %+v", cfg.Viewport)
	}
	if cfg.Smoothing.Lerp != 0.1 || cfg.Smoothing.WheelStep != 120 {
		t.Errorf("smoothing defaults = %+v", cfg.Smoothing)
	}
	if h := cfg.Sections[0].Height; h != Pct(100) {
		t.Errorf("section height default = %+v, want 100%%", h)
	}
	if e := cfg.Sections[0].Elements[1]; e.Kind != "box" || e.StepX != Pct(10) {
		t.Errorf("element = %+v", e)
	}
	if cfg.Seed != nil {
		t.Errorf("seed = %v, want unset", *cfg.Seed)
	}

	sc := cfg.Scenes[0]
	if sc.Policy != "revert" {
		t.Errorf("policy default = %q", sc.Policy)
	}
	tr := sc.Triggers[0]
	if tr.Scrub != (Scrub{Enabled: true, Lag: 0.5}) || !tr.Pin {
		t.Errorf("trigger = %+v", tr)
	}

	seg := sc.Timelines[0].Segments[0]
	if got := seg.Props["opacity"]; got != (Range{From: 0, To: 1, HasFrom: true}) {
		t.Errorf("opacity range = %+v", got)
	}
	if got := seg.Props["y"]; got != (Range{To: -30}) {
		t.Errorf("y range = %+v", got)
	}
	if got := seg.Colors["fill"]; got.From != "#000" || got.To != "#4fc3f7" {
		t.Errorf("fill = %+v", got)
	}
	if seg.Position != "<" || seg.DurationOr(DefaultDuration) != DefaultDuration {
		t.Errorf("position %q, duration %v", seg.Position, seg.DurationOr(DefaultDuration))
	}
}

func TestScrubForms(t *testing.T) {
	tests := []struct {
		yaml string
		want Scrub
	}{
		{"true", Scrub{Enabled: true}},
		{"false", Scrub{}},
		{"1", Scrub{Enabled: true, Lag: 1}},
		{"0.25", Scrub{Enabled: true, Lag: 0.25}},
	}
	for _, tt := range tests {
		doc := strings.Replace(minimalPage, "scrub: 0.5", "scrub: "+tt.yaml, 1)
		cfg, err := ParsePageConfig([]byte(doc))
		if err != nil {
			t.Fatalf("scrub %s: %v", tt.yaml, err)
		}
		if got := cfg.Scenes[0].Triggers[0].Scrub; got != tt.want {
			t.Errorf("scrub %s = %+v, want %+v", tt.yaml, got, tt.want)
		}
	}
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		wantMsg string
	}{
		{"missing name", "name: demo", "name: \"\"", "page name"},
		{"bad marker", "end: \"+=150%\"", "end: \"middle nowhere\"", "trigger \"scroll\""},
		{"bad ease", "ease: power2.out", "ease: bounce.wobble", "segment 0"},
		{"bad position", "position: \"<\"", "position: \"<*2\"", "segment 0"},
		{"bad color", "\"#4fc3f7\"]", "\"#zzz\"]", "color fill"},
		{"unknown trigger", "trigger: scroll", "trigger: nope", "unknown trigger"},
		{"bad stagger origin", "from: center", "from: random", "stagger origin"},
		{"vary without prop", "y: {step: -30}", "x: {step: -30}", "not animated"},
		{"bad policy", "scope: hero", "scope: hero\n    policy: forget", "policy"},
		{"unknown scope", "scope: hero", "scope: footer", "unknown scope"},
		{"duplicate element", "name: dot\n        count: 3", "name: title", "duplicate element"},
		{"negative scrub", "scrub: 0.5", "scrub: -1", "scrub"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := strings.Replace(minimalPage, tt.from, tt.to, 1)
			if doc == minimalPage {
				t.Fatalf("replacement %q not found", tt.from)
			}
			_, err := ParsePageConfig([]byte(doc))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestValidationWrapsSentinel(t *testing.T) {
	_, err := ParsePageConfig([]byte("name: x\n"))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("error = %v, want ErrInvalidConfig", err)
	}
}

func TestParseLength(t *testing.T) {
	tests := []struct {
		in   string
		want Length
	}{
		{"120", Px(120)},
		{"120px", Px(120)},
		{"50%", Pct(50)},
		{"-10%", Pct(-10)},
	}
	for _, tt := range tests {
		got, err := ParseLength(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseLength(%q) = %+v, %v; want %+v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseLength("wide"); err == nil {
		t.Error("ParseLength(wide) should fail")
	}
	if got := Pct(50).Resolve(800); got != 400 {
		t.Errorf("Pct(50).Resolve(800) = %v", got)
	}
}

func TestParseColorShortHex(t *testing.T) {
	c, err := ParseColor("#fff")
	if err != nil {
		t.Fatal(err)
	}
	if c.Hex() != "#ffffff" {
		t.Errorf("ParseColor(#fff) = %s", c.Hex())
	}
}

func writePage(t *testing.T, dir, file, name string) string {
	t.Helper()
	path := filepath.Join(dir, file)
	doc := strings.Replace(minimalPage, "name: demo", "name: "+name, 1)
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadPageConfigDir(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "b.yaml", "beta")
	writePage(t, dir, "a.yaml", "alpha")
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}

	pages, err := LoadPageConfigDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("LoadPageConfigDir: %v", err)
	}
	if len(pages) != 2 || pages[0].Name != "alpha" || pages[1].Name != "beta" {
		t.Fatalf("pages = %d, want alpha and beta", len(pages))
	}

	writePage(t, dir, "c.yaml", "alpha")
	if _, err := LoadPageConfigDir(context.Background(), dir); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("duplicate page error = %v, want ErrInvalidConfig", err)
	}
}

func TestLoadPageConfigDirFailure(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "ok.yaml", "ok")
	if err := os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("name: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPageConfigDir(context.Background(), dir); err == nil {
		t.Error("expected an error for the malformed page")
	}
}

func TestWatcherReloadsValidChanges(t *testing.T) {
	dir := t.TempDir()
	path := writePage(t, dir, "page.yaml", "first")

	w, err := NewWatcher(path, 20*time.Millisecond)
	if err != nil {
		t.Skipf("file watching unavailable: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	// an invalid save is skipped
	if err := os.WriteFile(path, []byte("name: \"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	select {
	case cfg := <-w.Updates():
		t.Fatalf("invalid page delivered: %+v", cfg)
	default:
	}

	writePage(t, dir, "page.yaml", "second")
	select {
	case cfg := <-w.Updates():
		if cfg.Name != "second" {
			t.Errorf("reloaded page = %q, want second", cfg.Name)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after a valid save")
	}

	if err := w.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
