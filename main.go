// Command scrollscene shows a scroll-driven page in a window.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/scrollscene/pkg/app"
	"github.com/decker502/scrollscene/pkg/config"
	"github.com/decker502/scrollscene/pkg/embedded"
)

func main() {
	configPath := flag.String("config", "", "page YAML file or directory (default: bundled pages)")
	pageName := flag.String("page", "semiconductor", "page name")
	list := flag.Bool("list", false, "list bundled pages and exit")
	verbose := flag.Bool("verbose", false, "enable log output")
	watch := flag.Bool("watch", false, "reload the page file when it changes")
	stats := flag.Bool("stats", false, "show the debug overlay (toggle with F3)")
	flag.Parse()

	embedded.Init(dataFS)

	if *list {
		names, err := embedded.Pages()
		if err != nil {
			fatal(err)
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := app.LoadPage(ctx, *configPath, *pageName)
	if err != nil {
		fatal(err)
	}

	var reloads <-chan *config.PageConfig
	if *watch {
		w, err := startWatcher(ctx, *configPath)
		if err != nil {
			fatal(err)
		}
		defer w.Close()
		reloads = w.Updates()
	}

	a, err := app.NewApp(app.Config{
		Verbose:   *verbose,
		Page:      cfg,
		Reloads:   reloads,
		ShowStats: *stats,
	})
	if err != nil {
		fatal(err)
	}
	defer a.Close()

	ebiten.SetWindowSize(int(cfg.Viewport.Width), int(cfg.Viewport.Height))
	ebiten.SetWindowTitle("scrollscene - " + cfg.Name)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(a); err != nil {
		fatal(err)
	}
}

func startWatcher(ctx context.Context, path string) (*config.Watcher, error) {
	if path == "" {
		return nil, fmt.Errorf("--watch needs --config pointing at a page file")
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return nil, fmt.Errorf("--watch needs a page file, %s is a directory", path)
	}
	w, err := config.NewWatcher(path, config.DefaultReloadDebounce)
	if err != nil {
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}
	go func() {
		if err := w.Run(ctx); err != nil && ctx.Err() == nil {
			log.Printf("[Main] watcher stopped: %v", err)
		}
	}()
	return w, nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "scrollscene:", err)
	os.Exit(1)
}
