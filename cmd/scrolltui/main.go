// Command scrolltui shows a scroll-driven page in the terminal.
//
// Usage:
//
//	scrolltui --config page.yaml [--watch] [--verbose]
//
// Without --config the page named by --page is read from the data/pages
// directory of the working tree.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/gdamore/tcell/v2"

	"github.com/decker502/scrollscene/pkg/app"
	"github.com/decker502/scrollscene/pkg/config"
)

func main() {
	configPath := flag.String("config", "", "page YAML file or directory (default: data/pages)")
	pageName := flag.String("page", "semiconductor", "page name when --config is a directory")
	watch := flag.Bool("watch", false, "reload the page file when it changes")
	verbose := flag.Bool("verbose", false, "write logs to scrolltui.log")
	flag.Parse()

	if err := run(*configPath, *pageName, *watch, *verbose); err != nil {
		fmt.Fprintln(os.Stderr, "scrolltui:", err)
		os.Exit(1)
	}
}

func run(configPath, pageName string, watch, verbose bool) error {
	// tcell owns the terminal, logs go to a file or nowhere
	log.SetOutput(io.Discard)
	if verbose {
		f, err := os.Create("scrolltui.log")
		if err != nil {
			return err
		}
		defer f.Close()
		log.SetOutput(f)
	}

	if configPath == "" {
		configPath = filepath.Join("data", "pages")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := app.LoadPage(ctx, configPath, pageName)
	if err != nil {
		return err
	}

	var reloads <-chan *config.PageConfig
	if watch {
		info, err := os.Stat(configPath)
		if err != nil {
			return err
		}
		if info.IsDir() {
			return fmt.Errorf("--watch needs a page file, %s is a directory", configPath)
		}
		w, err := config.NewWatcher(configPath, config.DefaultReloadDebounce)
		if err != nil {
			return err
		}
		defer w.Close()
		go func() {
			if err := w.Run(ctx); err != nil && ctx.Err() == nil {
				log.Printf("[Main] watcher stopped: %v", err)
			}
		}()
		reloads = w.Updates()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	term, err := app.NewTerminal(screen, cfg, reloads)
	if err != nil {
		return err
	}
	defer term.Close()

	if err := term.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
