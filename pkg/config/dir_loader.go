package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"
)

// LoadPageConfigDir loads every *.yaml page in dir concurrently. Pages are
// returned sorted by name; the first failure cancels the rest.
func LoadPageConfigDir(ctx context.Context, dir string) ([]*PageConfig, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan page directory %s: %w", dir, err)
	}

	pages := make([]*PageConfig, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			cfg, err := LoadPageConfig(file)
			if err != nil {
				return err
			}
			pages[i] = cfg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]string, len(pages))
	for i, p := range pages {
		if prev, dup := seen[p.Name]; dup {
			return nil, fmt.Errorf("%w: page %q defined in %s and %s", ErrInvalidConfig, p.Name, prev, files[i])
		}
		seen[p.Name] = files[i]
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Name < pages[j].Name })
	return pages, nil
}
