package app

import (
	"context"
	"fmt"
	"os"

	"github.com/decker502/scrollscene/pkg/config"
	"github.com/decker502/scrollscene/pkg/embedded"
)

// LoadPage resolves the page to show. An empty path selects the bundled page
// called name. A directory is loaded as a whole and the page called name is
// picked from it, or its only page when name is empty. Anything else is read
// as a single page file.
func LoadPage(ctx context.Context, path, name string) (*config.PageConfig, error) {
	if path == "" {
		return embedded.LoadPage(name)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open page config: %w", err)
	}
	if !info.IsDir() {
		return config.LoadPageConfig(path)
	}

	pages, err := config.LoadPageConfigDir(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages in %s", path)
	}
	if name == "" {
		if len(pages) == 1 {
			return pages[0], nil
		}
		return nil, fmt.Errorf("%s holds %d pages, pick one by name", path, len(pages))
	}
	for _, p := range pages {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("page %q not found in %s", name, path)
}
