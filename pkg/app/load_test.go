package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePage(t *testing.T, dir, file, name string) string {
	t.Helper()
	src := strings.Replace(runtimePage, "name: runtime", "name: "+name, 1)
	path := filepath.Join(dir, file)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadPageFromFile(t *testing.T) {
	path := writePage(t, t.TempDir(), "one.yaml", "one")
	cfg, err := LoadPage(context.Background(), path, "ignored")
	if err != nil {
		t.Fatalf("LoadPage: %v", err)
	}
	if cfg.Name != "one" {
		t.Errorf("name = %q, want one", cfg.Name)
	}
}

func TestLoadPageFromDir(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "a.yaml", "alpha")
	writePage(t, dir, "b.yaml", "beta")

	cfg, err := LoadPage(context.Background(), dir, "beta")
	if err != nil {
		t.Fatalf("LoadPage: %v", err)
	}
	if cfg.Name != "beta" {
		t.Errorf("name = %q, want beta", cfg.Name)
	}

	if _, err := LoadPage(context.Background(), dir, ""); err == nil {
		t.Error("expected error when a directory holds several pages and no name is given")
	}
	if _, err := LoadPage(context.Background(), dir, "gamma"); err == nil {
		t.Error("expected error for unknown page name")
	}
}

func TestLoadPageSinglePageDir(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "only.yaml", "only")
	cfg, err := LoadPage(context.Background(), dir, "")
	if err != nil {
		t.Fatalf("LoadPage: %v", err)
	}
	if cfg.Name != "only" {
		t.Errorf("name = %q, want only", cfg.Name)
	}
}

func TestLoadPageMissingPath(t *testing.T) {
	if _, err := LoadPage(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"), ""); err == nil {
		t.Error("expected error for missing path")
	}
}
