package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	mandel "github.com/marben/mandelrender"
)

func TestLoad_Valid(t *testing.T) {
	yaml := `
region: seahorse-valley
width: 320
max_iter: 500
mode: smooth
period_interval: 0
palette:
  kind: hue
  cycles: 4
  exponent: 0.4
  in_set: "#000000"
  table: true
depth: "16"
workers: 3
tile_size: 32
output: seahorse.tiff
progress_interval: 250ms
`
	cfg := loadFromString(t, yaml)

	if cfg.Width != 320 {
		t.Errorf("width: got %d", cfg.Width)
	}
	if cfg.ProgressInterval != 250*time.Millisecond {
		t.Errorf("progress_interval: got %v", cfg.ProgressInterval)
	}

	job, err := cfg.Job()
	if err != nil {
		t.Fatalf("Job(): %v", err)
	}
	if job.Region != mandel.SeahorseValley {
		t.Errorf("region: got %+v", job.Region)
	}
	if job.Evaluator.Mode != mandel.Smooth || job.Evaluator.MaxIter != 500 {
		t.Errorf("evaluator: got %+v", job.Evaluator)
	}
	if job.Evaluator.PeriodInterval != 0 {
		t.Errorf("period_interval: got %d, want 0", job.Evaluator.PeriodInterval)
	}
	if job.Depth != mandel.Depth16 {
		t.Errorf("depth: got %v", job.Depth)
	}
	tab, ok := job.Palette.(*mandel.Table)
	if !ok {
		t.Fatalf("palette: got %T, want *mandel.Table", job.Palette)
	}
	if tab.Len() != 501 {
		t.Errorf("table length: got %d, want 501", tab.Len())
	}
	if s := cfg.Sampler(); s.Workers != 3 || s.TileSize != 32 {
		t.Errorf("sampler: got %+v", s)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg := loadFromString(t, "")

	if cfg.Width != DefaultWidth {
		t.Errorf("default width: got %d, want %d", cfg.Width, DefaultWidth)
	}
	if cfg.Output != DefaultOutput {
		t.Errorf("default output: got %q, want %q", cfg.Output, DefaultOutput)
	}

	job, err := cfg.Job()
	if err != nil {
		t.Fatalf("Job(): %v", err)
	}
	if job.Region != mandel.Classic {
		t.Errorf("default region: got %+v", job.Region)
	}
	if _, h := job.Size(); h != 533 {
		t.Errorf("derived height: got %d, want 533", h)
	}
	if job.Evaluator.PeriodInterval != mandel.DefaultPeriodInterval {
		t.Errorf("default period_interval: got %d", job.Evaluator.PeriodInterval)
	}
	g, ok := job.Palette.(mandel.Gradient)
	if !ok {
		t.Fatalf("default palette: got %T, want mandel.Gradient", job.Palette)
	}
	if g.Base != mandel.Black || g.Target != mandel.White || g.InSet != mandel.White {
		t.Errorf("default gradient: got %+v", g)
	}
}

func TestLoad_Bounds(t *testing.T) {
	yaml := `
region: nowhere
bounds:
  xmin: -1
  xmax: 1
  ymin: -0.5
  ymax: 0.5
width: 100
`
	cfg := loadFromString(t, yaml)
	job, err := cfg.Job()
	if err != nil {
		t.Fatalf("Job(): %v", err)
	}
	if w, h := job.Size(); w != 100 || h != 50 {
		t.Errorf("size: got %dx%d, want 100x50", w, h)
	}
}

func TestLoad_DegenerateBounds(t *testing.T) {
	yaml := `
bounds:
  xmin: 1
  xmax: 1
  ymin: -1
  ymax: 1
`
	_, err := loadStringErr(t, yaml)
	if !errors.Is(err, mandel.ErrDegenerateRegion) {
		t.Fatalf("expected ErrDegenerateRegion, got %v", err)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown region", "region: atlantis"},
		{"zero width", "width: 0"},
		{"negative height", "height: -3"},
		{"zero max_iter", "max_iter: 0"},
		{"unknown mode", "mode: fuzzy"},
		{"negative period_interval", "period_interval: -1"},
		{"unknown palette", "palette:\n  kind: plaid"},
		{"bad colour", "palette:\n  base: blue"},
		{"negative cycles", "palette:\n  kind: hue\n  cycles: -2"},
		{"unknown depth", "depth: \"32\""},
		{"negative workers", "workers: -1"},
		{"empty output", "output: \"\""},
		{"zero progress interval", "progress_interval: 0s"},
		{"unknown log level", "log_level: chatty"},
		{"bad yaml", "width: [1, 2"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := loadStringErr(t, tc.yaml); err == nil {
				t.Fatalf("expected error for %s, got nil", tc.name)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestSlogLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "debug"
	l, err := cfg.SlogLevel()
	if err != nil {
		t.Fatalf("SlogLevel(): %v", err)
	}
	if l.String() != "DEBUG" {
		t.Errorf("SlogLevel(): got %v, want DEBUG", l)
	}
}

func TestWatch_Reload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("width: 100\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Config, 16)
	errc := make(chan error, 1)
	go func() {
		errc <- Watch(ctx, path, func(c *Config) { reloaded <- c })
	}()

	writeInPlace := func(width int) func() error {
		return func() error {
			return os.WriteFile(path, []byte(fmt.Sprintf("width: %d\n", width)), 0o600)
		}
	}
	// renameOver saves the way many editors do: a temp file renamed over
	// the config, which replaces its inode.
	renameOver := func(width int) func() error {
		return func() error {
			tmp := filepath.Join(dir, ".config.yaml.tmp")
			if err := os.WriteFile(tmp, []byte(fmt.Sprintf("width: %d\n", width)), 0o600); err != nil {
				return err
			}
			return os.Rename(tmp, path)
		}
	}

	steps := []struct {
		name  string
		width int
		save  func() error
	}{
		{"in-place write", 200, writeInPlace(200)},
		{"rename over", 300, renameOver(300)},
		{"second rename over", 400, renameOver(400)},
		{"in-place write after rename", 500, writeInPlace(500)},
	}
	for _, step := range steps {
		waitReload(t, reloaded, step.width, step.save, step.name)
	}

	cancel()
	if err := <-errc; err != nil {
		t.Errorf("Watch(): %v", err)
	}
}

// waitReload repeats save until a reload with the wanted width arrives.
// The watcher registers asynchronously, so the first save may be missed.
func waitReload(t *testing.T, reloaded <-chan *Config, width int, save func() error, name string) {
	t.Helper()
	if err := save(); err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(250 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case cfg := <-reloaded:
			if cfg.Width == width {
				return
			}
		case <-tick.C:
			if err := save(); err != nil {
				t.Fatalf("%s: %v", name, err)
			}
		case <-deadline:
			t.Fatalf("%s: config with width %d was not reloaded", name, width)
		}
	}
}

// loadFromString writes yaml to a temp file and calls Load, failing on error.
func loadFromString(t *testing.T, content string) *Config {
	t.Helper()
	cfg, err := loadStringErr(t, content)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	return cfg
}

// loadStringErr writes yaml to a temp file and calls Load, returning any error.
func loadStringErr(t *testing.T, content string) (*Config, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return Load(path)
}
