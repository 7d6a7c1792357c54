package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	mandel "github.com/marben/mandelrender"
)

// Default values applied when fields are absent from the config file.
// They reproduce the classic full-set render.
const (
	DefaultRegion           = "classic"
	DefaultWidth            = 800
	DefaultMaxIter          = 1000
	DefaultMode             = "discrete"
	DefaultPalette          = "gradient"
	DefaultBase             = "#000000"
	DefaultTarget           = "#ffffff"
	DefaultInSet            = "#ffffff"
	DefaultDepth            = "8"
	DefaultOutput           = "mandelbrot.png"
	DefaultProgressInterval = time.Second
	DefaultLogLevel         = "info"
	DefaultServerAddr       = ":8080"
)

// Config is the full render configuration. Fields map 1:1 to config.example.yaml.
type Config struct {
	// Region names a landmark (classic, seahorse-valley, ...). It is ignored
	// when Bounds is set.
	Region string  `yaml:"region"`
	Bounds *Bounds `yaml:"bounds"`

	// Width is the raster width in pixels. Height 0 derives the height from
	// the region's aspect ratio.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	MaxIter int `yaml:"max_iter"`

	// Mode is discrete | smooth.
	Mode string `yaml:"mode"`

	// PeriodInterval 0 disables the periodicity check. Nil means the default.
	PeriodInterval *int     `yaml:"period_interval"`
	PeriodEpsilon  *float64 `yaml:"period_epsilon"`

	Palette PaletteConfig `yaml:"palette"`

	// Depth is 8 | 16 | float.
	Depth string `yaml:"depth"`

	// Workers 0 uses GOMAXPROCS.
	Workers  int `yaml:"workers"`
	TileSize int `yaml:"tile_size"`

	// Output is the file the finished image is written to. Its extension
	// selects the format.
	Output string `yaml:"output"`

	ProgressInterval time.Duration `yaml:"progress_interval"`

	// LogLevel is debug | info | warn | error.
	LogLevel string `yaml:"log_level"`

	Server ServerConfig `yaml:"server"`
}

// Bounds is an explicit view window.
type Bounds struct {
	Xmin float64 `yaml:"xmin"`
	Xmax float64 `yaml:"xmax"`
	Ymin float64 `yaml:"ymin"`
	Ymax float64 `yaml:"ymax"`
}

// PaletteConfig selects and parameterizes the colour mapping.
type PaletteConfig struct {
	// Kind is gradient | hue.
	Kind string `yaml:"kind"`

	// Base and Target are the gradient endpoints, "#rrggbb".
	Base   string `yaml:"base"`
	Target string `yaml:"target"`

	// InSet is the colour of points that never escape.
	InSet string `yaml:"in_set"`

	// Cycles repeats the hue circle across the iteration range.
	Cycles float64 `yaml:"cycles"`

	// Exponent is applied to the normalized escape value; 0.4 favours
	// lighter tones. 0 means linear.
	Exponent float64 `yaml:"exponent"`

	// Table precomputes one colour per integer escape value.
	Table bool `yaml:"table"`
}

// ServerConfig holds settings for the preview server.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML config data. Empty data yields the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config pre-populated with default values.
func Default() *Config {
	return &Config{
		Region:  DefaultRegion,
		Width:   DefaultWidth,
		MaxIter: DefaultMaxIter,
		Mode:    DefaultMode,
		Palette: PaletteConfig{
			Kind:   DefaultPalette,
			Base:   DefaultBase,
			Target: DefaultTarget,
			InSet:  DefaultInSet,
		},
		Depth:            DefaultDepth,
		Output:           DefaultOutput,
		ProgressInterval: DefaultProgressInterval,
		LogLevel:         DefaultLogLevel,
		Server: ServerConfig{
			Addr: DefaultServerAddr,
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	region, err := cfg.ViewRegion()
	if err != nil {
		return err
	}
	if err := region.Validate(); err != nil {
		return err
	}
	if cfg.Width <= 0 {
		return fmt.Errorf("width must be positive")
	}
	if cfg.Height < 0 {
		return fmt.Errorf("height must not be negative")
	}
	if cfg.MaxIter <= 0 {
		return fmt.Errorf("max_iter must be positive")
	}
	if _, err := cfg.EvalMode(); err != nil {
		return err
	}
	if cfg.PeriodInterval != nil && *cfg.PeriodInterval < 0 {
		return fmt.Errorf("period_interval must not be negative")
	}
	if cfg.PeriodEpsilon != nil && *cfg.PeriodEpsilon < 0 {
		return fmt.Errorf("period_epsilon must not be negative")
	}
	if _, err := cfg.BuildPalette(); err != nil {
		return err
	}
	if _, err := mandel.ParseDepth(cfg.Depth); err != nil {
		return err
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	if cfg.TileSize < 0 {
		return fmt.Errorf("tile_size must not be negative")
	}
	if cfg.Output == "" {
		return fmt.Errorf("output is required")
	}
	if cfg.ProgressInterval <= 0 {
		return fmt.Errorf("progress_interval must be positive")
	}
	if _, err := cfg.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// ViewRegion resolves the explicit bounds or the named region.
func (c *Config) ViewRegion() (mandel.Region, error) {
	if c.Bounds != nil {
		return mandel.Region{Xmin: c.Bounds.Xmin, Xmax: c.Bounds.Xmax, Ymin: c.Bounds.Ymin, Ymax: c.Bounds.Ymax}, nil
	}
	r, ok := mandel.LookupRegion(c.Region)
	if !ok {
		return mandel.Region{}, fmt.Errorf("unknown region %q (known: %s)", c.Region, strings.Join(mandel.RegionNames(), ", "))
	}
	return r, nil
}

// EvalMode parses Mode.
func (c *Config) EvalMode() (mandel.Mode, error) {
	switch c.Mode {
	case "discrete", "":
		return mandel.Discrete, nil
	case "smooth":
		return mandel.Smooth, nil
	}
	return 0, fmt.Errorf("unknown mode %q", c.Mode)
}

// Evaluator builds the escape-time evaluator.
func (c *Config) Evaluator() (mandel.Evaluator, error) {
	mode, err := c.EvalMode()
	if err != nil {
		return mandel.Evaluator{}, err
	}
	ev := mandel.NewEvaluator(c.MaxIter, mode)
	if c.PeriodInterval != nil {
		ev.PeriodInterval = *c.PeriodInterval
	}
	if c.PeriodEpsilon != nil {
		ev.PeriodEpsilon = *c.PeriodEpsilon
	}
	return ev, nil
}

// BuildPalette builds the configured palette, without the lookup table.
func (c *Config) BuildPalette() (mandel.Palette, error) {
	p := c.Palette
	inSet, err := mandel.ParseHex(p.InSet)
	if err != nil {
		return nil, fmt.Errorf("palette.in_set: %w", err)
	}
	if p.Exponent < 0 {
		return nil, fmt.Errorf("palette.exponent must not be negative")
	}

	switch p.Kind {
	case "gradient", "":
		base, err := mandel.ParseHex(p.Base)
		if err != nil {
			return nil, fmt.Errorf("palette.base: %w", err)
		}
		target, err := mandel.ParseHex(p.Target)
		if err != nil {
			return nil, fmt.Errorf("palette.target: %w", err)
		}
		return mandel.Gradient{Base: base, Target: target, InSet: inSet, Exponent: p.Exponent}, nil
	case "hue":
		if p.Cycles < 0 {
			return nil, fmt.Errorf("palette.cycles must not be negative")
		}
		return mandel.HueCycle{Cycles: p.Cycles, Exponent: p.Exponent, InSet: inSet}, nil
	}
	return nil, fmt.Errorf("unknown palette kind %q", p.Kind)
}

// Job assembles the render job. With palette.table set the palette is
// precomputed here, using the configured worker count.
func (c *Config) Job() (mandel.Job, error) {
	region, err := c.ViewRegion()
	if err != nil {
		return mandel.Job{}, err
	}
	ev, err := c.Evaluator()
	if err != nil {
		return mandel.Job{}, err
	}
	pal, err := c.BuildPalette()
	if err != nil {
		return mandel.Job{}, err
	}
	if c.Palette.Table {
		pal = mandel.NewTable(pal, c.MaxIter, c.Workers)
	}
	depth, err := mandel.ParseDepth(c.Depth)
	if err != nil {
		return mandel.Job{}, err
	}
	return mandel.Job{
		Region:    region,
		Width:     c.Width,
		Height:    c.Height,
		Evaluator: ev,
		Palette:   pal,
		Depth:     depth,
	}, nil
}

// Sampler returns the sampler configured by workers and tile_size.
func (c *Config) Sampler() mandel.Sampler {
	return mandel.Sampler{Workers: c.Workers, TileSize: c.TileSize}
}

// ErrUnknownLevel is returned for an unrecognized log_level.
var ErrUnknownLevel = errors.New("unknown log level")

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w %q", ErrUnknownLevel, c.LogLevel)
	}
	return l, nil
}
