// mandel renders one Mandelbrot image and saves it to a file.
// It reads an optional YAML config, applies flag overrides, reports progress
// on stdout and logs to stderr.

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	mandel "github.com/marben/mandelrender"
	"github.com/marben/mandelrender/internal/config"
	"github.com/marben/mandelrender/internal/imagesink"
)

// main is the entry point for the CLI renderer.
func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		}
		os.Exit(1)
	}
}

// run parses args, renders the configured image and saves it.
// Returns an error if the configuration is invalid or the image cannot be saved.
func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("mandel", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to YAML config file (defaults are used when empty)")
	output := fs.String("o", "", "output file, overrides config output")
	width := fs.Int("width", 0, "image width in pixels, overrides config width")
	maxIter := fs.Int("max-iter", 0, "iteration budget, overrides config max_iter")
	region := fs.String("region", "", "named region, overrides config region")
	workers := fs.Int("workers", -1, "worker goroutines (0 = GOMAXPROCS), overrides config workers")
	verbose := fs.Bool("v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// Step 1: Load configuration
	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return err
		}
	}
	if *output != "" {
		cfg.Output = *output
	}
	if *width > 0 {
		cfg.Width = *width
	}
	if *maxIter > 0 {
		cfg.MaxIter = *maxIter
	}
	if *region != "" {
		cfg.Region = *region
		cfg.Bounds = nil
	}
	if *workers >= 0 {
		cfg.Workers = *workers
	}
	if *verbose {
		cfg.LogLevel = "debug"
	}

	// Step 2: Set up logging
	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	mandel.SetLogger(logger)

	// Step 3: Build the job; this rejects degenerate regions before any work starts
	job, err := cfg.Job()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := job.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	w, h := job.Size()
	logger.Info("rendering", "width", w, "height", h, "max_iter", cfg.MaxIter, "mode", job.Evaluator.Mode, "output", cfg.Output)

	// Step 4: Render with a progress monitor on stdout
	var counter mandel.Counter
	monitorDone := mandel.Monitor{
		Interval:  cfg.ProgressInterval,
		Reporters: []mandel.Reporter{mandel.ConsoleReporter(stdout)},
	}.Start(&counter, int64(w*h))

	start := time.Now()
	raster, err := cfg.Sampler().Render(job, &counter)
	if err != nil {
		return err
	}
	<-monitorDone
	logger.Info("rendered", "elapsed", time.Since(start))

	// Step 5: Save the image
	sink := imagesink.FileSink{}
	if err := sink.Save(cfg.Output, raster.Image()); err != nil {
		return fmt.Errorf("save image: %w", err)
	}
	logger.Info("image saved", "path", sink.Path(cfg.Output))
	return nil
}
