// Package config loads and watches the render configuration file (config.yaml).
//
// Config covers the view window (a named region or explicit bounds), raster
// size, iteration budget and mode, periodicity parameters, palette, channel
// depth, worker count, output file and progress interval.
//
// Load(path) reads the YAML file, applies defaults (classic region, 800 px
// wide, 1000 iterations, black→white gradient with white in-set points,
// mandelbrot.png), then validates every field. Job() and Sampler() turn the
// config into values for the renderer.
//
// Watch(ctx, path, onChange) uses fsnotify to detect file changes and calls
// onChange with the newly parsed Config.
package config
