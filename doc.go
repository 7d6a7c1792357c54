// Package mandel renders the Mandelbrot set into a raster.
//
// A Job names a Region of the complex plane, a raster width, an Evaluator
// and a Palette. Sampler.Render maps every pixel to a point c, iterates
// z = z*z + c until |z| > 2 or the iteration budget runs out, colours the
// result and stores it. Pixels are independent; the raster is cut into
// tiles which a fixed number of goroutines claim one at a time, so the
// output never depends on scheduling.
//
// Progress is counted per pixel on a Counter, which a Monitor polls from its
// own goroutine and forwards to Reporters such as ConsoleReporter.
package mandel
