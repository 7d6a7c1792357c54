package mandel

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrDegenerateRegion is returned when an axis of a Region has no usable range.
var ErrDegenerateRegion = errors.New("degenerate region")

// Axis is one side of the view window in the complex plane.
type Axis struct {
	Min, Max float64
}

// Range returns Max - Min.
func (a Axis) Range() float64 {
	return a.Max - a.Min
}

// Map converts a normalized coordinate t in [0,1] to a value on the axis.
// The result is undefined for an axis with zero range; validate first.
func (a Axis) Map(t float64) float64 {
	return a.Min + t*a.Range()
}

func (a Axis) validate(name string) error {
	r := a.Range()
	if math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
		return fmt.Errorf("%w: %s axis [%g, %g]", ErrDegenerateRegion, name, a.Min, a.Max)
	}
	return nil
}

// Region within the Mandelbrot set
type Region struct {
	Xmin, Xmax float64
	Ymin, Ymax float64
}

// X returns the real axis.
func (r Region) X() Axis { return Axis{Min: r.Xmin, Max: r.Xmax} }

// Y returns the imaginary axis.
func (r Region) Y() Axis { return Axis{Min: r.Ymin, Max: r.Ymax} }

// Validate rejects regions the mapper cannot work with.
func (r Region) Validate() error {
	if err := r.X().validate("x"); err != nil {
		return err
	}
	return r.Y().validate("y")
}

// Aspect is the width/height ratio implied by the axis ranges.
func (r Region) Aspect() float64 {
	return r.X().Range() / r.Y().Range()
}

// Height returns the raster height matching width for this region's aspect
// ratio. It is never less than 1.
func (r Region) Height(width int) int {
	h := int(math.Round(float64(width) / r.Aspect()))
	return max(h, 1)
}

// Point maps pixel (px, py) of an imgW × imgH raster to its complex value.
// Row 0 maps to Ymin.
func (r Region) Point(px, py, imgW, imgH int) complex128 {
	xf := r.X().Map(float64(px) / float64(imgW))
	yf := r.Y().Map(float64(py) / float64(imgH))
	return complex(xf, yf)
}

// Classic regions / landmarks in the Mandelbrot set
var (
	// Classic - the whole set, main cardioid centred slightly right of the image centre
	Classic = Region{
		Xmin: -2.0,
		Xmax: 1.0,
		Ymin: -1.0,
		Ymax: 1.0,
	}

	// Seahorse Valley: dense filaments and repeating seahorse curls
	SeahorseValley = Region{
		Xmin: -0.8,
		Xmax: -0.7,
		Ymin: 0.05,
		Ymax: 0.15,
	}

	// Elephant Valley: large bulb with trunk-like tendrils
	ElephantValley = Region{
		Xmin: -1.85,
		Xmax: -1.75,
		Ymin: -0.10,
		Ymax: -0.02,
	}

	// Spiral Minibrot: small Mandelbrot copy with tight spiral arms
	SpiralMinibrot = Region{
		Xmin: -0.7435,
		Xmax: -0.7420,
		Ymin: 0.1310,
		Ymax: 0.1325,
	}

	// Triple Spiral: threefold symmetric spiral structure
	TripleSpiral = Region{
		Xmin: -0.7480,
		Xmax: -0.7450,
		Ymin: 0.0950,
		Ymax: 0.0980,
	}

	// Valley of the Dragon: deep, highly detailed spiral filaments
	ValleyOfTheDragon = Region{
		Xmin: -0.7400,
		Xmax: -0.7350,
		Ymin: 0.1800,
		Ymax: 0.1850,
	}

	// Minibrot in a Mini-Spiral: self-similar Mandelbrot copy inside a spiral arm
	MinibrotInMiniSpiral = Region{
		Xmin: -1.7390,
		Xmax: -1.7375,
		Ymin: -0.0235,
		Ymax: -0.0220,
	}
)

var regionsByName = map[string]Region{
	"classic":                 Classic,
	"seahorse-valley":         SeahorseValley,
	"elephant-valley":         ElephantValley,
	"spiral-minibrot":         SpiralMinibrot,
	"triple-spiral":           TripleSpiral,
	"valley-of-the-dragon":    ValleyOfTheDragon,
	"minibrot-in-mini-spiral": MinibrotInMiniSpiral,
}

// LookupRegion returns the named landmark region.
func LookupRegion(name string) (Region, bool) {
	r, ok := regionsByName[name]
	return r, ok
}

// RegionNames lists the names accepted by LookupRegion, sorted.
func RegionNames() []string {
	names := make([]string, 0, len(regionsByName))
	for n := range regionsByName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
