package mandel

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB is a colour with channels in the unit interval.
type RGB struct {
	R, G, B float64
}

var (
	Black = RGB{0, 0, 0}
	White = RGB{1, 1, 1}
)

// ParseHex parses "#rrggbb" or "#rgb".
func ParseHex(s string) (RGB, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return RGB{}, fmt.Errorf("parse colour %q: %w", s, err)
	}
	return fromColorful(c), nil
}

// Hex formats c as "#rrggbb".
func (c RGB) Hex() string {
	return c.colorful().Clamped().Hex()
}

func (c RGB) colorful() colorful.Color {
	return colorful.Color{R: c.R, G: c.G, B: c.B}
}

func fromColorful(c colorful.Color) RGB {
	return RGB{R: c.R, G: c.G, B: c.B}
}

// Palette maps an escape value in [0, maxIter] to a colour. The sentinel
// maxIter (and anything above it) is the in-set colour.
type Palette interface {
	Color(v float64, maxIter int) RGB
}

// ratio normalizes v by maxIter and applies the brightness exponent.
// An exponent <= 0 means linear.
func ratio(v float64, maxIter int, exponent float64) float64 {
	t := v / float64(maxIter)
	t = math.Min(math.Max(t, 0), 1)
	if exponent > 0 && exponent != 1 {
		t = math.Pow(t, exponent)
	}
	return t
}

// Gradient interpolates each channel linearly from Base to Target.
type Gradient struct {
	Base, Target RGB
	InSet        RGB
	Exponent     float64
}

// Color implements Palette.
func (g Gradient) Color(v float64, maxIter int) RGB {
	if v >= float64(maxIter) {
		return g.InSet
	}
	t := ratio(v, maxIter, g.Exponent)
	return fromColorful(g.Base.colorful().BlendRgb(g.Target.colorful(), t))
}

// HueCycle walks the hue circle Cycles times across the iteration range at
// full saturation and value. Hues wrap modulo 360.
type HueCycle struct {
	Cycles   float64
	Exponent float64
	InSet    RGB
}

// Color implements Palette.
func (h HueCycle) Color(v float64, maxIter int) RGB {
	if v >= float64(maxIter) {
		return h.InSet
	}
	cycles := h.Cycles
	if cycles <= 0 {
		cycles = 1
	}
	t := ratio(v, maxIter, h.Exponent)
	hue := math.Mod(360*t*cycles, 360)
	return fromColorful(colorful.Hsv(hue, 1, 1))
}
