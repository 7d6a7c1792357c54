package mandel

import (
	"fmt"
	"image"
	"image/color"
)

// Depth is the channel depth of a Raster.
type Depth int

const (
	Depth8 Depth = iota
	Depth16
	DepthFloat
)

func (d Depth) String() string {
	switch d {
	case Depth8:
		return "8"
	case Depth16:
		return "16"
	case DepthFloat:
		return "float"
	}
	return fmt.Sprintf("Depth(%d)", int(d))
}

// ParseDepth accepts "8", "16" and "float".
func ParseDepth(s string) (Depth, error) {
	switch s {
	case "8", "":
		return Depth8, nil
	case "16":
		return Depth16, nil
	case "float":
		return DepthFloat, nil
	}
	return 0, fmt.Errorf("unknown depth %q", s)
}

// Quantization from the unit interval truncates, it does not round:
// 0.999 becomes 254 at 8 bits.
func unit8(v float64) uint8 {
	return uint8(clampUnit(v) * 0xff)
}

func unit16(v float64) uint16 {
	return uint16(clampUnit(v) * 0xffff)
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Raster is a width × height grid of opaque colours stored row-major at a
// fixed depth. Distinct cells may be written concurrently; a cell is
// written once.
type Raster struct {
	w, h  int
	depth Depth

	rgba   *image.RGBA
	rgba64 *image.RGBA64
	float  []float32 // 3 channels per pixel
}

// NewRaster allocates an empty raster.
func NewRaster(w, h int, depth Depth) *Raster {
	r := &Raster{w: w, h: h, depth: depth}
	rect := image.Rect(0, 0, w, h)
	switch depth {
	case Depth16:
		r.rgba64 = image.NewRGBA64(rect)
	case DepthFloat:
		r.float = make([]float32, 3*w*h)
	default:
		r.depth = Depth8
		r.rgba = image.NewRGBA(rect)
	}
	return r
}

// Bounds returns the raster rectangle with origin (0,0).
func (r *Raster) Bounds() image.Rectangle { return image.Rect(0, 0, r.w, r.h) }

// Depth returns the channel depth.
func (r *Raster) Depth() Depth { return r.depth }

// Set writes the cell at (x, y).
func (r *Raster) Set(x, y int, c RGB) {
	switch r.depth {
	case Depth8:
		i := r.rgba.PixOffset(x, y)
		p := r.rgba.Pix[i : i+4 : i+4]
		p[0], p[1], p[2], p[3] = unit8(c.R), unit8(c.G), unit8(c.B), 0xff
	case Depth16:
		r.rgba64.SetRGBA64(x, y, color.RGBA64{R: unit16(c.R), G: unit16(c.G), B: unit16(c.B), A: 0xffff})
	case DepthFloat:
		i := 3 * (y*r.w + x)
		r.float[i], r.float[i+1], r.float[i+2] = float32(c.R), float32(c.G), float32(c.B)
	}
}

// At returns the stored colour of (x, y) as unit floats.
func (r *Raster) At(x, y int) RGB {
	switch r.depth {
	case Depth16:
		c := r.rgba64.RGBA64At(x, y)
		return RGB{float64(c.R) / 0xffff, float64(c.G) / 0xffff, float64(c.B) / 0xffff}
	case DepthFloat:
		i := 3 * (y*r.w + x)
		return RGB{float64(r.float[i]), float64(r.float[i+1]), float64(r.float[i+2])}
	}
	c := r.rgba.RGBAAt(x, y)
	return RGB{float64(c.R) / 0xff, float64(c.G) / 0xff, float64(c.B) / 0xff}
}

// Float returns the float channels (R, G, B per pixel, row-major), or nil
// unless the depth is DepthFloat.
func (r *Raster) Float() []float32 { return r.float }

// Bytes returns the raw storage for comparing rasters: RGBA bytes, RGBA64
// big-endian bytes, or nil for float rasters.
func (r *Raster) Bytes() []byte {
	switch r.depth {
	case Depth8:
		return r.rgba.Pix
	case Depth16:
		return r.rgba64.Pix
	}
	return nil
}

// Image returns the raster for encoding: *image.RGBA at 8 bits,
// *image.RGBA64 at 16 bits. Float rasters are truncated to 16 bits into a
// new *image.RGBA64.
func (r *Raster) Image() image.Image {
	switch r.depth {
	case Depth8:
		return r.rgba
	case Depth16:
		return r.rgba64
	}
	img := image.NewRGBA64(r.Bounds())
	for y := 0; y < r.h; y++ {
		for x := 0; x < r.w; x++ {
			img.SetRGBA64(x, y, color.RGBA64{
				R: unit16(float64(r.float[3*(y*r.w+x)])),
				G: unit16(float64(r.float[3*(y*r.w+x)+1])),
				B: unit16(float64(r.float[3*(y*r.w+x)+2])),
				A: 0xffff,
			})
		}
	}
	return img
}
