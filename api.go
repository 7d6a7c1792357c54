package mandel

import (
	"image"
)

// ImgProvider hands out the most recently finished image.
type ImgProvider interface {
	GetImage() (image.Image, error)
}

// Renderer turns a Job into a fully populated Raster, counting finished
// pixels on counter.
type Renderer interface {
	Render(job Job, counter *Counter) (*Raster, error)
}

var _ Renderer = Sampler{}
