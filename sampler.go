package mandel

import (
	"errors"
	"fmt"
	"image"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// ErrInvalidJob is returned by Render for jobs that cannot be sampled.
var ErrInvalidJob = errors.New("invalid job")

// DefaultTileSize is the tile edge used when Sampler.TileSize is zero.
const DefaultTileSize = 64

// Job is everything needed to render one image. It is not modified by the
// sampler.
type Job struct {
	Region    Region
	Width     int
	Height    int // 0 derives the height from Region's aspect ratio
	Evaluator Evaluator
	Palette   Palette
	Depth     Depth
}

// Size returns the raster dimensions, deriving the height when unset.
func (j Job) Size() (w, h int) {
	if j.Height > 0 {
		return j.Width, j.Height
	}
	return j.Width, j.Region.Height(j.Width)
}

// Validate checks the job before any work starts.
func (j Job) Validate() error {
	if err := j.Region.Validate(); err != nil {
		return err
	}
	if j.Width <= 0 {
		return fmt.Errorf("%w: width %d", ErrInvalidJob, j.Width)
	}
	if j.Height < 0 {
		return fmt.Errorf("%w: height %d", ErrInvalidJob, j.Height)
	}
	if j.Evaluator.MaxIter < 1 {
		return fmt.Errorf("%w: max iterations %d", ErrInvalidJob, j.Evaluator.MaxIter)
	}
	if j.Palette == nil {
		return fmt.Errorf("%w: no palette", ErrInvalidJob)
	}
	if t, ok := j.Palette.(*Table); ok && t.Len()-1 != j.Evaluator.MaxIter {
		return fmt.Errorf("%w: palette table built for %d iterations, evaluator uses %d",
			ErrInvalidJob, t.Len()-1, j.Evaluator.MaxIter)
	}
	return nil
}

// Sampler renders jobs on a bounded pool of goroutines. Each worker claims
// whole tiles, so no two workers ever write the same raster cell.
type Sampler struct {
	Workers  int // <= 0 means GOMAXPROCS
	TileSize int // <= 0 means DefaultTileSize
}

// Render computes every pixel of job and returns the raster once all of
// them are written. counter, if not nil, is incremented once per pixel.
func (s Sampler) Render(job Job, counter *Counter) (*Raster, error) {
	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if counter == nil {
		counter = new(Counter)
	}

	w, h := job.Size()
	raster := NewRaster(w, h, job.Depth)

	tileSize := s.TileSize
	if tileSize <= 0 {
		tileSize = DefaultTileSize
	}
	tiles := SplitTiles(raster.Bounds(), tileSize, tileSize)

	workers := s.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, len(tiles))

	log := Logger()
	log.Debug("render started", "width", w, "height", h, "tiles", len(tiles), "workers", workers)
	start := time.Now()

	// next is the index of the first unclaimed tile.
	var next atomic.Int64
	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for {
				i := int(next.Add(1) - 1)
				if i >= len(tiles) {
					return
				}
				renderTile(job, raster, tiles[i], w, h, counter)
			}
		}()
	}
	wg.Wait()

	log.Info("render finished", "width", w, "height", h, "elapsed", time.Since(start))
	return raster, nil
}

// renderTile fills one tile of the raster.
func renderTile(job Job, raster *Raster, tile image.Rectangle, imgW, imgH int, counter *Counter) {
	ev := job.Evaluator
	for py := tile.Min.Y; py < tile.Max.Y; py++ {
		for px := tile.Min.X; px < tile.Max.X; px++ {
			c := job.Region.Point(px, py, imgW, imgH)
			v := ev.Evaluate(c)
			raster.Set(px, py, job.Palette.Color(v, ev.MaxIter))
			counter.Inc()
		}
	}
}

// SplitTiles splits r into tiles of size tileW × tileH.
// Tiles at the right and bottom edges are smaller if r is not divisible.
func SplitTiles(r image.Rectangle, tileW, tileH int) []image.Rectangle {
	if tileW <= 0 || tileH <= 0 {
		panic("tile dimensions must be positive")
	}

	w := r.Dx()
	h := r.Dy()

	var tiles []image.Rectangle

	for oy := 0; oy < h; oy += tileH {
		th := tileH
		if oy+th > h {
			th = h - oy
		}

		for ox := 0; ox < w; ox += tileW {
			tw := tileW
			if ox+tw > w {
				tw = w - ox
			}

			tile := image.Rect(
				r.Min.X+ox,
				r.Min.Y+oy,
				r.Min.X+ox+tw,
				r.Min.Y+oy+th,
			)
			tiles = append(tiles, tile)
		}
	}

	return tiles
}
