package main

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"sync"
	"time"

	mandel "github.com/marben/mandelrender"
	"github.com/marben/mandelrender/internal/config"
	"github.com/marben/mandelrender/internal/metrics"
)

// subscriberBuffer is the per-subscriber status queue depth. Slow
// subscribers miss statuses rather than stall the monitor.
const subscriberBuffer = 16

var errNoImage = errors.New("no image rendered yet")

// renderScheduler renders one config at a time. Configs submitted while a
// render runs replace each other; only the newest is rendered next.
type renderScheduler struct {
	metrics *metrics.Render
	wake    chan struct{}

	m           sync.Mutex
	pending     *config.Config
	img         image.Image
	generation  int
	last        mandel.Status
	subscribers map[chan mandel.Status]struct{}
	rendered    *sync.Cond
}

func newRenderScheduler(m *metrics.Render) *renderScheduler {
	rs := &renderScheduler{
		metrics:     m,
		wake:        make(chan struct{}, 1),
		subscribers: make(map[chan mandel.Status]struct{}),
	}
	rs.rendered = sync.NewCond(&rs.m)
	return rs
}

var _ mandel.ImgProvider = (*renderScheduler)(nil)

// submit queues cfg for rendering.
func (rs *renderScheduler) submit(cfg *config.Config) {
	rs.m.Lock()
	rs.pending = cfg
	rs.m.Unlock()

	select {
	case rs.wake <- struct{}{}:
	default:
	}
}

// run renders submitted configs until ctx is cancelled. A render in
// progress always runs to completion.
func (rs *renderScheduler) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-rs.wake:
		}

		rs.m.Lock()
		cfg := rs.pending
		rs.pending = nil
		rs.m.Unlock()

		if cfg == nil {
			continue
		}
		if err := rs.render(cfg); err != nil {
			slog.Error("render failed", "err", err)
		}
	}
}

func (rs *renderScheduler) render(cfg *config.Config) error {
	job, err := cfg.Job()
	if err != nil {
		return err
	}
	if err := job.Validate(); err != nil {
		return err
	}
	w, h := job.Size()
	total := int64(w * h)

	var counter mandel.Counter
	rs.metrics.Begin(&counter, total)
	monitorDone := mandel.Monitor{
		Interval:  cfg.ProgressInterval,
		Reporters: []mandel.Reporter{mandel.ReporterFunc(rs.broadcast)},
	}.Start(&counter, total)

	slog.Info("render started", "width", w, "height", h, "max_iter", cfg.MaxIter)
	start := time.Now()
	raster, err := cfg.Sampler().Render(job, &counter)
	if err != nil {
		return err
	}
	<-monitorDone
	elapsed := time.Since(start)
	rs.metrics.End(elapsed)

	rs.m.Lock()
	rs.img = raster.Image()
	rs.generation++
	rs.m.Unlock()
	rs.rendered.Broadcast()

	slog.Info("render finished", "width", w, "height", h, "elapsed", elapsed)
	return nil
}

// GetImage implements mandel.ImgProvider.
func (rs *renderScheduler) GetImage() (image.Image, error) {
	rs.m.Lock()
	defer rs.m.Unlock()
	if rs.img == nil {
		return nil, errNoImage
	}
	return rs.img, nil
}

// waitGeneration blocks until at least n renders have finished.
func (rs *renderScheduler) waitGeneration(n int) {
	rs.m.Lock()
	defer rs.m.Unlock()
	for rs.generation < n {
		rs.rendered.Wait()
	}
}

// broadcast hands a status to every subscriber without blocking. A full
// queue loses its oldest status so the newest, possibly final, one is kept.
func (rs *renderScheduler) broadcast(s mandel.Status) error {
	rs.m.Lock()
	defer rs.m.Unlock()
	rs.last = s
	for ch := range rs.subscribers {
		select {
		case ch <- s:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
	return nil
}

// subscribe registers a status channel. The latest status, if any, is
// queued on it immediately.
func (rs *renderScheduler) subscribe() (<-chan mandel.Status, func()) {
	ch := make(chan mandel.Status, subscriberBuffer)

	rs.m.Lock()
	rs.subscribers[ch] = struct{}{}
	if rs.last.Total > 0 {
		ch <- rs.last
	}
	rs.m.Unlock()

	return ch, func() {
		rs.m.Lock()
		delete(rs.subscribers, ch)
		rs.m.Unlock()
	}
}
