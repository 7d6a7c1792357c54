// Package metrics exposes render progress in the Prometheus text format.
//
// The renderer keeps no Prometheus registry; Render builds the metric
// families on demand from the live pixel counter and encodes them with
// expfmt.
package metrics

import (
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	mandel "github.com/marben/mandelrender"
)

// Metric names.
const (
	PixelsDone     = "mandel_render_pixels_done"
	PixelsTotal    = "mandel_render_pixels_total"
	RendersTotal   = "mandel_renders_completed_total"
	RenderDuration = "mandel_render_last_duration_seconds"
)

// Render tracks the current and past renders of one process.
type Render struct {
	mu          sync.Mutex
	counter     *mandel.Counter
	total       int64
	completed   int64
	lastSeconds float64
}

// Begin switches the exported progress to a new render.
func (r *Render) Begin(counter *mandel.Counter, total int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counter = counter
	r.total = total
}

// End records a finished render.
func (r *Render) End(elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed++
	r.lastSeconds = elapsed.Seconds()
}

// Families returns the current metric families.
func (r *Render) Families() []*dto.MetricFamily {
	r.mu.Lock()
	var done int64
	if r.counter != nil {
		done = r.counter.Load()
	}
	total, completed, last := r.total, r.completed, r.lastSeconds
	r.mu.Unlock()

	return []*dto.MetricFamily{
		gauge(PixelsDone, "Pixels finished in the current render.", float64(done)),
		gauge(PixelsTotal, "Pixels in the current render.", float64(total)),
		counter(RendersTotal, "Renders completed since start.", float64(completed)),
		gauge(RenderDuration, "Wall time of the last completed render.", last),
	}
}

// WriteText encodes all families in the text exposition format.
func (r *Render) WriteText(w io.Writer) error {
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range r.Families() {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}

// ServeHTTP implements http.Handler for a /metrics endpoint.
func (r *Render) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
	if err := r.WriteText(w); err != nil {
		slog.Warn("metrics: write failed", "err", err)
	}
}

func gauge(name, help string, v float64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name:   &name,
		Help:   &help,
		Type:   dto.MetricType_GAUGE.Enum(),
		Metric: []*dto.Metric{{Gauge: &dto.Gauge{Value: &v}}},
	}
}

func counter(name, help string, v float64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name:   &name,
		Help:   &help,
		Type:   dto.MetricType_COUNTER.Enum(),
		Metric: []*dto.Metric{{Counter: &dto.Counter{Value: &v}}},
	}
}
