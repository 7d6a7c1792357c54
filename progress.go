package mandel

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"
)

// Counter counts finished pixels. It is advisory: readers may see it lag
// behind the work, and nothing else is synchronized through it.
type Counter struct {
	n atomic.Int64
}

// Inc records one finished pixel.
func (c *Counter) Inc() { c.n.Add(1) }

// Load returns the current count.
func (c *Counter) Load() int64 { return c.n.Load() }

// Status is one progress observation.
type Status struct {
	Done    int64   `json:"done"`
	Total   int64   `json:"total"`
	Percent float64 `json:"percent"`
	Final   bool    `json:"final"`
}

// Reporter receives progress observations. Errors are logged and otherwise
// ignored.
type Reporter interface {
	Report(Status) error
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Status) error

// Report implements Reporter.
func (f ReporterFunc) Report(s Status) error { return f(s) }

// DefaultProgressInterval is the wake interval used when Monitor.Interval is zero.
const DefaultProgressInterval = time.Second

// Monitor polls a Counter on a fixed interval and hands the observation to
// its reporters until the counter reaches the total.
type Monitor struct {
	Interval  time.Duration
	Reporters []Reporter
}

// Start launches the monitor goroutine and returns a channel closed after
// the final status has been reported.
func (m Monitor) Start(c *Counter, total int64) <-chan struct{} {
	done := make(chan struct{})
	interval := m.Interval
	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			s := status(c.Load(), total)
			m.report(s)
			if s.Final {
				return
			}
		}
	}()
	return done
}

func (m Monitor) report(s Status) {
	for _, r := range m.Reporters {
		if err := r.Report(s); err != nil {
			Logger().Warn("progress report failed", "err", err)
		}
	}
}

func status(done, total int64) Status {
	s := Status{Done: done, Total: total, Final: done >= total}
	if total > 0 {
		s.Percent = float64(done) / float64(total) * 100
	} else {
		s.Percent = 100
	}
	return s
}

// ConsoleReporter writes one line per status to w, each overwriting the
// previous one with a carriage return. The final line ends with a newline.
func ConsoleReporter(w io.Writer) Reporter {
	return ReporterFunc(func(s Status) error {
		end := ""
		if s.Final {
			end = "\n"
		}
		_, err := fmt.Fprintf(w, "\rrendering: %6.2f%% (%d/%d pixels)%s", s.Percent, s.Done, s.Total, end)
		return err
	})
}
