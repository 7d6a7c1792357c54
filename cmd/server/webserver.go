package main

import (
	"context"
	"errors"
	"image/png"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	mandel "github.com/marben/mandelrender"
	"github.com/marben/mandelrender/internal/metrics"
)

// writeTimeout is the deadline for a single websocket write.
const writeTimeout = 10 * time.Second

// webServer creates the preview server:
//
//	/image.png  the last finished image
//	/ws         progress statuses as JSON messages
//	/metrics    Prometheus text exposition
//	/healthz    liveness
func webServer(addr string, rs *renderScheduler, m *metrics.Render) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /image.png", imageHandler(rs))
	mux.HandleFunc("/ws", websocketHandler(rs))
	mux.Handle("GET /metrics", m)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// imageHandler encodes the latest image as PNG.
func imageHandler(p mandel.ImgProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		img, err := p.GetImage()
		if errors.Is(err, errNoImage) {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		if err := png.Encode(w, img); err != nil {
			slog.Warn("image: encode failed", "remote", r.RemoteAddr, "err", err)
		}
	}
}

// websocketHandler streams render statuses to the client until it goes away.
// Messages from the client are ignored.
func websocketHandler(rs *renderScheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"}, // preview server, no credentials behind it
		})
		if err != nil {
			slog.Warn("ws: accept failed", "remote", r.RemoteAddr, "err", err)
			return
		}
		defer c.CloseNow()

		ctx := c.CloseRead(r.Context())
		statuses, unsubscribe := rs.subscribe()
		defer unsubscribe()

		slog.Debug("ws: client connected", "remote", r.RemoteAddr)
		for {
			select {
			case <-ctx.Done():
				return
			case s := <-statuses:
				if err := writeStatus(ctx, c, s); err != nil {
					slog.Debug("ws: client gone", "remote", r.RemoteAddr, "err", err)
					return
				}
			}
		}
	}
}

func writeStatus(ctx context.Context, c *websocket.Conn, s mandel.Status) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, c, s)
}
