// Package monitoring - http.go serves the operator sidecar.
package monitoring

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Sidecar is the optional HTTP listener exposing /healthz and /metrics.
// It is an operator surface only; the command protocol is unaffected.
type Sidecar struct {
	srv *http.Server
}

// NewSidecar builds the sidecar server bound to addr.
func NewSidecar(addr string) *Sidecar {
	r := chi.NewRouter()
	r.Get("/healthz", handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	return &Sidecar{
		srv: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}
}

// Start serves until Shutdown. Blocks; run it on its own goroutine.
func (s *Sidecar) Start() error {
	log.Info().Str("addr", s.srv.Addr).Msg("monitoring: sidecar listening")
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the sidecar gracefully.
func (s *Sidecar) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}
