// Package httptransport assembles the HTTP surface: the shared middleware
// chain, the versioned API mount, and the operational endpoints.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	ledgerhandler "medfund/internal/ledger/handler"
	"medfund/internal/platform/metrics"
	"medfund/internal/platform/middleware"
	registryhandler "medfund/internal/registry/handler"
	"medfund/internal/stats"
	transparencyhandler "medfund/internal/transparency/handler"
)

// Deps carries everything the router mounts.
type Deps struct {
	Registry     *registryhandler.Handler
	Ledger       *ledgerhandler.Handler
	Transparency *transparencyhandler.Handler
	Stats        *stats.Handler
	Metrics      *metrics.Metrics
	Logger       *slog.Logger
	Health       func() error
}

const requestTimeout = 30 * time.Second

// NewRouter wires all endpoints behind the shared middleware chain.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Timeout(requestTimeout))
	if d.Metrics != nil {
		r.Use(middleware.Latency(d.Metrics))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if d.Health != nil {
			if err := d.Health(); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("unhealthy"))
				return
			}
		}
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		d.Registry.Register(r)
		d.Ledger.Register(r)
		d.Transparency.Register(r)
		d.Stats.Register(r)
	})

	return r
}
