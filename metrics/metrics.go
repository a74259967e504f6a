// Package metrics exposes the mint's operation counters and a Prometheus
// text-format metrics server.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/VictoriaMetrics/metrics"
)

// Counters for the mint's signing and redemption paths. They are
// process-global: the mint holds a single keyset per process.
var (
	SignaturesIssued      = metrics.NewCounter("ecash_signatures_issued_total")
	SwapsCompleted        = metrics.NewCounter("ecash_swaps_completed_total")
	NotesRedeemed         = metrics.NewCounter("ecash_notes_redeemed_total")
	DoubleSpendRejections = metrics.NewCounter("ecash_double_spend_rejections_total")
	ValidationFailures    = metrics.NewCounter("ecash_validation_failures_total")
)

// MetricsServer serves the process metrics on a dedicated address.
type MetricsServer struct {
	srv *http.Server
}

// New creates a metrics server for the given service name and address.
// An empty address is allowed; the caller decides whether to start it.
func New(name, addr string) (*MetricsServer, error) {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w, true)
	})

	return &MetricsServer{
		srv: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}, nil
}

// ListenAndServe starts serving metrics and blocks until shutdown.
func (m *MetricsServer) ListenAndServe() error {
	return m.srv.ListenAndServe()
}

// Shutdown gracefully stops the metrics server.
func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}
