// Package httpserver provides the reusable HTTP server shell for the mint
// service: routing, health endpoints, request logging, metrics, and
// graceful shutdown.
//
// Components expose their endpoints through the RouteRegistrar interface
// and get a consistent operational surface in return:
//
//   - Liveness check (/livez) and readiness check (/readyz)
//   - Drain control for load balancers (/drain, /undrain)
//   - Structured request logging via log/slog
//   - Optional Prometheus-compatible metrics endpoint
//   - Optional pprof debugging endpoints
//
// Usage:
//
//	func (h *Handler) RegisterRoutes(r chi.Router) {
//	    r.Get("/keys", h.keys)
//	    r.Post("/swap", h.swap)
//	}
//
//	srv, _ := httpserver.New(cfg, handler)
//	srv.RunInBackground()
//	defer srv.Shutdown()
package httpserver
