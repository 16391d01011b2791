// Package httptransport is the thin HTTP layer. Handlers delegate to the
// services without embedding business logic so transport concerns stay
// isolated.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tahsin/salamilink/internal/auth"
	"github.com/tahsin/salamilink/internal/metrics"
	"github.com/tahsin/salamilink/internal/middleware"
	"github.com/tahsin/salamilink/internal/service"
	"github.com/tahsin/salamilink/internal/sharelink"
	"github.com/tahsin/salamilink/internal/storage"
)

// Handler bundles the dependencies the HTTP handlers need.
type Handler struct {
	invoices   *service.InvoiceService
	identities *service.IdentityService
	store      storage.Store
	links      *sharelink.Builder
	logger     *slog.Logger
}

// NewHandler creates the HTTP handler set.
func NewHandler(invoices *service.InvoiceService, identities *service.IdentityService, store storage.Store, links *sharelink.Builder, logger *slog.Logger) *Handler {
	return &Handler{
		invoices:   invoices,
		identities: identities,
		store:      store,
		links:      links,
		logger:     logger,
	}
}

// NewRouter wires all endpoints with the middleware stack.
func NewRouter(h *Handler, jwtManager *auth.JWTManager, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(m))

	r.Route("/api", func(r chi.Router) {
		// Invoice lifecycle. Creation attributes ownership when a session
		// resolves; reads and the paid transition are public by design (a
		// payment request, not a private document).
		r.With(middleware.OptionalIdentity(jwtManager)).Post("/invoices", h.handleCreateInvoice)
		r.Get("/invoices/{id}", h.handleGetInvoice)
		r.Post("/invoices/{id}/paid", h.handleMarkPaid)

		// Dashboard requires a session; the handler additionally rejects
		// anonymous identities.
		r.With(middleware.RequireIdentity(jwtManager)).Get("/dashboard", h.handleDashboard)

		// Identity bootstrap and sign-in.
		r.With(middleware.OptionalIdentity(jwtManager)).Group(func(r chi.Router) {
			r.Get("/session", h.handleGetSession)
			r.Post("/session/anonymous", h.handleCreateAnonymous)
			r.Post("/session/register", h.handleRegister)
			r.Post("/session/login", h.handleLogin)
		})
	})

	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

// handleHealth reports liveness and store reachability.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Error("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
