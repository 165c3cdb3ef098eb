package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tickethub/internal/guard"
	"tickethub/internal/platform/health"
	"tickethub/internal/platform/metrics"
	"tickethub/internal/platform/middleware"
	"tickethub/internal/ticketing/models"
	"tickethub/internal/ticketing/payment"
	"tickethub/pkg/validation"
)

// RouterConfig carries the cross-cutting pieces the router wires around the
// page handler. Nil fields are skipped.
type RouterConfig struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	Health         *health.Handler
	ClientIP       *middleware.ClientIP
	VerifyLimiter  *middleware.RateLimiter
	AdminToken     string
	RequestTimeout time.Duration
}

// NewRouter wires all served routes with middleware.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if cfg.ClientIP != nil {
		r.Use(cfg.ClientIP.Handler)
	}
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger, cfg.Metrics))
	r.Use(middleware.SecurityHeaders)

	if cfg.Health != nil {
		cfg.Health.Register(r)
	}
	if cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.BodyLimit(validation.MaxFormBodySize))
		r.Use(middleware.Timeout(timeout))
		r.Use(h.sessions.Middleware)
		r.Use(h.sessions.RequireCSRF)

		r.Get("/", h.HandleVerifyPage(models.RoleOfficer))
		r.Get("/validate-user", h.HandleVerifyPage(models.RoleCitizen))
		r.Group(func(r chi.Router) {
			if cfg.VerifyLimiter != nil {
				r.Use(cfg.VerifyLimiter.Limit)
			}
			r.Post("/", h.HandleVerifySubmit(models.RoleOfficer))
			r.Post("/validate-user", h.HandleVerifySubmit(models.RoleCitizen))
			r.Post("/ticket/verify", h.HandleTicketReverify)
		})

		r.Get("/ticket", h.HandleTicketPage)
		r.Post("/ticket", h.HandleTicketSubmit)
		r.Post("/ticket/select", h.HandleTicketSelect)
		r.Post("/ticket/reverify", h.HandleTicketReverifyToggle)

		r.Route(payment.Route, func(r chi.Router) {
			r.Use(guard.Require(models.RoleCitizen, payment.EntryRoute, logger))
			r.Get("/", h.HandlePendingPage)
			r.Post("/refresh", h.HandlePendingRefresh)
			r.Post("/{ticketID}/method", h.HandleSelectMethod)
			r.Post("/{ticketID}/pay", h.HandlePay)
		})

		r.Post("/sign-out/{role}", h.HandleSignOut)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdminToken(cfg.AdminToken, logger))
			r.Get("/admin", h.HandleAdminPage)
		})
	})

	return r
}
