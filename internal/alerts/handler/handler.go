package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"beacon/internal/alerts"
	"beacon/internal/platform/metrics"
	"beacon/internal/platform/middleware"
	"beacon/internal/users"
	id "beacon/pkg/domain"
	"beacon/pkg/platform/httputil"
	"beacon/pkg/requestcontext"
)

// Service defines the interface for alert read operations.
type Service interface {
	ListForGuardian(ctx context.Context, parentID id.UserID) ([]alerts.Response, error)
}

// Handler handles the guardian-facing alert endpoints.
type Handler struct {
	logger       *slog.Logger
	alerts       Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a new alerts Handler.
func New(
	alerts Service,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		alerts:       alerts,
		metrics:      metrics,
		jwtValidator: jwtValidator,
	}
}

// Register registers the alert routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(gr chi.Router) {
		gr.Use(middleware.Recovery(h.logger))
		gr.Use(middleware.RequestID)
		gr.Use(middleware.Logger(h.logger))
		gr.Use(middleware.Timeout(30 * time.Second))
		gr.Use(middleware.Latency(h.metrics))
		gr.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		gr.Use(middleware.RequireRole(string(users.RoleParent), h.logger))
		gr.Get("/alerts/my-kids", h.handleList)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	parentID := requestcontext.UserID(ctx)

	list, err := h.alerts.ListForGuardian(ctx, parentID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list alerts",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}
