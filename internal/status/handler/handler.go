package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"beacon/internal/platform/metrics"
	"beacon/internal/platform/middleware"
	"beacon/internal/status"
	"beacon/internal/users"
	id "beacon/pkg/domain"
	"beacon/pkg/platform/httputil"
	"beacon/pkg/requestcontext"
)

// Service defines the interface for safety status operations.
type Service interface {
	MarkSafe(ctx context.Context, kidID id.UserID) (*status.SafetyStatus, error)
	ListForGuardian(ctx context.Context, parentID id.UserID) ([]status.Response, error)
}

// Handler handles the safety status endpoints.
type Handler struct {
	logger       *slog.Logger
	statuses     Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a new status Handler.
func New(
	statuses Service,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		statuses:     statuses,
		metrics:      metrics,
		jwtValidator: jwtValidator,
	}
}

// Register registers the status routes with the chi router. Marking safe is
// kid-only; the dashboard read is parent-only.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(gr chi.Router) {
		gr.Use(middleware.Recovery(h.logger))
		gr.Use(middleware.RequestID)
		gr.Use(middleware.Logger(h.logger))
		gr.Use(middleware.Timeout(30 * time.Second))
		gr.Use(middleware.Latency(h.metrics))
		gr.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

		gr.Group(func(kid chi.Router) {
			kid.Use(middleware.RequireRole(string(users.RoleKid), h.logger))
			kid.Post("/status/safe", h.handleMarkSafe)
		})
		gr.Group(func(parent chi.Router) {
			parent.Use(middleware.RequireRole(string(users.RoleParent), h.logger))
			parent.Get("/status/my-kids", h.handleList)
		})
	})
}

func (h *Handler) handleMarkSafe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kidID := requestcontext.UserID(ctx)

	result, err := h.statuses.MarkSafe(ctx, kidID)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to mark safe",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, status.ToResponse(result))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	parentID := requestcontext.UserID(ctx)

	list, err := h.statuses.ListForGuardian(ctx, parentID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list safety statuses",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}
