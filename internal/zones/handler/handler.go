package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"beacon/internal/platform/metrics"
	"beacon/internal/platform/middleware"
	"beacon/internal/users"
	"beacon/internal/zones"
	id "beacon/pkg/domain"
	dErrors "beacon/pkg/domain-errors"
	"beacon/pkg/platform/httputil"
	"beacon/pkg/requestcontext"
)

// Service defines the interface for zone management operations.
type Service interface {
	Create(ctx context.Context, parentID id.UserID, req zones.CreateRequest) (*zones.SafeZone, error)
	ListForGuardian(ctx context.Context, parentID id.UserID) ([]*zones.SafeZone, error)
	Remove(ctx context.Context, zoneID id.ZoneID, parentID id.UserID) error
}

// Handler handles safe zone endpoints. All routes are parent-only.
type Handler struct {
	logger       *slog.Logger
	zones        Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a new zones Handler.
func New(
	zones Service,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		zones:        zones,
		metrics:      metrics,
		jwtValidator: jwtValidator,
	}
}

// Register registers the zone routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(gr chi.Router) {
		gr.Use(middleware.Recovery(h.logger))
		gr.Use(middleware.RequestID)
		gr.Use(middleware.Logger(h.logger))
		gr.Use(middleware.Timeout(30 * time.Second))
		gr.Use(middleware.ContentTypeJSON)
		gr.Use(middleware.Latency(h.metrics))
		gr.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		gr.Use(middleware.RequireRole(string(users.RoleParent), h.logger))
		gr.Post("/zones", h.handleCreate)
		gr.Get("/zones", h.handleList)
		gr.Delete("/zones/{id}", h.handleDelete)
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	parentID := requestcontext.UserID(ctx)

	var req zones.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	zone, err := h.zones.Create(ctx, parentID, req)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to create zone",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, zones.ToResponse(zone))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	parentID := requestcontext.UserID(ctx)

	list, err := h.zones.ListForGuardian(ctx, parentID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list zones",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	resp := make([]zones.Response, 0, len(list))
	for _, zone := range list {
		resp = append(resp, zones.ToResponse(zone))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	parentID := requestcontext.UserID(ctx)

	zoneID, err := id.ParseZoneID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid zone id"))
		return
	}

	if err := h.zones.Remove(ctx, zoneID, parentID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
