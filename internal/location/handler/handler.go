package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"beacon/internal/location"
	"beacon/internal/platform/metrics"
	"beacon/internal/platform/middleware"
	"beacon/internal/users"
	id "beacon/pkg/domain"
	dErrors "beacon/pkg/domain-errors"
	"beacon/pkg/platform/httputil"
	"beacon/pkg/requestcontext"
)

// Service defines the interface for location operations.
type Service interface {
	Record(ctx context.Context, kidID id.UserID, req location.ReportRequest) (*location.LocationReport, error)
	Latest(ctx context.Context, parentID, kidID id.UserID) (*location.LocationReport, error)
	LatestForGuardian(ctx context.Context, parentID id.UserID) ([]location.KidLatest, error)
}

// Handler handles location endpoints: kid devices write, guardians read.
type Handler struct {
	logger       *slog.Logger
	location     Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a new location Handler.
func New(
	location Service,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		location:     location,
		metrics:      metrics,
		jwtValidator: jwtValidator,
	}
}

// Register registers the location routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(gr chi.Router) {
		gr.Use(middleware.Recovery(h.logger))
		gr.Use(middleware.RequestID)
		gr.Use(middleware.Logger(h.logger))
		gr.Use(middleware.Timeout(30 * time.Second))
		gr.Use(middleware.Latency(h.metrics))
		gr.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

		gr.Group(func(kid chi.Router) {
			kid.Use(middleware.ContentTypeJSON)
			kid.Use(middleware.RequireRole(string(users.RoleKid), h.logger))
			kid.Post("/location", h.handleRecord)
		})
		gr.Group(func(parent chi.Router) {
			parent.Use(middleware.RequireRole(string(users.RoleParent), h.logger))
			parent.Get("/location/my-kids/latest", h.handleLatestForGuardian)
			parent.Get("/location/{kidID}/latest", h.handleLatest)
		})
	})
}

func (h *Handler) handleRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kidID := requestcontext.UserID(ctx)

	var req location.ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	report, err := h.location.Record(ctx, kidID, req)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to record location",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, location.ToResponse(report))
}

func (h *Handler) handleLatestForGuardian(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	parentID := requestcontext.UserID(ctx)

	list, err := h.location.LatestForGuardian(ctx, parentID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load latest locations",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) handleLatest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	parentID := requestcontext.UserID(ctx)

	kidID, err := id.ParseUserID(chi.URLParam(r, "kidID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid kid id"))
		return
	}

	report, err := h.location.Latest(ctx, parentID, kidID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, location.ToResponse(report))
}
