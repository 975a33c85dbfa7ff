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
	id "beacon/pkg/domain"
	dErrors "beacon/pkg/domain-errors"
	"beacon/pkg/platform/httputil"
	"beacon/pkg/requestcontext"
)

// Service defines the interface for user directory operations.
type Service interface {
	CreateKid(ctx context.Context, parentID id.UserID, fullName string) (*users.User, error)
	Kids(ctx context.Context, parentID id.UserID) ([]*users.User, error)
	FindByID(ctx context.Context, userID id.UserID) (*users.User, error)
}

// Handler handles user directory endpoints.
type Handler struct {
	logger       *slog.Logger
	users        Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a new users Handler.
func New(
	users Service,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		users:        users,
		metrics:      metrics,
		jwtValidator: jwtValidator,
	}
}

// Register registers the user routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(gr chi.Router) {
		gr.Use(middleware.Recovery(h.logger))
		gr.Use(middleware.RequestID)
		gr.Use(middleware.Logger(h.logger))
		gr.Use(middleware.Timeout(30 * time.Second))
		gr.Use(middleware.ContentTypeJSON)
		gr.Use(middleware.Latency(h.metrics))
		gr.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

		gr.Group(func(parent chi.Router) {
			parent.Use(middleware.RequireRole(string(users.RoleParent), h.logger))
			parent.Post("/users", h.handleCreateKid)
			parent.Get("/users/me/kids", h.handleListKids)
		})
		gr.Get("/users/{id}", h.handleGetUser)
	})
}

type createKidRequest struct {
	FullName string `json:"full_name"`
}

// handleCreateKid registers a kid under the authenticated parent and returns
// the one-time setup token its device will pair with.
func (h *Handler) handleCreateKid(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	parentID := requestcontext.UserID(ctx)

	var req createKidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid create kid request",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	kid, err := h.users.CreateKid(ctx, parentID, req.FullName)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to create kid",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	resp := users.KidCreatedResponse{Response: users.ToResponse(kid)}
	if kid.SetupToken != nil {
		resp.SetupToken = *kid.SetupToken
	}
	httputil.WriteJSON(w, http.StatusCreated, resp)
}

// handleListKids lists the kids registered under the authenticated parent.
func (h *Handler) handleListKids(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	parentID := requestcontext.UserID(ctx)

	kids, err := h.users.Kids(ctx, parentID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list kids",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	resp := make([]users.Response, 0, len(kids))
	for _, kid := range kids {
		resp = append(resp, users.ToResponse(kid))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// handleGetUser returns a single user. Parents may look up themselves and
// their own kids; kids may only look up themselves.
func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := requestcontext.UserID(ctx)

	userID, err := id.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid user id"))
		return
	}

	user, err := h.users.FindByID(ctx, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if !h.canView(callerID, user) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "user not found"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, users.ToResponse(user))
}

// canView hides other families' users behind a not-found rather than a
// forbidden, so IDs cannot be probed.
func (h *Handler) canView(callerID id.UserID, user *users.User) bool {
	if user.ID == callerID {
		return true
	}
	return user.ParentID != nil && *user.ParentID == callerID
}
