package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"beacon/internal/auth"
	"beacon/internal/platform/metrics"
	"beacon/internal/platform/middleware"
	dErrors "beacon/pkg/domain-errors"
	"beacon/pkg/platform/httputil"
	"beacon/pkg/requestcontext"
)

// Service defines the interface for authentication flows.
type Service interface {
	RegisterParent(ctx context.Context, req auth.RegisterRequest) (*auth.TokenResponse, error)
	Login(ctx context.Context, req auth.LoginRequest) (*auth.TokenResponse, error)
	LoginKid(ctx context.Context, req auth.KidLoginRequest) (*auth.TokenResponse, error)
}

// Handler handles the public authentication endpoints.
type Handler struct {
	logger  *slog.Logger
	auth    Service
	metrics *metrics.Metrics
}

// New creates a new auth Handler.
func New(auth Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		logger:  logger,
		auth:    auth,
		metrics: metrics,
	}
}

// Register registers the auth routes with the chi router. These routes are
// unauthenticated but still carry client metadata so kid logins can record
// the pairing device.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(gr chi.Router) {
		gr.Use(middleware.Recovery(h.logger))
		gr.Use(middleware.RequestID)
		gr.Use(middleware.Logger(h.logger))
		gr.Use(middleware.Timeout(30 * time.Second))
		gr.Use(middleware.ContentTypeJSON)
		gr.Use(middleware.ClientMetadata)
		gr.Use(middleware.Latency(h.metrics))
		gr.Post("/auth/register", h.handleRegister)
		gr.Post("/auth/login", h.handleLogin)
		gr.Post("/auth/kid/login", h.handleKidLogin)
	})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req auth.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	resp, err := h.auth.RegisterParent(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "registration failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, resp)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	resp, err := h.auth.Login(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "login failed",
			"request_id", requestcontext.RequestID(ctx),
			"client_ip", requestcontext.ClientIP(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleKidLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req auth.KidLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	resp, err := h.auth.LoginKid(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "kid login failed",
			"request_id", requestcontext.RequestID(ctx),
			"client_ip", requestcontext.ClientIP(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
