package handler

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beacon/internal/alerts"
	"beacon/internal/platform/metrics"
	"beacon/internal/platform/middleware"
	"beacon/internal/users"
	id "beacon/pkg/domain"
	"beacon/pkg/testutil"
)

type stubValidator struct{}

func (stubValidator) ValidateToken(token string) (*middleware.JWTClaims, error) {
	role, rawID, ok := strings.Cut(token, ":")
	if !ok {
		return nil, errors.New("malformed token")
	}
	userID, err := id.ParseUserID(rawID)
	if err != nil {
		return nil, err
	}
	return &middleware.JWTClaims{UserID: userID, Role: role}, nil
}

func TestListAlerts(t *testing.T) {
	userSvc := users.New(users.NewInMemoryStore())
	svc := alerts.New(alerts.NewInMemoryStore(), userSvc)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	h := New(svc, logger, metrics.NewWith(prometheus.NewRegistry()), stubValidator{})
	router := chi.NewRouter()
	h.Register(router)

	parent, err := userSvc.CreateParent(t.Context(), "Saidova Nargiza", "+998935550000", "hash")
	require.NoError(t, err)
	kid, err := userSvc.CreateKid(t.Context(), parent.ID, "Saidov Ulugbek")
	require.NoError(t, err)
	_, err = svc.Emit(t.Context(), kid.ID, "Saidov Ulugbek left all safe zones")
	require.NoError(t, err)

	t.Run("parent sees alerts for own kids", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/alerts/my-kids")
		req.Header.Set("Authorization", "Bearer "+string(users.RoleParent)+":"+parent.ID.String())
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusOK(t, rr)

		list := testutil.UnmarshalResponse[[]alerts.Response](t, rr)
		require.Len(t, *list, 1)
		assert.Equal(t, kid.ID.String(), (*list)[0].KidID)
		assert.Equal(t, "Saidov Ulugbek", (*list)[0].KidName)
	})

	t.Run("kids cannot read the alert feed", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/alerts/my-kids")
		req.Header.Set("Authorization", "Bearer "+string(users.RoleKid)+":"+kid.ID.String())
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusForbidden)
	})
}
