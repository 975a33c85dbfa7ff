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

	"beacon/internal/platform/metrics"
	"beacon/internal/platform/middleware"
	"beacon/internal/users"
	"beacon/internal/zones"
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

func parentToken(parentID id.UserID) string {
	return string(users.RoleParent) + ":" + parentID.String()
}

func newZoneRouter(t *testing.T) http.Handler {
	t.Helper()
	svc := zones.New(zones.NewInMemoryStore())
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	h := New(svc, logger, metrics.NewWith(prometheus.NewRegistry()), stubValidator{})
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func TestZoneLifecycle(t *testing.T) {
	router := newZoneRouter(t)
	parentID := id.NewUserID()
	strangerID := id.NewUserID()

	create := testutil.NewJSONRequest(t, http.MethodPost, "/zones", zones.CreateRequest{
		Name: "Home", Latitude: 41.311081, Longitude: 69.279716, RadiusMeters: 200,
	})
	create.Header.Set("Authorization", "Bearer "+parentToken(parentID))
	rr := testutil.DoRequest(router, create)
	testutil.AssertStatus(t, rr, http.StatusCreated)

	created := testutil.UnmarshalResponse[zones.Response](t, rr)
	assert.Equal(t, "Home", created.Name)
	require.NotEmpty(t, created.ID)

	t.Run("owner sees the zone", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/zones")
		req.Header.Set("Authorization", "Bearer "+parentToken(parentID))
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusOK(t, rr)

		list := testutil.UnmarshalResponse[[]zones.Response](t, rr)
		require.Len(t, *list, 1)
	})

	t.Run("stranger cannot delete it", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodDelete, "/zones/"+created.ID)
		req.Header.Set("Authorization", "Bearer "+parentToken(strangerID))
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusNotFound)
	})

	t.Run("owner deletes it", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodDelete, "/zones/"+created.ID)
		req.Header.Set("Authorization", "Bearer "+parentToken(parentID))
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusNoContent)
	})
}

func TestZoneValidationAndAccess(t *testing.T) {
	router := newZoneRouter(t)
	parentID := id.NewUserID()
	kidID := id.NewUserID()

	t.Run("radius out of bounds", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/zones", zones.CreateRequest{
			Name: "Tiny", Latitude: 41.3, Longitude: 69.2, RadiusMeters: 5,
		})
		req.Header.Set("Authorization", "Bearer "+parentToken(parentID))
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
	})

	t.Run("kids cannot manage zones", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/zones")
		req.Header.Set("Authorization", "Bearer "+string(users.RoleKid)+":"+kidID.String())
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusForbidden)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/zones")
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})

	t.Run("invalid zone id", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodDelete, "/zones/not-a-uuid")
		req.Header.Set("Authorization", "Bearer "+parentToken(parentID))
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})
}
