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
	"beacon/internal/location"
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

type env struct {
	router   http.Handler
	userSvc  *users.Service
	zoneSvc  *zones.Service
	alertSvc *alerts.Service
	parent   *users.User
	kid      *users.User
}

func newEnv(t *testing.T) *env {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	userSvc := users.New(users.NewInMemoryStore())
	zoneSvc := zones.New(zones.NewInMemoryStore())
	alertSvc := alerts.New(alerts.NewInMemoryStore(), userSvc)
	svc := location.New(location.NewInMemoryStore(), userSvc, zoneSvc, alertSvc)

	h := New(svc, logger, metrics.NewWith(prometheus.NewRegistry()), stubValidator{})
	router := chi.NewRouter()
	h.Register(router)

	parent, err := userSvc.CreateParent(t.Context(), "Qodirova Sevara", "+998935556677", "hash")
	require.NoError(t, err)
	kid, err := userSvc.CreateKid(t.Context(), parent.ID, "Qodirov Amir")
	require.NoError(t, err)

	return &env{
		router:   router,
		userSvc:  userSvc,
		zoneSvc:  zoneSvc,
		alertSvc: alertSvc,
		parent:   parent,
		kid:      kid,
	}
}

func (e *env) kidToken() string    { return string(users.RoleKid) + ":" + e.kid.ID.String() }
func (e *env) parentToken() string { return string(users.RoleParent) + ":" + e.parent.ID.String() }

func TestRecordEndpoint(t *testing.T) {
	e := newEnv(t)

	_, err := e.zoneSvc.Create(t.Context(), e.parent.ID, zones.CreateRequest{
		Name: "Home", Latitude: 41.311081, Longitude: 69.279716, RadiusMeters: 200,
	})
	require.NoError(t, err)

	t.Run("kid posts a location", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/location", location.ReportRequest{
			Latitude: 41.311081, Longitude: 69.279716,
		})
		req.Header.Set("Authorization", "Bearer "+e.kidToken())
		rr := testutil.DoRequest(e.router, req)
		testutil.AssertStatus(t, rr, http.StatusCreated)

		resp := testutil.UnmarshalResponse[location.Response](t, rr)
		assert.Equal(t, e.kid.ID.String(), resp.KidID)
	})

	t.Run("out-of-zone report raises an alert", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/location", location.ReportRequest{
			Latitude: 41.40, Longitude: 69.40,
		})
		req.Header.Set("Authorization", "Bearer "+e.kidToken())
		rr := testutil.DoRequest(e.router, req)
		testutil.AssertStatus(t, rr, http.StatusCreated)

		raised, err := e.alertSvc.ListForGuardian(t.Context(), e.parent.ID)
		require.NoError(t, err)
		require.Len(t, raised, 1)
		assert.Contains(t, raised[0].Message, "Qodirov Amir")
	})

	t.Run("parents cannot post locations", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/location", location.ReportRequest{
			Latitude: 41.3, Longitude: 69.2,
		})
		req.Header.Set("Authorization", "Bearer "+e.parentToken())
		rr := testutil.DoRequest(e.router, req)
		testutil.AssertStatus(t, rr, http.StatusForbidden)
	})
}

func TestLatestEndpoints(t *testing.T) {
	e := newEnv(t)

	post := testutil.NewJSONRequest(t, http.MethodPost, "/location", location.ReportRequest{
		Latitude: 41.30, Longitude: 69.20,
	})
	post.Header.Set("Authorization", "Bearer "+e.kidToken())
	testutil.AssertStatus(t, testutil.DoRequest(e.router, post), http.StatusCreated)

	t.Run("parent reads one kid", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/location/"+e.kid.ID.String()+"/latest")
		req.Header.Set("Authorization", "Bearer "+e.parentToken())
		rr := testutil.DoRequest(e.router, req)
		testutil.AssertStatusOK(t, rr)

		resp := testutil.UnmarshalResponse[location.Response](t, rr)
		assert.Equal(t, 41.30, resp.Latitude)
	})

	t.Run("parent reads the dashboard", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/location/my-kids/latest")
		req.Header.Set("Authorization", "Bearer "+e.parentToken())
		rr := testutil.DoRequest(e.router, req)
		testutil.AssertStatusOK(t, rr)

		list := testutil.UnmarshalResponse[[]location.KidLatest](t, rr)
		require.Len(t, *list, 1)
		assert.Equal(t, "Qodirov Amir", (*list)[0].KidName)
	})

	t.Run("stranger cannot read the kid", func(t *testing.T) {
		stranger, err := e.userSvc.CreateParent(t.Context(), "Stranger", "+998935559999", "hash")
		require.NoError(t, err)

		req := testutil.NewRequest(t, http.MethodGet, "/location/"+e.kid.ID.String()+"/latest")
		req.Header.Set("Authorization", "Bearer "+string(users.RoleParent)+":"+stranger.ID.String())
		rr := testutil.DoRequest(e.router, req)
		testutil.AssertStatus(t, rr, http.StatusNotFound)
	})

	t.Run("kid cannot read the dashboard", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/location/my-kids/latest")
		req.Header.Set("Authorization", "Bearer "+e.kidToken())
		rr := testutil.DoRequest(e.router, req)
		testutil.AssertStatus(t, rr, http.StatusForbidden)
	})
}
