package location

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beacon/internal/alerts"
	"beacon/internal/users"
	"beacon/internal/zones"
	id "beacon/pkg/domain"
	dErrors "beacon/pkg/domain-errors"
	"beacon/pkg/requestcontext"
)

type capturedAlert struct {
	kidID   id.UserID
	message string
}

type captureEmitter struct {
	mu     sync.Mutex
	raised []capturedAlert
}

func (c *captureEmitter) Emit(_ context.Context, kidID id.UserID, message string) (*alerts.Alert, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.raised = append(c.raised, capturedAlert{kidID: kidID, message: message})
	return &alerts.Alert{ID: id.NewAlertID(), KidID: kidID, Message: message}, nil
}

func (c *captureEmitter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.raised)
}

type fixture struct {
	svc     *Service
	users   *users.Service
	zones   *zones.Service
	reports *InMemoryStore
	emitter *captureEmitter
	parent  *users.User
	kid     *users.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	userSvc := users.New(users.NewInMemoryStore())
	zoneSvc := zones.New(zones.NewInMemoryStore())
	reports := NewInMemoryStore()
	emitter := &captureEmitter{}

	parent, err := userSvc.CreateParent(ctx, "Qodirova Sevara", "+998935556677", "hash")
	require.NoError(t, err)
	kid, err := userSvc.CreateKid(ctx, parent.ID, "Qodirov Amir")
	require.NoError(t, err)

	return &fixture{
		svc:     New(reports, userSvc, zoneSvc, emitter),
		users:   userSvc,
		zones:   zoneSvc,
		reports: reports,
		emitter: emitter,
		parent:  parent,
		kid:     kid,
	}
}

func (f *fixture) addHomeZone(t *testing.T) {
	t.Helper()
	_, err := f.zones.Create(context.Background(), f.parent.ID, zones.CreateRequest{
		Name: "Home", Latitude: 41.311081, Longitude: 69.279716, RadiusMeters: 200,
	})
	require.NoError(t, err)
}

func TestRecordInsideZone(t *testing.T) {
	f := newFixture(t)
	f.addHomeZone(t)

	report, err := f.svc.Record(context.Background(), f.kid.ID, ReportRequest{Latitude: 41.311081, Longitude: 69.279716})
	require.NoError(t, err)
	assert.Equal(t, f.kid.ID, report.KidID)
	assert.Zero(t, f.emitter.count(), "inside a zone raises no alert")
}

func TestRecordOutsideAllZones(t *testing.T) {
	f := newFixture(t)
	f.addHomeZone(t)

	_, err := f.svc.Record(context.Background(), f.kid.ID, ReportRequest{Latitude: 41.40, Longitude: 69.40})
	require.NoError(t, err)

	require.Equal(t, 1, f.emitter.count(), "exactly one alert")
	assert.Equal(t, f.kid.ID, f.emitter.raised[0].kidID)
	assert.Contains(t, f.emitter.raised[0].message, "Qodirov Amir")
}

func TestRecordTransitionDebounce(t *testing.T) {
	f := newFixture(t)
	f.addHomeZone(t)
	ctx := context.Background()

	inside := ReportRequest{Latitude: 41.311081, Longitude: 69.279716}
	outside := ReportRequest{Latitude: 41.40, Longitude: 69.40}

	base := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	at := func(minutes int) context.Context {
		return requestcontext.WithTime(ctx, base.Add(time.Duration(minutes)*time.Minute))
	}

	_, err := f.svc.Record(at(0), f.kid.ID, inside)
	require.NoError(t, err)
	_, err = f.svc.Record(at(1), f.kid.ID, outside)
	require.NoError(t, err)
	assert.Equal(t, 1, f.emitter.count(), "leaving raises one alert")

	_, err = f.svc.Record(at(2), f.kid.ID, outside)
	require.NoError(t, err)
	assert.Equal(t, 1, f.emitter.count(), "staying outside does not re-alert")

	_, err = f.svc.Record(at(3), f.kid.ID, inside)
	require.NoError(t, err)
	_, err = f.svc.Record(at(4), f.kid.ID, outside)
	require.NoError(t, err)
	assert.Equal(t, 2, f.emitter.count(), "leaving again raises a fresh alert")
}

func TestRecordNoZonesNoAlert(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Record(context.Background(), f.kid.ID, ReportRequest{Latitude: 41.40, Longitude: 69.40})
	require.NoError(t, err)
	assert.Zero(t, f.emitter.count(), "guardian without zones never gets alerts")
}

func TestRecordRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("unknown kid", func(t *testing.T) {
		_, err := f.svc.Record(ctx, id.NewUserID(), ReportRequest{Latitude: 41.3, Longitude: 69.2})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("kid without guardian persists nothing", func(t *testing.T) {
		orphan := &users.User{ID: id.NewUserID(), FullName: "No Guardian", Role: users.RoleKid}
		store := users.NewInMemoryStore()
		require.NoError(t, store.Create(ctx, orphan))
		svc := New(f.reports, users.New(store), f.zones, f.emitter)

		_, err := svc.Record(ctx, orphan.ID, ReportRequest{Latitude: 41.3, Longitude: 69.2})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))

		_, err = f.reports.LatestByKid(ctx, orphan.ID)
		require.Error(t, err, "no report persisted")
		assert.Zero(t, f.emitter.count())
	})

	t.Run("parents do not report locations", func(t *testing.T) {
		_, err := f.svc.Record(ctx, f.parent.ID, ReportRequest{Latitude: 41.3, Longitude: 69.2})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	t.Run("coordinates out of range", func(t *testing.T) {
		_, err := f.svc.Record(ctx, f.kid.ID, ReportRequest{Latitude: 91, Longitude: 69.2})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestLatest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("no report yet", func(t *testing.T) {
		_, err := f.svc.Latest(ctx, f.parent.ID, f.kid.ID)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("returns the newest report", func(t *testing.T) {
		base := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
		_, err := f.svc.Record(requestcontext.WithTime(ctx, base), f.kid.ID, ReportRequest{Latitude: 41.30, Longitude: 69.20})
		require.NoError(t, err)
		_, err = f.svc.Record(requestcontext.WithTime(ctx, base.Add(time.Minute)), f.kid.ID, ReportRequest{Latitude: 41.31, Longitude: 69.21})
		require.NoError(t, err)

		latest, err := f.svc.Latest(ctx, f.parent.ID, f.kid.ID)
		require.NoError(t, err)
		assert.Equal(t, 41.31, latest.Point.Latitude)
	})

	t.Run("someone else's kid is not found", func(t *testing.T) {
		stranger, err := f.users.CreateParent(ctx, "Stranger", "+998935559999", "hash")
		require.NoError(t, err)

		_, err = f.svc.Latest(ctx, stranger.ID, f.kid.ID)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestLatestForGuardian(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	silent, err := f.users.CreateKid(ctx, f.parent.ID, "Silent Kid")
	require.NoError(t, err)

	_, err = f.svc.Record(ctx, f.kid.ID, ReportRequest{Latitude: 41.30, Longitude: 69.20})
	require.NoError(t, err)

	list, err := f.svc.LatestForGuardian(ctx, f.parent.ID)
	require.NoError(t, err)
	require.Len(t, list, 1, "kids without reports are skipped")
	assert.Equal(t, f.kid.ID.String(), list[0].KidID)
	assert.Equal(t, "Qodirov Amir", list[0].KidName)
	assert.NotEqual(t, silent.ID.String(), list[0].KidID)
}
