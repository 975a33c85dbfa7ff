//go:build integration

package location_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"beacon/internal/location"
	"beacon/internal/users"
	id "beacon/pkg/domain"
	"beacon/pkg/geo"
	"beacon/pkg/platform/sentinel"
	"beacon/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *location.PostgresStore
	users    *users.PostgresStore
	kid      *users.User
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = location.NewPostgres(s.postgres.DB)
	s.users = users.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "location_reports", "users")
	s.Require().NoError(err)

	now := time.Now().UTC().Truncate(time.Microsecond)
	parent := &users.User{
		ID:           id.UserID(uuid.New()),
		FullName:     "Dilnoza Yusupova",
		Role:         users.RoleParent,
		PhoneNumber:  "+998901112233",
		PasswordHash: "$2a$10$fixturehash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.Require().NoError(s.users.Create(ctx, parent))

	s.kid = &users.User{
		ID:        id.UserID(uuid.New()),
		FullName:  "Temur Yusupov",
		Role:      users.RoleKid,
		ParentID:  &parent.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.Require().NoError(s.users.Create(ctx, s.kid))
}

func (s *PostgresStoreSuite) newTestReport(at time.Time) *location.LocationReport {
	return &location.LocationReport{
		ID:        id.LocationID(uuid.New()),
		KidID:     s.kid.ID,
		Point:     geo.Point{Latitude: 41.311081, Longitude: 69.279716},
		CreatedAt: at.UTC().Truncate(time.Microsecond),
	}
}

func (s *PostgresStoreSuite) TestLatestReturnsNewestReport() {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Microsecond)

	older := s.newTestReport(base.Add(-10 * time.Minute))
	newest := s.newTestReport(base)
	newest.Point = geo.Point{Latitude: 41.326001, Longitude: 69.228301}

	// Insert newest first to prove ordering comes from created_at, not
	// insertion order.
	s.Require().NoError(s.store.Create(ctx, newest))
	s.Require().NoError(s.store.Create(ctx, older))

	found, err := s.store.LatestByKid(ctx, s.kid.ID)
	s.Require().NoError(err)
	s.Equal(newest.ID, found.ID)
	s.InDelta(newest.Point.Latitude, found.Point.Latitude, 1e-9)
	s.InDelta(newest.Point.Longitude, found.Point.Longitude, 1e-9)
	s.True(found.CreatedAt.Equal(newest.CreatedAt))
}

// TestLatestTimestampTie pins the tie-break: equal created_at resolves to the
// report with the greater id, regardless of insertion order.
func (s *PostgresStoreSuite) TestLatestTimestampTie() {
	ctx := context.Background()
	at := time.Now().UTC().Truncate(time.Microsecond)

	first := s.newTestReport(at)
	second := s.newTestReport(at)
	s.Require().NoError(s.store.Create(ctx, first))
	s.Require().NoError(s.store.Create(ctx, second))

	expected := first
	if second.ID.String() > first.ID.String() {
		expected = second
	}

	found, err := s.store.LatestByKid(ctx, s.kid.ID)
	s.Require().NoError(err)
	s.Equal(expected.ID, found.ID)
}

func (s *PostgresStoreSuite) TestLatestNoReports() {
	ctx := context.Background()

	_, err := s.store.LatestByKid(ctx, s.kid.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestLatestScopedToKid() {
	ctx := context.Background()

	s.Require().NoError(s.store.Create(ctx, s.newTestReport(time.Now())))

	_, err := s.store.LatestByKid(ctx, id.UserID(uuid.New()))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestDeletingKidCascadesReports() {
	ctx := context.Background()

	s.Require().NoError(s.store.Create(ctx, s.newTestReport(time.Now())))

	_, err := s.postgres.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, uuid.UUID(s.kid.ID))
	s.Require().NoError(err)

	_, err = s.store.LatestByKid(ctx, s.kid.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
