//go:build integration

package alerts_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"beacon/internal/alerts"
	"beacon/internal/users"
	id "beacon/pkg/domain"
	"beacon/pkg/platform/sentinel"
	"beacon/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *alerts.PostgresStore
	users    *users.PostgresStore
	kidA     *users.User
	kidB     *users.User
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = alerts.NewPostgres(s.postgres.DB)
	s.users = users.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "alerts", "users")
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

	s.kidA = s.createKid(ctx, parent.ID, "Temur Yusupov", now)
	s.kidB = s.createKid(ctx, parent.ID, "Aziza Yusupova", now)
}

func (s *PostgresStoreSuite) createKid(ctx context.Context, parentID id.UserID, name string, now time.Time) *users.User {
	kid := &users.User{
		ID:        id.UserID(uuid.New()),
		FullName:  name,
		Role:      users.RoleKid,
		ParentID:  &parentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.Require().NoError(s.users.Create(ctx, kid))
	return kid
}

func (s *PostgresStoreSuite) newTestAlert(kidID id.UserID, message string, at time.Time) *alerts.Alert {
	return &alerts.Alert{
		ID:        id.AlertID(uuid.New()),
		KidID:     kidID,
		Message:   message,
		CreatedAt: at.UTC().Truncate(time.Microsecond),
	}
}

func (s *PostgresStoreSuite) TestListByKidsNewestFirst() {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Microsecond)

	first := s.newTestAlert(s.kidA.ID, "Temur Yusupov left all safe zones", base.Add(-time.Hour))
	second := s.newTestAlert(s.kidB.ID, "Aziza Yusupova left all safe zones", base.Add(-30*time.Minute))
	third := s.newTestAlert(s.kidA.ID, "Temur Yusupov left all safe zones", base)
	for _, a := range []*alerts.Alert{first, second, third} {
		s.Require().NoError(s.store.Create(ctx, a))
	}

	list, err := s.store.ListByKids(ctx, []id.UserID{s.kidA.ID, s.kidB.ID})
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal(third.ID, list[0].ID)
	s.Equal(second.ID, list[1].ID)
	s.Equal(first.ID, list[2].ID)
}

func (s *PostgresStoreSuite) TestListByKidsScoped() {
	ctx := context.Background()

	s.Require().NoError(s.store.Create(ctx,
		s.newTestAlert(s.kidA.ID, "Temur Yusupov left all safe zones", time.Now())))

	list, err := s.store.ListByKids(ctx, []id.UserID{s.kidB.ID})
	s.Require().NoError(err)
	s.Empty(list)

	list, err = s.store.ListByKids(ctx, nil)
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *PostgresStoreSuite) TestLatestByKid() {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Microsecond)

	older := s.newTestAlert(s.kidA.ID, "Temur Yusupov left all safe zones", base.Add(-time.Hour))
	newest := s.newTestAlert(s.kidA.ID, "Temur Yusupov left all safe zones", base)
	s.Require().NoError(s.store.Create(ctx, newest))
	s.Require().NoError(s.store.Create(ctx, older))

	found, err := s.store.LatestByKid(ctx, s.kidA.ID)
	s.Require().NoError(err)
	s.Equal(newest.ID, found.ID)

	_, err = s.store.LatestByKid(ctx, s.kidB.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
