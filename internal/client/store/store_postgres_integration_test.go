//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"paylane/internal/client/models"
	"paylane/internal/client/store"
	id "paylane/pkg/domain"
	"paylane/pkg/platform/sentinel"
	"paylane/pkg/testutil"
	"paylane/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.Require().NoError(s.store.Migrate(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.postgres.DB.Exec("TRUNCATE TABLE clients")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) newClient(name string) *models.Client {
	client, err := models.NewClient(id.ClientID(uuid.New()), name, testutil.FrozenTime)
	s.Require().NoError(err)
	return client
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	client := s.newClient("Roundtrip Co")
	client.ApplyTierActivation(id.TierPayroll, id.DefaultCommitmentMonths, testutil.FrozenTime)
	s.Require().NoError(s.store.Create(ctx, client))

	found, err := s.store.FindByID(ctx, client.ID)
	s.Require().NoError(err)
	s.Equal(client.CompanyName, found.CompanyName)
	s.True(found.HasTier(id.TierPayroll))
	s.Len(found.Subscriptions, 1)
}

func (s *PostgresStoreSuite) TestDuplicateInsert() {
	ctx := context.Background()
	client := s.newClient("Twice Co")
	s.Require().NoError(s.store.Create(ctx, client))
	s.ErrorIs(s.store.Create(ctx, client), sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestExecuteUnderLock() {
	ctx := context.Background()
	client := s.newClient("Locked Co")
	s.Require().NoError(s.store.Create(ctx, client))

	updated, err := s.store.Execute(ctx, client.ID,
		func(c *models.Client) error { return nil },
		func(c *models.Client) {
			c.AddMember(models.Member{
				ID:             id.MemberID(uuid.New()),
				Classification: models.ClassificationEmployee,
				AddedAt:        testutil.FrozenTime,
			}, testutil.FrozenTime)
		},
	)
	s.Require().NoError(err)
	s.Equal(1, updated.RosterSize())

	found, err := s.store.FindByID(ctx, client.ID)
	s.Require().NoError(err)
	s.Equal(1, found.RosterSize())
}

func (s *PostgresStoreSuite) TestExecuteUnknownID() {
	_, err := s.store.Execute(context.Background(), id.ClientID(uuid.New()),
		func(c *models.Client) error { return nil },
		func(c *models.Client) {},
	)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
