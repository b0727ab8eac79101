//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	platformpostgres "medfund/internal/platform/postgres"
	"medfund/internal/registry/models"
	"medfund/internal/registry/store"
	"medfund/internal/registry/store/postgres"
	"medfund/pkg/domain"
	"medfund/pkg/platform/sentinel"
	"medfund/pkg/testutil"
	"medfund/pkg/testutil/containers"
)

type PostgresCaseStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *postgres.PostgresStore
}

func TestPostgresCaseStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresCaseStoreSuite))
}

func (s *PostgresCaseStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.Require().NoError(platformpostgres.Migrate(context.Background(), s.postgres.DB))
	s.store = postgres.NewPostgres(s.postgres.DB)
}

func (s *PostgresCaseStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateAll(context.Background()))
}

func (s *PostgresCaseStoreSuite) newCase(urgency domain.UrgencyLevel) *models.Case {
	c, err := models.NewCase(domain.NewPatientID(), "Spinal surgery",
		domain.TreatmentSurgery, "L4 fusion", 300_000, urgency, true, false,
		testutil.FixedTime)
	s.Require().NoError(err)
	return c
}

func (s *PostgresCaseStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	c := s.newCase(domain.UrgencyHigh)
	s.Require().NoError(s.store.Create(ctx, c))

	found, err := s.store.FindByID(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(c.ID, found.ID)
	s.Equal(c.PatientID, found.PatientID)
	s.Equal(domain.Money(300_000), found.GoalAmount)
	s.Equal(domain.CaseStatusActive, found.Status)
	s.Nil(found.VerifierID)

	err = s.store.Create(ctx, c)
	s.ErrorIs(err, sentinel.ErrConflict)

	_, err = s.store.FindByID(ctx, domain.NewCaseID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresCaseStoreSuite) TestListOrdering() {
	ctx := context.Background()
	low := s.newCase(domain.UrgencyLow)
	critical := s.newCase(domain.UrgencyCritical)
	s.Require().NoError(s.store.Create(ctx, low))
	s.Require().NoError(s.store.Create(ctx, critical))

	cases, err := s.store.List(ctx, store.Filter{})
	s.Require().NoError(err)
	s.Require().Len(cases, 2)
	s.Equal(critical.ID, cases[0].ID, "critical cases list first")

	filtered, err := s.store.List(ctx, store.Filter{UrgencyLevel: domain.UrgencyLow})
	s.Require().NoError(err)
	s.Require().Len(filtered, 1)
	s.Equal(low.ID, filtered[0].ID)
}

func (s *PostgresCaseStoreSuite) TestExecuteRollsBackOnCallbackError() {
	ctx := context.Background()
	c := s.newCase(domain.UrgencyMedium)
	s.Require().NoError(s.store.Create(ctx, c))

	boom := errors.New("boom")
	_, err := s.store.Execute(ctx, c.ID, func(_ context.Context, c *models.Case) error {
		if _, err := c.ApplyDonation(10_000, time.Now().UTC()); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	found, err := s.store.FindByID(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(domain.Money(0), found.RaisedAmount, "failed callback leaves the row untouched")

	_, err = s.store.Execute(ctx, domain.NewCaseID(), func(_ context.Context, _ *models.Case) error {
		return nil
	})
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// TestConcurrentExecute verifies the FOR UPDATE row lock makes concurrent
// donations commute: no increment may be lost.
func (s *PostgresCaseStoreSuite) TestConcurrentExecute() {
	ctx := context.Background()
	c := s.newCase(domain.UrgencyMedium)
	s.Require().NoError(s.store.Create(ctx, c))

	const goroutines = 20
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Execute(ctx, c.ID, func(_ context.Context, c *models.Case) error {
				_, err := c.ApplyDonation(1_000, time.Now().UTC())
				return err
			})
			s.NoError(err)
		}()
	}
	wg.Wait()

	found, err := s.store.FindByID(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(domain.Money(goroutines*1_000), found.RaisedAmount)
	s.Equal(domain.CaseStatusActive, found.Status)
}
