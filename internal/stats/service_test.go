package stats

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ledgermodels "medfund/internal/ledger/models"
	ledgermemory "medfund/internal/ledger/store/memory"
	casemodels "medfund/internal/registry/models"
	casememory "medfund/internal/registry/store/memory"
	"medfund/pkg/domain"
	"medfund/pkg/testutil"
)

func seedCase(t *testing.T, cases *casememory.InMemory, treatment domain.TreatmentType) domain.CaseID {
	t.Helper()
	c, err := casemodels.NewCase(domain.NewPatientID(), "Case", treatment, "",
		100_000, domain.UrgencyMedium, true, false, testutil.FixedTime)
	require.NoError(t, err)
	require.NoError(t, cases.Create(context.Background(), c))
	return c.ID
}

func seedDonation(t *testing.T, donations *ledgermemory.InMemory, caseID domain.CaseID, cents int64) {
	t.Helper()
	d, err := ledgermodels.NewDonation(domain.NewDonorID(), caseID,
		domain.Money(cents), "USD", "card", false, "", testutil.FixedTime)
	require.NoError(t, err)
	require.NoError(t, donations.Append(context.Background(), d))
}

func TestPlatformStats(t *testing.T) {
	ctx := context.Background()
	cases := casememory.NewInMemory()
	donations := ledgermemory.NewInMemory()

	surgery := seedCase(t, cases, domain.TreatmentSurgery)
	dialysis := seedCase(t, cases, domain.TreatmentDialysis)
	seedCase(t, cases, domain.TreatmentMedication)

	seedDonation(t, donations, surgery, 10_000)
	seedDonation(t, donations, surgery, 5_000)
	seedDonation(t, donations, dialysis, 2_000)

	service := New(cases, donations, nil, 0, slog.Default())

	stats, err := service.PlatformStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(17_000), stats.TotalRaisedCents)
	assert.Equal(t, int64(15_000), stats.RaisedByTreatment[domain.TreatmentSurgery])
	assert.Equal(t, int64(2_000), stats.RaisedByTreatment[domain.TreatmentDialysis])
	assert.Equal(t, 3, stats.CasesByStatus[domain.CaseStatusActive])
	assert.Equal(t, 3, stats.ActiveCases)
	assert.Equal(t, 0, stats.FullyFundedCases)
	assert.False(t, stats.ComputedAt.IsZero())
}

func TestPlatformStats_Empty(t *testing.T) {
	service := New(casememory.NewInMemory(), ledgermemory.NewInMemory(), nil, 0, slog.Default())

	stats, err := service.PlatformStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalRaisedCents)
	assert.Empty(t, stats.RaisedByTreatment)
}
