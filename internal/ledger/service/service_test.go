package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"medfund/internal/directory"
	"medfund/internal/directory/mocks"
	"medfund/internal/events"
	ledgermemory "medfund/internal/ledger/store/memory"
	casemodels "medfund/internal/registry/models"
	casememory "medfund/internal/registry/store/memory"
	"medfund/pkg/domain"
	dErrors "medfund/pkg/domain-errors"
	"medfund/pkg/testutil"
)

type LedgerServiceSuite struct {
	suite.Suite
	cases     *casememory.InMemory
	donations *ledgermemory.InMemory
	donors    *directory.InMemoryDonors
	sink      *events.MemorySink
	service   *Service

	caseID  domain.CaseID
	donorID domain.DonorID
}

func TestLedgerServiceSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceSuite))
}

func (s *LedgerServiceSuite) SetupTest() {
	s.cases = casememory.NewInMemory()
	s.donations = ledgermemory.NewInMemory()
	s.donors = directory.NewInMemoryDonors()
	s.sink = events.NewMemorySink()

	s.donorID = domain.NewDonorID()
	s.donors.Add(s.donorID)

	s.service = New(s.donations, s.cases, s.donors,
		directory.NewApprovingGateway(), slog.Default())

	s.caseID = s.seedCase(100_000)
}

// seedCase creates an active case with the given goal in cents.
func (s *LedgerServiceSuite) seedCase(goalCents int64) domain.CaseID {
	c, err := casemodels.NewCase(domain.NewPatientID(), "Spinal surgery",
		domain.TreatmentSurgery, "", domain.Money(goalCents),
		domain.UrgencyCritical, true, false, testutil.FixedTime)
	s.Require().NoError(err)
	s.Require().NoError(s.cases.Create(testutil.Context(), c))
	return c.ID
}

func (s *LedgerServiceSuite) donate(caseID domain.CaseID, cents int64) (*RecordDonationResult, error) {
	return s.service.RecordDonation(testutil.Context(), RecordDonationInput{
		DonorID: s.donorID,
		CaseID:  caseID,
		Amount:  domain.Money(cents),
	})
}

func (s *LedgerServiceSuite) TestRecordDonation() {
	s.Run("appends the entry and updates every total", func() {
		result, err := s.donate(s.caseID, 25_000)
		s.Require().NoError(err)

		s.Equal(domain.Money(25_000), result.Donation.Amount)
		s.Equal(domain.PaymentCompleted, result.Donation.Outcome)
		s.NotEmpty(result.Donation.TransactionID)
		s.Equal(domain.Money(25_000), result.Case.RaisedAmount)
		s.Equal(domain.Money(25_000), result.DonorTotal)
		s.False(result.CrossedGoal)

		sum, err := s.donations.SumCompletedByCase(testutil.Context(), s.caseID)
		s.Require().NoError(err)
		s.Equal(result.Case.RaisedAmount, sum, "raised amount must equal the ledger sum")
	})

	s.Run("rejects a non-positive amount", func() {
		_, err := s.donate(s.caseID, 0)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects an unknown donor", func() {
		_, err := s.service.RecordDonation(testutil.Context(), RecordDonationInput{
			DonorID: domain.NewDonorID(),
			CaseID:  s.caseID,
			Amount:  1000,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("rejects an unknown case", func() {
		_, err := s.donate(domain.NewCaseID(), 1000)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("rejects donations to a cancelled case", func() {
		cancelled := s.seedCase(50_000)
		_, err := s.cases.Execute(testutil.Context(), cancelled,
			func(_ context.Context, c *casemodels.Case) error {
				c.ApplyCancellation(testutil.FixedTime)
				return nil
			})
		s.Require().NoError(err)

		_, err = s.donate(cancelled, 1000)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})
}

func (s *LedgerServiceSuite) TestFundingThreshold() {
	caseID := s.seedCase(100_000)

	// First donation leaves the case short of the goal.
	first, err := s.donate(caseID, 60_000)
	s.Require().NoError(err)
	s.False(first.CrossedGoal)
	s.Equal(domain.CaseStatusActive, first.Case.Status)

	// Second crosses it; overage is kept.
	second, err := s.donate(caseID, 50_000)
	s.Require().NoError(err)
	s.True(second.CrossedGoal)
	s.Equal(domain.CaseStatusFunded, second.Case.Status)
	s.Equal(domain.Money(110_000), second.Case.RaisedAmount)

	// A funded case still accepts donations but never re-crosses.
	third, err := s.donate(caseID, 10_000)
	s.Require().NoError(err)
	s.False(third.CrossedGoal)
	s.Equal(domain.CaseStatusFunded, third.Case.Status)
	s.Equal(domain.Money(120_000), third.Case.RaisedAmount)
}

func (s *LedgerServiceSuite) TestConcurrentDonations() {
	caseID := s.seedCase(1_000_000)

	const goroutines = 50
	const amountCents = 1000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			_, err := s.donate(caseID, amountCents)
			s.NoError(err)
		}()
	}
	wg.Wait()

	c, err := s.cases.FindByID(testutil.Context(), caseID)
	s.Require().NoError(err)
	s.Equal(domain.Money(goroutines*amountCents), c.RaisedAmount,
		"no donation may be lost under contention")
	s.Equal(domain.CaseStatusActive, c.Status, "total below goal keeps the case active")

	sum, err := s.donations.SumCompletedByCase(testutil.Context(), caseID)
	s.Require().NoError(err)
	s.Equal(c.RaisedAmount, sum)

	entries, err := s.donations.ListByCase(testutil.Context(), caseID)
	s.Require().NoError(err)
	s.Len(entries, goroutines)
}

func (s *LedgerServiceSuite) TestConcurrentThresholdCrossing() {
	caseID := s.seedCase(50_000)

	const goroutines = 20
	results := make([]*RecordDonationResult, goroutines)

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(i int) {
			defer wg.Done()
			result, err := s.donate(caseID, 10_000)
			if s.NoError(err) {
				results[i] = result
			}
		}(i)
	}
	wg.Wait()

	crossings := 0
	for _, result := range results {
		if result != nil && result.CrossedGoal {
			crossings++
		}
	}
	s.Equal(1, crossings, "the goal is crossed exactly once")

	c, err := s.cases.FindByID(testutil.Context(), caseID)
	s.Require().NoError(err)
	s.Equal(domain.CaseStatusFunded, c.Status)
	s.Equal(domain.Money(goroutines*10_000), c.RaisedAmount)
}

func (s *LedgerServiceSuite) TestFundingEvents() {
	emitter := events.NewEmitter(64, slog.Default())
	service := New(s.donations, s.cases, s.donors,
		directory.NewApprovingGateway(), slog.Default(), WithEmitter(emitter))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go emitter.Run(ctx, s.sink)

	caseID := s.seedCase(10_000)
	_, err := service.RecordDonation(testutil.Context(), RecordDonationInput{
		DonorID: s.donorID,
		CaseID:  caseID,
		Amount:  10_000,
	})
	s.Require().NoError(err)

	s.Require().Eventually(func() bool {
		return len(s.sink.Events()) == 2
	}, time.Second, 10*time.Millisecond, "both facts reach the sink")

	published := s.sink.Events()
	s.Equal(events.TypeDonationRecorded, published[0].Type)
	s.Equal(events.TypeCaseFunded, published[1].Type)
	s.Equal(int64(10_000), published[0].AmountCents)
	s.Equal(int64(10_000), published[0].RaisedCents)
}

func (s *LedgerServiceSuite) TestReadPaths() {
	first, err := s.donate(s.caseID, 1000)
	s.Require().NoError(err)
	_, err = s.donate(s.caseID, 2000)
	s.Require().NoError(err)

	s.Run("GetDonation", func() {
		got, err := s.service.GetDonation(testutil.Context(), first.Donation.ID)
		s.Require().NoError(err)
		s.Equal(first.Donation.TransactionID, got.TransactionID)

		_, err = s.service.GetDonation(testutil.Context(), domain.NewDonationID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("ListByCase distinguishes unknown case from empty ledger", func() {
		entries, err := s.service.ListByCase(testutil.Context(), s.caseID)
		s.Require().NoError(err)
		s.Len(entries, 2)

		empty := s.seedCase(1000)
		entries, err = s.service.ListByCase(testutil.Context(), empty)
		s.Require().NoError(err)
		s.Empty(entries)

		_, err = s.service.ListByCase(testutil.Context(), domain.NewCaseID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("ListByDonor and GetDonorTotal", func() {
		entries, err := s.service.ListByDonor(testutil.Context(), s.donorID)
		s.Require().NoError(err)
		s.Len(entries, 2)

		total, err := s.service.GetDonorTotal(testutil.Context(), s.donorID)
		s.Require().NoError(err)
		s.Equal(domain.Money(3000), total)

		_, err = s.service.GetDonorTotal(testutil.Context(), domain.NewDonorID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// brokenTotalsDirectory knows the donor but fails the total increment, the
// step that runs after the ledger append has already landed.
type brokenTotalsDirectory struct{}

func (brokenTotalsDirectory) DonorExists(context.Context, domain.DonorID) (bool, error) {
	return true, nil
}

func (brokenTotalsDirectory) AddToTotal(context.Context, domain.DonorID, domain.Money) (domain.Money, error) {
	return 0, errors.New("donor directory unavailable")
}

func (brokenTotalsDirectory) TotalDonated(context.Context, domain.DonorID) (domain.Money, error) {
	return 0, nil
}

func TestRecordDonation_DonorTotalFailureUnwindsLedger(t *testing.T) {
	cases := casememory.NewInMemory()
	donations := ledgermemory.NewInMemory()

	c, err := casemodels.NewCase(domain.NewPatientID(), "Dialysis support",
		domain.TreatmentDialysis, "", 100_000, domain.UrgencyHigh, true, false, testutil.FixedTime)
	if err != nil {
		t.Fatal(err)
	}
	if err := cases.Create(testutil.Context(), c); err != nil {
		t.Fatal(err)
	}

	service := New(donations, cases, brokenTotalsDirectory{},
		directory.NewApprovingGateway(), slog.Default())

	_, err = service.RecordDonation(testutil.Context(), RecordDonationInput{
		DonorID: domain.NewDonorID(), CaseID: c.ID, Amount: 5000,
	})
	if !dErrors.HasCode(err, dErrors.CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}

	got, err := cases.FindByID(testutil.Context(), c.ID)
	if err != nil {
		t.Fatal(err)
	}
	sum, err := donations.SumCompletedByCase(testutil.Context(), c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.RaisedAmount != 0 || sum != 0 {
		t.Fatalf("failed commit must leave nothing behind: raised_amount=%d, ledger sum=%d",
			got.RaisedAmount.Cents(), sum.Cents())
	}
	entries, _ := donations.ListByCase(testutil.Context(), c.ID)
	if len(entries) != 0 {
		t.Fatalf("failed commit left %d entries in the ledger", len(entries))
	}
}

func TestRecordDonation_GatewayOutcomes(t *testing.T) {
	ctrl := gomock.NewController(t)

	cases := casememory.NewInMemory()
	donations := ledgermemory.NewInMemory()
	donors := directory.NewInMemoryDonors()
	gateway := mocks.NewMockPaymentGateway(ctrl)

	donorID := domain.NewDonorID()
	donors.Add(donorID)

	c, err := casemodels.NewCase(domain.NewPatientID(), "Chemotherapy round",
		domain.TreatmentCancer, "", 500_000, domain.UrgencyHigh, true, false, testutil.FixedTime)
	if err != nil {
		t.Fatal(err)
	}
	if err := cases.Create(testutil.Context(), c); err != nil {
		t.Fatal(err)
	}

	service := New(donations, cases, donors, gateway, slog.Default())

	t.Run("declined settlement is rejected and never reaches the ledger", func(t *testing.T) {
		gateway.EXPECT().Settle(gomock.Any(), gomock.Any()).
			Return(directory.SettlementResult{Outcome: domain.PaymentFailed}, nil)

		_, err := service.RecordDonation(testutil.Context(), RecordDonationInput{
			DonorID: donorID, CaseID: c.ID, Amount: 1000,
		})
		if !dErrors.HasCode(err, dErrors.CodeValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}

		entries, _ := donations.ListByCase(testutil.Context(), c.ID)
		if len(entries) != 0 {
			t.Fatalf("declined payment must not append, got %d entries", len(entries))
		}
	})

	t.Run("gateway failure maps to unavailable", func(t *testing.T) {
		gateway.EXPECT().Settle(gomock.Any(), gomock.Any()).
			Return(directory.SettlementResult{}, errors.New("gateway timeout"))

		_, err := service.RecordDonation(testutil.Context(), RecordDonationInput{
			DonorID: donorID, CaseID: c.ID, Amount: 1000,
		})
		if !dErrors.HasCode(err, dErrors.CodeUnavailable) {
			t.Fatalf("expected unavailable error, got %v", err)
		}
	})

	t.Run("settlement request carries the contribution details", func(t *testing.T) {
		gateway.EXPECT().Settle(gomock.Any(), directory.SettlementRequest{
			DonorID:       donorID,
			CaseID:        c.ID,
			Amount:        2500,
			Currency:      "USD",
			PaymentMethod: "card",
		}).Return(directory.SettlementResult{Outcome: domain.PaymentCompleted, Reference: "ref-1"}, nil)

		result, err := service.RecordDonation(testutil.Context(), RecordDonationInput{
			DonorID:       donorID,
			CaseID:        c.ID,
			Amount:        2500,
			Currency:      "USD",
			PaymentMethod: "card",
		})
		if err != nil {
			t.Fatal(err)
		}
		if result.Case.RaisedAmount != 2500 {
			t.Fatalf("raised = %d, want 2500", result.Case.RaisedAmount)
		}
	})
}
