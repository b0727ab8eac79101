// Package service is the funding aggregator. RecordDonation is the single
// write path for money: it settles payment, appends the ledger entry, and
// updates the case's raised amount inside the case store's Execute callback
// so the ledger and the counter can never disagree.
package service

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"medfund/internal/directory"
	"medfund/internal/events"
	"medfund/internal/ledger/models"
	"medfund/internal/ledger/store"
	"medfund/internal/platform/metrics"
	casemodels "medfund/internal/registry/models"
	casestore "medfund/internal/registry/store"
	"medfund/pkg/domain"
	dErrors "medfund/pkg/domain-errors"
	"medfund/pkg/platform/sentinel"
	"medfund/pkg/requestcontext"
)

// Service records donations and reads the ledger.
type Service struct {
	donations store.DonationStore
	cases     casestore.CaseStore
	donors    directory.DonorDirectory
	gateway   directory.PaymentGateway
	emitter   *events.Emitter
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tracer    trace.Tracer
}

// Option configures optional service dependencies.
type Option func(*Service)

// WithMetrics attaches Prometheus counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithEmitter attaches the funding event stream.
func WithEmitter(e *events.Emitter) Option {
	return func(s *Service) { s.emitter = e }
}

// New constructs the ledger service.
func New(donations store.DonationStore, cases casestore.CaseStore, donors directory.DonorDirectory, gateway directory.PaymentGateway, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		donations: donations,
		cases:     cases,
		donors:    donors,
		gateway:   gateway,
		logger:    logger,
		tracer:    otel.Tracer("medfund/ledger"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordDonationInput carries one contribution attempt.
type RecordDonationInput struct {
	DonorID       domain.DonorID
	CaseID        domain.CaseID
	Amount        domain.Money
	Currency      string
	PaymentMethod string
	IsAnonymous   bool
	Message       string
}

// RecordDonationResult returns the appended entry together with the totals
// observed at commit time, so callers see a consistent snapshot.
type RecordDonationResult struct {
	Donation    *models.Donation
	Case        *casemodels.Case
	DonorTotal  domain.Money
	CrossedGoal bool
}

const (
	maxAppendAttempts = 3
	baseRetryBackoff  = 10 * time.Millisecond
)

// RecordDonation settles a contribution and commits it to the ledger and the
// case's raised total atomically. Transaction-id collisions are retried with
// a fresh id up to maxAppendAttempts times.
func (s *Service) RecordDonation(ctx context.Context, in RecordDonationInput) (*RecordDonationResult, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.RecordDonation")
	defer span.End()

	if !in.Amount.IsPositive() {
		return nil, dErrors.New(dErrors.CodeValidation, "donation amount must be positive")
	}

	exists, err := s.donors.DonorExists(ctx, in.DonorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "donor lookup failed")
	}
	if !exists {
		return nil, dErrors.New(dErrors.CodeNotFound, "donor not found")
	}

	// Pre-check before charging the donor. The authoritative check repeats
	// inside the Execute callback under the case lock.
	c, err := s.cases.FindByID(ctx, in.CaseID)
	if err != nil {
		return nil, translateCaseErr(err)
	}
	if !c.Status.AcceptsDonations() {
		return nil, dErrors.Newf(dErrors.CodeInvalidState, "case is %s and not accepting donations", c.Status)
	}

	settlement, err := s.gateway.Settle(ctx, directory.SettlementRequest{
		DonorID:       in.DonorID,
		CaseID:        in.CaseID,
		Amount:        in.Amount,
		Currency:      in.Currency,
		PaymentMethod: in.PaymentMethod,
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "payment settlement failed")
	}
	if !settlement.Outcome.CountsTowardTotal() {
		return nil, dErrors.Newf(dErrors.CodeValidation, "payment was not completed: %s", settlement.Outcome)
	}

	now := requestcontext.Now(ctx)
	var result *RecordDonationResult
	for attempt := 1; ; attempt++ {
		result, err = s.commit(ctx, in, now)
		if err == nil {
			break
		}
		if !dErrors.IsRetryable(err) || attempt >= maxAppendAttempts {
			return nil, err
		}
		if s.metrics != nil {
			s.metrics.DonationConflicts.Inc()
		}
		s.logger.WarnContext(ctx, "donation commit conflict, retrying",
			"case_id", in.CaseID.String(), "attempt", attempt)
		select {
		case <-ctx.Done():
			return nil, dErrors.Wrap(ctx.Err(), dErrors.CodeUnavailable, "donation aborted")
		case <-time.After(jitteredBackoff(attempt)):
		}
	}

	if s.metrics != nil {
		s.metrics.DonationsRecorded.Inc()
		s.metrics.DonationAmount.Observe(float64(result.Donation.Amount.Cents()))
		if result.CrossedGoal {
			s.metrics.CasesFunded.Inc()
		}
	}
	s.emit(ctx, events.Event{
		Type:        events.TypeDonationRecorded,
		CaseID:      in.CaseID,
		DonorID:     in.DonorID.String(),
		AmountCents: result.Donation.Amount.Cents(),
		RaisedCents: result.Case.RaisedAmount.Cents(),
	})
	if result.CrossedGoal {
		s.emit(ctx, events.Event{
			Type:        events.TypeCaseFunded,
			CaseID:      in.CaseID,
			RaisedCents: result.Case.RaisedAmount.Cents(),
		})
	}
	s.logger.InfoContext(ctx, "donation recorded",
		"donation_id", result.Donation.ID.String(),
		"case_id", in.CaseID.String(),
		"amount_cents", result.Donation.Amount.Cents(),
		"raised_cents", result.Case.RaisedAmount.Cents(),
		"crossed_goal", result.CrossedGoal,
	)
	return result, nil
}

// commit runs one attempt: a fresh transaction id, then ledger append, case
// counter update, and donor total increment under the case's Execute lock.
func (s *Service) commit(ctx context.Context, in RecordDonationInput, now time.Time) (*RecordDonationResult, error) {
	d, err := models.NewDonation(in.DonorID, in.CaseID, in.Amount,
		in.Currency, in.PaymentMethod, in.IsAnonymous, in.Message, now)
	if err != nil {
		return nil, err
	}

	var crossed bool
	var donorTotal domain.Money
	c, err := s.cases.Execute(ctx, in.CaseID, func(ctx context.Context, c *casemodels.Case) error {
		funded, err := c.ApplyDonation(d.Amount, now)
		if err != nil {
			return err
		}
		crossed = funded
		if err := s.donations.Append(ctx, d); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.Wrap(err, dErrors.CodeConflict, "transaction id collision")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to append donation")
		}
		// A failing directory call must not strand the appended entry: the
		// case working copy is thrown away on error, so the ledger entry is
		// discarded too, keeping raised_amount equal to the completed sum.
		// The donor total itself stays best-effort; a commit failure after
		// this point can overstate it until reconciled from the ledger.
		total, err := s.donors.AddToTotal(ctx, in.DonorID, d.Amount)
		if err != nil {
			if discardErr := s.donations.Discard(ctx, d.ID); discardErr != nil {
				s.logger.ErrorContext(ctx, "failed to discard donation after donor total failure",
					"donation_id", d.ID.String(),
					"error", discardErr.Error(),
				)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update donor total")
		}
		donorTotal = total
		return nil
	})
	if err != nil {
		return nil, translateCaseErr(err)
	}
	return &RecordDonationResult{
		Donation:    d,
		Case:        c,
		DonorTotal:  donorTotal,
		CrossedGoal: crossed,
	}, nil
}

// GetDonation fetches one ledger entry.
func (s *Service) GetDonation(ctx context.Context, id domain.DonationID) (*models.Donation, error) {
	d, err := s.donations.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "donation not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "donation lookup failed")
	}
	return d, nil
}

// ListByCase returns the case's donations, newest first. Unknown cases are
// distinguished from cases with an empty ledger.
func (s *Service) ListByCase(ctx context.Context, caseID domain.CaseID) ([]*models.Donation, error) {
	if _, err := s.cases.FindByID(ctx, caseID); err != nil {
		return nil, translateCaseErr(err)
	}
	donations, err := s.donations.ListByCase(ctx, caseID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list donations")
	}
	return donations, nil
}

// ListByDonor returns the donor's donations, newest first.
func (s *Service) ListByDonor(ctx context.Context, donorID domain.DonorID) ([]*models.Donation, error) {
	exists, err := s.donors.DonorExists(ctx, donorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "donor lookup failed")
	}
	if !exists {
		return nil, dErrors.New(dErrors.CodeNotFound, "donor not found")
	}
	donations, err := s.donations.ListByDonor(ctx, donorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list donations")
	}
	return donations, nil
}

// GetDonorTotal returns the donor's lifetime completed total.
func (s *Service) GetDonorTotal(ctx context.Context, donorID domain.DonorID) (domain.Money, error) {
	exists, err := s.donors.DonorExists(ctx, donorID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "donor lookup failed")
	}
	if !exists {
		return 0, dErrors.New(dErrors.CodeNotFound, "donor not found")
	}
	total, err := s.donors.TotalDonated(ctx, donorID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "donor total lookup failed")
	}
	return total, nil
}

func (s *Service) emit(ctx context.Context, event events.Event) {
	if s.emitter != nil {
		s.emitter.Emit(ctx, event)
	}
}

func jitteredBackoff(attempt int) time.Duration {
	backoff := baseRetryBackoff * time.Duration(attempt)
	return backoff + time.Duration(rand.Int63n(int64(backoff)))
}

func translateCaseErr(err error) error {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "case not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "case was modified concurrently")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "case store failure")
	}
}
