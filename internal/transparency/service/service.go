// Package service is the transparency trail: narrative updates and
// expenditure invoices attached to cases, plus the composite case ledger
// view that donors audit.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"medfund/internal/events"
	ledgermodels "medfund/internal/ledger/models"
	ledgerstore "medfund/internal/ledger/store"
	"medfund/internal/platform/metrics"
	casemodels "medfund/internal/registry/models"
	casestore "medfund/internal/registry/store"
	"medfund/internal/transparency/models"
	"medfund/internal/transparency/store"
	"medfund/pkg/domain"
	dErrors "medfund/pkg/domain-errors"
	"medfund/pkg/platform/sentinel"
	"medfund/pkg/requestcontext"
)

// Service manages the transparency trail.
type Service struct {
	updates   store.UpdateStore
	invoices  store.InvoiceStore
	cases     casestore.CaseStore
	donations ledgerstore.DonationStore
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

// New constructs the transparency service.
func New(updates store.UpdateStore, invoices store.InvoiceStore, cases casestore.CaseStore, donations ledgerstore.DonationStore, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		updates:   updates,
		invoices:  invoices,
		cases:     cases,
		donations: donations,
		logger:    logger,
		tracer:    otel.Tracer("medfund/transparency"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddUpdateInput carries one narrative update.
type AddUpdateInput struct {
	CaseID     domain.CaseID
	AuthorID   string
	AuthorType domain.AuthorType
	UpdateType domain.UpdateType
	Title      string
	Content    string
}

// AddCaseUpdate posts a narrative update to an existing case. A patient
// author must own the case; doctors and admins may post to any case.
func (s *Service) AddCaseUpdate(ctx context.Context, in AddUpdateInput) (*models.CaseUpdate, error) {
	ctx, span := s.tracer.Start(ctx, "transparency.AddCaseUpdate")
	defer span.End()

	c, err := s.cases.FindByID(ctx, in.CaseID)
	if err != nil {
		return nil, translateCaseErr(err)
	}
	if in.AuthorType == domain.AuthorPatient && in.AuthorID != c.PatientID.String() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "only the owning patient may post patient updates")
	}

	u, err := models.NewCaseUpdate(in.CaseID, in.AuthorID, in.AuthorType,
		in.UpdateType, in.Title, in.Content, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.updates.Append(ctx, u); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to append case update")
	}

	if s.metrics != nil {
		s.metrics.CaseUpdatesAppended.Inc()
	}
	s.logger.InfoContext(ctx, "case update posted",
		"case_id", in.CaseID.String(),
		"update_type", in.UpdateType.String(),
		"author_type", in.AuthorType.String(),
	)
	return u, nil
}

// ListUpdates returns a case's updates, newest first.
func (s *Service) ListUpdates(ctx context.Context, caseID domain.CaseID) ([]*models.CaseUpdate, error) {
	if _, err := s.cases.FindByID(ctx, caseID); err != nil {
		return nil, translateCaseErr(err)
	}
	updates, err := s.updates.ListByCase(ctx, caseID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list case updates")
	}
	return updates, nil
}

// AddInvoiceInput carries one expenditure record.
type AddInvoiceInput struct {
	CaseID      domain.CaseID
	Title       string
	Amount      domain.Money
	Vendor      string
	Description string
	InvoiceDate time.Time
	Category    string
	ReceiptRef  string
}

// AddInvoice records an expenditure against an existing case.
func (s *Service) AddInvoice(ctx context.Context, in AddInvoiceInput) (*models.Invoice, error) {
	ctx, span := s.tracer.Start(ctx, "transparency.AddInvoice")
	defer span.End()

	if _, err := s.cases.FindByID(ctx, in.CaseID); err != nil {
		return nil, translateCaseErr(err)
	}

	inv, err := models.NewInvoice(in.CaseID, in.Title, in.Amount, in.Vendor,
		in.Description, in.InvoiceDate, in.Category, in.ReceiptRef,
		requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.invoices.Create(ctx, inv); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create invoice")
	}

	if s.metrics != nil {
		s.metrics.InvoicesRecorded.Inc()
	}
	s.logger.InfoContext(ctx, "invoice recorded",
		"invoice_id", inv.ID.String(),
		"case_id", in.CaseID.String(),
		"amount_cents", inv.Amount.Cents(),
	)
	return inv, nil
}

// AdvanceInvoiceStatus moves an invoice one step forward in its pipeline.
func (s *Service) AdvanceInvoiceStatus(ctx context.Context, id domain.InvoiceID, next domain.InvoiceStatus) (*models.Invoice, error) {
	now := requestcontext.Now(ctx)
	inv, err := s.invoices.ExecuteInvoice(ctx, id, func(inv *models.Invoice) error {
		if err := inv.CanAdvance(next); err != nil {
			return err
		}
		inv.ApplyAdvance(next, now)
		return nil
	})
	if err != nil {
		var de *dErrors.Error
		if errors.As(err, &de) {
			return nil, err
		}
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "invoice not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "invoice store failure")
	}

	s.emit(ctx, events.Event{
		Type:    events.TypeInvoiceAdvanced,
		CaseID:  inv.CaseID,
		ActorID: requestcontext.ActorID(ctx),
	})
	return inv, nil
}

// ListInvoices returns a case's invoices, newest first.
func (s *Service) ListInvoices(ctx context.Context, caseID domain.CaseID) ([]*models.Invoice, error) {
	if _, err := s.cases.FindByID(ctx, caseID); err != nil {
		return nil, translateCaseErr(err)
	}
	invoices, err := s.invoices.ListByCase(ctx, caseID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list invoices")
	}
	return invoices, nil
}

// CaseLedger is the composite transparency view for one case: the case
// itself, its funding position, and its full trail. Donations carry the
// full entries; anonymity suppression is the HTTP layer's job.
type CaseLedger struct {
	Case           *casemodels.Case         `json:"case"`
	PercentFunded  float64                  `json:"percent_funded"`
	DonationCount  int                      `json:"donation_count"`
	CompletedCents int64                    `json:"completed_cents"`
	Donations      []*ledgermodels.Donation `json:"donations"`
	Updates        []*models.CaseUpdate     `json:"updates"`
	Invoices       []*models.Invoice        `json:"invoices"`
}

// GetCaseLedger assembles the audit view donors see.
func (s *Service) GetCaseLedger(ctx context.Context, caseID domain.CaseID) (*CaseLedger, error) {
	ctx, span := s.tracer.Start(ctx, "transparency.GetCaseLedger")
	defer span.End()

	c, err := s.cases.FindByID(ctx, caseID)
	if err != nil {
		return nil, translateCaseErr(err)
	}
	donations, err := s.donations.ListByCase(ctx, caseID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list donations")
	}
	completed, err := s.donations.SumCompletedByCase(ctx, caseID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sum donations")
	}
	updates, err := s.updates.ListByCase(ctx, caseID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list case updates")
	}
	invoices, err := s.invoices.ListByCase(ctx, caseID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list invoices")
	}

	return &CaseLedger{
		Case:           c,
		PercentFunded:  c.PercentFunded(),
		DonationCount:  len(donations),
		CompletedCents: completed.Cents(),
		Donations:      donations,
		Updates:        updates,
		Invoices:       invoices,
	}, nil
}

func (s *Service) emit(ctx context.Context, event events.Event) {
	if s.emitter != nil {
		s.emitter.Emit(ctx, event)
	}
}

func translateCaseErr(err error) error {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "case not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "case store failure")
}
