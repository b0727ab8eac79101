// Package service orchestrates the case lifecycle: creation with the
// consent gate, verification, listing, and the named administrative
// transitions. All status changes go through the store's Execute callback
// so validation and mutation commit atomically under the per-case lock.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"medfund/internal/directory"
	"medfund/internal/events"
	"medfund/internal/platform/metrics"
	"medfund/internal/registry/models"
	"medfund/internal/registry/store"
	"medfund/pkg/domain"
	dErrors "medfund/pkg/domain-errors"
	"medfund/pkg/platform/sentinel"
	"medfund/pkg/requestcontext"
)

// Service is the Case Registry.
type Service struct {
	cases                store.CaseStore
	patients             directory.PatientDirectory
	doctors              directory.DoctorDirectory
	emitter              *events.Emitter
	metrics              *metrics.Metrics
	logger               *slog.Logger
	tracer               trace.Tracer
	verificationRequired bool
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

// WithVerificationGate makes new cases start in pending_verification
// instead of active.
func WithVerificationGate(required bool) Option {
	return func(s *Service) { s.verificationRequired = required }
}

// New constructs the registry service.
func New(cases store.CaseStore, patients directory.PatientDirectory, doctors directory.DoctorDirectory, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		cases:    cases,
		patients: patients,
		doctors:  doctors,
		logger:   logger,
		tracer:   otel.Tracer("medfund/registry"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCase validates consent and ownership, then persists a fresh case.
func (s *Service) CreateCase(ctx context.Context, in models.CreateCaseInput) (*models.Case, error) {
	ctx, span := s.tracer.Start(ctx, "registry.CreateCase")
	defer span.End()

	exists, err := s.patients.PatientExists(ctx, in.PatientID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "patient lookup failed")
	}
	if !exists {
		return nil, dErrors.New(dErrors.CodeNotFound, "patient not found")
	}

	c, err := models.NewCase(in.PatientID, in.Title, in.TreatmentType, in.Description,
		in.GoalAmount, in.UrgencyLevel, in.ConsentGiven, s.verificationRequired,
		requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.cases.Create(ctx, c); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create case")
	}

	if s.metrics != nil {
		s.metrics.CasesCreated.Inc()
	}
	s.emit(ctx, events.Event{Type: events.TypeCaseCreated, CaseID: c.ID})
	s.logger.InfoContext(ctx, "case created",
		"case_id", c.ID.String(),
		"status", c.Status.String(),
		"goal_cents", c.GoalAmount.Cents(),
	)
	return c, nil
}

// GetCase fetches one case.
func (s *Service) GetCase(ctx context.Context, id domain.CaseID) (*models.Case, error) {
	c, err := s.cases.FindByID(ctx, id)
	if err != nil {
		return nil, translateStoreErr(err)
	}
	return c, nil
}

// ListCases returns cases ordered by urgency then recency.
func (s *Service) ListCases(ctx context.Context, filter store.Filter) ([]*models.Case, error) {
	cases, err := s.cases.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list cases")
	}
	return cases, nil
}

// VerifyCase moves a pending case to active and records the verifier.
func (s *Service) VerifyCase(ctx context.Context, caseID domain.CaseID, verifierID domain.DoctorID) (*models.Case, error) {
	exists, err := s.doctors.DoctorExists(ctx, verifierID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "doctor lookup failed")
	}
	if !exists {
		return nil, dErrors.New(dErrors.CodeNotFound, "verifying doctor not found")
	}

	now := requestcontext.Now(ctx)
	c, err := s.cases.Execute(ctx, caseID, func(_ context.Context, c *models.Case) error {
		if err := c.CanVerify(); err != nil {
			return err
		}
		c.ApplyVerification(verifierID, now)
		return nil
	})
	if err != nil {
		return nil, translateStoreErr(err)
	}

	s.emit(ctx, events.Event{Type: events.TypeCaseVerified, CaseID: caseID, ActorID: verifierID.String()})
	return c, nil
}

// MarkCompleted concludes treatment for an active or funded case. Terminal.
func (s *Service) MarkCompleted(ctx context.Context, caseID domain.CaseID) (*models.Case, error) {
	now := requestcontext.Now(ctx)
	c, err := s.cases.Execute(ctx, caseID, func(_ context.Context, c *models.Case) error {
		if err := c.CanComplete(); err != nil {
			return err
		}
		c.ApplyCompletion(now)
		return nil
	})
	if err != nil {
		return nil, translateStoreErr(err)
	}
	s.emit(ctx, events.Event{Type: events.TypeCaseCompleted, CaseID: caseID, ActorID: requestcontext.ActorID(ctx)})
	return c, nil
}

// Cancel withdraws an active or funded case. Terminal; the record persists
// for audit.
func (s *Service) Cancel(ctx context.Context, caseID domain.CaseID) (*models.Case, error) {
	now := requestcontext.Now(ctx)
	c, err := s.cases.Execute(ctx, caseID, func(_ context.Context, c *models.Case) error {
		if err := c.CanCancel(); err != nil {
			return err
		}
		c.ApplyCancellation(now)
		return nil
	})
	if err != nil {
		return nil, translateStoreErr(err)
	}
	s.emit(ctx, events.Event{Type: events.TypeCaseCancelled, CaseID: caseID, ActorID: requestcontext.ActorID(ctx)})
	return c, nil
}

// SetStatus applies a generic table-validated transition. The named
// operations above are preferred; this backs the administrative route.
func (s *Service) SetStatus(ctx context.Context, caseID domain.CaseID, next domain.CaseStatus) (*models.Case, error) {
	now := requestcontext.Now(ctx)
	c, err := s.cases.Execute(ctx, caseID, func(_ context.Context, c *models.Case) error {
		if err := c.CanSetStatus(next); err != nil {
			return err
		}
		c.ApplyStatus(next, now)
		return nil
	})
	if err != nil {
		return nil, translateStoreErr(err)
	}
	return c, nil
}

func (s *Service) emit(ctx context.Context, event events.Event) {
	if s.emitter != nil {
		s.emitter.Emit(ctx, event)
	}
}

// translateStoreErr converts sentinel errors into coded domain errors,
// passing already-coded errors through untouched.
func translateStoreErr(err error) error {
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
