package models

import (
	"strings"
	"time"

	"medfund/pkg/domain"
	dErrors "medfund/pkg/domain-errors"
)

// Case is the aggregate root for a sponsorship request.
//
// Invariants:
//   - GoalAmount > 0, RaisedAmount >= 0
//   - ConsentGiven is true for every persisted case
//   - RaisedAmount equals the sum of completed donations for the case at
//     every externally observable point
//   - Status moves only along the edges in domain.CaseStatus's table
//   - Cases are never hard-deleted; terminal cases persist for audit
//
// Financial fields (RaisedAmount, Status when funding-driven) are owned by
// the funding aggregator and mutated only inside the store's Execute
// callback, which serializes all mutation per case. Descriptive fields
// belong to the owning patient.
type Case struct {
	ID            domain.CaseID        `json:"id"`
	PatientID     domain.PatientID     `json:"patient_id"`
	Title         string               `json:"title"`
	TreatmentType domain.TreatmentType `json:"treatment_type"`
	Description   string               `json:"description"`
	GoalAmount    domain.Money         `json:"goal_amount"`
	RaisedAmount  domain.Money         `json:"raised_amount"`
	Status        domain.CaseStatus    `json:"status"`
	UrgencyLevel  domain.UrgencyLevel  `json:"urgency_level"`
	VerifierID    *domain.DoctorID     `json:"verifier_id,omitempty"`
	ConsentGiven  bool                 `json:"consent_given"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// CreateCaseInput carries the patient's sponsorship request into the
// registry service.
type CreateCaseInput struct {
	PatientID     domain.PatientID
	Title         string
	TreatmentType domain.TreatmentType
	Description   string
	GoalAmount    domain.Money
	UrgencyLevel  domain.UrgencyLevel
	ConsentGiven  bool
}

const maxTitleLength = 200

// NewCase validates and constructs a case. verificationRequired selects the
// entry state: doctor-gated pending_verification or directly active.
func NewCase(
	patientID domain.PatientID,
	title string,
	treatmentType domain.TreatmentType,
	description string,
	goalAmount domain.Money,
	urgency domain.UrgencyLevel,
	consentGiven bool,
	verificationRequired bool,
	now time.Time,
) (*Case, error) {
	if !consentGiven {
		return nil, dErrors.New(dErrors.CodeMissingConsent, "explicit patient consent is required to open a case")
	}
	if patientID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "patient id is required")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "title cannot be empty")
	}
	if len(title) > maxTitleLength {
		return nil, dErrors.Newf(dErrors.CodeValidation, "title must be %d characters or less", maxTitleLength)
	}
	if !goalAmount.IsPositive() {
		return nil, dErrors.New(dErrors.CodeValidation, "goal amount must be positive")
	}
	if !treatmentType.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid treatment type")
	}
	if !urgency.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid urgency level")
	}

	status := domain.CaseStatusActive
	if verificationRequired {
		status = domain.CaseStatusPendingVerification
	}

	return &Case{
		ID:            domain.NewCaseID(),
		PatientID:     patientID,
		Title:         title,
		TreatmentType: treatmentType,
		Description:   strings.TrimSpace(description),
		GoalAmount:    goalAmount,
		RaisedAmount:  0,
		Status:        status,
		UrgencyLevel:  urgency,
		ConsentGiven:  true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// CanVerify checks that the case is awaiting verification.
func (c *Case) CanVerify() error {
	if c.Status != domain.CaseStatusPendingVerification {
		return dErrors.Newf(dErrors.CodeInvalidState, "case is %s, only pending_verification cases can be verified", c.Status)
	}
	return nil
}

// ApplyVerification transitions to active and records the verifier.
// Call CanVerify first; both run inside the store's Execute callback.
func (c *Case) ApplyVerification(verifier domain.DoctorID, now time.Time) {
	c.Status = domain.CaseStatusActive
	c.VerifierID = &verifier
	c.UpdatedAt = now
}

// ApplyDonation adds a completed donation amount to the raised total and
// crosses the funding threshold when reached. Returns true on the exact
// mutation that crossed the threshold, which happens at most once per case.
// Must run inside the store's Execute callback.
func (c *Case) ApplyDonation(amount domain.Money, now time.Time) (funded bool, err error) {
	if !c.Status.AcceptsDonations() {
		return false, dErrors.Newf(dErrors.CodeInvalidState, "case is %s and not accepting donations", c.Status)
	}
	c.RaisedAmount = c.RaisedAmount.Add(amount)
	c.UpdatedAt = now
	if c.Status == domain.CaseStatusActive && c.RaisedAmount.GTE(c.GoalAmount) {
		c.Status = domain.CaseStatusFunded
		return true, nil
	}
	return false, nil
}

// CanComplete checks the treatment-concluded transition.
func (c *Case) CanComplete() error {
	if !c.Status.CanTransitionTo(domain.CaseStatusCompleted) {
		return dErrors.Newf(dErrors.CodeInvalidState, "cannot complete a %s case", c.Status)
	}
	return nil
}

// ApplyCompletion marks the case completed. Terminal.
func (c *Case) ApplyCompletion(now time.Time) {
	c.Status = domain.CaseStatusCompleted
	c.UpdatedAt = now
}

// CanCancel checks the administrative-withdrawal transition.
func (c *Case) CanCancel() error {
	if !c.Status.CanTransitionTo(domain.CaseStatusCancelled) {
		return dErrors.Newf(dErrors.CodeInvalidState, "cannot cancel a %s case", c.Status)
	}
	return nil
}

// ApplyCancellation marks the case cancelled. Terminal; the record persists
// for audit.
func (c *Case) ApplyCancellation(now time.Time) {
	c.Status = domain.CaseStatusCancelled
	c.UpdatedAt = now
}

// CanSetStatus validates a generic transition against the table. Prefer the
// named lifecycle operations; this backs the administrative status route.
func (c *Case) CanSetStatus(next domain.CaseStatus) error {
	if !next.IsValid() {
		return dErrors.Newf(dErrors.CodeValidation, "unknown case status %q", next)
	}
	if !c.Status.CanTransitionTo(next) {
		return dErrors.Newf(dErrors.CodeInvalidState, "transition %s -> %s is not allowed", c.Status, next)
	}
	return nil
}

// ApplyStatus performs a table-validated transition. Call CanSetStatus first.
func (c *Case) ApplyStatus(next domain.CaseStatus, now time.Time) {
	c.Status = next
	c.UpdatedAt = now
}

// PercentFunded reports funding progress for transparency rendering.
// Uncapped: overage yields values above 100.
func (c *Case) PercentFunded() float64 {
	if c.GoalAmount <= 0 {
		return 0
	}
	return float64(c.RaisedAmount) / float64(c.GoalAmount) * 100
}

// Clone returns a deep copy so stores never hand out aliased state.
func (c *Case) Clone() *Case {
	dup := *c
	if c.VerifierID != nil {
		v := *c.VerifierID
		dup.VerifierID = &v
	}
	return &dup
}
