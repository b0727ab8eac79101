// Package directory defines the external collaborators the funding engine
// consumes: patient and doctor existence checks, the donor directory with
// its running totals, and the payment settlement signal. Real deployments
// back these with the platform's account and payment services; in-memory
// implementations here serve development and tests.
package directory

//go:generate mockgen -source=directory.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"medfund/pkg/domain"
)

// PatientDirectory answers whether a patient exists. Case creation refuses
// unknown owners.
type PatientDirectory interface {
	PatientExists(ctx context.Context, id domain.PatientID) (bool, error)
}

// DoctorDirectory answers whether a doctor exists. Verification refuses
// unknown verifiers.
type DoctorDirectory interface {
	DoctorExists(ctx context.Context, id domain.DoctorID) (bool, error)
}

// DonorDirectory exposes donor identity plus the donor's lifetime donated
// total. The total satisfies its own sum-of-completed-donations invariant;
// it is updated independently of any case's raised amount.
type DonorDirectory interface {
	DonorExists(ctx context.Context, id domain.DonorID) (bool, error)
	// AddToTotal atomically increments the donor's lifetime total and
	// returns the new value.
	AddToTotal(ctx context.Context, id domain.DonorID, amount domain.Money) (domain.Money, error)
	TotalDonated(ctx context.Context, id domain.DonorID) (domain.Money, error)
}

// SettlementRequest describes a contribution attempt handed to the payment
// collaborator.
type SettlementRequest struct {
	DonorID       domain.DonorID
	CaseID        domain.CaseID
	Amount        domain.Money
	Currency      string
	PaymentMethod string
}

// SettlementResult is the synchronous signal from the payment collaborator.
// Settlement happens before a donation is recorded; the ledger never stores
// an entry for a declined payment.
type SettlementResult struct {
	Outcome   domain.PaymentOutcome
	Reference string
}

// PaymentGateway settles a contribution synchronously.
type PaymentGateway interface {
	Settle(ctx context.Context, req SettlementRequest) (SettlementResult, error)
}
