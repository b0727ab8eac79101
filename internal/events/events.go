// Package events is the funding event stream: domain services emit
// immutable facts (case created, donation recorded, case funded) after
// commit, and a worker drains them to a sink. The stream is observational —
// losing an event never un-commits a donation — so emission is
// fire-and-forget with a bounded buffer.
package events

import (
	"time"

	"medfund/pkg/domain"
)

// Type names a funding fact.
type Type string

const (
	TypeCaseCreated      Type = "case_created"
	TypeCaseVerified     Type = "case_verified"
	TypeCaseFunded       Type = "case_funded"
	TypeCaseCompleted    Type = "case_completed"
	TypeCaseCancelled    Type = "case_cancelled"
	TypeDonationRecorded Type = "donation_recorded"
	TypeInvoiceAdvanced  Type = "invoice_advanced"
)

// Event is one funding fact. Keep it transport-agnostic so sinks can fan
// out to Kafka, logs, or test buffers.
type Event struct {
	Type        Type          `json:"type"`
	Timestamp   time.Time     `json:"timestamp"`
	CaseID      domain.CaseID `json:"case_id"`
	DonorID     string        `json:"donor_id,omitempty"`
	AmountCents int64         `json:"amount_cents,omitempty"`
	RaisedCents int64         `json:"raised_cents,omitempty"`
	ActorID     string        `json:"actor_id,omitempty"`
	RequestID   string        `json:"request_id,omitempty"`
}
