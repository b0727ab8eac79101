package models

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"medfund/pkg/domain"
	dErrors "medfund/pkg/domain-errors"
)

// Donation is one ledger entry: a settled contribution from a donor to a
// case. Entries are immutable once appended; corrections happen as new
// facts, never edits.
type Donation struct {
	ID            domain.DonationID     `json:"id"`
	DonorID       domain.DonorID        `json:"donor_id"`
	CaseID        domain.CaseID         `json:"case_id"`
	Amount        domain.Money          `json:"amount"`
	Currency      string                `json:"currency"`
	PaymentMethod string                `json:"payment_method"`
	Outcome       domain.PaymentOutcome `json:"outcome"`
	// TransactionID is unique across the entire ledger. Built from
	// timestamp plus random suffix; a collision is treated as a retryable
	// conflict, never silently ignored.
	TransactionID string    `json:"transaction_id"`
	IsAnonymous   bool      `json:"is_anonymous"`
	Message       string    `json:"message,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

const defaultCurrency = "USD"

// NewDonation validates and constructs a completed ledger entry. Settlement
// already succeeded by the time this runs; the outcome is recorded as
// completed.
func NewDonation(
	donorID domain.DonorID,
	caseID domain.CaseID,
	amount domain.Money,
	currency string,
	paymentMethod string,
	isAnonymous bool,
	message string,
	now time.Time,
) (*Donation, error) {
	if !amount.IsPositive() {
		return nil, dErrors.New(dErrors.CodeValidation, "donation amount must be positive")
	}
	if donorID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "donor id is required")
	}
	if caseID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "case id is required")
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = defaultCurrency
	}
	if len(currency) != 3 {
		return nil, dErrors.Newf(dErrors.CodeValidation, "currency must be a 3-letter code, got %q", currency)
	}

	return &Donation{
		ID:            domain.NewDonationID(),
		DonorID:       donorID,
		CaseID:        caseID,
		Amount:        amount,
		Currency:      currency,
		PaymentMethod: strings.TrimSpace(paymentMethod),
		Outcome:       domain.PaymentCompleted,
		TransactionID: NewTransactionID(now),
		IsAnonymous:   isAnonymous,
		Message:       strings.TrimSpace(message),
		CreatedAt:     now,
	}, nil
}

// NewTransactionID builds a ledger-unique transaction identifier from the
// wall clock and four random bytes. Uniqueness is enforced by the store;
// callers regenerate on conflict.
func NewTransactionID(now time.Time) string {
	var suffix [4]byte
	_, _ = rand.Read(suffix[:])
	return fmt.Sprintf("TXN-%d-%s", now.UnixNano(), hex.EncodeToString(suffix[:]))
}

// Clone returns a copy so stores never hand out aliased state.
func (d *Donation) Clone() *Donation {
	dup := *d
	return &dup
}

// PublicView is the donation as public readers see it: the donor id is
// omitted for anonymous donations while the ledger keeps the full entry.
type PublicView struct {
	*Donation
	DonorID string `json:"donor_id,omitempty"`
}

// Public builds the reader-facing view of the entry.
func (d *Donation) Public() PublicView {
	v := PublicView{Donation: d}
	if !d.IsAnonymous {
		v.DonorID = d.DonorID.String()
	}
	return v
}

// PublicViews maps a listing into reader-facing views.
func PublicViews(donations []*Donation) []PublicView {
	out := make([]PublicView, 0, len(donations))
	for _, d := range donations {
		out = append(out, d.Public())
	}
	return out
}
