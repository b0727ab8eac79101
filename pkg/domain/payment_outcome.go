package domain

// PaymentOutcome is the settlement result attached to a ledger entry.
// Settlement itself is delegated to the external payment collaborator;
// by the time a donation is recorded the outcome is already known.
type PaymentOutcome string

const (
	PaymentPending   PaymentOutcome = "pending"
	PaymentCompleted PaymentOutcome = "completed"
	PaymentFailed    PaymentOutcome = "failed"
	PaymentRefunded  PaymentOutcome = "refunded"
)

// CountsTowardTotal reports whether a donation with this outcome contributes
// to a case's raised total and a donor's lifetime total.
func (o PaymentOutcome) CountsTowardTotal() bool {
	return o == PaymentCompleted
}

func (o PaymentOutcome) String() string { return string(o) }
