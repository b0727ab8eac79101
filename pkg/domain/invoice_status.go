package domain

import dErrors "medfund/pkg/domain-errors"

// InvoiceStatus tracks an expenditure invoice through its review pipeline.
//
// Invariant: status only moves forward, one step at a time
// (pending -> paid -> verified). Backward moves and skipping are rejected.
type InvoiceStatus string

const (
	InvoicePending  InvoiceStatus = "pending"
	InvoicePaid     InvoiceStatus = "paid"
	InvoiceVerified InvoiceStatus = "verified"
)

// invoiceNext maps each status to its sole forward successor.
var invoiceNext = map[InvoiceStatus]InvoiceStatus{
	InvoicePending: InvoicePaid,
	InvoicePaid:    InvoiceVerified,
}

var validInvoiceStatuses = map[InvoiceStatus]bool{
	InvoicePending:  true,
	InvoicePaid:     true,
	InvoiceVerified: true,
}

// ParseInvoiceStatus constructs an InvoiceStatus from external input.
func ParseInvoiceStatus(s string) (InvoiceStatus, error) {
	st := InvoiceStatus(s)
	if !validInvoiceStatuses[st] {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown invoice status %q", s)
	}
	return st, nil
}

// CanAdvanceTo reports whether next is the immediate forward successor.
func (s InvoiceStatus) CanAdvanceTo(next InvoiceStatus) bool {
	return invoiceNext[s] == next && next != ""
}

func (s InvoiceStatus) IsValid() bool  { return validInvoiceStatuses[s] }
func (s InvoiceStatus) String() string { return string(s) }
