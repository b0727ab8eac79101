// Package models holds the transparency trail records: narrative case
// updates and expenditure invoices. Both attach to an existing case and are
// never hard-deleted.
package models

import (
	"strings"
	"time"

	"medfund/pkg/domain"
	dErrors "medfund/pkg/domain-errors"
)

// CaseUpdate is one narrative entry in a case's transparency trail.
// Immutable once posted.
type CaseUpdate struct {
	ID         domain.UpdateID   `json:"id"`
	CaseID     domain.CaseID     `json:"case_id"`
	AuthorID   string            `json:"author_id"`
	AuthorType domain.AuthorType `json:"author_type"`
	UpdateType domain.UpdateType `json:"update_type"`
	Title      string            `json:"title,omitempty"`
	Content    string            `json:"content"`
	CreatedAt  time.Time         `json:"created_at"`
}

const maxUpdateContentLength = 5000

// NewCaseUpdate validates and constructs a case update.
func NewCaseUpdate(
	caseID domain.CaseID,
	authorID string,
	authorType domain.AuthorType,
	updateType domain.UpdateType,
	title string,
	content string,
	now time.Time,
) (*CaseUpdate, error) {
	if caseID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "case id is required")
	}
	authorID = strings.TrimSpace(authorID)
	if authorID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "author id is required")
	}
	if !authorType.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid author type")
	}
	if !updateType.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid update type")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "update content cannot be empty")
	}
	if len(content) > maxUpdateContentLength {
		return nil, dErrors.Newf(dErrors.CodeValidation, "update content must be %d characters or less", maxUpdateContentLength)
	}
	return &CaseUpdate{
		ID:         domain.NewUpdateID(),
		CaseID:     caseID,
		AuthorID:   authorID,
		AuthorType: authorType,
		UpdateType: updateType,
		Title:      strings.TrimSpace(title),
		Content:    content,
		CreatedAt:  now,
	}, nil
}

// Clone returns a copy so stores never hand out aliased state.
func (u *CaseUpdate) Clone() *CaseUpdate {
	dup := *u
	return &dup
}

// Invoice records one expenditure against a case's raised funds. Everything
// but Status is immutable after creation; Status moves forward one step at
// a time.
type Invoice struct {
	ID          domain.InvoiceID     `json:"id"`
	CaseID      domain.CaseID        `json:"case_id"`
	Title       string               `json:"title,omitempty"`
	Amount      domain.Money         `json:"amount"`
	Vendor      string               `json:"vendor"`
	Description string               `json:"description"`
	InvoiceDate time.Time            `json:"invoice_date"`
	Category    string               `json:"category,omitempty"`
	ReceiptRef  string               `json:"receipt_ref,omitempty"`
	Status      domain.InvoiceStatus `json:"status"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// NewInvoice validates and constructs a pending invoice. A zero invoiceDate
// defaults to now.
func NewInvoice(
	caseID domain.CaseID,
	title string,
	amount domain.Money,
	vendor string,
	description string,
	invoiceDate time.Time,
	category string,
	receiptRef string,
	now time.Time,
) (*Invoice, error) {
	if caseID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "case id is required")
	}
	if !amount.IsPositive() {
		return nil, dErrors.New(dErrors.CodeValidation, "invoice amount must be positive")
	}
	vendor = strings.TrimSpace(vendor)
	if vendor == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "vendor is required")
	}
	if invoiceDate.IsZero() {
		invoiceDate = now
	}
	return &Invoice{
		ID:          domain.NewInvoiceID(),
		CaseID:      caseID,
		Title:       strings.TrimSpace(title),
		Amount:      amount,
		Vendor:      vendor,
		Description: strings.TrimSpace(description),
		InvoiceDate: invoiceDate,
		Category:    strings.TrimSpace(category),
		ReceiptRef:  strings.TrimSpace(receiptRef),
		Status:      domain.InvoicePending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// CanAdvance checks that next is the invoice's sole forward successor.
func (i *Invoice) CanAdvance(next domain.InvoiceStatus) error {
	if !next.IsValid() {
		return dErrors.Newf(dErrors.CodeValidation, "unknown invoice status %q", next)
	}
	if !i.Status.CanAdvanceTo(next) {
		return dErrors.Newf(dErrors.CodeInvalidState, "invoice status %s cannot advance to %s", i.Status, next)
	}
	return nil
}

// ApplyAdvance moves the invoice forward. Call CanAdvance first.
func (i *Invoice) ApplyAdvance(next domain.InvoiceStatus, now time.Time) {
	i.Status = next
	i.UpdatedAt = now
}

// Clone returns a copy so stores never hand out aliased state.
func (i *Invoice) Clone() *Invoice {
	dup := *i
	return &dup
}
