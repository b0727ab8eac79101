// Package store defines persistence for the transparency trail. Updates are
// append-only; invoices mutate only through ExecuteInvoice, which serializes
// the status advancement per invoice.
package store

import (
	"context"

	"medfund/internal/transparency/models"
	"medfund/pkg/domain"
)

// UpdateStore persists case updates.
type UpdateStore interface {
	Append(ctx context.Context, u *models.CaseUpdate) error
	// ListByCase returns the case's updates ordered by creation time
	// descending.
	ListByCase(ctx context.Context, caseID domain.CaseID) ([]*models.CaseUpdate, error)
}

// InvoiceStore persists invoices.
//
// ExecuteInvoice is the single write path for existing invoices: it holds
// the per-invoice serialization across the callback's validation and
// mutation, mirroring the case store's Execute.
type InvoiceStore interface {
	Create(ctx context.Context, inv *models.Invoice) error
	FindByID(ctx context.Context, id domain.InvoiceID) (*models.Invoice, error)
	// ListByCase returns the case's invoices ordered by creation time
	// descending.
	ListByCase(ctx context.Context, caseID domain.CaseID) ([]*models.Invoice, error)
	ExecuteInvoice(ctx context.Context, id domain.InvoiceID, fn func(inv *models.Invoice) error) (*models.Invoice, error)
}
