// Package store defines the donation ledger persistence contract. The
// ledger is append-only: entries are never updated or deleted.
package store

import (
	"context"

	"medfund/internal/ledger/models"
	"medfund/pkg/domain"
)

// DonationStore persists ledger entries.
//
// Append enforces transaction-id uniqueness across the whole ledger and
// returns sentinel.ErrConflict on a collision so the caller can regenerate
// and retry. When a SQL transaction is present in the context (the case
// store's Execute puts one there), Append joins it, making the ledger write
// and the case counter update one atomic commit.
type DonationStore interface {
	Append(ctx context.Context, d *models.Donation) error
	// Discard removes an entry appended by a commit attempt whose enclosing
	// unit of work failed afterwards. It is the only path that removes
	// ledger data; discarding an absent id is not an error. Stores whose
	// Append joined a SQL transaction drop the row on rollback anyway.
	Discard(ctx context.Context, id domain.DonationID) error
	FindByID(ctx context.Context, id domain.DonationID) (*models.Donation, error)
	// ListByCase returns the case's donations ordered by creation time
	// descending.
	ListByCase(ctx context.Context, caseID domain.CaseID) ([]*models.Donation, error)
	// ListByDonor returns the donor's donations ordered by creation time
	// descending.
	ListByDonor(ctx context.Context, donorID domain.DonorID) ([]*models.Donation, error)
	// SumCompletedByCase returns the exact sum of completed donation
	// amounts for one case; the invariant check compares this against the
	// case's raised amount.
	SumCompletedByCase(ctx context.Context, caseID domain.CaseID) (domain.Money, error)
	// TotalsByCase returns completed sums for every case with at least one
	// donation. Feeds platform statistics.
	TotalsByCase(ctx context.Context) (map[domain.CaseID]domain.Money, error)
	// TotalCompleted returns the platform-wide completed sum.
	TotalCompleted(ctx context.Context) (domain.Money, error)
}
