// Package store defines the case persistence contract. Implementations
// return pkg/platform/sentinel errors; the service layer translates them
// into coded domain errors.
package store

import (
	"context"

	"medfund/internal/registry/models"
	"medfund/pkg/domain"
)

// Filter narrows a case listing. Zero values mean "no constraint".
type Filter struct {
	TreatmentType domain.TreatmentType
	UrgencyLevel  domain.UrgencyLevel
	StatusIn      []domain.CaseStatus
}

// Matches reports whether a case satisfies the filter.
func (f Filter) Matches(c *models.Case) bool {
	if f.TreatmentType != "" && c.TreatmentType != f.TreatmentType {
		return false
	}
	if f.UrgencyLevel != "" && c.UrgencyLevel != f.UrgencyLevel {
		return false
	}
	if len(f.StatusIn) > 0 {
		ok := false
		for _, s := range f.StatusIn {
			if c.Status == s {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// CaseStore persists cases.
//
// Execute is the single write path for existing cases: it holds the
// per-case serialization (mutex or SELECT FOR UPDATE) across both the
// callback's validation and its mutation, so concurrent donations against
// the same case can never interleave a read-modify-write. The callback's
// changes and any status transition it makes commit as one atomic unit; a
// callback error rolls the whole mutation back. Mutations of different
// cases proceed in parallel.
//
// The callback receives a context that carries the implementation's
// transaction (pkg/platform/tx) so collaborating stores — the donation
// ledger in particular — can join the same commit.
type CaseStore interface {
	Create(ctx context.Context, c *models.Case) error
	FindByID(ctx context.Context, id domain.CaseID) (*models.Case, error)
	// List returns matching cases ordered by urgency (critical first) then
	// by creation time descending.
	List(ctx context.Context, filter Filter) ([]*models.Case, error)
	Execute(ctx context.Context, id domain.CaseID, fn func(ctx context.Context, c *models.Case) error) (*models.Case, error)
	// CountByStatus feeds platform statistics.
	CountByStatus(ctx context.Context) (map[domain.CaseStatus]int, error)
}
