package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"medfund/internal/ledger/models"
	"medfund/pkg/domain"
	"medfund/pkg/platform/sentinel"
)

// InMemory keeps the ledger in maps indexed by case and donor. A single
// mutex is enough: appends are cheap, and the per-case serialization that
// matters for the raised total lives in the case store's Execute.
type InMemory struct {
	mu      sync.RWMutex
	byID    map[domain.DonationID]*models.Donation
	byCase  map[domain.CaseID][]*models.Donation
	byDonor map[domain.DonorID][]*models.Donation
	txnSeen map[string]bool
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:    make(map[domain.DonationID]*models.Donation),
		byCase:  make(map[domain.CaseID][]*models.Donation),
		byDonor: make(map[domain.DonorID][]*models.Donation),
		txnSeen: make(map[string]bool),
	}
}

func (s *InMemory) Append(_ context.Context, d *models.Donation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.txnSeen[d.TransactionID] {
		return fmt.Errorf("transaction %s: %w", d.TransactionID, sentinel.ErrConflict)
	}
	entry := d.Clone()
	s.txnSeen[d.TransactionID] = true
	s.byID[d.ID] = entry
	s.byCase[d.CaseID] = append(s.byCase[d.CaseID], entry)
	s.byDonor[d.DonorID] = append(s.byDonor[d.DonorID], entry)
	return nil
}

// Discard unwinds a failed commit attempt. Append lands immediately in
// memory, so the service compensates here when a later step of the same
// commit fails.
func (s *InMemory) Discard(_ context.Context, id domain.DonationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.byID[id]
	if !ok {
		return nil
	}
	delete(s.byID, id)
	delete(s.txnSeen, d.TransactionID)
	s.byCase[d.CaseID] = dropEntry(s.byCase[d.CaseID], id)
	s.byDonor[d.DonorID] = dropEntry(s.byDonor[d.DonorID], id)
	return nil
}

func dropEntry(entries []*models.Donation, id domain.DonationID) []*models.Donation {
	for i, d := range entries {
		if d.ID == id {
			return append(entries[:i], entries[i+1:]...)
		}
	}
	return entries
}

func (s *InMemory) FindByID(_ context.Context, id domain.DonationID) (*models.Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("donation %s: %w", id, sentinel.ErrNotFound)
	}
	return d.Clone(), nil
}

func (s *InMemory) ListByCase(_ context.Context, caseID domain.CaseID) ([]*models.Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedCopies(s.byCase[caseID]), nil
}

func (s *InMemory) ListByDonor(_ context.Context, donorID domain.DonorID) ([]*models.Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedCopies(s.byDonor[donorID]), nil
}

func (s *InMemory) SumCompletedByCase(_ context.Context, caseID domain.CaseID) (domain.Money, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sum domain.Money
	for _, d := range s.byCase[caseID] {
		if d.Outcome.CountsTowardTotal() {
			sum = sum.Add(d.Amount)
		}
	}
	return sum, nil
}

func (s *InMemory) TotalsByCase(_ context.Context) (map[domain.CaseID]domain.Money, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	totals := make(map[domain.CaseID]domain.Money, len(s.byCase))
	for caseID, donations := range s.byCase {
		var sum domain.Money
		for _, d := range donations {
			if d.Outcome.CountsTowardTotal() {
				sum = sum.Add(d.Amount)
			}
		}
		totals[caseID] = sum
	}
	return totals, nil
}

func (s *InMemory) TotalCompleted(_ context.Context) (domain.Money, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sum domain.Money
	for _, d := range s.byID {
		if d.Outcome.CountsTowardTotal() {
			sum = sum.Add(d.Amount)
		}
	}
	return sum, nil
}

func sortedCopies(donations []*models.Donation) []*models.Donation {
	out := make([]*models.Donation, 0, len(donations))
	for _, d := range donations {
		out = append(out, d.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
