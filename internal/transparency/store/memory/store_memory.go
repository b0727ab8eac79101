package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"medfund/internal/transparency/models"
	"medfund/pkg/domain"
	"medfund/pkg/platform/sentinel"
)

// InMemoryUpdates keeps case updates in memory for development and tests.
type InMemoryUpdates struct {
	mu     sync.RWMutex
	byCase map[domain.CaseID][]*models.CaseUpdate
}

func NewInMemoryUpdates() *InMemoryUpdates {
	return &InMemoryUpdates{byCase: make(map[domain.CaseID][]*models.CaseUpdate)}
}

func (s *InMemoryUpdates) Append(_ context.Context, u *models.CaseUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byCase[u.CaseID] = append(s.byCase[u.CaseID], u.Clone())
	return nil
}

func (s *InMemoryUpdates) ListByCase(_ context.Context, caseID domain.CaseID) ([]*models.CaseUpdate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	updates := s.byCase[caseID]
	result := make([]*models.CaseUpdate, 0, len(updates))
	for _, u := range updates {
		result = append(result, u.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// InMemoryInvoices keeps invoices in memory for development and tests.
// ExecuteInvoice serializes under the store mutex; invoice advancement is
// rare enough that finer locking buys nothing here.
type InMemoryInvoices struct {
	mu     sync.RWMutex
	byID   map[domain.InvoiceID]*models.Invoice
	byCase map[domain.CaseID][]domain.InvoiceID
}

func NewInMemoryInvoices() *InMemoryInvoices {
	return &InMemoryInvoices{
		byID:   make(map[domain.InvoiceID]*models.Invoice),
		byCase: make(map[domain.CaseID][]domain.InvoiceID),
	}
}

func (s *InMemoryInvoices) Create(_ context.Context, inv *models.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[inv.ID]; exists {
		return fmt.Errorf("invoice %s: %w", inv.ID, sentinel.ErrConflict)
	}
	s.byID[inv.ID] = inv.Clone()
	s.byCase[inv.CaseID] = append(s.byCase[inv.CaseID], inv.ID)
	return nil
}

func (s *InMemoryInvoices) FindByID(_ context.Context, id domain.InvoiceID) (*models.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("invoice %s: %w", id, sentinel.ErrNotFound)
	}
	return inv.Clone(), nil
}

func (s *InMemoryInvoices) ListByCase(_ context.Context, caseID domain.CaseID) ([]*models.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byCase[caseID]
	result := make([]*models.Invoice, 0, len(ids))
	for _, id := range ids {
		result = append(result, s.byID[id].Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *InMemoryInvoices) ExecuteInvoice(_ context.Context, id domain.InvoiceID, fn func(inv *models.Invoice) error) (*models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("invoice %s: %w", id, sentinel.ErrNotFound)
	}
	working := current.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	s.byID[id] = working
	return working.Clone(), nil
}
