package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"medfund/internal/registry/models"
	"medfund/internal/registry/store"
	"medfund/pkg/domain"
	"medfund/pkg/platform/sentinel"
)

// InMemory keeps cases in a map with one mutex per case. Execute locks only
// the target case, so donations against different cases never contend.
type InMemory struct {
	mu    sync.RWMutex
	cases map[domain.CaseID]*models.Case
	locks map[domain.CaseID]*sync.Mutex
}

func NewInMemory() *InMemory {
	return &InMemory{
		cases: make(map[domain.CaseID]*models.Case),
		locks: make(map[domain.CaseID]*sync.Mutex),
	}
}

func (s *InMemory) Create(_ context.Context, c *models.Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.cases[c.ID]; exists {
		return fmt.Errorf("case %s: %w", c.ID, sentinel.ErrConflict)
	}
	s.cases[c.ID] = c.Clone()
	s.locks[c.ID] = &sync.Mutex{}
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.CaseID) (*models.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cases[id]
	if !ok {
		return nil, fmt.Errorf("case %s: %w", id, sentinel.ErrNotFound)
	}
	return c.Clone(), nil
}

func (s *InMemory) List(_ context.Context, filter store.Filter) ([]*models.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Case, 0, len(s.cases))
	for _, c := range s.cases {
		if filter.Matches(c) {
			result = append(result, c.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		ri, rj := result[i].UrgencyLevel.Rank(), result[j].UrgencyLevel.Rank()
		if ri != rj {
			return ri > rj
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// Execute runs fn under the case's own lock. The callback mutates a working
// copy; the copy replaces the stored case only when fn succeeds, so a
// failing callback leaves the case untouched. The context passes through
// unchanged: there is no transaction to join in memory, the lock is the
// atomicity boundary.
func (s *InMemory) Execute(ctx context.Context, id domain.CaseID, fn func(ctx context.Context, c *models.Case) error) (*models.Case, error) {
	s.mu.RLock()
	lock, ok := s.locks[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("case %s: %w", id, sentinel.ErrNotFound)
	}

	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	current := s.cases[id]
	s.mu.RUnlock()

	working := current.Clone()
	if err := fn(ctx, working); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cases[id] = working
	s.mu.Unlock()
	return working.Clone(), nil
}

func (s *InMemory) CountByStatus(_ context.Context) (map[domain.CaseStatus]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[domain.CaseStatus]int)
	for _, c := range s.cases {
		counts[c.Status]++
	}
	return counts, nil
}
