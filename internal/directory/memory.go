package directory

import (
	"context"
	"fmt"
	"sync"

	"medfund/pkg/domain"
	"medfund/pkg/platform/sentinel"
)

// InMemoryPatients is a seedable patient directory.
type InMemoryPatients struct {
	mu       sync.RWMutex
	patients map[domain.PatientID]bool
}

func NewInMemoryPatients() *InMemoryPatients {
	return &InMemoryPatients{patients: make(map[domain.PatientID]bool)}
}

// Add registers a patient so existence checks succeed.
func (d *InMemoryPatients) Add(id domain.PatientID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.patients[id] = true
}

func (d *InMemoryPatients) PatientExists(_ context.Context, id domain.PatientID) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.patients[id], nil
}

// InMemoryDoctors is a seedable doctor directory.
type InMemoryDoctors struct {
	mu      sync.RWMutex
	doctors map[domain.DoctorID]bool
}

func NewInMemoryDoctors() *InMemoryDoctors {
	return &InMemoryDoctors{doctors: make(map[domain.DoctorID]bool)}
}

// Add registers a doctor so existence checks succeed.
func (d *InMemoryDoctors) Add(id domain.DoctorID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.doctors[id] = true
}

func (d *InMemoryDoctors) DoctorExists(_ context.Context, id domain.DoctorID) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.doctors[id], nil
}

// InMemoryDonors keeps donor identities and lifetime totals. Totals mutate
// under the directory lock so concurrent donations never lose an increment.
type InMemoryDonors struct {
	mu     sync.RWMutex
	totals map[domain.DonorID]domain.Money
	known  map[domain.DonorID]bool
}

func NewInMemoryDonors() *InMemoryDonors {
	return &InMemoryDonors{
		totals: make(map[domain.DonorID]domain.Money),
		known:  make(map[domain.DonorID]bool),
	}
}

// Add registers a donor with a zero lifetime total.
func (d *InMemoryDonors) Add(id domain.DonorID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.known[id] = true
}

func (d *InMemoryDonors) DonorExists(_ context.Context, id domain.DonorID) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.known[id], nil
}

func (d *InMemoryDonors) AddToTotal(_ context.Context, id domain.DonorID, amount domain.Money) (domain.Money, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.known[id] {
		return 0, fmt.Errorf("donor %s: %w", id, sentinel.ErrNotFound)
	}
	d.totals[id] = d.totals[id].Add(amount)
	return d.totals[id], nil
}

func (d *InMemoryDonors) TotalDonated(_ context.Context, id domain.DonorID) (domain.Money, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.known[id] {
		return 0, fmt.Errorf("donor %s: %w", id, sentinel.ErrNotFound)
	}
	return d.totals[id], nil
}

// ApprovingGateway settles every payment as completed. Stands in for the
// real payment collaborator, which reports its result before donations are
// recorded.
type ApprovingGateway struct{}

func NewApprovingGateway() *ApprovingGateway { return &ApprovingGateway{} }

func (g *ApprovingGateway) Settle(_ context.Context, req SettlementRequest) (SettlementResult, error) {
	return SettlementResult{
		Outcome:   domain.PaymentCompleted,
		Reference: fmt.Sprintf("settled-%s-%s", req.CaseID, req.DonorID),
	}, nil
}
