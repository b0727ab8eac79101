package directory

import (
	"context"
	"sync"

	"medfund/pkg/domain"
)

// PermissivePatients accepts every patient ID. Used when the platform's
// account service handles identity upstream and the funding engine only
// needs the reference.
type PermissivePatients struct{}

func NewPermissivePatients() *PermissivePatients { return &PermissivePatients{} }

func (PermissivePatients) PatientExists(_ context.Context, _ domain.PatientID) (bool, error) {
	return true, nil
}

// PermissiveDoctors accepts every doctor ID.
type PermissiveDoctors struct{}

func NewPermissiveDoctors() *PermissiveDoctors { return &PermissiveDoctors{} }

func (PermissiveDoctors) DoctorExists(_ context.Context, _ domain.DoctorID) (bool, error) {
	return true, nil
}

// PermissiveDonors accepts every donor ID and tracks lifetime totals.
type PermissiveDonors struct {
	mu     sync.RWMutex
	totals map[domain.DonorID]domain.Money
}

func NewPermissiveDonors() *PermissiveDonors {
	return &PermissiveDonors{totals: make(map[domain.DonorID]domain.Money)}
}

func (d *PermissiveDonors) DonorExists(_ context.Context, _ domain.DonorID) (bool, error) {
	return true, nil
}

func (d *PermissiveDonors) AddToTotal(_ context.Context, id domain.DonorID, amount domain.Money) (domain.Money, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.totals[id] = d.totals[id].Add(amount)
	return d.totals[id], nil
}

func (d *PermissiveDonors) TotalDonated(_ context.Context, id domain.DonorID) (domain.Money, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.totals[id], nil
}
