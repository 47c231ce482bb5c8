package appointments

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/careledger/careledger/internal/errs"
)

// repoMem stores appointments in an arena indexed by the allocation
// counter: slot i holds appointment i, which keeps lookups O(1) and makes
// the dense-id invariant structural.
type repoMem struct {
	mu    sync.RWMutex
	arena []*Appointment
}

func NewRepoMem() Repository {
	return &repoMem{}
}

func (r *repoMem) Create(_ context.Context, a *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = uint64(len(r.arena))
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	stored := *a
	r.arena = append(r.arena, &stored)
	return nil
}

func (r *repoMem) get(id uint64) (*Appointment, error) {
	if id >= uint64(len(r.arena)) {
		return nil, fmt.Errorf("appointment %d: %w", id, errs.ErrNotFound)
	}
	return r.arena[id], nil
}

func (r *repoMem) GetByID(_ context.Context, id uint64) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, err := r.get(id)
	if err != nil {
		return nil, err
	}
	copied := *a
	return &copied, nil
}

func (r *repoMem) Confirm(_ context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, err := r.get(id)
	if err != nil {
		return err
	}
	if a.Canceled {
		return fmt.Errorf("appointment %d is canceled: %w", id, errs.ErrInvalidState)
	}
	a.Confirmed = true
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *repoMem) Cancel(_ context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, err := r.get(id)
	if err != nil {
		return err
	}
	if a.Canceled {
		return fmt.Errorf("appointment %d already canceled: %w", id, errs.ErrInvalidState)
	}
	a.Canceled = true
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *repoMem) MarkPaid(_ context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, err := r.get(id)
	if err != nil {
		return err
	}
	if !a.Confirmed || a.Canceled || a.Paid {
		return fmt.Errorf("appointment %d not payable: %w", id, errs.ErrInvalidState)
	}
	a.Paid = true
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *repoMem) ListByPatient(_ context.Context, patient uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.list(func(a *Appointment) bool { return a.PatientID == patient }, limit, offset)
}

func (r *repoMem) ListByDoctor(_ context.Context, doctor uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.list(func(a *Appointment) bool { return a.DoctorID == doctor }, limit, offset)
}

func (r *repoMem) list(match func(*Appointment) bool, limit, offset int) ([]*Appointment, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var all []*Appointment
	for _, a := range r.arena {
		if match(a) {
			all = append(all, a)
		}
	}
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	items := make([]*Appointment, 0, end-offset)
	for _, a := range all[offset:end] {
		copied := *a
		items = append(items, &copied)
	}
	return items, total, nil
}
