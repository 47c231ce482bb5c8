package prescriptions

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/careledger/careledger/internal/errs"
)

type repoMem struct {
	mu    sync.RWMutex
	arena []*Prescription
}

func NewRepoMem() Repository {
	return &repoMem{}
}

func (r *repoMem) Create(_ context.Context, p *Prescription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = uint64(len(r.arena))
	p.CreatedAt = time.Now().UTC()
	stored := *p
	r.arena = append(r.arena, &stored)
	return nil
}

func (r *repoMem) GetByID(_ context.Context, id uint64) (*Prescription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id >= uint64(len(r.arena)) {
		return nil, fmt.Errorf("prescription %d: %w", id, errs.ErrNotFound)
	}
	copied := *r.arena[id]
	return &copied, nil
}

func (r *repoMem) ListByAppointment(_ context.Context, appointmentID uint64, limit, offset int) ([]*Prescription, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var all []*Prescription
	for _, p := range r.arena {
		if p.AppointmentID == appointmentID {
			all = append(all, p)
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
	items := make([]*Prescription, 0, end-offset)
	for _, p := range all[offset:end] {
		copied := *p
		items = append(items, &copied)
	}
	return items, total, nil
}
