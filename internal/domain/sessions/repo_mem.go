package sessions

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/careledger/careledger/internal/errs"
)

// repoMem keeps sessions in an arena indexed by id.
type repoMem struct {
	mu    sync.RWMutex
	arena []*Session
}

func NewRepoMem() Repository {
	return &repoMem{}
}

func (r *repoMem) Create(_ context.Context, s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ID = uint64(len(r.arena))
	s.Active = true
	s.StartedAt = time.Now().UTC()
	stored := *s
	r.arena = append(r.arena, &stored)
	return nil
}

func (r *repoMem) get(id uint64) (*Session, error) {
	if id >= uint64(len(r.arena)) {
		return nil, fmt.Errorf("session %d: %w", id, errs.ErrNotFound)
	}
	return r.arena[id], nil
}

func (r *repoMem) GetByID(_ context.Context, id uint64) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, err := r.get(id)
	if err != nil {
		return nil, err
	}
	copied := *s
	return &copied, nil
}

func (r *repoMem) End(_ context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.get(id)
	if err != nil {
		return err
	}
	if !s.Active {
		return nil
	}
	now := time.Now().UTC()
	s.Active = false
	s.EndedAt = &now
	return nil
}

func (r *repoMem) ListByAppointment(_ context.Context, appointmentID uint64, limit, offset int) ([]*Session, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var all []*Session
	for _, s := range r.arena {
		if s.AppointmentID == appointmentID {
			all = append(all, s)
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
	items := make([]*Session, 0, end-offset)
	for _, s := range all[offset:end] {
		copied := *s
		items = append(items, &copied)
	}
	return items, total, nil
}
