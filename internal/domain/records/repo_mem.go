package records

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// recordRepoMem keeps each owner's records in an append-only slice, so
// insertion order is the list order.
type recordRepoMem struct {
	mu      sync.RWMutex
	nextID  int64
	byOwner map[uuid.UUID][]*Record
}

func NewRecordRepoMem() RecordRepository {
	return &recordRepoMem{byOwner: make(map[uuid.UUID][]*Record)}
}

func (r *recordRepoMem) Append(_ context.Context, rec *Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec.ID = r.nextID
	r.nextID++
	rec.CreatedAt = time.Now().UTC()
	stored := *rec
	r.byOwner[rec.Owner] = append(r.byOwner[rec.Owner], &stored)
	return nil
}

func (r *recordRepoMem) ListByOwner(_ context.Context, owner uuid.UUID, limit, offset int) ([]*Record, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := r.byOwner[owner]
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	items := make([]*Record, 0, end-offset)
	for _, rec := range all[offset:end] {
		copied := *rec
		items = append(items, &copied)
	}
	return items, total, nil
}

type permissionRepoMem struct {
	mu      sync.RWMutex
	allowed map[[2]uuid.UUID]bool
}

func NewPermissionRepoMem() PermissionRepository {
	return &permissionRepoMem{allowed: make(map[[2]uuid.UUID]bool)}
}

func (r *permissionRepoMem) Set(_ context.Context, patient, doctor uuid.UUID, allowed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.allowed[[2]uuid.UUID{patient, doctor}] = allowed
	return nil
}

func (r *permissionRepoMem) Allowed(_ context.Context, patient, doctor uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.allowed[[2]uuid.UUID{patient, doctor}], nil
}
