package records

import (
	"context"

	"github.com/google/uuid"
)

type RecordRepository interface {
	Append(ctx context.Context, r *Record) error
	ListByOwner(ctx context.Context, owner uuid.UUID, limit, offset int) ([]*Record, int, error)
}

type PermissionRepository interface {
	Set(ctx context.Context, patient, doctor uuid.UUID, allowed bool) error
	Allowed(ctx context.Context, patient, doctor uuid.UUID) (bool, error)
}
