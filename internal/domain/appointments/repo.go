package appointments

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists the appointment ledger. The conditional mutations
// (Confirm, Cancel, MarkPaid) are atomic test-and-sets: they apply the flag
// flip only when the stored state permits it and report
// errs.ErrInvalidState otherwise, so a lost race never double-applies a
// transition.
type Repository interface {
	// Create stores the appointment and assigns the next dense id.
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uint64) (*Appointment, error)
	// Confirm sets confirmed=true unless the appointment is canceled.
	// Idempotent when already confirmed.
	Confirm(ctx context.Context, id uint64) error
	// Cancel sets canceled=true unless already canceled. Terminal.
	Cancel(ctx context.Context, id uint64) error
	// MarkPaid sets paid=true when confirmed, not canceled and not yet paid.
	MarkPaid(ctx context.Context, id uint64) error
	ListByPatient(ctx context.Context, patient uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListByDoctor(ctx context.Context, doctor uuid.UUID, limit, offset int) ([]*Appointment, int, error)
}
