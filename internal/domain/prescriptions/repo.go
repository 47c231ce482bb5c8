package prescriptions

import (
	"context"
)

// Repository persists prescriptions. Entries are append-only.
type Repository interface {
	// Create stores the prescription and assigns the next dense id.
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id uint64) (*Prescription, error)
	ListByAppointment(ctx context.Context, appointmentID uint64, limit, offset int) ([]*Prescription, int, error)
}
