package sessions

import (
	"context"
)

// Repository persists telemedicine sessions.
type Repository interface {
	// Create stores the session and assigns the next dense id.
	Create(ctx context.Context, s *Session) error
	GetByID(ctx context.Context, id uint64) (*Session, error)
	// End sets active=false and stamps ended_at. Idempotent.
	End(ctx context.Context, id uint64) error
	ListByAppointment(ctx context.Context, appointmentID uint64, limit, offset int) ([]*Session, int, error)
}
