package prescriptions

import (
	"time"

	"github.com/google/uuid"
)

// Prescription is an immutable off-ledger document reference issued by the
// appointment's doctor. IDs are dense and 0-based across all prescriptions.
type Prescription struct {
	ID            uint64    `db:"id" json:"id"`
	AppointmentID uint64    `db:"appointment_id" json:"appointment_id"`
	DoctorID      uuid.UUID `db:"doctor_id" json:"doctor_id"`
	ContentHash   string    `db:"content_hash" json:"content_hash"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
