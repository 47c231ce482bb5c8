package appointments

import (
	"time"

	"github.com/google/uuid"
)

// Appointment is one entry of the appointment ledger. IDs are dense,
// 0-based and never reused. Confirmed and Canceled are independent flags;
// cancellation is terminal for every financial, session and prescription
// transition referencing this id. Paid marks the one-shot fee payout.
type Appointment struct {
	ID          uint64    `db:"id" json:"id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID    uuid.UUID `db:"doctor_id" json:"doctor_id"`
	ScheduledAt time.Time `db:"scheduled_at" json:"scheduled_at"`
	Description string    `db:"description" json:"description"`
	Fee         int64     `db:"fee" json:"fee"`
	Confirmed   bool      `db:"confirmed" json:"confirmed"`
	Canceled    bool      `db:"canceled" json:"canceled"`
	Paid        bool      `db:"paid" json:"paid"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Party reports whether p is the appointment's patient or doctor.
func (a *Appointment) Party(p uuid.UUID) bool {
	return p == a.PatientID || p == a.DoctorID
}
