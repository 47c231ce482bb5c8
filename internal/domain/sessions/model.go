package sessions

import (
	"time"
)

// Session is one telemedicine session attached to an appointment. IDs are
// dense and 0-based across all sessions. Active flips to false once the
// session ends; an appointment may accumulate any number of sessions.
type Session struct {
	ID            uint64     `db:"id" json:"id"`
	AppointmentID uint64     `db:"appointment_id" json:"appointment_id"`
	Link          string     `db:"link" json:"link"`
	Active        bool       `db:"active" json:"active"`
	StartedAt     time.Time  `db:"started_at" json:"started_at"`
	EndedAt       *time.Time `db:"ended_at" json:"ended_at,omitempty"`
}
