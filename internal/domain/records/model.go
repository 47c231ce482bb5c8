package records

import (
	"time"

	"github.com/google/uuid"
)

// Record is a reference to an off-chain medical document. The content hash
// is an opaque handle into the external content store; the core never
// interprets or dereferences it. Records are immutable once created and
// ordered by insertion per owner.
type Record struct {
	ID          int64     `db:"id" json:"id"`
	Owner       uuid.UUID `db:"owner_id" json:"owner_id"`
	ContentHash string    `db:"content_hash" json:"content_hash"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Permission is one row of the capability table: whether doctor may read
// patient's records. Only the patient mutates their own rows.
type Permission struct {
	Patient uuid.UUID `db:"patient_id" json:"patient_id"`
	Doctor  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Allowed bool      `db:"allowed" json:"allowed"`
}
