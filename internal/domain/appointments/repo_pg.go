package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careledger/careledger/internal/errs"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const apptCols = `id, patient_id, doctor_id, scheduled_at, description, fee,
	confirmed, canceled, paid, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.ScheduledAt, &a.Description, &a.Fee,
		&a.Confirmed, &a.Canceled, &a.Paid, &a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO appointment (patient_id, doctor_id, scheduled_at, description, fee)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		a.PatientID, a.DoctorID, a.ScheduledAt, a.Description, a.Fee).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uint64) (*Appointment, error) {
	a, err := scanAppointment(r.pool.QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("appointment %d: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// flip runs a conditional single-row update and translates an unmatched
// condition into ErrNotFound or ErrInvalidState.
func (r *repoPG) flip(ctx context.Context, id uint64, sql, stateMsg string) error {
	tag, err := r.pool.Exec(ctx, sql, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	var exists bool
	if err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM appointment WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("appointment %d: %w", id, errs.ErrNotFound)
	}
	return fmt.Errorf("appointment %d %s: %w", id, stateMsg, errs.ErrInvalidState)
}

func (r *repoPG) Confirm(ctx context.Context, id uint64) error {
	return r.flip(ctx, id, `
		UPDATE appointment SET confirmed = TRUE, updated_at = NOW()
		WHERE id = $1 AND NOT canceled`, "is canceled")
}

func (r *repoPG) Cancel(ctx context.Context, id uint64) error {
	return r.flip(ctx, id, `
		UPDATE appointment SET canceled = TRUE, updated_at = NOW()
		WHERE id = $1 AND NOT canceled`, "already canceled")
}

func (r *repoPG) MarkPaid(ctx context.Context, id uint64) error {
	return r.flip(ctx, id, `
		UPDATE appointment SET paid = TRUE, updated_at = NOW()
		WHERE id = $1 AND confirmed AND NOT canceled AND NOT paid`, "not payable")
}

func (r *repoPG) ListByPatient(ctx context.Context, patient uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.list(ctx, `patient_id`, patient, limit, offset)
}

func (r *repoPG) ListByDoctor(ctx context.Context, doctor uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.list(ctx, `doctor_id`, doctor, limit, offset)
}

func (r *repoPG) list(ctx context.Context, col string, who uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM appointment WHERE `+col+` = $1`, who).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+apptCols+` FROM appointment WHERE `+col+` = $1 ORDER BY id LIMIT $2 OFFSET $3`,
		who, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}
