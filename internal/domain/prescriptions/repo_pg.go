package prescriptions

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careledger/careledger/internal/errs"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const prescriptionCols = `id, appointment_id, doctor_id, content_hash, created_at`

func scanPrescription(row pgx.Row) (*Prescription, error) {
	var p Prescription
	err := row.Scan(&p.ID, &p.AppointmentID, &p.DoctorID, &p.ContentHash, &p.CreatedAt)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Prescription) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO prescription (appointment_id, doctor_id, content_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		p.AppointmentID, p.DoctorID, p.ContentHash).
		Scan(&p.ID, &p.CreatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uint64) (*Prescription, error) {
	p, err := scanPrescription(r.pool.QueryRow(ctx,
		`SELECT `+prescriptionCols+` FROM prescription WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("prescription %d: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repoPG) ListByAppointment(ctx context.Context, appointmentID uint64, limit, offset int) ([]*Prescription, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM prescription WHERE appointment_id = $1`, appointmentID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+prescriptionCols+` FROM prescription WHERE appointment_id = $1 ORDER BY id LIMIT $2 OFFSET $3`,
		appointmentID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Prescription
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
