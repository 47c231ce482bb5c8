package sessions

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

const sessionCols = `id, appointment_id, link, active, started_at, ended_at`

func scanSession(row pgx.Row) (*Session, error) {
	var s Session
	err := row.Scan(&s.ID, &s.AppointmentID, &s.Link, &s.Active, &s.StartedAt, &s.EndedAt)
	return &s, err
}

func (r *repoPG) Create(ctx context.Context, s *Session) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO session (appointment_id, link)
		VALUES ($1, $2)
		RETURNING id, active, started_at`,
		s.AppointmentID, s.Link).
		Scan(&s.ID, &s.Active, &s.StartedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uint64) (*Session, error) {
	s, err := scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionCols+` FROM session WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("session %d: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *repoPG) End(ctx context.Context, id uint64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE session SET active = FALSE, ended_at = NOW()
		WHERE id = $1 AND active`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	var exists bool
	if err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM session WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("session %d: %w", id, errs.ErrNotFound)
	}
	return nil
}

func (r *repoPG) ListByAppointment(ctx context.Context, appointmentID uint64, limit, offset int) ([]*Session, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM session WHERE appointment_id = $1`, appointmentID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+sessionCols+` FROM session WHERE appointment_id = $1 ORDER BY id LIMIT $2 OFFSET $3`,
		appointmentID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}
