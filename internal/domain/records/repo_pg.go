package records

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type recordRepoPG struct{ pool *pgxpool.Pool }

func NewRecordRepoPG(pool *pgxpool.Pool) RecordRepository { return &recordRepoPG{pool: pool} }

func (r *recordRepoPG) Append(ctx context.Context, rec *Record) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO medical_record (owner_id, content_hash)
		VALUES ($1, $2)
		RETURNING id, created_at`,
		rec.Owner, rec.ContentHash).Scan(&rec.ID, &rec.CreatedAt)
}

func (r *recordRepoPG) ListByOwner(ctx context.Context, owner uuid.UUID, limit, offset int) ([]*Record, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM medical_record WHERE owner_id = $1`, owner).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, owner_id, content_hash, created_at FROM medical_record
		WHERE owner_id = $1 ORDER BY id LIMIT $2 OFFSET $3`, owner, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Owner, &rec.ContentHash, &rec.CreatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &rec)
	}
	return items, total, rows.Err()
}

type permissionRepoPG struct{ pool *pgxpool.Pool }

func NewPermissionRepoPG(pool *pgxpool.Pool) PermissionRepository { return &permissionRepoPG{pool: pool} }

func (r *permissionRepoPG) Set(ctx context.Context, patient, doctor uuid.UUID, allowed bool) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO record_permission (patient_id, doctor_id, allowed)
		VALUES ($1, $2, $3)
		ON CONFLICT (patient_id, doctor_id) DO UPDATE SET allowed = $3, updated_at = NOW()`,
		patient, doctor, allowed)
	return err
}

func (r *permissionRepoPG) Allowed(ctx context.Context, patient, doctor uuid.UUID) (bool, error) {
	var allowed bool
	err := r.pool.QueryRow(ctx, `
		SELECT allowed FROM record_permission WHERE patient_id = $1 AND doctor_id = $2`,
		patient, doctor).Scan(&allowed)
	if errors.Is(err, pgx.ErrNoRows) {
		// No row means never granted.
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return allowed, nil
}
