package funds

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careledger/careledger/internal/errs"
)

type pgLedger struct{ pool *pgxpool.Pool }

// NewPGLedger returns a Ledger backed by the account table. Debits are
// conditional row updates, so a race on the same account cannot take a
// balance negative.
func NewPGLedger(pool *pgxpool.Pool) Ledger { return &pgLedger{pool: pool} }

func (l *pgLedger) Debit(ctx context.Context, account Account, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("debit amount must be positive, got %d", amount)
	}
	tag, err := l.pool.Exec(ctx, `
		UPDATE account SET balance = balance - $2, updated_at = NOW()
		WHERE id = $1 AND balance >= $2`, account, amount)
	if err != nil {
		return fmt.Errorf("debit %s: %w", account, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("debit %s: %w", account, errs.ErrInsufficientFunds)
	}
	return nil
}

func (l *pgLedger) Credit(ctx context.Context, account Account, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("credit amount must be positive, got %d", amount)
	}
	_, err := l.pool.Exec(ctx, `
		INSERT INTO account (id, balance) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET balance = account.balance + $2, updated_at = NOW()`,
		account, amount)
	if err != nil {
		return fmt.Errorf("credit %s: %w", account, err)
	}
	return nil
}

func (l *pgLedger) Transfer(ctx context.Context, from, to Account, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("transfer amount must be positive, got %d", amount)
	}
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transfer: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE account SET balance = balance - $2, updated_at = NOW()
		WHERE id = $1 AND balance >= $2`, from, amount)
	if err != nil {
		return fmt.Errorf("transfer debit %s: %w", from, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transfer debit %s: %w", from, errs.ErrInsufficientFunds)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO account (id, balance) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET balance = account.balance + $2, updated_at = NOW()`,
		to, amount); err != nil {
		return fmt.Errorf("transfer credit %s: %w", to, err)
	}
	return tx.Commit(ctx)
}

func (l *pgLedger) Balance(ctx context.Context, account Account) (int64, error) {
	var balance int64
	err := l.pool.QueryRow(ctx, `SELECT balance FROM account WHERE id = $1`, account).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("balance %s: %w", account, err)
	}
	return balance, nil
}
