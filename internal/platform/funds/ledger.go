// Package funds is the funds ledger the coordination core moves money
// through: participant accounts plus one pooled escrow account. Debits and
// credits are atomic and fail cleanly without partial effect.
package funds

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/careledger/careledger/internal/errs"
)

// Account identifies a balance in the ledger.
type Account string

// Escrow is the pooled account holding fees between scheduling and final
// payment or refund.
const Escrow Account = "escrow"

// ParticipantAccount returns the account held by a participant.
func ParticipantAccount(id uuid.UUID) Account {
	return Account(id.String())
}

// Ledger is the contract the core expects from the funds collaborator.
// All methods are atomic: a failed operation leaves every balance untouched.
type Ledger interface {
	// Debit removes amount from the account. Fails with
	// errs.ErrInsufficientFunds when the balance cannot cover it.
	Debit(ctx context.Context, account Account, amount int64) error
	// Credit adds amount to the account, creating it at zero if absent.
	Credit(ctx context.Context, account Account, amount int64) error
	// Transfer debits from and credits to as one unit.
	Transfer(ctx context.Context, from, to Account, amount int64) error
	// Balance reports the current balance; absent accounts are zero.
	Balance(ctx context.Context, account Account) (int64, error)
}

// MemoryLedger is the in-memory Ledger. A single mutex covers every
// operation, so a Transfer is observed whole or not at all.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[Account]int64
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{balances: make(map[Account]int64)}
}

func (l *MemoryLedger) Debit(_ context.Context, account Account, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("debit amount must be positive, got %d", amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debitLocked(account, amount)
}

func (l *MemoryLedger) debitLocked(account Account, amount int64) error {
	if l.balances[account] < amount {
		return fmt.Errorf("debit %s: %w", account, errs.ErrInsufficientFunds)
	}
	l.balances[account] -= amount
	return nil
}

func (l *MemoryLedger) Credit(_ context.Context, account Account, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("credit amount must be positive, got %d", amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[account] += amount
	return nil
}

func (l *MemoryLedger) Transfer(_ context.Context, from, to Account, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("transfer amount must be positive, got %d", amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.debitLocked(from, amount); err != nil {
		return err
	}
	l.balances[to] += amount
	return nil
}

func (l *MemoryLedger) Balance(_ context.Context, account Account) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[account], nil
}
