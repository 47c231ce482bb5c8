package funds

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/careledger/careledger/internal/errs"
)

func TestCreditAndBalance(t *testing.T) {
	l := NewMemoryLedger()
	ctx := context.Background()
	acct := ParticipantAccount(uuid.New())

	if got, _ := l.Balance(ctx, acct); got != 0 {
		t.Errorf("fresh balance = %d, want 0", got)
	}
	if err := l.Credit(ctx, acct, 75); err != nil {
		t.Fatalf("Credit: %v", err)
	}
	if got, _ := l.Balance(ctx, acct); got != 75 {
		t.Errorf("balance = %d, want 75", got)
	}
}

func TestDebitInsufficientFunds(t *testing.T) {
	l := NewMemoryLedger()
	ctx := context.Background()
	acct := ParticipantAccount(uuid.New())
	l.Credit(ctx, acct, 50)

	if err := l.Debit(ctx, acct, 60); !errors.Is(err, errs.ErrInsufficientFunds) {
		t.Fatalf("Debit err = %v, want ErrInsufficientFunds", err)
	}
	if got, _ := l.Balance(ctx, acct); got != 50 {
		t.Errorf("balance after failed debit = %d, want 50", got)
	}
	if err := l.Debit(ctx, acct, 50); err != nil {
		t.Fatalf("exact debit: %v", err)
	}
	if got, _ := l.Balance(ctx, acct); got != 0 {
		t.Errorf("balance = %d, want 0", got)
	}
}

func TestTransferAtomic(t *testing.T) {
	l := NewMemoryLedger()
	ctx := context.Background()
	from := ParticipantAccount(uuid.New())
	l.Credit(ctx, from, 30)

	if err := l.Transfer(ctx, from, Escrow, 100); !errors.Is(err, errs.ErrInsufficientFunds) {
		t.Fatalf("Transfer err = %v, want ErrInsufficientFunds", err)
	}
	// The failed transfer credited nothing.
	if got, _ := l.Balance(ctx, Escrow); got != 0 {
		t.Errorf("escrow = %d, want 0", got)
	}
	if got, _ := l.Balance(ctx, from); got != 30 {
		t.Errorf("from = %d, want 30", got)
	}

	if err := l.Transfer(ctx, from, Escrow, 30); err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if got, _ := l.Balance(ctx, Escrow); got != 30 {
		t.Errorf("escrow = %d, want 30", got)
	}
}

func TestRejectsNonPositiveAmounts(t *testing.T) {
	l := NewMemoryLedger()
	ctx := context.Background()
	acct := ParticipantAccount(uuid.New())

	for _, amount := range []int64{0, -1} {
		if err := l.Credit(ctx, acct, amount); err == nil {
			t.Errorf("Credit(%d) succeeded", amount)
		}
		if err := l.Debit(ctx, acct, amount); err == nil {
			t.Errorf("Debit(%d) succeeded", amount)
		}
		if err := l.Transfer(ctx, acct, Escrow, amount); err == nil {
			t.Errorf("Transfer(%d) succeeded", amount)
		}
	}
}

func TestConcurrentTransfersConserveTotal(t *testing.T) {
	l := NewMemoryLedger()
	ctx := context.Background()
	a := ParticipantAccount(uuid.New())
	b := ParticipantAccount(uuid.New())
	l.Credit(ctx, a, 1000)
	l.Credit(ctx, b, 1000)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			l.Transfer(ctx, a, b, 1)
		}()
		go func() {
			defer wg.Done()
			l.Transfer(ctx, b, a, 1)
		}()
	}
	wg.Wait()

	balA, _ := l.Balance(ctx, a)
	balB, _ := l.Balance(ctx, b)
	if balA+balB != 2000 {
		t.Errorf("total = %d, want 2000", balA+balB)
	}
}
