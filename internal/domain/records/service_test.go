package records

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/careledger/careledger/internal/errs"
	"github.com/careledger/careledger/internal/platform/events"
)

func newTestService() *Service {
	bus := events.NewBus(1024, zerolog.Nop())
	return NewService(NewRecordRepoMem(), NewPermissionRepoMem(), bus)
}

func TestAddAndListOwnRecords(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	patient := uuid.New()

	hashes := []string{"QmAAA", "QmBBB", "QmCCC"}
	for _, h := range hashes {
		if _, err := svc.AddRecord(ctx, patient, h); err != nil {
			t.Fatalf("AddRecord(%q): %v", h, err)
		}
	}

	recs, total, err := svc.GetRecords(ctx, patient, patient, 10, 0)
	if err != nil {
		t.Fatalf("GetRecords: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	for i, r := range recs {
		if r.ContentHash != hashes[i] {
			t.Errorf("record %d hash = %q, want %q (insertion order)", i, r.ContentHash, hashes[i])
		}
	}
}

func TestGrantAndRevokeGateReads(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	patient := uuid.New()
	doctor := uuid.New()

	if _, err := svc.AddRecord(ctx, patient, "QmAAA"); err != nil {
		t.Fatalf("AddRecord: %v", err)
	}

	if _, _, err := svc.GetRecords(ctx, doctor, patient, 10, 0); !errors.Is(err, errs.ErrAccessDenied) {
		t.Errorf("read before grant err = %v, want ErrAccessDenied", err)
	}

	if err := svc.GrantAccess(ctx, patient, doctor); err != nil {
		t.Fatalf("GrantAccess: %v", err)
	}
	if _, total, err := svc.GetRecords(ctx, doctor, patient, 10, 0); err != nil || total != 1 {
		t.Errorf("read after grant: total=%d err=%v, want 1 and nil", total, err)
	}

	if err := svc.RevokeAccess(ctx, patient, doctor); err != nil {
		t.Fatalf("RevokeAccess: %v", err)
	}
	if _, _, err := svc.GetRecords(ctx, doctor, patient, 10, 0); !errors.Is(err, errs.ErrAccessDenied) {
		t.Errorf("read after revoke err = %v, want ErrAccessDenied", err)
	}
}

func TestGrantIsPerDoctor(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	patient := uuid.New()
	granted := uuid.New()
	other := uuid.New()

	if err := svc.GrantAccess(ctx, patient, granted); err != nil {
		t.Fatalf("GrantAccess: %v", err)
	}
	if _, _, err := svc.GetRecords(ctx, granted, patient, 10, 0); err != nil {
		t.Errorf("granted doctor read: %v", err)
	}
	if _, _, err := svc.GetRecords(ctx, other, patient, 10, 0); !errors.Is(err, errs.ErrAccessDenied) {
		t.Errorf("other doctor read err = %v, want ErrAccessDenied", err)
	}
}

func TestGrantRevokeIdempotent(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	patient := uuid.New()
	doctor := uuid.New()

	for i := 0; i < 2; i++ {
		if err := svc.GrantAccess(ctx, patient, doctor); err != nil {
			t.Fatalf("GrantAccess #%d: %v", i, err)
		}
	}
	for i := 0; i < 2; i++ {
		if err := svc.RevokeAccess(ctx, patient, doctor); err != nil {
			t.Fatalf("RevokeAccess #%d: %v", i, err)
		}
	}
	// Revoking a never-granted doctor is also a no-op.
	if err := svc.RevokeAccess(ctx, patient, uuid.New()); err != nil {
		t.Errorf("revoke without grant: %v", err)
	}
}

func TestHasAccess(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	patient := uuid.New()
	doctor := uuid.New()

	if ok, _ := svc.HasAccess(ctx, patient, patient); !ok {
		t.Error("self access should always hold")
	}
	if ok, _ := svc.HasAccess(ctx, patient, doctor); ok {
		t.Error("access before grant should not hold")
	}
	svc.GrantAccess(ctx, patient, doctor)
	if ok, _ := svc.HasAccess(ctx, patient, doctor); !ok {
		t.Error("access after grant should hold")
	}
}

func TestRecordsPagination(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	patient := uuid.New()

	for i := 0; i < 5; i++ {
		if _, err := svc.AddRecord(ctx, patient, "Qm"+string(rune('A'+i))); err != nil {
			t.Fatalf("AddRecord: %v", err)
		}
	}

	page, total, err := svc.GetRecords(ctx, patient, patient, 2, 4)
	if err != nil {
		t.Fatalf("GetRecords: %v", err)
	}
	if total != 5 || len(page) != 1 {
		t.Errorf("page at offset 4: total=%d len=%d, want 5 and 1", total, len(page))
	}
}
