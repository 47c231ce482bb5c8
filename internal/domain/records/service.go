package records

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/careledger/careledger/internal/errs"
	"github.com/careledger/careledger/internal/platform/events"
)

type Service struct {
	records RecordRepository
	perms   PermissionRepository
	bus     *events.Bus
}

func NewService(records RecordRepository, perms PermissionRepository, bus *events.Bus) *Service {
	return &Service{records: records, perms: perms, bus: bus}
}

// AddRecord appends a record reference owned by the caller.
func (s *Service) AddRecord(ctx context.Context, caller uuid.UUID, contentHash string) (*Record, error) {
	rec := &Record{Owner: caller, ContentHash: contentHash}
	if err := s.records.Append(ctx, rec); err != nil {
		return nil, fmt.Errorf("append record: %w", err)
	}
	s.bus.Publish(events.RecordAdded, map[string]interface{}{
		"patient":      caller,
		"content_hash": contentHash,
	})
	return rec, nil
}

// GrantAccess allows doctor to read the caller's records. Idempotent.
func (s *Service) GrantAccess(ctx context.Context, caller, doctor uuid.UUID) error {
	if err := s.perms.Set(ctx, caller, doctor, true); err != nil {
		return fmt.Errorf("grant access: %w", err)
	}
	s.bus.Publish(events.PermissionGranted, map[string]interface{}{
		"patient": caller,
		"doctor":  doctor,
	})
	return nil
}

// RevokeAccess withdraws doctor's read capability. Idempotent; records
// already returned to the doctor are out of this system's control.
func (s *Service) RevokeAccess(ctx context.Context, caller, doctor uuid.UUID) error {
	if err := s.perms.Set(ctx, caller, doctor, false); err != nil {
		return fmt.Errorf("revoke access: %w", err)
	}
	s.bus.Publish(events.PermissionRevoked, map[string]interface{}{
		"patient": caller,
		"doctor":  doctor,
	})
	return nil
}

// GetRecords returns patient's records in insertion order. Self-access is
// always granted; everyone else needs a live capability from the patient.
func (s *Service) GetRecords(ctx context.Context, caller, patient uuid.UUID, limit, offset int) ([]*Record, int, error) {
	if caller != patient {
		allowed, err := s.perms.Allowed(ctx, patient, caller)
		if err != nil {
			return nil, 0, fmt.Errorf("check permission: %w", err)
		}
		if !allowed {
			return nil, 0, fmt.Errorf("records of %s: %w", patient, errs.ErrAccessDenied)
		}
	}
	return s.records.ListByOwner(ctx, patient, limit, offset)
}

// HasAccess reports whether reader may read patient's records. Used by
// sibling registries that gate reads on the same capability table.
func (s *Service) HasAccess(ctx context.Context, patient, reader uuid.UUID) (bool, error) {
	if patient == reader {
		return true, nil
	}
	return s.perms.Allowed(ctx, patient, reader)
}
