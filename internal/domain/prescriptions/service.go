package prescriptions

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/careledger/careledger/internal/domain/appointments"
	"github.com/careledger/careledger/internal/errs"
	"github.com/careledger/careledger/internal/platform/events"
)

// AppointmentSource resolves appointments for state and role checks.
type AppointmentSource interface {
	Lookup(ctx context.Context, id uint64) (*appointments.Appointment, error)
}

// AccessChecker reports whether reader currently holds read access to
// patient's records. Readers with that grant may also read the patient's
// prescriptions.
type AccessChecker interface {
	HasAccess(ctx context.Context, patient, reader uuid.UUID) (bool, error)
}

type Service struct {
	repo   Repository
	appts  AppointmentSource
	access AccessChecker
	bus    *events.Bus
}

func NewService(repo Repository, appts AppointmentSource, access AccessChecker, bus *events.Bus) *Service {
	return &Service{repo: repo, appts: appts, access: access, bus: bus}
}

// Add issues a prescription against a confirmed appointment. Only the
// appointment's doctor may issue one. The state gate comes before the role
// gate: an unconfirmed or canceled appointment reports ErrInvalidState to
// every caller.
func (s *Service) Add(ctx context.Context, caller uuid.UUID, appointmentID uint64, contentHash string) (*Prescription, error) {
	a, err := s.appts.Lookup(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !a.Confirmed || a.Canceled {
		return nil, fmt.Errorf("appointment %d not confirmed: %w", appointmentID, errs.ErrInvalidState)
	}
	if caller != a.DoctorID {
		return nil, fmt.Errorf("only the appointment doctor may prescribe: %w", errs.ErrUnauthorized)
	}

	p := &Prescription{
		AppointmentID: appointmentID,
		DoctorID:      caller,
		ContentHash:   contentHash,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create prescription: %w", err)
	}

	s.bus.Publish(events.PrescriptionAdded, map[string]interface{}{
		"prescription_id": p.ID,
		"appointment_id":  appointmentID,
		"doctor":          caller,
		"content_hash":    contentHash,
	})
	return p, nil
}

// ListByAppointment returns the appointment's prescriptions. The parties
// may always read them; other doctors may read them while they hold record
// access from the patient.
func (s *Service) ListByAppointment(ctx context.Context, caller uuid.UUID, appointmentID uint64, limit, offset int) ([]*Prescription, int, error) {
	a, err := s.appts.Lookup(ctx, appointmentID)
	if err != nil {
		return nil, 0, err
	}
	if !a.Party(caller) {
		allowed, err := s.access.HasAccess(ctx, a.PatientID, caller)
		if err != nil {
			return nil, 0, err
		}
		if !allowed {
			return nil, 0, fmt.Errorf("appointment %d prescriptions: %w", appointmentID, errs.ErrAccessDenied)
		}
	}
	return s.repo.ListByAppointment(ctx, appointmentID, limit, offset)
}
