package sessions

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

type Service struct {
	repo  Repository
	appts AppointmentSource
	bus   *events.Bus
}

func NewService(repo Repository, appts AppointmentSource, bus *events.Bus) *Service {
	return &Service{repo: repo, appts: appts, bus: bus}
}

// Start opens a telemedicine session for a confirmed appointment. Either
// party may start one; an appointment may hold several sessions over its
// lifetime. The state gate comes before the role gate: an unconfirmed or
// canceled appointment reports ErrInvalidState to every caller.
func (s *Service) Start(ctx context.Context, caller uuid.UUID, appointmentID uint64, link string) (*Session, error) {
	a, err := s.appts.Lookup(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !a.Confirmed || a.Canceled {
		return nil, fmt.Errorf("appointment %d not confirmed: %w", appointmentID, errs.ErrInvalidState)
	}
	if !a.Party(caller) {
		return nil, fmt.Errorf("only appointment parties may start a session: %w", errs.ErrUnauthorized)
	}

	sess := &Session{AppointmentID: appointmentID, Link: link}
	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.bus.Publish(events.TelemedicineSessionStarted, map[string]interface{}{
		"session_id":     sess.ID,
		"appointment_id": appointmentID,
		"started_by":     caller,
	})
	return sess, nil
}

// End closes the session. Idempotent; ending an already ended session is a
// no-op.
func (s *Service) End(ctx context.Context, caller uuid.UUID, id uint64) error {
	sess, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	a, err := s.appts.Lookup(ctx, sess.AppointmentID)
	if err != nil {
		return err
	}
	if !a.Party(caller) {
		return fmt.Errorf("only appointment parties may end a session: %w", errs.ErrUnauthorized)
	}
	if !sess.Active {
		return nil
	}
	if err := s.repo.End(ctx, id); err != nil {
		return err
	}

	s.bus.Publish(events.TelemedicineSessionEnded, map[string]interface{}{
		"session_id":     id,
		"appointment_id": sess.AppointmentID,
		"ended_by":       caller,
	})
	return nil
}

// ListByAppointment returns the appointment's sessions to one of its
// parties.
func (s *Service) ListByAppointment(ctx context.Context, caller uuid.UUID, appointmentID uint64, limit, offset int) ([]*Session, int, error) {
	a, err := s.appts.Lookup(ctx, appointmentID)
	if err != nil {
		return nil, 0, err
	}
	if !a.Party(caller) {
		return nil, 0, fmt.Errorf("appointment %d sessions: %w", appointmentID, errs.ErrAccessDenied)
	}
	return s.repo.ListByAppointment(ctx, appointmentID, limit, offset)
}
