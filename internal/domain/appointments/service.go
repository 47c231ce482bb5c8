package appointments

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/careledger/careledger/internal/errs"
	"github.com/careledger/careledger/internal/platform/events"
	"github.com/careledger/careledger/internal/platform/funds"
)

// lockStripes bounds the lock table; same-id operations always share a
// stripe, different ids almost never do.
const lockStripes = 64

// Service is the appointment state machine plus the escrow engine. Every
// mutating operation on an appointment runs under that appointment's lock
// stripe, so same-id transitions are linearized: of two concurrent cancels
// exactly one succeeds and the other observes the canceled state.
type Service struct {
	repo   Repository
	ledger funds.Ledger
	bus    *events.Bus
	locks  [lockStripes]sync.Mutex
}

func NewService(repo Repository, ledger funds.Ledger, bus *events.Bus) *Service {
	return &Service{repo: repo, ledger: ledger, bus: bus}
}

func (s *Service) lock(id uint64) *sync.Mutex {
	return &s.locks[id%lockStripes]
}

// Schedule creates an appointment and captures the fee into escrow as one
// all-or-nothing unit: if the debit fails no appointment is created and the
// id counter does not advance.
func (s *Service) Schedule(ctx context.Context, caller, doctor uuid.UUID, at time.Time, description string, fee int64) (*Appointment, error) {
	if fee <= 0 {
		return nil, fmt.Errorf("fee must be positive: %w", errs.ErrPaymentRequired)
	}

	if err := s.ledger.Transfer(ctx, funds.ParticipantAccount(caller), funds.Escrow, fee); err != nil {
		return nil, fmt.Errorf("capture fee: %w", err)
	}

	a := &Appointment{
		PatientID:   caller,
		DoctorID:    doctor,
		ScheduledAt: at,
		Description: description,
		Fee:         fee,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		// The fee was already captured; release it so the failed
		// operation leaves both sides untouched.
		if rbErr := s.ledger.Transfer(ctx, funds.Escrow, funds.ParticipantAccount(caller), fee); rbErr != nil {
			return nil, fmt.Errorf("create appointment: %v (fee release also failed: %w)", err, rbErr)
		}
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	s.bus.Publish(events.AppointmentScheduled, map[string]interface{}{
		"appointment_id": a.ID,
		"patient":        a.PatientID,
		"doctor":         a.DoctorID,
		"scheduled_at":   a.ScheduledAt,
		"fee":            a.Fee,
	})
	return a, nil
}

// Confirm marks the appointment confirmed. Doctor only; idempotent when
// already confirmed; rejected once canceled.
func (s *Service) Confirm(ctx context.Context, caller uuid.UUID, id uint64) error {
	mu := s.lock(id)
	mu.Lock()
	defer mu.Unlock()

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if caller != a.DoctorID {
		return fmt.Errorf("only the doctor may confirm: %w", errs.ErrUnauthorized)
	}
	if a.Canceled {
		return fmt.Errorf("appointment %d is canceled: %w", id, errs.ErrInvalidState)
	}
	if err := s.repo.Confirm(ctx, id); err != nil {
		return err
	}

	s.bus.Publish(events.AppointmentConfirmed, map[string]interface{}{
		"appointment_id": id,
		"doctor":         a.DoctorID,
	})
	return nil
}

// Cancel terminally cancels the appointment and refunds the escrowed fee
// to the patient in the same operation. If the refund fails the
// cancellation fails and the appointment is unchanged.
func (s *Service) Cancel(ctx context.Context, caller uuid.UUID, id uint64) error {
	mu := s.lock(id)
	mu.Lock()
	defer mu.Unlock()

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !a.Party(caller) {
		return fmt.Errorf("only the patient or doctor may cancel: %w", errs.ErrUnauthorized)
	}
	if a.Canceled {
		return fmt.Errorf("appointment %d already canceled: %w", id, errs.ErrInvalidState)
	}

	refund := a.Fee
	if a.Paid {
		// The fee already left escrow at payment time; nothing to refund.
		refund = 0
	}
	if refund > 0 {
		if err := s.ledger.Transfer(ctx, funds.Escrow, funds.ParticipantAccount(a.PatientID), refund); err != nil {
			return fmt.Errorf("refund fee: %w", err)
		}
	}
	if err := s.repo.Cancel(ctx, id); err != nil {
		if refund > 0 {
			if rbErr := s.ledger.Transfer(ctx, funds.ParticipantAccount(a.PatientID), funds.Escrow, refund); rbErr != nil {
				return fmt.Errorf("cancel appointment: %v (refund rollback also failed: %w)", err, rbErr)
			}
		}
		return err
	}

	s.bus.Publish(events.AppointmentCanceled, map[string]interface{}{
		"appointment_id": id,
		"canceled_by":    caller,
		"refund":         refund,
	})
	return nil
}

// SendPayment pays the escrowed fee out to the doctor. Patient only;
// requires a confirmed, non-canceled appointment. One-shot: a second call
// observes the paid state.
func (s *Service) SendPayment(ctx context.Context, caller uuid.UUID, id uint64) error {
	mu := s.lock(id)
	mu.Lock()
	defer mu.Unlock()

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if caller != a.PatientID {
		return fmt.Errorf("only the patient may send payment: %w", errs.ErrUnauthorized)
	}
	if !a.Confirmed || a.Canceled {
		return fmt.Errorf("appointment %d not confirmed: %w", id, errs.ErrInvalidState)
	}
	if a.Paid {
		return fmt.Errorf("appointment %d already paid: %w", id, errs.ErrInvalidState)
	}

	if err := s.ledger.Transfer(ctx, funds.Escrow, funds.ParticipantAccount(a.DoctorID), a.Fee); err != nil {
		return fmt.Errorf("pay doctor: %w", err)
	}
	if err := s.repo.MarkPaid(ctx, id); err != nil {
		if rbErr := s.ledger.Transfer(ctx, funds.ParticipantAccount(a.DoctorID), funds.Escrow, a.Fee); rbErr != nil {
			return fmt.Errorf("mark paid: %v (payout rollback also failed: %w)", err, rbErr)
		}
		return err
	}

	s.bus.Publish(events.PaymentSent, map[string]interface{}{
		"appointment_id": id,
		"patient":        a.PatientID,
		"doctor":         a.DoctorID,
		"amount":         a.Fee,
	})
	return nil
}

// Get returns the appointment to one of its parties.
func (s *Service) Get(ctx context.Context, caller uuid.UUID, id uint64) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.Party(caller) {
		return nil, fmt.Errorf("appointment %d: %w", id, errs.ErrAccessDenied)
	}
	return a, nil
}

// Lookup fetches an appointment without an authorization check. For the
// session and prescription registries, which gate on appointment state and
// apply their own role checks.
func (s *Service) Lookup(ctx context.Context, id uint64) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patient uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListByPatient(ctx, patient, limit, offset)
}

func (s *Service) ListByDoctor(ctx context.Context, doctor uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListByDoctor(ctx, doctor, limit, offset)
}
