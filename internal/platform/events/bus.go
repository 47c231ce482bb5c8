// Package events is the fire-and-forget notification channel. Every
// successful operation publishes exactly one event; consumers subscribe
// in-process and delivery never affects the outcome of the operation that
// produced the event.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Type names a notification emitted by the core.
type Type string

const (
	RecordAdded                Type = "RecordAdded"
	PermissionGranted          Type = "PermissionGranted"
	PermissionRevoked          Type = "PermissionRevoked"
	AppointmentScheduled       Type = "AppointmentScheduled"
	AppointmentConfirmed       Type = "AppointmentConfirmed"
	AppointmentCanceled        Type = "AppointmentCanceled"
	PaymentSent                Type = "PaymentSent"
	TelemedicineSessionStarted Type = "TelemedicineSessionStarted"
	TelemedicineSessionEnded   Type = "TelemedicineSessionEnded"
	PrescriptionAdded          Type = "PrescriptionAdded"
)

// Event is a single notification with the fields of the operation that
// emitted it.
type Event struct {
	ID         uuid.UUID              `json:"id"`
	Type       Type                   `json:"type"`
	OccurredAt time.Time              `json:"occurred_at"`
	Fields     map[string]interface{} `json:"fields"`
}

// Handler consumes events. Handlers run on the dispatch goroutine and must
// not block.
type Handler func(Event)

// Bus is a buffered in-process event dispatcher. Publish never blocks the
// publishing operation: when the buffer is full the event is dropped with a
// warning, matching the at-least-once, best-effort delivery contract.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
	queue    chan Event
	logger   zerolog.Logger
}

func NewBus(buffer int, logger zerolog.Logger) *Bus {
	if buffer <= 0 {
		buffer = 256
	}
	return &Bus{
		queue:  make(chan Event, buffer),
		logger: logger,
	}
}

// Subscribe registers a handler for all subsequent events.
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Publish enqueues an event for dispatch. Events published by a single
// operation are delivered in publish order.
func (b *Bus) Publish(t Type, fields map[string]interface{}) {
	evt := Event{
		ID:         uuid.New(),
		Type:       t,
		OccurredAt: time.Now().UTC(),
		Fields:     fields,
	}
	select {
	case b.queue <- evt:
	default:
		b.logger.Warn().Str("type", string(t)).Msg("event buffer full, dropping event")
	}
}

// Start dispatches queued events until the context is canceled. Run it on
// its own goroutine.
func (b *Bus) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-b.queue:
			b.mu.RLock()
			handlers := b.handlers
			b.mu.RUnlock()
			for _, h := range handlers {
				h(evt)
			}
			b.logger.Debug().
				Str("event_id", evt.ID.String()).
				Str("type", string(evt.Type)).
				Msg("event dispatched")
		}
	}
}
