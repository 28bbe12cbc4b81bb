package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"booking/internal/domain"
	"booking/internal/events"
)

const publishTimeout = 2 * time.Second

type queuedEvent struct {
	ctx   context.Context
	event events.BookingEvent
}

// Notifier publishes booking events after a change has committed.
// Delivery is best-effort: failures are logged and never reach the caller.
//
// With a positive queue size events are handed to a single background sender
// and dropped with a warning while the queue is full. A zero queue size
// publishes inline.
type Notifier struct {
	publisher events.Publisher
	log       logrus.FieldLogger

	mu     sync.RWMutex
	closed bool
	queue  chan queuedEvent
	done   chan struct{}
}

// NewNotifier creates a new Notifier and starts its sender when queueSize > 0.
func NewNotifier(publisher events.Publisher, log logrus.FieldLogger, queueSize int) *Notifier {
	n := &Notifier{
		publisher: publisher,
		log:       log,
	}
	if publisher != nil && queueSize > 0 {
		n.queue = make(chan queuedEvent, queueSize)
		n.done = make(chan struct{})
		go n.run()
	}
	return n
}

// Close stops accepting events and waits until the queued ones are published
// or ctx ends.
func (n *Notifier) Close(ctx context.Context) error {
	if n == nil || n.queue == nil {
		return nil
	}

	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.queue)
	}
	n.mu.Unlock()

	select {
	case <-n.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (n *Notifier) run() {
	defer close(n.done)
	for q := range n.queue {
		n.publish(q.ctx, q.event)
	}
}

// BookingCreated announces a new PENDING booking to drivers.
func (n *Notifier) BookingCreated(ctx context.Context, booking *domain.Booking) {
	n.send(ctx, events.TypeBookingCreated, booking, "")
}

// BookingAccepted tells the rider a driver has been assigned.
func (n *Notifier) BookingAccepted(ctx context.Context, booking *domain.Booking) {
	n.send(ctx, events.TypeBookingAccepted, booking, "")
}

// BookingStarted tells the rider the trip has started.
func (n *Notifier) BookingStarted(ctx context.Context, booking *domain.Booking) {
	n.send(ctx, events.TypeBookingStarted, booking, "")
}

// BookingCompleted tells the rider the trip has ended and payment is due.
func (n *Notifier) BookingCompleted(ctx context.Context, booking *domain.Booking) {
	n.send(ctx, events.TypeBookingCompleted, booking, "")
}

// BookingCancelled tells the assigned driver, if any, that the rider cancelled.
func (n *Notifier) BookingCancelled(ctx context.Context, booking *domain.Booking) {
	n.send(ctx, events.TypeBookingCancelled, booking, "")
}

// PaymentCompleted announces a settled booking.
func (n *Notifier) PaymentCompleted(ctx context.Context, booking *domain.Booking) {
	n.send(ctx, events.TypePaymentCompleted, booking, "")
}

// PaymentFailed announces a failed settlement attempt.
func (n *Notifier) PaymentFailed(ctx context.Context, booking *domain.Booking, reason string) {
	n.send(ctx, events.TypePaymentFailed, booking, reason)
}

func (n *Notifier) send(ctx context.Context, eventType events.Type, booking *domain.Booking, reason string) {
	if n == nil || n.publisher == nil {
		return
	}

	event := events.NewBookingEvent(eventType, booking, time.Now())
	event.Reason = reason

	// The request may already be finished by the time the broker answers.
	ctx = context.WithoutCancel(ctx)

	if n.queue == nil {
		n.publish(ctx, event)
		return
	}

	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		n.dropped(event, "notifier closed")
		return
	}
	select {
	case n.queue <- queuedEvent{ctx: ctx, event: event}:
	default:
		n.dropped(event, "event queue full")
	}
}

func (n *Notifier) publish(ctx context.Context, event events.BookingEvent) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := n.publisher.Publish(ctx, event); err != nil {
		n.log.WithError(err).WithFields(logrus.Fields{
			"event_type": event.Type,
			"booking_id": event.BookingID,
		}).Error("failed to publish booking event")
	}
}

func (n *Notifier) dropped(event events.BookingEvent, reason string) {
	n.log.WithFields(logrus.Fields{
		"event_type": event.Type,
		"booking_id": event.BookingID,
	}).Warn("dropping booking event: " + reason)
}
