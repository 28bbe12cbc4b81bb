package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"booking/internal/domain"
)

// Type names a booking lifecycle event. It doubles as the routing key.
type Type string

const (
	TypeBookingCreated   Type = "booking.created"
	TypeBookingAccepted  Type = "booking.accepted"
	TypeBookingStarted   Type = "booking.started"
	TypeBookingCompleted Type = "booking.completed"
	TypeBookingCancelled Type = "booking.cancelled"
	TypePaymentCompleted Type = "payment.completed"
	TypePaymentFailed    Type = "payment.failed"
)

// BookingEvent is published after a booking change commits.
type BookingEvent struct {
	ID            string          `json:"id"`
	Type          Type            `json:"type"`
	BookingID     string          `json:"bookingId"`
	RiderID       string          `json:"riderId"`
	DriverID      string          `json:"driverId,omitempty"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"paymentStatus"`
	Fare          decimal.Decimal `json:"fare"`
	Reason        string          `json:"reason,omitempty"`
	OccurredAt    time.Time       `json:"occurredAt"`
}

// NewBookingEvent snapshots a booking into an event.
func NewBookingEvent(t Type, b *domain.Booking, now time.Time) BookingEvent {
	return BookingEvent{
		ID:            uuid.NewString(),
		Type:          t,
		BookingID:     b.ID,
		RiderID:       b.RiderID,
		DriverID:      b.DriverID,
		Status:        string(b.Status),
		PaymentStatus: string(b.PaymentStatus),
		Fare:          b.FareAmount,
		OccurredAt:    now.UTC(),
	}
}

// Publisher delivers booking events to a broker.
type Publisher interface {
	Publish(ctx context.Context, event BookingEvent) error
	Close() error
}
