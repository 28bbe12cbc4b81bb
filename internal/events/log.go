package events

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogPublisher writes events to the application log. It is the default when no broker is configured.
type LogPublisher struct {
	log logrus.FieldLogger
}

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher(log logrus.FieldLogger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(ctx context.Context, event BookingEvent) error {
	p.log.WithFields(logrus.Fields{
		"event_id":       event.ID,
		"event_type":     event.Type,
		"booking_id":     event.BookingID,
		"rider_id":       event.RiderID,
		"driver_id":      event.DriverID,
		"status":         event.Status,
		"payment_status": event.PaymentStatus,
	}).Info("booking event")
	return nil
}

func (p *LogPublisher) Close() error { return nil }

var _ Publisher = (*LogPublisher)(nil)
