package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"booking/internal/domain"
	"booking/internal/payment"
	"booking/internal/repository"
)

const defaultFailureReason = "Unknown error"

// PaymentService settles the fare of completed bookings.
type PaymentService struct {
	tx       repository.Transactor
	bookings repository.BookingRepository
	provider payment.Provider
	currency string
	notifier *Notifier
	log      logrus.FieldLogger
	now      func() time.Time
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	tx repository.Transactor,
	bookings repository.BookingRepository,
	provider payment.Provider,
	currency string,
	notifier *Notifier,
	log logrus.FieldLogger,
) *PaymentService {
	return &PaymentService{
		tx:       tx,
		bookings: bookings,
		provider: provider,
		currency: currency,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// PaymentIntentResult is the handle a client uses to complete a card payment.
type PaymentIntentResult struct {
	ClientSecret    string
	PaymentIntentID string
	Amount          decimal.Decimal
	Currency        string
	BookingID       string
}

// CreatePaymentIntent opens a charge for the booking's fare. Nothing is written locally.
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, bookingID, userID string) (*PaymentIntentResult, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := booking.AuthorizePaymentParty(userID); err != nil {
		return nil, err
	}
	if err := booking.CheckPayable(); err != nil {
		return nil, err
	}

	intent, err := s.provider.CreatePaymentIntent(ctx, payment.IntentRequest{
		BookingID:   booking.ID,
		RiderID:     booking.RiderID,
		DriverID:    booking.DriverID,
		Amount:      booking.FareAmount,
		Currency:    s.currency,
		Description: "Payment for booking " + booking.ID,
	})
	if err != nil {
		s.log.WithError(err).WithField("booking_id", booking.ID).Error("failed to create payment intent")
		return nil, providerError(err)
	}

	s.log.WithFields(logrus.Fields{
		"booking_id":        booking.ID,
		"payment_intent_id": intent.ID,
	}).Info("payment intent created")

	return &PaymentIntentResult{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		Amount:          booking.FareAmount,
		Currency:        intent.Currency,
		BookingID:       booking.ID,
	}, nil
}

// ConfirmPaymentRequest contains the provider's settlement details.
type ConfirmPaymentRequest struct {
	BookingID string
	PaymentID string
	Amount    decimal.Decimal
	Method    string // defaults to card
	UserID    string
}

// ConfirmPayment records a settled card payment.
func (s *PaymentService) ConfirmPayment(ctx context.Context, req ConfirmPaymentRequest) (*PaymentDetails, error) {
	if strings.TrimSpace(req.PaymentID) == "" {
		return nil, ErrInvalidPaymentID
	}
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidPaymentAmount
	}

	booking, err := mutateBooking(ctx, s.tx, req.BookingID,
		func(_ repository.BookingRepository, current domain.Booking) (domain.Booking, error) {
			if err := current.AuthorizePaymentParty(req.UserID); err != nil {
				return current, err
			}
			return current.ConfirmPayment(req.PaymentID, strings.ToLower(strings.TrimSpace(req.Method)), s.now())
		})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"payment_id": booking.PaymentID,
		"method":     booking.PaymentMethod,
	}).Info("payment confirmed")

	s.notifier.PaymentCompleted(ctx, booking)

	details := newPaymentDetails(booking)
	return &details, nil
}

// MarkFailed records a failed payment attempt regardless of booking status.
func (s *PaymentService) MarkFailed(ctx context.Context, bookingID, userID, reason string) error {
	if strings.TrimSpace(reason) == "" {
		reason = defaultFailureReason
	}

	booking, err := mutateBooking(ctx, s.tx, bookingID,
		func(_ repository.BookingRepository, current domain.Booking) (domain.Booking, error) {
			if err := current.AuthorizePaymentParty(userID); err != nil {
				return current, err
			}
			return current.MarkPaymentFailed(s.now()), nil
		})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"user_id":    userID,
		"reason":     reason,
	}).Warn("payment marked as failed")

	s.notifier.PaymentFailed(ctx, booking, reason)
	return nil
}

// MarkCashComplete records a cash settlement. Only the assigned driver may do this.
func (s *PaymentService) MarkCashComplete(ctx context.Context, bookingID, driverID string) error {
	booking, err := mutateBooking(ctx, s.tx, bookingID,
		func(_ repository.BookingRepository, current domain.Booking) (domain.Booking, error) {
			return current.MarkCashPaid(driverID, s.now())
		})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"driver_id":  driverID,
	}).Info("cash payment recorded")

	s.notifier.PaymentCompleted(ctx, booking)
	return nil
}

// PaymentDetails is a snapshot of a booking's settlement state.
type PaymentDetails struct {
	BookingID     string
	PaymentID     string
	Amount        decimal.Decimal
	PaymentMethod string
	PaymentStatus domain.PaymentStatus
	PaidAt        time.Time
	Message       string
}

// GetPaymentDetails returns the settlement state to the rider or the assigned driver.
func (s *PaymentService) GetPaymentDetails(ctx context.Context, bookingID, userID string) (*PaymentDetails, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := booking.AuthorizePaymentParty(userID); err != nil {
		return nil, err
	}

	details := newPaymentDetails(booking)
	return &details, nil
}

func (s *PaymentService) getBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return booking, nil
}

func newPaymentDetails(b *domain.Booking) PaymentDetails {
	details := PaymentDetails{
		BookingID:     b.ID,
		PaymentID:     b.PaymentID,
		Amount:        b.FareAmount,
		PaymentMethod: b.PaymentMethod,
		PaymentStatus: b.PaymentStatus,
		PaidAt:        b.PaidAt,
	}

	switch b.PaymentStatus {
	case domain.PaymentStatusCompleted:
		details.Message = "Payment completed successfully"
	case domain.PaymentStatusFailed:
		details.Message = "Payment failed"
	default:
		details.Message = "Payment pending"
	}
	return details
}

// providerError surfaces the processor's message without exposing internals.
func providerError(err error) error {
	msg := domain.ErrPaymentProvider.Message
	var perr *payment.Error
	if errors.As(err, &perr) && perr.Message != "" {
		msg += ": " + perr.Message
	}
	return domain.ErrPaymentProvider.WithMessage(msg).Wrap(err)
}
