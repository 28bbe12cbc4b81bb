package domain

import (
	"strings"
	"time"
)

// PaymentStatus is the settlement sub-state of a booking.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// Lower returns the presentation form of the payment status.
func (s PaymentStatus) Lower() string { return strings.ToLower(string(s)) }

const (
	PaymentMethodCard = "card"
	PaymentMethodCash = "cash"
)

// AuthorizePaymentParty fails unless userID is the rider or the assigned driver.
func (b Booking) AuthorizePaymentParty(userID string) error {
	if !b.IsParty(userID) {
		return ErrUnauthorized.WithMessagef("User '%s' is not authorized to access booking '%s'", userID, b.ID)
	}
	return nil
}

// CheckPayable fails unless the booking is completed and not yet paid.
func (b Booking) CheckPayable() error {
	if b.Status != BookingStatusCompleted {
		return ErrInvalidState.WithMessagef(
			"Payment can only be made for completed bookings. Current status: %s", b.Status)
	}
	if b.PaymentStatus == PaymentStatusCompleted {
		return ErrAlreadyPaid
	}
	return nil
}

// ConfirmPayment records a provider-settled payment. An empty method defaults to card.
func (b Booking) ConfirmPayment(paymentID, method string, now time.Time) (Booking, error) {
	if b.Status != BookingStatusCompleted {
		return b, ErrInvalidState.WithMessage("Can only update payment for completed bookings")
	}
	if b.PaymentStatus == PaymentStatusCompleted {
		return b, ErrAlreadyPaid
	}
	if method == "" {
		method = PaymentMethodCard
	}
	b.PaymentID = paymentID
	b.PaymentMethod = method
	b.PaymentStatus = PaymentStatusCompleted
	b.PaidAt = now
	b.UpdatedAt = now
	return b, nil
}

// MarkPaymentFailed sets the payment sub-state to FAILED regardless of booking status.
func (b Booking) MarkPaymentFailed(now time.Time) Booking {
	b.PaymentStatus = PaymentStatusFailed
	b.UpdatedAt = now
	return b
}

// MarkCashPaid records a cash settlement confirmed by the assigned driver.
func (b Booking) MarkCashPaid(driverID string, now time.Time) (Booking, error) {
	if !b.HasDriver() || b.DriverID != driverID {
		return b, ErrUnauthorized.WithMessage("Only the assigned driver can confirm a cash payment")
	}
	if b.Status != BookingStatusCompleted {
		return b, ErrInvalidState.WithMessage("Can only mark payment complete for completed bookings")
	}
	if b.PaymentStatus == PaymentStatusCompleted {
		return b, ErrAlreadyPaid
	}
	b.PaymentStatus = PaymentStatusCompleted
	b.PaymentMethod = PaymentMethodCash
	b.PaidAt = now
	b.UpdatedAt = now
	return b, nil
}
