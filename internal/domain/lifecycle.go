package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transitions take the booking by value and return the updated copy, leaving
// the caller's record untouched when a precondition fails.

// Accept assigns a pending booking to a driver and vehicle.
func (b Booking) Accept(driverID, vehicleID string, now time.Time) (Booking, error) {
	if b.Status != BookingStatusPending {
		return b, ErrInvalidState.WithMessage("This booking is no longer available")
	}
	if b.HasDriver() {
		return b, ErrInvalidState.WithMessage("This booking is already assigned")
	}
	b.DriverID = driverID
	b.VehicleID = vehicleID
	b.Status = BookingStatusAccepted
	b.UpdatedAt = now
	return b, nil
}

// Start moves an accepted booking to STARTED and stamps the pickup time.
func (b Booking) Start(driverID string, now time.Time) (Booking, error) {
	if !b.HasDriver() || b.DriverID != driverID {
		return b, ErrUnauthorized.WithMessagef("User '%s' is not authorized to access booking '%s'", driverID, b.ID)
	}
	if b.Status != BookingStatusAccepted {
		return b, ErrInvalidState.WithMessage("Cannot start ride. Must be in 'accepted' status")
	}
	b.Status = BookingStatusStarted
	b.PickupTime = now
	b.UpdatedAt = now
	return b, nil
}

// CompletionMetrics are the optional final trip values reported by the driver.
type CompletionMetrics struct {
	DistanceKm      *decimal.Decimal
	DurationMinutes *int
	Fare            *decimal.Decimal
}

// Validate rejects non-positive values.
func (m CompletionMetrics) Validate() error {
	if m.DistanceKm != nil && !m.DistanceKm.IsPositive() {
		return ErrInvalidInput.WithMessage("Final distance must be greater than 0")
	}
	if m.DurationMinutes != nil && *m.DurationMinutes <= 0 {
		return ErrInvalidInput.WithMessage("Final duration must be greater than 0")
	}
	if m.Fare != nil && !m.Fare.IsPositive() {
		return ErrInvalidInput.WithMessage("Final fare must be greater than 0")
	}
	return nil
}

// Complete finishes a started ride. A final distance recomputes the fare, and an
// explicit final fare overrides that. Payment eligibility is reopened unconditionally.
func (b Booking) Complete(driverID string, m CompletionMetrics, now time.Time) (Booking, error) {
	if !b.HasDriver() || b.DriverID != driverID {
		return b, ErrUnauthorized.WithMessagef("User '%s' is not authorized to access booking '%s'", driverID, b.ID)
	}
	if b.Status != BookingStatusStarted {
		return b, ErrInvalidState.WithMessage("Cannot complete ride. Must be in 'started' status")
	}
	if err := m.Validate(); err != nil {
		return b, err
	}

	if m.DistanceKm != nil {
		fare, err := CalculateFare(*m.DistanceKm, b.VehicleType)
		if err != nil {
			return b, err
		}
		b.TripDistanceKm = RoundMoney(*m.DistanceKm)
		b.FareAmount = fare
	}
	if m.DurationMinutes != nil {
		b.TripDurationMinutes = *m.DurationMinutes
	}
	if m.Fare != nil {
		b.FareAmount = RoundMoney(*m.Fare)
	}

	b.Status = BookingStatusCompleted
	b.DropoffTime = now
	b.PaymentStatus = PaymentStatusPending
	b.UpdatedAt = now
	return b, nil
}

// Cancel lets the rider withdraw a booking that has not started.
func (b Booking) Cancel(riderID string, now time.Time) (Booking, error) {
	if b.RiderID != riderID {
		return b, ErrUnauthorized.WithMessagef("User '%s' is not authorized to access booking '%s'", riderID, b.ID)
	}
	if b.Status != BookingStatusPending && b.Status != BookingStatusAccepted {
		return b, ErrInvalidState.WithMessagef("Cannot cancel booking in %s status", b.Status.Lower())
	}
	b.Status = BookingStatusCancelled
	b.UpdatedAt = now
	return b, nil
}

// CanView reports whether the caller may read the booking.
// Drivers see open bookings and their own; riders see only their own.
func (b Booking) CanView(id Identity) bool {
	switch id.Role {
	case RoleAdmin:
		return true
	case RoleRider:
		return b.RiderID == id.UserID
	case RoleDriver:
		if b.Status == BookingStatusPending && !b.HasDriver() {
			return true
		}
		return b.HasDriver() && b.DriverID == id.UserID
	default:
		return false
	}
}
