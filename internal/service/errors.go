package service

import (
	"errors"

	"booking/internal/domain"
	"booking/internal/repository"
)

var (
	// ErrInvalidBookingID is returned when booking ID is empty.
	ErrInvalidBookingID = &domain.Error{Kind: domain.KindInvalidInput, Code: "INVALID_BOOKING_ID", Message: "Booking ID is required"}

	// ErrInvalidVehicleID is returned when a driver accepts without naming a vehicle.
	ErrInvalidVehicleID = &domain.Error{Kind: domain.KindInvalidInput, Code: "INVALID_VEHICLE_ID", Message: "Vehicle ID is required"}

	// ErrInvalidPickupLocation is returned when pickup coordinates or address are invalid.
	ErrInvalidPickupLocation = &domain.Error{Kind: domain.KindInvalidInput, Code: "INVALID_PICKUP", Message: "Invalid pickup location"}

	// ErrInvalidDropoffLocation is returned when dropoff coordinates or address are invalid.
	ErrInvalidDropoffLocation = &domain.Error{Kind: domain.KindInvalidInput, Code: "INVALID_DROPOFF", Message: "Invalid dropoff location"}

	// ErrInvalidPaymentAmount is returned when payment amount is not positive.
	ErrInvalidPaymentAmount = &domain.Error{Kind: domain.KindInvalidInput, Code: "INVALID_PAYMENT_AMOUNT", Message: "Amount must be greater than 0"}

	// ErrInvalidPaymentID is returned when the provider payment ID is empty.
	ErrInvalidPaymentID = &domain.Error{Kind: domain.KindInvalidInput, Code: "INVALID_PAYMENT_ID", Message: "Payment ID is required"}

	// ErrConcurrentModification is returned when another writer changed the booking first.
	ErrConcurrentModification = domain.ErrInvalidState.WithMessage("Booking was modified by another request. Please retry")
)

// translateRepoError maps storage errors onto the domain taxonomy.
func translateRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return domain.ErrBookingNotFound
	case errors.Is(err, repository.ErrConcurrentUpdate):
		return ErrConcurrentModification.Wrap(err)
	default:
		return err
	}
}

func isValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

func isValidLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180
}
