package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// VehicleType is the vehicle class a rider asks for. It selects the fare table row.
type VehicleType string

const (
	VehicleTypeAuto  VehicleType = "AUTO"
	VehicleTypeBike  VehicleType = "BIKE"
	VehicleTypeSedan VehicleType = "SEDAN"
	VehicleTypeSUV   VehicleType = "SUV"
)

// ParseVehicleType normalizes a vehicle type name, ignoring case and surrounding space.
func ParseVehicleType(s string) (VehicleType, error) {
	switch vt := VehicleType(strings.ToUpper(strings.TrimSpace(s))); vt {
	case VehicleTypeAuto, VehicleTypeBike, VehicleTypeSedan, VehicleTypeSUV:
		return vt, nil
	}
	return "", ErrInvalidVehicleType.WithMessagef("Invalid vehicle type '%s'. Valid types are: AUTO, BIKE, SEDAN, SUV", s)
}

// Lower returns the presentation form of the vehicle type.
func (v VehicleType) Lower() string { return strings.ToLower(string(v)) }

// BookingStatus represents where a booking is in its lifecycle.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusAccepted  BookingStatus = "ACCEPTED"
	BookingStatusStarted   BookingStatus = "STARTED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// ParseBookingStatus normalizes a status filter value.
func ParseBookingStatus(s string) (BookingStatus, error) {
	switch st := BookingStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case BookingStatusPending, BookingStatusAccepted, BookingStatusStarted,
		BookingStatusCompleted, BookingStatusCancelled:
		return st, nil
	}
	return "", ErrInvalidStatusFilter.WithMessagef(
		"Invalid booking status: %s. Valid values: PENDING, ACCEPTED, STARTED, COMPLETED, CANCELLED", s)
}

// IsActive reports whether a driver holding a booking in this status is busy.
func (s BookingStatus) IsActive() bool {
	return s == BookingStatusAccepted || s == BookingStatusStarted
}

// Lower returns the presentation form of the status.
func (s BookingStatus) Lower() string { return strings.ToLower(string(s)) }

// Location is a point on the map together with its street address.
type Location struct {
	Latitude  float64
	Longitude float64
	Address   string
}

// Booking is a single ride request and its fulfillment record.
// Zero time values mean "not set yet"; an empty DriverID means unassigned.
type Booking struct {
	ID        string
	RiderID   string
	DriverID  string
	VehicleID string

	Pickup      Location
	Dropoff     Location
	VehicleType VehicleType

	FareAmount          decimal.Decimal
	TripDistanceKm      decimal.Decimal
	TripDurationMinutes int

	Status BookingStatus

	PaymentStatus PaymentStatus
	PaymentID     string
	PaymentMethod string
	PaidAt        time.Time

	RequestTime time.Time
	PickupTime  time.Time
	DropoffTime time.Time

	RiderRating    int // 0 when not rated
	DriverRating   int
	RiderFeedback  string
	DriverFeedback string

	// Version is bumped by the store on every write.
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasDriver reports whether a driver has been assigned.
func (b *Booking) HasDriver() bool { return b.DriverID != "" }

// IsParty reports whether userID is the rider or the assigned driver.
func (b *Booking) IsParty(userID string) bool {
	if userID == "" {
		return false
	}
	return b.RiderID == userID || b.DriverID == userID
}
