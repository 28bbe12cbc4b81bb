package handler

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"booking/internal/domain"
	"booking/internal/service"
)

// BookingResponse holds the fields every booking view shares.
type BookingResponse struct {
	ID                  string      `json:"id"`
	RiderID             string      `json:"riderId"`
	DriverID            string      `json:"driverId,omitempty"`
	VehicleID           string      `json:"vehicleId,omitempty"`
	PickupAddress       string      `json:"pickupAddress"`
	DropoffAddress      string      `json:"dropoffAddress"`
	VehicleType         string      `json:"vehicleType"`
	FareAmount          json.Number `json:"fareAmount"`
	TripDistanceKm      json.Number `json:"tripDistanceKm"`
	TripDurationMinutes int         `json:"tripDurationMinutes"`
	BookingStatus       string      `json:"bookingStatus"`
	PaymentID           string      `json:"paymentId,omitempty"`
	PaymentStatus       string      `json:"paymentStatus"`
	PaymentMethod       string      `json:"paymentMethod,omitempty"`
	PaidAt              *time.Time  `json:"paidAt,omitempty"`
	RequestTime         *time.Time  `json:"requestTime,omitempty"`
	PickupTime          *time.Time  `json:"pickupTime,omitempty"`
	DropoffTime         *time.Time  `json:"dropoffTime,omitempty"`
	RiderRating         *int        `json:"riderRating,omitempty"`
	DriverRating        *int        `json:"driverRating,omitempty"`
	RiderFeedback       string      `json:"riderFeedback,omitempty"`
	DriverFeedback      string      `json:"driverFeedback,omitempty"`
	CreatedAt           time.Time   `json:"createdAt"`
	UpdatedAt           time.Time   `json:"updatedAt"`
}

// Coordinates exposes the raw pickup and dropoff points to drivers and admins.
type Coordinates struct {
	PickupLatitude   float64 `json:"pickupLatitude"`
	PickupLongitude  float64 `json:"pickupLongitude"`
	DropoffLatitude  float64 `json:"dropoffLatitude"`
	DropoffLongitude float64 `json:"dropoffLongitude"`
}

// RiderBookingResponse is the rider's view of a booking.
type RiderBookingResponse struct {
	BookingResponse
	DriverName  string `json:"driverName,omitempty"`
	DriverPhone string `json:"driverPhone,omitempty"`
}

// DriverBookingResponse is the driver's view of a booking.
type DriverBookingResponse struct {
	BookingResponse
	Coordinates
	RiderName  string `json:"riderName,omitempty"`
	RiderPhone string `json:"riderPhone,omitempty"`
}

// AdminBookingResponse is the admin's view of a booking.
type AdminBookingResponse struct {
	BookingResponse
	Coordinates
	RiderName   string `json:"riderName,omitempty"`
	RiderPhone  string `json:"riderPhone,omitempty"`
	DriverName  string `json:"driverName,omitempty"`
	DriverPhone string `json:"driverPhone,omitempty"`
}

// PageResponse is one page of a listing.
type PageResponse[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Last          bool  `json:"last"`
}

func newBookingResponse(b *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:                  b.ID,
		RiderID:             b.RiderID,
		DriverID:            b.DriverID,
		VehicleID:           b.VehicleID,
		PickupAddress:       b.Pickup.Address,
		DropoffAddress:      b.Dropoff.Address,
		VehicleType:         b.VehicleType.Lower(),
		FareAmount:          money(b.FareAmount),
		TripDistanceKm:      money(b.TripDistanceKm),
		TripDurationMinutes: b.TripDurationMinutes,
		BookingStatus:       b.Status.Lower(),
		PaymentID:           b.PaymentID,
		PaymentStatus:       b.PaymentStatus.Lower(),
		PaymentMethod:       b.PaymentMethod,
		PaidAt:              optionalTime(b.PaidAt),
		RequestTime:         optionalTime(b.RequestTime),
		PickupTime:          optionalTime(b.PickupTime),
		DropoffTime:         optionalTime(b.DropoffTime),
		RiderRating:         optionalRating(b.RiderRating),
		DriverRating:        optionalRating(b.DriverRating),
		RiderFeedback:       b.RiderFeedback,
		DriverFeedback:      b.DriverFeedback,
		CreatedAt:           b.CreatedAt,
		UpdatedAt:           b.UpdatedAt,
	}
}

func newCoordinates(b *domain.Booking) Coordinates {
	return Coordinates{
		PickupLatitude:   b.Pickup.Latitude,
		PickupLongitude:  b.Pickup.Longitude,
		DropoffLatitude:  b.Dropoff.Latitude,
		DropoffLongitude: b.Dropoff.Longitude,
	}
}

func newRiderBookingResponse(v service.BookingView) RiderBookingResponse {
	resp := RiderBookingResponse{BookingResponse: newBookingResponse(&v.Booking)}
	if v.Driver != nil {
		resp.DriverName = v.Driver.Name
		resp.DriverPhone = v.Driver.Phone
	}
	return resp
}

func newDriverBookingResponse(v service.BookingView) DriverBookingResponse {
	resp := DriverBookingResponse{
		BookingResponse: newBookingResponse(&v.Booking),
		Coordinates:     newCoordinates(&v.Booking),
	}
	if v.Rider != nil {
		resp.RiderName = v.Rider.Name
		resp.RiderPhone = v.Rider.Phone
	}
	return resp
}

func newAdminBookingResponse(v service.BookingView) AdminBookingResponse {
	resp := AdminBookingResponse{
		BookingResponse: newBookingResponse(&v.Booking),
		Coordinates:     newCoordinates(&v.Booking),
	}
	if v.Rider != nil {
		resp.RiderName = v.Rider.Name
		resp.RiderPhone = v.Rider.Phone
	}
	if v.Driver != nil {
		resp.DriverName = v.Driver.Name
		resp.DriverPhone = v.Driver.Phone
	}
	return resp
}

func newPageResponse[T any](page *service.PageResult, convert func(service.BookingView) T) PageResponse[T] {
	content := make([]T, 0, len(page.Content))
	for _, v := range page.Content {
		content = append(content, convert(v))
	}
	return PageResponse[T]{
		Content:       content,
		Page:          page.Page,
		Size:          page.Size,
		TotalElements: page.TotalElements,
		TotalPages:    page.TotalPages,
		Last:          page.Last,
	}
}

// PaymentIntentResponse is returned when a card payment is opened.
type PaymentIntentResponse struct {
	ClientSecret    string      `json:"clientSecret"`
	PaymentIntentID string      `json:"paymentIntentId"`
	Amount          json.Number `json:"amount"`
	Currency        string      `json:"currency"`
	BookingID       string      `json:"bookingId"`
}

// PaymentDetailsResponse is the settlement state of a booking.
type PaymentDetailsResponse struct {
	BookingID     string      `json:"bookingId"`
	PaymentID     string      `json:"paymentId,omitempty"`
	Amount        json.Number `json:"amount"`
	PaymentMethod string      `json:"paymentMethod,omitempty"`
	PaymentStatus string      `json:"paymentStatus"`
	PaidAt        *time.Time  `json:"paidAt,omitempty"`
	Message       string      `json:"message"`
}

func newPaymentDetailsResponse(d *service.PaymentDetails) PaymentDetailsResponse {
	return PaymentDetailsResponse{
		BookingID:     d.BookingID,
		PaymentID:     d.PaymentID,
		Amount:        money(d.Amount),
		PaymentMethod: d.PaymentMethod,
		PaymentStatus: d.PaymentStatus.Lower(),
		PaidAt:        optionalTime(d.PaidAt),
		Message:       d.Message,
	}
}

// ReceiptResponse is the fare breakdown of a completed booking.
type ReceiptResponse struct {
	BookingID       string      `json:"bookingId"`
	RiderID         string      `json:"riderId"`
	DriverID        string      `json:"driverId"`
	VehicleType     string      `json:"vehicleType"`
	PickupAddress   string      `json:"pickupAddress"`
	DropoffAddress  string      `json:"dropoffAddress"`
	DistanceKm      json.Number `json:"distanceKm"`
	DurationMinutes int         `json:"durationMinutes"`
	BaseFare        json.Number `json:"baseFare"`
	PerKmRate       json.Number `json:"perKmRate"`
	DistanceFare    json.Number `json:"distanceFare"`
	Adjustment      json.Number `json:"adjustment"`
	TotalFare       json.Number `json:"totalFare"`
	PaymentStatus   string      `json:"paymentStatus"`
	PaymentMethod   string      `json:"paymentMethod,omitempty"`
	PaidAt          *time.Time  `json:"paidAt,omitempty"`
	PickupTime      *time.Time  `json:"pickupTime,omitempty"`
	DropoffTime     *time.Time  `json:"dropoffTime,omitempty"`
	IssuedAt        time.Time   `json:"issuedAt"`
}

func newReceiptResponse(r *service.Receipt) ReceiptResponse {
	return ReceiptResponse{
		BookingID:       r.BookingID,
		RiderID:         r.RiderID,
		DriverID:        r.DriverID,
		VehicleType:     r.VehicleType.Lower(),
		PickupAddress:   r.PickupAddress,
		DropoffAddress:  r.DropoffAddress,
		DistanceKm:      money(r.DistanceKm),
		DurationMinutes: r.DurationMinutes,
		BaseFare:        money(r.BaseFare),
		PerKmRate:       money(r.PerKmRate),
		DistanceFare:    money(r.DistanceFare),
		Adjustment:      money(r.Adjustment),
		TotalFare:       money(r.TotalFare),
		PaymentStatus:   r.PaymentStatus.Lower(),
		PaymentMethod:   r.PaymentMethod,
		PaidAt:          optionalTime(r.PaidAt),
		PickupTime:      optionalTime(r.PickupTime),
		DropoffTime:     optionalTime(r.DropoffTime),
		IssuedAt:        r.IssuedAt,
	}
}

// money renders an amount as a JSON number with two decimal places.
func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func optionalRating(r int) *int {
	if r == 0 {
		return nil
	}
	return &r
}
