package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"booking/internal/domain"
	"booking/internal/repository"
)

// Receipt is the fare breakdown of a completed booking.
type Receipt struct {
	BookingID       string
	RiderID         string
	DriverID        string
	VehicleType     domain.VehicleType
	PickupAddress   string
	DropoffAddress  string
	DistanceKm      decimal.Decimal
	DurationMinutes int

	BaseFare     decimal.Decimal
	PerKmRate    decimal.Decimal
	DistanceFare decimal.Decimal
	// Adjustment is non-zero when the driver reported an explicit final fare.
	Adjustment decimal.Decimal
	TotalFare  decimal.Decimal

	PaymentStatus domain.PaymentStatus
	PaymentMethod string
	PaidAt        time.Time
	PickupTime    time.Time
	DropoffTime   time.Time
	IssuedAt      time.Time
}

// ReceiptService builds receipts for completed bookings.
type ReceiptService struct {
	bookings repository.BookingRepository
	now      func() time.Time
}

// NewReceiptService creates a new ReceiptService.
func NewReceiptService(bookings repository.BookingRepository) *ReceiptService {
	return &ReceiptService{
		bookings: bookings,
		now:      time.Now,
	}
}

// GenerateReceipt returns the breakdown to the rider or the assigned driver.
func (s *ReceiptService) GenerateReceipt(ctx context.Context, bookingID, userID string) (*Receipt, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, translateRepoError(err)
	}
	if err := booking.AuthorizePaymentParty(userID); err != nil {
		return nil, err
	}
	if booking.Status != domain.BookingStatusCompleted {
		return nil, domain.ErrInvalidState.WithMessagef(
			"Receipt is only available for completed bookings. Current status: %s", booking.Status)
	}

	rate, err := domain.RateFor(booking.VehicleType)
	if err != nil {
		return nil, err
	}

	distanceFare := domain.RoundMoney(rate.PerKm.Mul(booking.TripDistanceKm))
	computed := rate.Base.Add(distanceFare)

	return &Receipt{
		BookingID:       booking.ID,
		RiderID:         booking.RiderID,
		DriverID:        booking.DriverID,
		VehicleType:     booking.VehicleType,
		PickupAddress:   booking.Pickup.Address,
		DropoffAddress:  booking.Dropoff.Address,
		DistanceKm:      booking.TripDistanceKm,
		DurationMinutes: booking.TripDurationMinutes,
		BaseFare:        rate.Base,
		PerKmRate:       rate.PerKm,
		DistanceFare:    distanceFare,
		Adjustment:      booking.FareAmount.Sub(computed),
		TotalFare:       booking.FareAmount,
		PaymentStatus:   booking.PaymentStatus,
		PaymentMethod:   booking.PaymentMethod,
		PaidAt:          booking.PaidAt,
		PickupTime:      booking.PickupTime,
		DropoffTime:     booking.DropoffTime,
		IssuedAt:        s.now(),
	}, nil
}

// FormatReceipt formats the receipt as plain text (for email/print).
func (s *ReceiptService) FormatReceipt(receipt *Receipt) string {
	return `
=====================================
        RIDE RECEIPT
=====================================
Booking ID: ` + receipt.BookingID + `
Date: ` + receipt.IssuedAt.Format("Jan 02, 2006 3:04 PM") + `

TRIP DETAILS
-------------------------------------
Pickup:   ` + receipt.PickupAddress + `
Dropoff:  ` + receipt.DropoffAddress + `
Vehicle:  ` + string(receipt.VehicleType) + `
Duration: ` + formatMinutes(receipt.DurationMinutes) + `
Distance: ` + receipt.DistanceKm.StringFixed(2) + ` km

FARE BREAKDOWN
-------------------------------------
Base Fare:        ` + receipt.BaseFare.StringFixed(2) + `
Distance (` + receipt.PerKmRate.StringFixed(2) + `/km): ` + receipt.DistanceFare.StringFixed(2) + `
Adjustment:       ` + receipt.Adjustment.StringFixed(2) + `
-------------------------------------
TOTAL:            ` + receipt.TotalFare.StringFixed(2) + `

PAYMENT
-------------------------------------
Method: ` + valueOrDash(receipt.PaymentMethod) + `
Status: ` + string(receipt.PaymentStatus) + `

=====================================
     Thank you for riding with us!
=====================================
`
}

func formatMinutes(minutes int) string {
	return fmt.Sprintf("%d min", minutes)
}

func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
