package service

import (
	"context"
	"math"
	"strings"
	"time"

	"booking/internal/domain"
	"booking/internal/repository"
)

const (
	DefaultPageSize = 10
	AdminPageSize   = 100
	MaxPageSize     = 100
	// MaxPage keeps Page*Size within int range for any clamped size.
	MaxPage         = math.MaxInt32

	FilterPickup     = "pickup"
	FilterDropoff    = "dropoff"
	FilterTravelDate = "travel_date"

	travelDateLayout = "2006-01-02"
)

// PageResult is one page of a booking listing.
type PageResult struct {
	Content       []BookingView
	Page          int
	Size          int
	TotalElements int64
	TotalPages    int
	Last          bool
}

// QueryService serves read-only, enriched booking listings.
type QueryService struct {
	bookings repository.BookingRepository
	enricher *Enricher
}

// NewQueryService creates a new QueryService.
func NewQueryService(bookings repository.BookingRepository, enricher *Enricher) *QueryService {
	return &QueryService{
		bookings: bookings,
		enricher: enricher,
	}
}

// RiderBookingsQuery selects a rider's bookings. Status takes precedence over
// the address or travel date search.
type RiderBookingsQuery struct {
	RiderID    string
	Status     string
	FilterType string
	SearchTerm string
	Page       int
	Size       int
}

// RiderBookings lists the rider's own bookings, newest first.
func (s *QueryService) RiderBookings(ctx context.Context, q RiderBookingsQuery) (*PageResult, error) {
	filter := repository.BookingFilter{RiderID: q.RiderID}
	term := strings.TrimSpace(q.SearchTerm)

	switch filterType := strings.ToLower(strings.TrimSpace(q.FilterType)); {
	case strings.TrimSpace(q.Status) != "":
		status, err := domain.ParseBookingStatus(q.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = status
	case term == "":
	case filterType == FilterPickup:
		filter.PickupContains = term
	case filterType == FilterDropoff:
		filter.DropoffContains = term
	case filterType == FilterTravelDate:
		day, err := time.ParseInLocation(travelDateLayout, term, time.UTC)
		if err != nil {
			return nil, domain.ErrInvalidDate
		}
		filter.CreatedFrom = day
		filter.CreatedBefore = day.AddDate(0, 0, 1)
	}

	return s.list(ctx, filter, q.Page, q.Size, domain.RoleRider)
}

// DriverBookings lists bookings assigned to the driver, optionally by status.
func (s *QueryService) DriverBookings(ctx context.Context, driverID, status string, page, size int) (*PageResult, error) {
	filter := repository.BookingFilter{DriverID: driverID}
	if strings.TrimSpace(status) != "" {
		st, err := domain.ParseBookingStatus(status)
		if err != nil {
			return nil, err
		}
		filter.Status = st
	}

	return s.list(ctx, filter, page, size, domain.RoleDriver)
}

// ActiveBooking returns the driver's ACCEPTED or STARTED booking, or nil when idle.
func (s *QueryService) ActiveBooking(ctx context.Context, driverID string) (*BookingView, error) {
	booking, err := s.bookings.GetActiveByDriverID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, nil
	}

	view := s.enricher.ForDriver(ctx, booking)
	return &view, nil
}

// AllBookings lists every booking for administrators, optionally by status.
func (s *QueryService) AllBookings(ctx context.Context, status string, page, size int) (*PageResult, error) {
	var filter repository.BookingFilter
	if strings.TrimSpace(status) != "" {
		st, err := domain.ParseBookingStatus(status)
		if err != nil {
			return nil, err
		}
		filter.Status = st
	}

	return s.list(ctx, filter, page, size, domain.RoleAdmin)
}

// GetDetails returns a booking the caller is allowed to see, shaped for the caller's role.
func (s *QueryService) GetDetails(ctx context.Context, bookingID string, caller domain.Identity) (*BookingView, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, translateRepoError(err)
	}

	if !booking.CanView(caller) {
		return nil, domain.ErrUnauthorized.WithMessagef(
			"User '%s' is not authorized to access booking '%s'", caller.UserID, bookingID)
	}

	view := s.enricher.For(ctx, booking, caller.Role)
	return &view, nil
}

func (s *QueryService) list(ctx context.Context, filter repository.BookingFilter, page, size int, role domain.Role) (*PageResult, error) {
	req := NormalizePage(page, size)

	bookings, total, err := s.bookings.List(ctx, filter, req)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(req.Size) - 1) / int64(req.Size))
	return &PageResult{
		Content:       s.enricher.forAll(ctx, bookings, role),
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    totalPages,
		Last:          req.Page >= totalPages-1,
	}, nil
}

// NormalizePage clamps page to [0, MaxPage] and size to [1, MaxPageSize].
func NormalizePage(page, size int) repository.PageRequest {
	if page < 0 {
		page = 0
	}
	if page > MaxPage {
		page = MaxPage
	}
	if size < 1 {
		size = 1
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return repository.PageRequest{Page: page, Size: size}
}
