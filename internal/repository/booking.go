package repository

import (
	"context"
	"time"

	"booking/internal/domain"
)

// BookingFilter narrows a booking listing. The zero value matches every booking.
type BookingFilter struct {
	RiderID  string
	DriverID string
	Status   domain.BookingStatus

	// Case-insensitive substring matches on the addresses.
	PickupContains  string
	DropoffContains string

	// CreatedFrom is inclusive, CreatedBefore exclusive.
	CreatedFrom   time.Time
	CreatedBefore time.Time
}

// PageRequest is a zero-based page of a listing.
type PageRequest struct {
	Page int
	Size int
}

// Offset returns the number of rows to skip.
func (p PageRequest) Offset() int { return p.Page * p.Size }

// BookingRepository defines the persistence operations for bookings.
type BookingRepository interface {
	// Create persists a new booking.
	Create(ctx context.Context, booking *domain.Booking) error

	// GetByID retrieves a booking by ID.
	GetByID(ctx context.Context, id string) (*domain.Booking, error)

	// GetByIDForUpdate retrieves a booking and locks its row for the rest of the transaction.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Booking, error)

	// Update writes the booking if its version still matches the stored one,
	// then advances booking.Version. Returns ErrConcurrentUpdate otherwise.
	Update(ctx context.Context, booking *domain.Booking) error

	// GetActiveByDriverID returns the driver's most recent ACCEPTED or STARTED booking, or nil.
	GetActiveByDriverID(ctx context.Context, driverID string) (*domain.Booking, error)

	// ListAvailable returns unassigned PENDING bookings, oldest request first.
	// An empty vehicle type matches all classes.
	ListAvailable(ctx context.Context, vehicleType domain.VehicleType) ([]*domain.Booking, error)

	// List returns one page of matching bookings, newest first, and the total match count.
	List(ctx context.Context, filter BookingFilter, page PageRequest) ([]*domain.Booking, int64, error)
}

// Transactor runs fn against a transaction-scoped repository.
// The transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(repo BookingRepository) error) error
}
