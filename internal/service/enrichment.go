package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"booking/internal/domain"
	"booking/internal/userdirectory"
)

var errDirectoryDisabled = errors.New("user directory not configured")

// Party is the display data of one side of a booking.
type Party struct {
	Name  string
	Phone string
}

// BookingView is a booking with best-effort details of its parties.
// Rider and Driver are nil when not requested or when the lookup failed.
type BookingView struct {
	domain.Booking
	Rider  *Party
	Driver *Party
}

// Enricher attaches party profiles from the user directory to bookings.
type Enricher struct {
	directory userdirectory.Directory
	log       logrus.FieldLogger
}

// NewEnricher creates a new Enricher. A nil directory disables enrichment.
func NewEnricher(directory userdirectory.Directory, log logrus.FieldLogger) *Enricher {
	return &Enricher{
		directory: directory,
		log:       log,
	}
}

// LookupParty returns the party's display data or the reason it is unavailable.
func (e *Enricher) LookupParty(ctx context.Context, userID string) (*Party, error) {
	if e == nil || e.directory == nil {
		return nil, errDirectoryDisabled
	}

	profile, err := e.directory.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, userdirectory.ErrUserNotFound
	}

	return &Party{Name: profile.DisplayName(), Phone: profile.PhoneNumber}, nil
}

// party discards lookup errors after logging them.
func (e *Enricher) party(ctx context.Context, role, userID, bookingID string) *Party {
	if userID == "" {
		return nil
	}

	p, err := e.LookupParty(ctx, userID)
	if errors.Is(err, errDirectoryDisabled) {
		return nil
	}
	if err != nil {
		e.log.WithError(err).WithFields(logrus.Fields{
			"booking_id": bookingID,
			"user_id":    userID,
			"party":      role,
		}).Warn("failed to fetch user details")
		return nil
	}
	return p
}

// ForRider shows the rider who is driving.
func (e *Enricher) ForRider(ctx context.Context, b *domain.Booking) BookingView {
	return BookingView{Booking: *b, Driver: e.party(ctx, "driver", b.DriverID, b.ID)}
}

// ForDriver shows the driver who is riding.
func (e *Enricher) ForDriver(ctx context.Context, b *domain.Booking) BookingView {
	return BookingView{Booking: *b, Rider: e.party(ctx, "rider", b.RiderID, b.ID)}
}

// ForAdmin shows both parties.
func (e *Enricher) ForAdmin(ctx context.Context, b *domain.Booking) BookingView {
	return BookingView{
		Booking: *b,
		Rider:   e.party(ctx, "rider", b.RiderID, b.ID),
		Driver:  e.party(ctx, "driver", b.DriverID, b.ID),
	}
}

// For picks the view matching the caller's role.
func (e *Enricher) For(ctx context.Context, b *domain.Booking, role domain.Role) BookingView {
	switch role {
	case domain.RoleDriver:
		return e.ForDriver(ctx, b)
	case domain.RoleAdmin:
		return e.ForAdmin(ctx, b)
	default:
		return e.ForRider(ctx, b)
	}
}

func (e *Enricher) forAll(ctx context.Context, bookings []*domain.Booking, role domain.Role) []BookingView {
	views := make([]BookingView, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, e.For(ctx, b, role))
	}
	return views
}
