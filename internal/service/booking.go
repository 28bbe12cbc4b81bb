package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"booking/internal/domain"
	"booking/internal/redis"
	"booking/internal/repository"
)

// BookingService drives the booking lifecycle from request to completion.
type BookingService struct {
	tx        repository.Transactor
	bookings  repository.BookingRepository
	estimator DistanceEstimator
	locks     redis.LockStoreInterface
	lockTTL   time.Duration
	enricher  *Enricher
	notifier  *Notifier
	log       logrus.FieldLogger
	now       func() time.Time
}

// NewBookingService creates a new BookingService. locks may be nil, in which case
// a driver's concurrent accepts are serialized by the store alone.
func NewBookingService(
	tx repository.Transactor,
	bookings repository.BookingRepository,
	estimator DistanceEstimator,
	locks redis.LockStoreInterface,
	lockTTL time.Duration,
	enricher *Enricher,
	notifier *Notifier,
	log logrus.FieldLogger,
) *BookingService {
	return &BookingService{
		tx:        tx,
		bookings:  bookings,
		estimator: estimator,
		locks:     locks,
		lockTTL:   lockTTL,
		enricher:  enricher,
		notifier:  notifier,
		log:       log,
		now:       time.Now,
	}
}

// CreateBookingRequest contains the parameters for requesting a ride.
type CreateBookingRequest struct {
	RiderID     string
	Pickup      domain.Location
	Dropoff     domain.Location
	VehicleType string // case-insensitive
}

// CreateBooking prices the trip and stores it as PENDING.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*BookingView, error) {
	if req.RiderID == "" {
		return nil, domain.ErrMissingIdentity
	}

	vehicleType, err := domain.ParseVehicleType(req.VehicleType)
	if err != nil {
		return nil, err
	}

	if err := validateLocation(req.Pickup, ErrInvalidPickupLocation); err != nil {
		return nil, err
	}
	if err := validateLocation(req.Dropoff, ErrInvalidDropoffLocation); err != nil {
		return nil, err
	}

	distance := s.estimator.Estimate(req.Pickup, req.Dropoff)
	fare, err := domain.CalculateFare(distance, vehicleType)
	if err != nil {
		return nil, err
	}

	now := s.now()
	booking := &domain.Booking{
		ID:                  uuid.New().String(),
		RiderID:             req.RiderID,
		Pickup:              req.Pickup,
		Dropoff:             req.Dropoff,
		VehicleType:         vehicleType,
		FareAmount:          fare,
		TripDistanceKm:      distance,
		TripDurationMinutes: domain.EstimateDurationMinutes(distance),
		Status:              domain.BookingStatusPending,
		PaymentStatus:       domain.PaymentStatusPending,
		RequestTime:         now,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"booking_id":   booking.ID,
		"rider_id":     booking.RiderID,
		"vehicle_type": booking.VehicleType,
		"fare":         booking.FareAmount.StringFixed(2),
	}).Info("booking created")

	s.notifier.BookingCreated(ctx, booking)

	view := s.enricher.ForRider(ctx, booking)
	return &view, nil
}

// ListAvailable returns open bookings, oldest first, for a driver who is not busy.
// An empty vehicleType matches every class.
func (s *BookingService) ListAvailable(ctx context.Context, driverID, vehicleType string) ([]BookingView, error) {
	active, err := s.bookings.GetActiveByDriverID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, domain.ErrConflictingActiveBooking
	}

	var filter domain.VehicleType
	if strings.TrimSpace(vehicleType) != "" {
		if filter, err = domain.ParseVehicleType(vehicleType); err != nil {
			return nil, err
		}
	}

	bookings, err := s.bookings.ListAvailable(ctx, filter)
	if err != nil {
		return nil, err
	}

	return s.enricher.forAll(ctx, bookings, domain.RoleDriver), nil
}

// AcceptBookingRequest contains the parameters for accepting a booking.
type AcceptBookingRequest struct {
	BookingID string
	DriverID  string
	VehicleID string
}

// AcceptBooking assigns a PENDING booking to the driver. Of two racing accepts
// on the same booking exactly one succeeds; the other sees InvalidState.
func (s *BookingService) AcceptBooking(ctx context.Context, req AcceptBookingRequest) (*BookingView, error) {
	if strings.TrimSpace(req.VehicleID) == "" {
		return nil, ErrInvalidVehicleID
	}

	release, err := s.lockDriver(ctx, req.DriverID)
	if err != nil {
		return nil, err
	}
	defer release()

	// A busy driver is rejected before the booking is looked up.
	booking, err := guardedMutateBooking(ctx, s.tx, req.BookingID,
		func(repo repository.BookingRepository) error {
			active, err := repo.GetActiveByDriverID(ctx, req.DriverID)
			if err != nil {
				return err
			}
			if active != nil {
				return domain.ErrConflictingActiveBooking
			}
			return nil
		},
		func(_ repository.BookingRepository, current domain.Booking) (domain.Booking, error) {
			return current.Accept(req.DriverID, strings.TrimSpace(req.VehicleID), s.now())
		})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"driver_id":  booking.DriverID,
		"vehicle_id": booking.VehicleID,
	}).Info("booking accepted")

	s.notifier.BookingAccepted(ctx, booking)

	view := s.enricher.ForDriver(ctx, booking)
	return &view, nil
}

// StartRide moves an ACCEPTED booking to STARTED.
func (s *BookingService) StartRide(ctx context.Context, bookingID, driverID string) (*BookingView, error) {
	booking, err := mutateBooking(ctx, s.tx, bookingID,
		func(_ repository.BookingRepository, current domain.Booking) (domain.Booking, error) {
			return current.Start(driverID, s.now())
		})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"driver_id":  driverID,
	}).Info("ride started")

	s.notifier.BookingStarted(ctx, booking)

	view := s.enricher.ForDriver(ctx, booking)
	return &view, nil
}

// CompleteRideRequest contains the final trip values reported by the driver.
type CompleteRideRequest struct {
	BookingID string
	DriverID  string
	Metrics   domain.CompletionMetrics
}

// CompleteRide finishes a STARTED ride and reopens payment.
func (s *BookingService) CompleteRide(ctx context.Context, req CompleteRideRequest) (*BookingView, error) {
	booking, err := mutateBooking(ctx, s.tx, req.BookingID,
		func(_ repository.BookingRepository, current domain.Booking) (domain.Booking, error) {
			next, err := current.Complete(req.DriverID, req.Metrics, s.now())
			if err == nil && current.PaymentStatus == domain.PaymentStatusFailed {
				s.log.WithField("booking_id", current.ID).
					Warn("completion resets a failed payment status to pending")
			}
			return next, err
		})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"booking_id":  booking.ID,
		"driver_id":   req.DriverID,
		"fare":        booking.FareAmount.StringFixed(2),
		"distance_km": booking.TripDistanceKm.StringFixed(2),
	}).Info("ride completed")

	s.notifier.BookingCompleted(ctx, booking)

	view := s.enricher.ForDriver(ctx, booking)
	return &view, nil
}

// CancelBooking lets the rider withdraw a PENDING or ACCEPTED booking.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, riderID string) (*BookingView, error) {
	booking, err := mutateBooking(ctx, s.tx, bookingID,
		func(_ repository.BookingRepository, current domain.Booking) (domain.Booking, error) {
			return current.Cancel(riderID, s.now())
		})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"rider_id":   riderID,
	}).Info("booking cancelled")

	s.notifier.BookingCancelled(ctx, booking)

	view := s.enricher.ForRider(ctx, booking)
	return &view, nil
}

// lockDriver takes the per-driver accept lock. Redis errors are logged and
// the accept proceeds on row locking alone.
func (s *BookingService) lockDriver(ctx context.Context, driverID string) (func(), error) {
	noop := func() {}
	if s.locks == nil {
		return noop, nil
	}

	token, err := s.locks.AcquireDriverLock(ctx, driverID, s.lockTTL)
	if err != nil {
		s.log.WithError(err).WithField("driver_id", driverID).Warn("driver lock unavailable")
		return noop, nil
	}
	if token == "" {
		return nil, domain.ErrAcceptInProgress
	}

	return func() {
		if err := s.locks.ReleaseDriverLock(context.WithoutCancel(ctx), driverID, token); err != nil {
			s.log.WithError(err).WithField("driver_id", driverID).Warn("failed to release driver lock")
		}
	}, nil
}

func validateLocation(loc domain.Location, invalid *domain.Error) error {
	if !isValidLatitude(loc.Latitude) || !isValidLongitude(loc.Longitude) {
		return invalid
	}
	if strings.TrimSpace(loc.Address) == "" {
		return invalid.WithMessage(invalid.Message + ": address is required")
	}
	return nil
}
