package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"booking/internal/domain"
	"booking/internal/repository"
)

const bookingColumns = `id, rider_id, driver_id, vehicle_id,
		pickup_latitude, pickup_longitude, pickup_address,
		dropoff_latitude, dropoff_longitude, dropoff_address,
		vehicle_type, fare_amount, trip_distance_km, trip_duration_minutes,
		booking_status, payment_status, stripe_payment_id, payment_method, paid_at,
		request_time, pickup_time, dropoff_time,
		rider_rating, driver_rating, rider_feedback, driver_feedback,
		version, created_at, updated_at`

// BookingRepository is a PostgreSQL implementation of repository.BookingRepository.
type BookingRepository struct {
	q Querier
}

// NewBookingRepository creates a new PostgreSQL booking repository.
func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{q: db}
}

// NewBookingRepositoryWithTx creates a booking repository using a transaction.
func NewBookingRepositoryWithTx(tx *sql.Tx) *BookingRepository {
	return &BookingRepository{q: tx}
}

// Create persists a new booking.
func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		        $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29)
	`

	_, err := r.q.ExecContext(ctx, query,
		b.ID,
		b.RiderID,
		nullString(b.DriverID),
		nullString(b.VehicleID),
		b.Pickup.Latitude,
		b.Pickup.Longitude,
		b.Pickup.Address,
		b.Dropoff.Latitude,
		b.Dropoff.Longitude,
		b.Dropoff.Address,
		b.VehicleType,
		b.FareAmount,
		b.TripDistanceKm,
		b.TripDurationMinutes,
		b.Status,
		b.PaymentStatus,
		nullString(b.PaymentID),
		nullString(b.PaymentMethod),
		nullTime(b.PaidAt),
		b.RequestTime,
		nullTime(b.PickupTime),
		nullTime(b.DropoffTime),
		nullRating(b.RiderRating),
		nullRating(b.DriverRating),
		nullString(b.RiderFeedback),
		nullString(b.DriverFeedback),
		b.Version,
		b.CreatedAt,
		b.UpdatedAt,
	)

	return err
}

// GetByID retrieves a booking by ID.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByIDForUpdate retrieves a booking and holds a row lock until the transaction ends.
// Outside a transaction the lock is released immediately.
func (r *BookingRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, query, id)
}

// Update writes every mutable column, guarded by the version read earlier.
func (r *BookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	query := `
		UPDATE bookings SET
			driver_id = $3, vehicle_id = $4,
			fare_amount = $5, trip_distance_km = $6, trip_duration_minutes = $7,
			booking_status = $8, payment_status = $9, stripe_payment_id = $10,
			payment_method = $11, paid_at = $12, pickup_time = $13, dropoff_time = $14,
			rider_rating = $15, driver_rating = $16, rider_feedback = $17, driver_feedback = $18,
			updated_at = $19, version = version + 1
		WHERE id = $1 AND version = $2
	`

	result, err := r.q.ExecContext(ctx, query,
		b.ID,
		b.Version,
		nullString(b.DriverID),
		nullString(b.VehicleID),
		b.FareAmount,
		b.TripDistanceKm,
		b.TripDurationMinutes,
		b.Status,
		b.PaymentStatus,
		nullString(b.PaymentID),
		nullString(b.PaymentMethod),
		nullTime(b.PaidAt),
		nullTime(b.PickupTime),
		nullTime(b.DropoffTime),
		nullRating(b.RiderRating),
		nullRating(b.DriverRating),
		nullString(b.RiderFeedback),
		nullString(b.DriverFeedback),
		b.UpdatedAt,
	)
	if err != nil {
		return translateError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrConcurrentUpdate
	}

	b.Version++
	return nil
}

// GetActiveByDriverID returns the driver's most recent ACCEPTED or STARTED booking, or nil.
func (r *BookingRepository) GetActiveByDriverID(ctx context.Context, driverID string) (*domain.Booking, error) {
	query := `
		SELECT ` + bookingColumns + ` FROM bookings
		WHERE driver_id = $1 AND booking_status IN ($2, $3)
		ORDER BY created_at DESC LIMIT 1
	`

	b, err := r.getOne(ctx, query, driverID, domain.BookingStatusAccepted, domain.BookingStatusStarted)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return b, err
}

// ListAvailable returns unassigned PENDING bookings, oldest request first.
func (r *BookingRepository) ListAvailable(ctx context.Context, vehicleType domain.VehicleType) ([]*domain.Booking, error) {
	query := `
		SELECT ` + bookingColumns + ` FROM bookings
		WHERE booking_status = $1 AND driver_id IS NULL
	`
	args := []any{domain.BookingStatusPending}
	if vehicleType != "" {
		query += ` AND vehicle_type = $2`
		args = append(args, vehicleType)
	}
	query += ` ORDER BY request_time ASC`

	return r.getMany(ctx, query, args...)
}

// List returns one page of matching bookings, newest first, and the total match count.
func (r *BookingRepository) List(ctx context.Context, f repository.BookingFilter, page repository.PageRequest) ([]*domain.Booking, int64, error) {
	where, args := buildWhere(f)

	var total int64
	countQuery := `SELECT COUNT(*) FROM bookings` + where
	if err := r.q.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if total == 0 {
		return []*domain.Booking{}, 0, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM bookings%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		bookingColumns, where, len(args)+1, len(args)+2)
	args = append(args, page.Size, page.Offset())

	bookings, err := r.getMany(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// buildWhere renders the filter as a WHERE clause with positional arguments.
func buildWhere(f repository.BookingFilter) (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.RiderID != "" {
		add("rider_id = $%d", f.RiderID)
	}
	if f.DriverID != "" {
		add("driver_id = $%d", f.DriverID)
	}
	if f.Status != "" {
		add("booking_status = $%d", f.Status)
	}
	if f.PickupContains != "" {
		add("pickup_address ILIKE '%%' || $%d || '%%'", escapeLike(f.PickupContains))
	}
	if f.DropoffContains != "" {
		add("dropoff_address ILIKE '%%' || $%d || '%%'", escapeLike(f.DropoffContains))
	}
	if !f.CreatedFrom.IsZero() {
		add("created_at >= $%d", f.CreatedFrom)
	}
	if !f.CreatedBefore.IsZero() {
		add("created_at < $%d", f.CreatedBefore)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

func (r *BookingRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Booking, error) {
	b, err := scanBooking(r.q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, translateError(err)
	}
	return b, nil
}

func (r *BookingRepository) getMany(ctx context.Context, query string, args ...any) ([]*domain.Booking, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := []*domain.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}

	return bookings, rows.Err()
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	var driverID, vehicleID, paymentID, paymentMethod sql.NullString
	var riderFeedback, driverFeedback sql.NullString
	var paidAt, pickupTime, dropoffTime sql.NullTime
	var riderRating, driverRating sql.NullInt32

	err := row.Scan(
		&b.ID,
		&b.RiderID,
		&driverID,
		&vehicleID,
		&b.Pickup.Latitude,
		&b.Pickup.Longitude,
		&b.Pickup.Address,
		&b.Dropoff.Latitude,
		&b.Dropoff.Longitude,
		&b.Dropoff.Address,
		&b.VehicleType,
		&b.FareAmount,
		&b.TripDistanceKm,
		&b.TripDurationMinutes,
		&b.Status,
		&b.PaymentStatus,
		&paymentID,
		&paymentMethod,
		&paidAt,
		&b.RequestTime,
		&pickupTime,
		&dropoffTime,
		&riderRating,
		&driverRating,
		&riderFeedback,
		&driverFeedback,
		&b.Version,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.DriverID = driverID.String
	b.VehicleID = vehicleID.String
	b.PaymentID = paymentID.String
	b.PaymentMethod = paymentMethod.String
	b.RiderFeedback = riderFeedback.String
	b.DriverFeedback = driverFeedback.String
	if paidAt.Valid {
		b.PaidAt = paidAt.Time
	}
	if pickupTime.Valid {
		b.PickupTime = pickupTime.Time
	}
	if dropoffTime.Valid {
		b.DropoffTime = dropoffTime.Time
	}
	if riderRating.Valid {
		b.RiderRating = int(riderRating.Int32)
	}
	if driverRating.Valid {
		b.DriverRating = int(driverRating.Int32)
	}

	return &b, nil
}
