package service

import (
	"context"

	"booking/internal/domain"
	"booking/internal/repository"
)

// changeFunc validates a transition against the just-read row and returns the new state.
type changeFunc func(repo repository.BookingRepository, current domain.Booking) (domain.Booking, error)

// guardFunc runs inside the transaction before the booking row is read.
type guardFunc func(repo repository.BookingRepository) error

// mutateBooking runs one read-modify-write against a locked booking row.
// Nothing is written when change fails.
func mutateBooking(ctx context.Context, tx repository.Transactor, bookingID string, change changeFunc) (*domain.Booking, error) {
	return guardedMutateBooking(ctx, tx, bookingID, nil, change)
}

// guardedMutateBooking is mutateBooking with a guard that may reject the
// request before the row is loaded.
func guardedMutateBooking(ctx context.Context, tx repository.Transactor, bookingID string, guard guardFunc, change changeFunc) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	var updated domain.Booking
	err := tx.WithinTx(ctx, func(repo repository.BookingRepository) error {
		if guard != nil {
			if err := guard(repo); err != nil {
				return err
			}
		}

		current, err := repo.GetByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}

		next, err := change(repo, *current)
		if err != nil {
			return err
		}

		if err := repo.Update(ctx, &next); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, translateRepoError(err)
	}

	return &updated, nil
}
