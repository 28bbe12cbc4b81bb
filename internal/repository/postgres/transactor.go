package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"booking/internal/repository"
)

// SQLSTATE codes that mean the transaction lost a race and can be reported as a concurrent update.
const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

// Transactor runs booking mutations inside a READ COMMITTED transaction.
// Rows are read with SELECT ... FOR UPDATE, so a second writer blocks on the row lock
// and then sees the first writer's committed state.
type Transactor struct {
	db *sql.DB
}

// NewTransactor creates a new Transactor.
func NewTransactor(db *sql.DB) *Transactor {
	return &Transactor{db: db}
}

// WithinTx runs fn with a transaction-scoped repository.
func (t *Transactor) WithinTx(ctx context.Context, fn func(repo repository.BookingRepository) error) (err error) {
	tx, err := t.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Create transaction-scoped repository.
	if err = fn(NewBookingRepositoryWithTx(tx)); err != nil {
		return translateError(err)
	}

	if err = tx.Commit(); err != nil {
		return translateError(err)
	}

	return nil
}

// translateError maps driver errors for lost races to repository.ErrConcurrentUpdate.
// Both lib/pq and pgx report SQLSTATE codes, depending on which driver opened the pool.
func translateError(err error) error {
	if isRetryableConflict(err) {
		return repository.ErrConcurrentUpdate
	}
	return err
}

func isRetryableConflict(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		code := string(pqErr.Code)
		return code == sqlStateSerializationFailure || code == sqlStateDeadlockDetected
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == sqlStateSerializationFailure || pgErr.Code == sqlStateDeadlockDetected
	}

	return false
}

// Ensure interfaces are satisfied.
var (
	_ repository.Transactor        = (*Transactor)(nil)
	_ repository.BookingRepository = (*BookingRepository)(nil)
)
