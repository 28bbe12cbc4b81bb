package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a business error. The transport layer maps kinds to status codes.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindUnauthenticated
	KindUnauthorized
	KindInvalidInput
	KindInvalidState
	KindConflict
	KindUpstream
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindUnauthorized:
		return "unauthorized"
	case KindInvalidInput:
		return "invalid_input"
	case KindInvalidState:
		return "invalid_state"
	case KindConflict:
		return "conflict"
	case KindUpstream:
		return "upstream"
	default:
		return "internal"
	}
}

// Error is a business rule violation. Two errors match under errors.Is when their codes match,
// so a sentinel can carry a default message while call sites attach a specific one.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithMessage returns a copy of e carrying msg.
func (e *Error) WithMessage(msg string) *Error {
	cp := *e
	cp.Message = msg
	return &cp
}

// WithMessagef returns a copy of e carrying a formatted message.
func (e *Error) WithMessagef(format string, args ...any) *Error {
	return e.WithMessage(fmt.Sprintf(format, args...))
}

// Wrap returns a copy of e wrapping cause.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

var (
	// ErrBookingNotFound is returned when no booking has the requested id.
	ErrBookingNotFound = &Error{Kind: KindNotFound, Code: "BOOKING_NOT_FOUND", Message: "Booking not found"}

	// ErrMissingIdentity is returned when the caller identity is absent.
	ErrMissingIdentity = &Error{Kind: KindUnauthenticated, Code: "MISSING_IDENTITY", Message: "Missing required header: X-User-Id"}

	// ErrUnauthorized is returned when the caller does not own the booking.
	ErrUnauthorized = &Error{Kind: KindUnauthorized, Code: "UNAUTHORIZED", Message: "You are not authorized to access this booking"}

	// ErrInvalidState is returned for transitions the lifecycle does not allow.
	ErrInvalidState = &Error{Kind: KindInvalidState, Code: "INVALID_STATE", Message: "Invalid booking status"}

	// ErrConflictingActiveBooking is returned when a driver already holds an accepted or started booking.
	ErrConflictingActiveBooking = &Error{Kind: KindConflict, Code: "CONFLICTING_ACTIVE_BOOKING", Message: "You already have an active booking"}

	// ErrAcceptInProgress is returned when another accept by the same driver holds the driver lock.
	ErrAcceptInProgress = &Error{Kind: KindConflict, Code: "ACCEPT_IN_PROGRESS", Message: "Another accept is in progress for this driver"}

	// ErrAlreadyPaid is returned when settling a booking whose payment is already complete.
	ErrAlreadyPaid = &Error{Kind: KindConflict, Code: "ALREADY_PAID", Message: "Payment already completed for this booking"}

	// ErrInvalidVehicleType is returned for an unknown vehicle class.
	ErrInvalidVehicleType = &Error{Kind: KindInvalidInput, Code: "INVALID_VEHICLE_TYPE", Message: "Invalid vehicle type"}

	// ErrInvalidStatusFilter is returned for an unknown booking status filter.
	ErrInvalidStatusFilter = &Error{Kind: KindInvalidInput, Code: "INVALID_STATUS", Message: "Invalid booking status filter"}

	// ErrInvalidDate is returned when a travel date filter is not YYYY-MM-DD.
	ErrInvalidDate = &Error{Kind: KindInvalidInput, Code: "INVALID_DATE", Message: "Invalid date format. Use YYYY-MM-DD"}

	// ErrInvalidInput is returned for any other malformed request value.
	ErrInvalidInput = &Error{Kind: KindInvalidInput, Code: "INVALID_INPUT", Message: "Invalid request"}

	// ErrPaymentProvider is returned when the payment provider rejects or fails a call.
	ErrPaymentProvider = &Error{Kind: KindUpstream, Code: "PAYMENT_PROVIDER", Message: "Failed to create payment intent"}
)
