package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrConcurrentUpdate is returned when a row changed between read and write,
	// or the store aborted the transaction to keep it serializable.
	ErrConcurrentUpdate = errors.New("entity was modified concurrently")
)
