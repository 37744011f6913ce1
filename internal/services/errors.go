package services

import "errors"

// Query service errors. Table errors (not found, missing column and so on)
// come from the table package unchanged.
var (
	// ErrInvalidInput marks a request the service rejects before loading
	// anything.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTooManyIDs is returned when a batch names more identifiers than
	// the configured maximum.
	ErrTooManyIDs = errors.New("too many identifiers")
)
