package services

import "errors"

// Domain errors surfaced by the service layer. The HTTP error handler maps
// these onto response codes, so handlers can return them unchanged.
var (
	ErrPackageNotFound = errors.New("package not found")
	ErrPackageInactive = errors.New("this package is no longer available")
	ErrBookingNotFound = errors.New("booking not found")
	ErrPostNotFound    = errors.New("post not found")
	ErrAlreadyPaid     = errors.New("booking is already paid")
)

// ValidationError carries a message safe to surface verbatim to the caller.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func NewValidationError(msg string) error {
	return &ValidationError{Msg: msg}
}
