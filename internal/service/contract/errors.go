package contract

import "errors"

var (
	ErrReservationNotFound = errors.New("reservation not found")
	ErrActionNotAllowed    = errors.New("action not allowed for reservation")
	ErrMutationInFlight    = errors.New("another change to this reservation is in progress")
	ErrInvalidRefund       = errors.New("invalid refund request")
)
