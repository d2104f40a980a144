package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNameTaken          = errors.New("name already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrTrainNotFound      = errors.New("train not found")
	ErrSeatOutOfRange     = errors.New("seat out of range")
	ErrSeatUnavailable    = errors.New("seat not available")
	ErrSeatNotBooked      = errors.New("seat is not booked")
	ErrTicketNotFound     = errors.New("ticket not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidRoute       = errors.New("train does not serve station")
	ErrInconsistentState  = errors.New("inconsistent reservation state")
	ErrPersistence        = errors.New("persistence failure")
)

// PersistenceError carries the storage failure behind a failed commit.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v: %v", ErrPersistence, e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}
