package models

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrNotYetOpen      = errors.New("signup is not open yet")
	ErrFull            = errors.New("training is full")
	ErrAlreadySignedUp = errors.New("already signed up for this training")
	ErrForbidden       = errors.New("forbidden")
	ErrExpired         = errors.New("signup has expired")
	ErrNotPending      = errors.New("signup is not pending")
	ErrStoreConflict   = errors.New("store conflict, retry the request")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidInput    = errors.New("invalid input")
)

// NotYetOpenError несёт момент открытия записи, чтобы клиент мог его показать.
type NotYetOpenError struct {
	OpenAt time.Time
}

func (e *NotYetOpenError) Error() string {
	return fmt.Sprintf("%s: opens at %s", ErrNotYetOpen, e.OpenAt.UTC().Format(time.RFC3339))
}

// Is позволяет сравнивать ошибку с ErrNotYetOpen через errors.Is.
func (e *NotYetOpenError) Is(target error) bool {
	return target == ErrNotYetOpen
}
