package domain

import (
	"errors"
	"fmt"
)

var (
	ErrForbidden           = errors.New("access forbidden")
	ErrAccountNotFound     = errors.New("account not found")
	ErrDuplicateEmail      = errors.New("email already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountInactive     = errors.New("account is inactive")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrPersistence         = errors.New("persistence failure")
	ErrEmailDispatchFailed = errors.New("email dispatch failed")

	// ErrDuplicateKey is the repository outcome for a unique constraint hit.
	ErrDuplicateKey = errors.New("duplicate key")
)

// Email dispatch phases.
const (
	PhaseWelcomeEmail      = "welcome_email"
	PhaseAdminNotification = "admin_notification"
)

// EmailDispatchError reports an outbound notification failure. AccountID is
// the account the notification was about; it is already committed.
type EmailDispatchError struct {
	Phase     string
	AccountID int64
	Err       error
}

func (e *EmailDispatchError) Error() string {
	return fmt.Sprintf("email dispatch failed (%s)", e.Phase)
}

func (e *EmailDispatchError) Unwrap() error { return e.Err }

func (e *EmailDispatchError) Is(target error) bool {
	return target == ErrEmailDispatchFailed
}

// PersistenceError wraps a store failure that is not a known domain outcome.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: persistence failure", e.Op)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}
