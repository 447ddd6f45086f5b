package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrForbidden          = errors.New("access forbidden")

	ErrRequestNotFound   = errors.New("service request not found")
	ErrAlreadyDecided    = errors.New("service request already decided")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidDecision   = errors.New("action must be approve or reject")
	ErrInvalidRequest    = errors.New("invalid service request")
	ErrDuplicateKey      = errors.New("idempotency key already used")
	ErrInvalidSignup     = errors.New("invalid signup details")
)
