package domain

import "errors"

var (
	// ErrUserNotFound is returned when a user has not registered yet.
	ErrUserNotFound = errors.New("user not registered")
	// ErrAlreadyRegistered is returned on a duplicate registration.
	ErrAlreadyRegistered = errors.New("already registered")
	// ErrPoolNotFound indicates the named pool does not exist.
	ErrPoolNotFound = errors.New("pool not found")
	// ErrNoPools indicates there are no pools to play at all.
	ErrNoPools = errors.New("no pools available")
	// ErrSessionNotFound is returned when no quiz session is pending for
	// the (chat, user) pair.
	ErrSessionNotFound = errors.New("no quiz in progress")
	// ErrUnauthorized rejects admin-only operations. The message is
	// deliberately unspecific.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidInput flags malformed command arguments.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDeliveryFailed indicates the transport could not deliver a message.
	ErrDeliveryFailed = errors.New("delivery failed")
)
