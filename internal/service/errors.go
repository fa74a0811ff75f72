package service

import "errors"

// Centralized service layer errors.
// All errors returned by service methods are defined here for consistency
// and to make error handling in handlers predictable.

// ===== Resource Errors =====
var (
	ErrBandNotFound    = errors.New("band not found")
	ErrConcertNotFound = errors.New("concert not found")
	ErrUserNotFound    = errors.New("user not found")
	// ErrUnknownConcerts is returned when a membership request names a
	// concert that does not exist. Nothing is changed.
	ErrUnknownConcerts = errors.New("one or more concerts do not exist")
)

// ===== Integrity Errors =====
var (
	// ErrPartialCascade means a cascade delete could not clean every
	// reference. The entity being deleted is left in place so the
	// operation can be retried.
	ErrPartialCascade = errors.New("cascade cleanup incomplete")
)

// ===== Authorization Errors =====
var (
	ErrNoCredential  = errors.New("no credential supplied")
	ErrWrongIdentity = errors.New("credential does not match user")
)

// ===== OAuth Errors =====
var (
	ErrInvalidState    = errors.New("invalid or expired state")
	ErrInvalidAuthCode = errors.New("invalid authorization code")
	ErrProviderError   = errors.New("OAuth provider error")
	ErrInvalidIDToken  = errors.New("invalid ID token")
)
