package user

import "errors"

var (
	// -- Validation & Input --
	ErrInvalidEmail    = errors.New("invalid email")
	ErrPasswordTooWeak = errors.New("password must be at least 8 characters")

	// -- Resource State --
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// -- Constants (External Systems) --
	PgUniqueViolation = "23505"
)
