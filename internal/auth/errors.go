package auth

import (
	"errors"
	"fmt"
	"time"
)

// Expected, user-facing failure conditions. Handlers translate these to HTTP
// statuses; anything else coming out of the service is a storage fault.
var (
	ErrDuplicateUsername  = errors.New("username is already registered")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrRateLimited        = errors.New("too many failed login attempts")
	ErrNotFound           = errors.New("user not found")
	ErrWrongPassword      = errors.New("current password is incorrect")
)

// InvalidCredentialsError carries how many attempts remain before the
// cooldown arms. The message is identical for unknown usernames and wrong
// passwords so callers cannot enumerate accounts.
type InvalidCredentialsError struct {
	AttemptsLeft int
}

func (e *InvalidCredentialsError) Error() string {
	return fmt.Sprintf("invalid username or password (%d attempts left)", e.AttemptsLeft)
}

func (e *InvalidCredentialsError) Unwrap() error { return ErrInvalidCredentials }

// RateLimitedError carries the remaining cooldown.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	minutes := int((e.RetryAfter + time.Minute - 1) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("too many failed login attempts, try again in %d minutes", minutes)
}

func (e *RateLimitedError) Unwrap() error { return ErrRateLimited }
