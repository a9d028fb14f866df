package mailtm

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is() checks. Every operation on the client
// fails with exactly one of these kinds.
var (
	// ErrAuthentication is returned when a request is rejected for a bad or
	// expired token, or when an operation requires a login.
	ErrAuthentication = errors.New("authentication failed")

	// ErrAccountNotFound is returned when the requested resource does not exist.
	ErrAccountNotFound = errors.New("resource not found")

	// ErrInvalidCredentials is returned when login is rejected.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountCreation is returned when an account cannot be created.
	ErrAccountCreation = errors.New("account creation failed")

	// ErrAPI is returned for client-side HTTP errors with no more specific kind.
	ErrAPI = errors.New("API request failed")

	// ErrNetwork is returned for transport failures and server errors.
	ErrNetwork = errors.New("network failure")

	// ErrRateLimit is returned when the API rate limit is exceeded.
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrValidation is returned when caller-supplied input is malformed.
	ErrValidation = errors.New("invalid input")

	// ErrCache is returned when a cache store operation fails. Cache failures
	// are currently logged and absorbed, so this kind is reserved.
	ErrCache = errors.New("cache operation failed")

	// ErrConfiguration is returned for invalid configuration.
	ErrConfiguration = errors.New("invalid configuration")
)

// APIError is an HTTP-level failure from the mail API. Its status code
// determines which sentinel kind it matches.
type APIError struct {
	StatusCode int
	Message    string
	Body       map[string]any
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error %d", e.StatusCode)
}

// Is maps status codes onto the sentinel kinds, checked in precedence order.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrAuthentication:
		return e.StatusCode == 401 || e.StatusCode == 403
	case ErrAccountNotFound:
		return e.StatusCode == 404
	case ErrRateLimit:
		return e.StatusCode == 429
	case ErrNetwork:
		return e.StatusCode >= 500
	case ErrAPI:
		// Fallback kind: anything not claimed by a more specific sentinel,
		// including synthetic errors built from unexpected success statuses.
		switch e.StatusCode {
		case 401, 403, 404, 429:
			return false
		}
		return e.StatusCode < 500
	}
	return false
}

// NetworkError is a transport-level failure (timeout, refused connection).
type NetworkError struct {
	Err error
	URL string
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

// Unwrap returns the underlying transport error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel matching.
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

// ValidationError reports malformed caller input before any network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is implements errors.Is for sentinel matching.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// AccountCreationError is returned when the server rejects account creation,
// typically because the address is already taken.
type AccountCreationError struct {
	Address string
	Err     error
}

func (e *AccountCreationError) Error() string {
	return fmt.Sprintf("could not create account %s: %v", e.Address, e.Err)
}

// Unwrap returns the underlying API error.
func (e *AccountCreationError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel matching.
func (e *AccountCreationError) Is(target error) bool {
	return target == ErrAccountCreation
}
