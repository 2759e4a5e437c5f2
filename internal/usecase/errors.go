package usecase

import "errors"

// Sentinel errors are wrapped with context by services and mapped to HTTP
// statuses in httpapi.
var (
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound covers unknown games, phases and users.
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	// ErrConfiguration means a credential or backend the operation needs is unset.
	ErrConfiguration    = errors.New("service misconfigured")
	ErrAllSourcesFailed = errors.New("all match sources failed")
)

// IsCallerError reports errors caused by the request rather than by this
// service or its upstreams.
func IsCallerError(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnauthorized)
}
