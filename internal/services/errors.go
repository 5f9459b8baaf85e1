package services

import "errors"

// Error classes returned by the services. Callers match them with errors.Is;
// the wrapped message carries the detail shown to the client.
var (
	ErrValidation    = errors.New("validation failed")
	ErrConflict      = errors.New("user already exists")
	ErrAuth          = errors.New("invalid username or password")
	ErrNotVerified   = errors.New("account not verified")
	ErrNotFound      = errors.New("not found")
	ErrToken         = errors.New("token is invalid or has expired")
	ErrDelivery      = errors.New("email delivery failed")
	ErrSelfReference = errors.New("you cannot follow/unfollow yourself")
	ErrForbidden     = errors.New("forbidden")
)

// outcome names the error class for metrics labels.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrAuth):
		return "auth"
	case errors.Is(err, ErrNotVerified):
		return "not_verified"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrToken):
		return "token"
	case errors.Is(err, ErrDelivery):
		return "delivery"
	case errors.Is(err, ErrSelfReference):
		return "self_reference"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	default:
		return "internal"
	}
}
