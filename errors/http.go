package errors

import "net/http"

// MapToHTTPStatus translates domain errors into transport status codes.
// Caller-correctable faults become 4xx; anything unclassified is a 500.
func MapToHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case Is(err, ErrDecoding), Is(err, ErrLengthMismatch), Is(err, ErrInvalidRequest),
		Is(err, ErrInvalidPassword):
		return http.StatusBadRequest
	case Is(err, ErrInvalidCredentials), Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case Is(err, ErrIdentityMismatch):
		return http.StatusForbidden
	case Is(err, ErrNotFound):
		return http.StatusNotFound
	case Is(err, ErrUserAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
