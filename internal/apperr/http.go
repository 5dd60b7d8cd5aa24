package apperr

import (
	"errors"
	"net/http"
)

// Status maps an error to the HTTP status it should be reported with.
func Status(err error) int {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Payload returns the JSON body for err. Validation errors render as the
// field map; everything else as {"detail": ...}. Unknown errors are never
// echoed to the client.
func Payload(err error) any {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	switch Status(err) {
	case http.StatusInternalServerError:
		return map[string]string{"detail": "internal server error"}
	case http.StatusBadRequest:
		return map[string][]string{NonFieldErrors: {err.Error()}}
	default:
		return map[string]string{"detail": err.Error()}
	}
}
