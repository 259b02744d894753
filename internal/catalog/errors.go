package catalog

import (
	"errors"
	"net/http"
)

// Domain errors for published-table operations.
var (
	ErrNotFound      = errors.New("collection not found")
	ErrInvalidFilter = errors.New("invalid filter")
)

// MapHTTPStatus maps catalog domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrInvalidFilter) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
