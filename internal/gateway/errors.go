package gateway

import (
	"errors"
	"net/http"
)

const RateLimitMessage = "You've exceeded the API request limit. Please wait a moment and try again."

var (
	ErrInvalidAction = errors.New("invalid action")
	ErrRateLimited   = errors.New(RateLimitMessage)
)

// StatusError carries the HTTP status an error maps to.
type StatusError struct {
	Status int
	Err    error
}

func (e *StatusError) Error() string {
	if e.Err == nil {
		return http.StatusText(e.Status)
	}
	return e.Err.Error()
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps err to a response status; errors without a status are 500.
func HTTPStatus(err error) int {
	var se *StatusError
	if errors.As(err, &se) && se.Status != 0 {
		return se.Status
	}
	return http.StatusInternalServerError
}

func badRequest(err error) error {
	return &StatusError{Status: http.StatusBadRequest, Err: err}
}
