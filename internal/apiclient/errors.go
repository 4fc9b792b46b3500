package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrCircuitOpen = errors.New("upstream api unavailable, circuit open")

// StatusError is returned for any non-2xx upstream response.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.Status, e.Message)
}

// DecodeError means the upstream answered 2xx with a body that could not be
// decoded. Whatever the call did upstream has most likely happened.
type DecodeError struct {
	Method string
	Path   string
	Status int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s %s response (status %d): %v", e.Method, e.Path, e.Status, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == http.StatusNotFound
}

// StatusOf returns the upstream HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Status
	}
	return 0
}
