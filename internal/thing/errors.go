package thing

import (
	"errors"
	"fmt"
)

var (
	// ErrAbsent means the device answered with something other than 200
	ErrAbsent = errors.New("thing description absent")
	// ErrMissingField means a required key is not in the description
	ErrMissingField = errors.New("missing field in thing description")
	// ErrDecode means a 200 body is not a JSON object
	ErrDecode = errors.New("thing description is not a JSON object")
)

// StatusError carries the status code of a non-200 answer
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return ErrAbsent
}

// MissingFieldError names the key a description lacked
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("thing description has no %q key", e.Field)
}

func (e *MissingFieldError) Unwrap() error {
	return ErrMissingField
}

// DecodeError carries the status of an answer whose body could not be parsed
type DecodeError struct {
	URL        string
	StatusCode int
	Reason     string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("GET %s: status %d: %s: %s", e.URL, e.StatusCode, ErrDecode, e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return ErrDecode
}
