package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// ApiErr is an error that knows the HTTP status it should be reported with.
type ApiErr struct {
	StatusCode int
	err        error
	Details    string // Additional details about the error
	Field      string // Form field that caused the error
	Cause      error  // The underlying cause of the error
}

// implements error interface. this allows us to pass an instance of ApiErr as an argument of type `error`
func (e *ApiErr) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.err.Error(), e.Details)
	}
	return e.err.Error()
}

// Message returns the error without its details, suitable for showing next to a form field.
func (e *ApiErr) Message() string {
	return e.err.Error()
}

// GetFullError returns a recursive error message including all causes
func (e *ApiErr) GetFullError() string {
	msg := e.Error()
	if e.Cause == nil {
		return msg
	}
	var apiErr *ApiErr
	if errors.As(e.Cause, &apiErr) {
		return fmt.Sprintf("%s -> %s", msg, apiErr.GetFullError())
	}
	return fmt.Sprintf("%s -> %s", msg, e.Cause.Error())
}

// errors.Is(apiErr, sentinel) matches the sentinel the ApiErr was built from.
func (e *ApiErr) Unwrap() error {
	return e.err
}

// StatusCode returns the HTTP status carried by err, or 500 for errors that are not ApiErrs.
func StatusCode(err error) int {
	var apiErr *ApiErr
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return http.StatusInternalServerError
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyExists) || errors.Is(err, ErrUniqueConstraintViolation)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
