package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Request & Input-Validation Errors
var (
	ErrMalformedPayload  = errors.New("malformed payload")
	ErrInvalidField      = errors.New("invalid field")
	ErrIncorrectPassword = errors.New("incorrect password")
)

func NewMalformedPayloadError(payloadType string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrMalformedPayload,
		Details:    fmt.Sprintf("Malformed %s payload", payloadType),
		Cause:      cause,
	}
}

// NewInvalidFieldError rejects the value of one form field; reason is shown next to it.
func NewInvalidFieldError(fieldName string, reason string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrInvalidField,
		Details:    reason,
		Field:      fieldName,
	}
}

func NewIncorrectPasswordError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrIncorrectPassword,
		Field:      "password",
	}
}

func IsInvalidFieldError(err error) bool {
	return errors.Is(err, ErrInvalidField)
}
