package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrAlreadyExists             = errors.New("already exists")
	ErrNotFound                  = errors.New("not found")
	ErrDatabaseQuery             = errors.New("database query failed")
	ErrDatabaseConnection        = errors.New("database connection failed")
	ErrUniqueConstraintViolation = errors.New("unique constraint violation")
	ErrForeignKeyConstraint      = errors.New("foreign key constraint violation")
)

// NewNotFound reports that no entity matched the request.
func NewNotFound(entity string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusNotFound,
		err:        fmt.Errorf("%s %w", entity, ErrNotFound),
	}
}

// IsDuplicateKey reports whether err came from a unique index. Drivers that
// support gorm's TranslateError return gorm.ErrDuplicatedKey; the message
// checks cover the ones that pass the raw driver error through.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, ErrUniqueConstraintViolation) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}

// NewDatabaseError classifies a failed store operation. An ApiErr anywhere
// in cause is returned as is.
func NewDatabaseError(operation, entity string, cause error) *ApiErr {
	var apiErr *ApiErr
	if errors.As(cause, &apiErr) {
		return apiErr
	}

	out := &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrDatabaseQuery,
		Details:    fmt.Sprintf("Failed to %s %s", operation, entity),
		Cause:      cause,
	}
	if cause == nil {
		return out
	}

	switch {
	case errors.Is(cause, gorm.ErrRecordNotFound):
		out.StatusCode, out.err = http.StatusNotFound, fmt.Errorf("%s %w", entity, ErrNotFound)
	case IsDuplicateKey(cause):
		out.StatusCode, out.err = http.StatusConflict, fmt.Errorf("%s %w", entity, ErrAlreadyExists)
	case errors.Is(cause, gorm.ErrForeignKeyViolated) || strings.Contains(cause.Error(), "foreign key constraint"):
		out.StatusCode, out.err = http.StatusBadRequest, ErrForeignKeyConstraint
		out.Details = "The referenced resource does not exist or cannot be linked"
	case strings.Contains(cause.Error(), "connection"):
		out.StatusCode, out.err = http.StatusServiceUnavailable, ErrDatabaseConnection
		out.Details = "Unable to connect to database"
	}
	return out
}

// NewUniqueConstraintViolationError reports that field already holds the submitted value.
func NewUniqueConstraintViolationError(entity, field string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusConflict,
		err:        fmt.Errorf("a %s with this %s already exists: %w", entity, field, ErrUniqueConstraintViolation),
		Details:    fmt.Sprintf("Unique constraint violation on %s.%s", entity, field),
		Cause:      cause,
		Field:      field,
	}
}

func IsUniqueConstraintViolationError(err error) bool {
	return errors.Is(err, ErrUniqueConstraintViolation)
}
