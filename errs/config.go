package errs

import (
	"errors"
	"fmt"
)

// Configuration & Environment Errors
var (
	ErrConfigMissing = errors.New("configuration missing")
	ErrConfigInvalid = errors.New("configuration invalid")
)

func NewConfigMissingError(key string) error {
	return fmt.Errorf("%w: %s must be set", ErrConfigMissing, key)
}

func NewConfigInvalidError(key, value string, cause error) error {
	if cause != nil {
		return fmt.Errorf("%w: %s=%q: %v", ErrConfigInvalid, key, value, cause)
	}
	return fmt.Errorf("%w: %s=%q", ErrConfigInvalid, key, value)
}

func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfigMissing) || errors.Is(err, ErrConfigInvalid)
}
