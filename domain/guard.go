package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Precondition checks shared by the aggregate constructors. Each returns an
// *ArgumentError naming the field on failure.

func guardNotEmpty(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return NewArgumentError(field, "cannot be empty", value)
	}
	return nil
}

func guardNotNegative(field string, value decimal.Decimal) error {
	if value.IsNegative() {
		return NewArgumentError(field, "must be non-negative", value)
	}
	return nil
}

func guardNotDefault[T comparable](field string, value T) error {
	var zero T
	if value == zero {
		return NewArgumentError(field, "cannot be the default value", value)
	}
	return nil
}

func guardNotZeroTime(field string, value time.Time) error {
	if value.IsZero() {
		return NewArgumentError(field, "cannot be the zero time", value)
	}
	return nil
}

// firstError returns the first non-nil error.
func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
