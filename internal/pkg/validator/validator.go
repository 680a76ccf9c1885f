// Package validator wraps go-playground/validator behind a single Validate
// function with a stable error shape: every failure joins
// ErrValidationFailed with one formatted message per offending field.
package validator

import (
	"errors"
	"fmt"

	gvalidator "github.com/go-playground/validator/v10"
)

// ErrValidationFailed is the root of every validation error chain, so
// callers can detect failures with errors.Is regardless of which fields
// were rejected.
var ErrValidationFailed = errors.New("struct validation failed")

var validator *gvalidator.Validate

// errStringFormat describes one failed field.
//
// Example: "'Address': value '0x' does not meet the requirements for the 'required' validation"
const errStringFormat = "'%s': value '%v' does not meet the requirements for the '%s' validation"

func init() {
	validator = gvalidator.New(gvalidator.WithRequiredStructEnabled())
}

// formatError joins ErrValidationFailed with one message per field error.
// Non-validation errors pass through unchanged.
func formatError(err error) error {
	var validationErrors gvalidator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	errs := []error{ErrValidationFailed}
	for _, validationErr := range validationErrors {
		errs = append(errs, fmt.Errorf(errStringFormat,
			validationErr.Field(),
			validationErr.Value(),
			validationErr.Tag(),
		))
	}

	return errors.Join(errs...)
}

// Validate checks the struct against its `validate` tags.
//
//	type Wallet struct {
//	    Address string `validate:"required"`
//	}
//
//	if err := validator.Validate(w); errors.Is(err, validator.ErrValidationFailed) {
//	    // reject the record
//	}
func Validate(v any) error {
	if err := validator.Struct(v); err != nil {
		return formatError(err)
	}

	return nil
}
