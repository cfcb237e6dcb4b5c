package validation

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// HasTag reports whether err is a validator.ValidationErrors with at least
// one failure on the given tag (e.g. "required").
func HasTag(err error, tag string) bool {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return false
	}

	for _, fieldErr := range validationErrors {
		if fieldErr.Tag() == tag {
			return true
		}
	}
	return false
}

// FailedFields returns the JSON names of the fields that failed validation.
func FailedFields(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	fields := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		fields = append(fields, fieldErr.Field())
	}
	return fields
}
