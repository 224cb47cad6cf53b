package utils

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// NewValidator returns a validator that reports fields by their JSON name.
func NewValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return validate
}

// ValidationDetails maps each failing field to the rule it broke. It returns
// nil when err is not a validation error.
func ValidationDetails(err error) map[string]string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil
	}

	details := make(map[string]string, len(validationErrs))
	for _, fieldErr := range validationErrs {
		details[fieldErr.Field()] = fieldErr.Tag()
	}
	return details
}
