package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/turtacn/oralrisk/pkg/errors"
)

var defaultValidator = validator.New()

// ValidateStruct validates a struct using the default validator.
// It returns an invalid_request AppError listing each failing field.
func ValidateStruct(s interface{}) errors.AppError {
	err := defaultValidator.Struct(s)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.ErrInvalidRequest.WithCause(err)
	}
	appErr := errors.ErrInvalidRequest
	msgs := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		field := toSnakeCase(fe.Field())
		reason := formatValidationError(fe)
		appErr = appErr.WithMetadata(field, reason)
		msgs = append(msgs, field+" "+reason)
	}
	return appErr.WithMessage(strings.Join(msgs, "; "))
}

// formatValidationError creates a user-friendly error message for a validation error.
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed on the '%s' tag", fe.Tag())
	}
}

var (
	matchFirstCap = regexp.MustCompile("(.)([A-Z][a-z]+)")
	matchAllCap   = regexp.MustCompile("([a-z0-9])([A-Z])")
)

// toSnakeCase converts a string from CamelCase to snake_case.
func toSnakeCase(str string) string {
	snake := matchFirstCap.ReplaceAllString(str, "${1}_${2}")
	snake = matchAllCap.ReplaceAllString(snake, "${1}_${2}")
	return strings.ToLower(snake)
}

// ValidateNotEmpty checks if a string is not empty.
func ValidateNotEmpty(s string) bool {
	return strings.TrimSpace(s) != ""
}
