package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/jameslaisianto/Back-end-web-dev/pkg/errors"
)

// CodeInvalidRequest tags request validation failures
const CodeInvalidRequest = "INVALID_REQUEST"

// tableNamePattern is the character set DynamoDB accepts in table names
var tableNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("tablename", func(fl validator.FieldLevel) bool {
		return tableNamePattern.MatchString(fl.Field().String())
	})
	return v
}

// ValidateStruct validates a struct based on its validation tags
func ValidateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateRequest validates a request DTO. A failure is a validation
// AppError whose details map each offending field to its message.
func ValidateRequest(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return pkgerrors.NewValidationError(err.Error()).WithCode(CodeInvalidRequest)
	}

	fields := make(map[string]interface{}, len(validationErrors))
	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		msg := formatFieldError(e)
		fields[e.Field()] = msg
		msgs = append(msgs, msg)
	}
	return pkgerrors.NewValidationError(strings.Join(msgs, "; ")).
		WithCode(CodeInvalidRequest).
		WithDetails(map[string]interface{}{"fields": fields})
}

// formatValidationError formats validation errors into readable messages
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		msgs := make([]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			msgs = append(msgs, formatFieldError(e))
		}
		return errors.New(strings.Join(msgs, "; "))
	}
	return err
}

// formatFieldError formats a single field validation error
func formatFieldError(e validator.FieldError) string {
	field := e.Field()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_if":
		return fmt.Sprintf("%s is required when %s", field, e.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "tablename":
		return fmt.Sprintf("%s may only contain letters, digits, '_', '.' and '-'", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
