package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// appValidate is shared by all callers; validator caches struct metadata.
var appValidate *validator.Validate

func init() {
	appValidate = validator.New(validator.WithRequiredStructEnabled())
	appValidate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = appValidate.RegisterValidation("duration", validateDuration)
}

// validateDuration accepts Go duration strings such as "5m" or "1h30m".
func validateDuration(fl validator.FieldLevel) bool {
	_, err := time.ParseDuration(fl.Field().String())
	return err == nil
}

// ValidateApplication checks an Application for constraint violations.
// It returns a *ValidationError if any rules fail, or nil if the application
// is valid.
func ValidateApplication(a *Application) error {
	err := appValidate.Struct(a)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate application: %w", err)
	}

	var ve ValidationError
	for _, fe := range verrs {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   fieldPath(fe.Namespace()),
			Message: fieldMessage(fe),
		})
	}
	return &ve
}

// ValidateEntryName checks the name of a component, substitute or ingress
// annotation entry.
func ValidateEntryName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Errors: []FieldError{{Field: "name", Message: "is required"}}}
	}
	return nil
}

// fieldPath strips the root struct name from a validator namespace,
// "Application.dependsOn[0].name" -> "dependsOn[0].name".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "excludesall":
		return fmt.Sprintf("must not contain any of %q", fe.Param())
	case "duration":
		return fmt.Sprintf("invalid duration %q", fe.Value())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
