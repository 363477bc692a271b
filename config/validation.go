package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validate checks the configuration against the struct tags and the
// cross-field rules the tags cannot express.
func Validate(cfg *Config) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) {
			return newValidationError(fieldErrors)
		}
		return err
	}

	if err := validateAccount(&cfg.Account); err != nil {
		return fmt.Errorf("account config: %w", err)
	}
	if err := validateCache(&cfg.Cache); err != nil {
		return fmt.Errorf("cache config: %w", err)
	}
	return nil
}

// validateAccount enforces the rules between credentials and endpoints: a
// key is required unless the caller points at an anonymous endpoint
// explicitly.
func validateAccount(cfg *AccountConfig) error {
	if cfg.Key == "" && cfg.Endpoint.Primary == "" {
		return fmt.Errorf("account key is required when no explicit endpoint is set")
	}
	if cfg.Endpoint.Secondary != "" && cfg.Endpoint.Primary == "" {
		return fmt.Errorf("secondary endpoint requires a primary endpoint")
	}
	return nil
}

func validateCache(cfg *CacheConfig) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.Host == "" {
		return fmt.Errorf("cache host is required when the cache is enabled")
	}
	if cfg.Port == 0 {
		return fmt.Errorf("cache port is required when the cache is enabled")
	}
	return nil
}

// ValidationError aggregates per-field validation failures.
type ValidationError struct {
	Errors []FieldError
}

// FieldError is one failed constraint.
type FieldError struct {
	Field   string
	Message string
}

func newValidationError(errs validator.ValidationErrors) *ValidationError {
	fieldErrors := make([]FieldError, 0, len(errs))
	for _, err := range errs {
		fieldErrors = append(fieldErrors, FieldError{
			Field:   err.Namespace(),
			Message: fieldMessage(err),
		})
	}
	return &ValidationError{Errors: fieldErrors}
}

func (ve *ValidationError) Error() string {
	switch len(ve.Errors) {
	case 0:
		return "validation failed"
	case 1:
		return fmt.Sprintf("validation failed: %s: %s", ve.Errors[0].Field, ve.Errors[0].Message)
	default:
		return fmt.Sprintf("validation failed: %d errors", len(ve.Errors))
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "url":
		return "must be a valid URL"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
