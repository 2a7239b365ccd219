package models

import (
	"errors"
	"fmt"
)

// Sentinel errors used with errors.Is. Each typed error below matches its sentinel.
var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("resource not found")
	ErrInvalidCode   = errors.New("invalid or expired verification code")
	ErrSMSProvider   = errors.New("sms provider failure")
	ErrConfiguration = errors.New("invalid configuration")
)

// ValidationError reports malformed input.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports a reference to a nonexistent record.
type NotFoundError struct {
	Resource string
	Key      string
}

func NewNotFoundError(resource, key string) *NotFoundError {
	return &NotFoundError{Resource: resource, Key: key}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// InvalidCodeError is returned for every failed verification attempt. It carries no detail
// so callers cannot tell a missing record from an expired, consumed or wrong code.
type InvalidCodeError struct{}

func (e *InvalidCodeError) Error() string { return ErrInvalidCode.Error() }

func (e *InvalidCodeError) Is(target error) bool { return target == ErrInvalidCode }

// SMSProviderError wraps an upstream carrier failure with diagnostics for operators.
type SMSProviderError struct {
	Provider   string
	StatusCode int
	Payload    string
	Err        error
}

func (e *SMSProviderError) Error() string {
	msg := fmt.Sprintf("sms provider %s failed", e.Provider)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SMSProviderError) Unwrap() error { return e.Err }

func (e *SMSProviderError) Is(target error) bool { return target == ErrSMSProvider }

// ConfigurationError reports missing or incomplete settings detected at construction time.
type ConfigurationError struct {
	Component string
	Missing   []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s is not configured: missing %v", e.Component, e.Missing)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }
