// Package domain holds the error vocabulary shared by every scanner component.
package domain

import (
	"errors"
	"fmt"
)

// ErrorType classifies a failure so callers can react to the category
// rather than the message.
type ErrorType string

const (
	ErrorTypeInvalidInput       ErrorType = "invalid_input"
	ErrorTypeDecodeFailure      ErrorType = "decode_failure"
	ErrorTypeRecognitionFailure ErrorType = "recognition_failure"
	ErrorTypeStorageFailure     ErrorType = "storage_failure"
)

// Sentinels for errors.Is matching by type.
var (
	ErrInvalidInput       = &DomainError{Type: ErrorTypeInvalidInput}
	ErrDecodeFailure      = &DomainError{Type: ErrorTypeDecodeFailure}
	ErrRecognitionFailure = &DomainError{Type: ErrorTypeRecognitionFailure}
	ErrStorageFailure     = &DomainError{Type: ErrorTypeStorageFailure}
)

// DomainError represents a domain-specific error with context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	if e.Message == "" {
		return string(e.Type)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches any DomainError of the same type, so
// errors.Is(err, domain.ErrStorageFailure) works on wrapped values.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// NewError creates a new domain error
func NewError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

func InvalidInput(message string, err error) *DomainError {
	return NewError(ErrorTypeInvalidInput, message, err)
}

func DecodeFailure(message string, err error) *DomainError {
	return NewError(ErrorTypeDecodeFailure, message, err)
}

func RecognitionFailure(message string, err error) *DomainError {
	return NewError(ErrorTypeRecognitionFailure, message, err)
}

func StorageFailure(message string, err error) *DomainError {
	return NewError(ErrorTypeStorageFailure, message, err)
}

// TypeOf returns the type of the first DomainError in err's chain, or ""
// when there is none.
func TypeOf(err error) ErrorType {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Type
	}
	return ""
}
