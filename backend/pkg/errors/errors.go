package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeGraph represents lookups and conflicts on persisted graph state
	ErrorTypeGraph ErrorType = "graph"
	// ErrorTypeStorage represents failures of the backing store itself
	ErrorTypeStorage ErrorType = "storage"
	// ErrorTypeValidation represents rejected input values
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// ErrorType returns the category; promoted to every typed error below.
func (e *BaseError) ErrorType() ErrorType {
	return e.Type
}

// UserMessage returns the message without category or cause.
func (e *BaseError) UserMessage() string {
	return e.Message
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

func label(firstname, lastname string) string {
	return fmt.Sprintf("%q", firstname+" "+lastname)
}

// Graph Errors

// ErrProfileNotFound is returned when a (firstname, lastname) label resolves to nothing
type ErrProfileNotFound struct {
	*BaseError
	Firstname string
	Lastname  string
}

func NewProfileNotFound(firstname, lastname string) *ErrProfileNotFound {
	return &ErrProfileNotFound{
		BaseError: NewBaseError(ErrorTypeGraph, label(firstname, lastname)+" not registered", nil),
		Firstname: firstname,
		Lastname:  lastname,
	}
}

// ErrProfileAlreadyExists is returned when a (firstname, lastname) label is already taken
type ErrProfileAlreadyExists struct {
	*BaseError
	Firstname string
	Lastname  string
}

func NewProfileAlreadyExists(firstname, lastname string) *ErrProfileAlreadyExists {
	return &ErrProfileAlreadyExists{
		BaseError: NewBaseError(ErrorTypeGraph, label(firstname, lastname)+" already registered", nil),
		Firstname: firstname,
		Lastname:  lastname,
	}
}

// ErrSelfFriendship is returned when both ends of a friendship denote the same profile
type ErrSelfFriendship struct {
	*BaseError
	Firstname string
	Lastname  string
}

func NewSelfFriendship(firstname, lastname string) *ErrSelfFriendship {
	return &ErrSelfFriendship{
		BaseError: NewBaseError(ErrorTypeGraph, label(firstname, lastname)+" cannot befriend themselves", nil),
		Firstname: firstname,
		Lastname:  lastname,
	}
}

// Validation Errors

// ErrUnsupportedField is returned for profile fields with no persisted column
type ErrUnsupportedField struct {
	*BaseError
	Field string
}

func NewUnsupportedField(field string) *ErrUnsupportedField {
	return &ErrUnsupportedField{
		BaseError: NewBaseError(ErrorTypeValidation, fmt.Sprintf("%q is not a supported profile field", field), nil),
		Field:     field,
	}
}

// ErrInvalidValue is returned when a field value breaks its length or format rule
type ErrInvalidValue struct {
	*BaseError
	Field  string
	Reason string
}

func NewInvalidValue(field, reason string) *ErrInvalidValue {
	return &ErrInvalidValue{
		BaseError: NewBaseError(ErrorTypeValidation, fmt.Sprintf("invalid %s: %s", field, reason), nil),
		Field:     field,
		Reason:    reason,
	}
}

// Storage Errors

// ErrStorageInitFailed is returned when the backing store cannot be opened or initialized
type ErrStorageInitFailed struct {
	*BaseError
	Location string
}

func NewStorageInitFailed(location string, err error) *ErrStorageInitFailed {
	return &ErrStorageInitFailed{
		BaseError: NewBaseError(ErrorTypeStorage, fmt.Sprintf("failed to initialize storage: %s", location), err),
		Location:  location,
	}
}

// ErrGraphQueryFailed is returned when a graph query fails
type ErrGraphQueryFailed struct {
	*BaseError
	Operation string
}

func NewGraphQueryFailed(operation string, err error) *ErrGraphQueryFailed {
	return &ErrGraphQueryFailed{
		BaseError: NewBaseError(ErrorTypeStorage, fmt.Sprintf("query failed: %s", operation), err),
		Operation: operation,
	}
}

// Config Errors

// ErrConfigValidationFailed is returned when configuration validation fails
type ErrConfigValidationFailed struct {
	*BaseError
	Field  string
	Reason string
}

func NewConfigValidationFailed(field, reason string) *ErrConfigValidationFailed {
	return &ErrConfigValidationFailed{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("config validation failed: %s - %s", field, reason), nil),
		Field:     field,
		Reason:    reason,
	}
}

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Helper functions

type typed interface {
	error
	ErrorType() ErrorType
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	var t typed
	if stderrors.As(err, &t) {
		return t.ErrorType() == errType
	}
	return false
}

// IsNotFound reports whether err carries an ErrProfileNotFound.
func IsNotFound(err error) bool {
	var target *ErrProfileNotFound
	return stderrors.As(err, &target)
}

// IsAlreadyExists reports whether err carries an ErrProfileAlreadyExists.
func IsAlreadyExists(err error) bool {
	var target *ErrProfileAlreadyExists
	return stderrors.As(err, &target)
}

// IsUserError reports whether err is an expected, user-correctable outcome
// (absence, conflict or rejected input) rather than a storage fault.
func IsUserError(err error) bool {
	return IsErrorType(err, ErrorTypeGraph) || IsErrorType(err, ErrorTypeValidation)
}

// IsRetryable checks if an error is retryable. Every failure here reflects
// durable state or input, so retrying without new input changes nothing.
func IsRetryable(err error) bool {
	return false
}

// UserMessage returns the human-readable message of the first typed error in
// the chain, or err.Error() when there is none.
func UserMessage(err error) string {
	var m interface{ UserMessage() string }
	if stderrors.As(err, &m) {
		return m.UserMessage()
	}
	return err.Error()
}
