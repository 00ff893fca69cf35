package errors

import (
	"fmt"
	"strconv"
)

// ValidationError rejects a flag, config key or field value.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid: " + e.Message
	}
	return "invalid " + e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// NewValidationError returns a ValidationError for field.
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// NotFoundError names a missing resource, such as a dataset file or a
// batch job.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewNotFoundError returns a NotFoundError.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ParseError reports a malformed dataset, taxonomy or JSONL file. Line is
// 1-based and zero when unknown.
type ParseError struct {
	Format  string
	File    string
	Line    int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	where := e.File
	if where == "" {
		where = e.Format + " input"
	} else if e.Line > 0 {
		where += ":" + strconv.Itoa(e.Line)
	}
	return "malformed " + e.Format + " in " + where + ": " + e.Message
}

func (e *ParseError) Unwrap() error { return e.Err }

// NewParseError returns a ParseError for file.
func NewParseError(format, file, message string, err error) *ParseError {
	return &ParseError{Format: format, File: file, Message: message, Err: err}
}

// WrapParse turns a decoder error into a ParseError. nil stays nil.
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// ConfigError reports settings that could not be read.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

func (e *ConfigError) Error() string {
	if e.Component == "" {
		return "config: " + e.Message
	}
	return "config " + e.Component + ": " + e.Message
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError returns a ConfigError.
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}
