package errors

import (
	"fmt"
	"net/http"
)

// APIError is a failed call to Overpass, Nominatim, zuerich.com, Wikidata,
// OpenAI or Gemini. A 429 matches ErrRateLimited and a 5xx matches
// ErrSourceUnavailable.
type APIError struct {
	Source     string
	StatusCode int
	Message    string
	Endpoint   string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return e.Source + ": " + e.Message
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Source, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

func (e *APIError) Is(target error) bool {
	switch {
	case e.StatusCode == http.StatusTooManyRequests:
		return target == ErrRateLimited
	case e.StatusCode >= http.StatusInternalServerError:
		return target == ErrSourceUnavailable
	}
	return false
}

// NewAPIError returns an APIError without an underlying cause.
func NewAPIError(source string, statusCode int, message string) *APIError {
	return &APIError{Source: source, StatusCode: statusCode, Message: message}
}

// AuthenticationError is a missing or refused credential. It stops the
// pass instead of being counted per place.
type AuthenticationError struct {
	Service string
	Method  string
	Message string
	Err     error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Service, e.Method, e.Message)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAPIKeyRequired || target == ErrAPIKeyInvalid
}

// NewAuthenticationError returns an AuthenticationError.
func NewAuthenticationError(service, method, message string, err error) *AuthenticationError {
	return &AuthenticationError{Service: service, Method: method, Message: message, Err: err}
}

// LookupError is a collaborator failure for a single place. Passes count it
// and continue with the next place.
type LookupError struct {
	Source  string
	PlaceID string
	Err     error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s lookup for %s: %v", e.Source, e.PlaceID, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

func (e *LookupError) Is(target error) bool { return target == ErrLookupFailed }

// NewLookupError returns a LookupError for placeID.
func NewLookupError(source, placeID string, err error) *LookupError {
	return &LookupError{Source: source, PlaceID: placeID, Err: err}
}

// BatchError is a remote batch that reached failed, expired or cancelled.
type BatchError struct {
	BatchID string
	Status  string
	Message string
}

func (e *BatchError) Error() string {
	msg := "batch " + e.BatchID + " ended " + e.Status
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *BatchError) Is(target error) bool { return target == ErrBatchFailed }

// NewBatchError returns a BatchError.
func NewBatchError(batchID, status, message string) *BatchError {
	return &BatchError{BatchID: batchID, Status: status, Message: message}
}

// TimeoutError is a wait that ran past its deadline, such as a batch poll.
type TimeoutError struct {
	Operation string
	Duration  string
	Message   string
}

func (e *TimeoutError) Error() string {
	msg := e.Operation + " gave up"
	if e.Duration != "" {
		msg += " after " + e.Duration
	}
	return msg + ": " + e.Message
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// NewTimeoutError returns a TimeoutError.
func NewTimeoutError(operation, duration, message string) *TimeoutError {
	return &TimeoutError{Operation: operation, Duration: duration, Message: message}
}
