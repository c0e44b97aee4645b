package intake

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCredential is returned when no LLM API key is configured.
	ErrNoCredential = errors.New("no AI credential configured")
	// ErrInvalidAnswers wraps answer validation failures.
	ErrInvalidAnswers = errors.New("invalid intake answers")
	// ErrNoJSON is returned when the response contains no JSON object.
	ErrNoJSON = errors.New("no JSON object found in AI response")
	// ErrBusy is returned by Submit while a request is outstanding.
	ErrBusy = errors.New("intake request already in progress")
	// ErrClosed is returned by Submit on a closed dialog.
	ErrClosed = errors.New("intake dialog is closed")
)

// APICallError wraps a failed call to the text-generation service.
type APICallError struct {
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// ParseError reports a JSON object that could not be turned into a record.
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
