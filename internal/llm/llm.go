package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Client abstracts text-generation providers. The returned payload is the raw
// model output, expected (but not guaranteed) to be JSON when structured
// output was requested.
type Client interface {
	Generate(ctx context.Context, req GenerateRequest) (json.RawMessage, error)
}

// GenerateRequest captures a single generation call.
type GenerateRequest struct {
	Prompt           string
	StructuredOutput bool
}

// ErrorClass partitions generation failures into the classes callers care
// about. Only validation of the returned payload is ever retried upstream;
// every class here fails the request immediately.
type ErrorClass string

const (
	ErrorAuth      ErrorClass = "auth"
	ErrorQuota     ErrorClass = "quota"
	ErrorTimeout   ErrorClass = "timeout"
	ErrorMalformed ErrorClass = "malformed"
	ErrorGeneric   ErrorClass = "generic"
)

// UserMessage returns the user-facing message for the class.
func (c ErrorClass) UserMessage() string {
	switch c {
	case ErrorAuth:
		return "generation service rejected our credentials"
	case ErrorQuota:
		return "generation service quota or rate limit exceeded"
	case ErrorTimeout:
		return "generation service did not respond in time"
	case ErrorMalformed:
		return "generation service returned an unreadable response"
	default:
		return "generation service call failed"
	}
}

// Error is a classified generation-service failure.
type Error struct {
	Class ErrorClass
	Err   error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("llm %s: %s", e.Class, e.Class.UserMessage())
	}
	return fmt.Sprintf("llm %s: %v", e.Class, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError wraps err with the given class.
func NewError(class ErrorClass, err error) *Error {
	return &Error{Class: class, Err: err}
}

// ClassOf extracts the error class, defaulting to generic for unclassified
// errors.
func ClassOf(err error) ErrorClass {
	var e *Error
	if errors.As(err, &e) {
		return e.Class
	}
	return ErrorGeneric
}
