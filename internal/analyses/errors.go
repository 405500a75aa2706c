package analyses

import (
	"errors"
	"fmt"
	"strings"

	"tariff-backend/internal/llm"
)

var (
	// ErrNotFound is returned when an analysis row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidationExhausted marks a generation whose output failed strict
	// validation on every attempt.
	ErrValidationExhausted = errors.New("validation exhausted")
)

const (
	ErrorCodeInvalidRequest      = "INVALID_REQUEST"
	ErrorCodeValidationExhausted = "VALIDATION_EXHAUSTED"
	ErrorCodeGenerationFailed    = "GENERATION_FAILED"
	ErrorCodePersistenceFailed   = "PERSISTENCE_FAILED"
	ErrorCodeInternal            = "INTERNAL_ERROR"
)

// InvalidRequestError rejects a request before any I/O happens.
type InvalidRequestError struct {
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return "invalid request: " + e.Reason
}

// FieldError is a strict-validation violation carrying the offending field
// path, the expected shape and the actual value.
type FieldError struct {
	Path     string
	Expected string
	Actual   any
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: expected %s, got %v", e.Path, e.Expected, e.Actual)
}

// GenerationError carries enough context to log a failed generation upstream
// without further instrumentation: the comparison, the attempt count and the
// failure class.
type GenerationError struct {
	Type     ComparisonType
	Brands   []string
	Attempts int
	Class    llm.ErrorClass
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed type=%s brands=%s attempts=%d: %v",
		e.Type, strings.Join(e.Brands, ","), e.Attempts, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Code maps the failure onto an API error code.
func (e *GenerationError) Code() string {
	if errors.Is(e.Err, ErrValidationExhausted) {
		return ErrorCodeValidationExhausted
	}
	return ErrorCodeGenerationFailed
}

// PersistError marks a store failure after a successful generation. The
// result exists but was never cached, so callers must not treat a later
// identical request as served.
type PersistError struct {
	Op  string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// isDomainError reports whether err already belongs to the analysis error
// taxonomy.
func isDomainError(err error) bool {
	var invalidReq *InvalidRequestError
	var genErr *GenerationError
	var persistErr *PersistError
	return errors.As(err, &invalidReq) || errors.As(err, &genErr) || errors.As(err, &persistErr)
}
