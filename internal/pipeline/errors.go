package pipeline

import (
	"errors"
	"fmt"
)

// InputError reports missing or malformed run input. The run does not start.
type InputError struct {
	Message string
	Cause   error
}

func (e *InputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid input: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid input: %s", e.Message)
}

func (e *InputError) Unwrap() error {
	return e.Cause
}

// ExtractionError reports that a structured record could not be produced.
type ExtractionError struct {
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction failed: %s", e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// SearchError reports a failed or empty job search.
type SearchError struct {
	Message string
	Cause   error
}

func (e *SearchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("job search failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("job search failed: %s", e.Message)
}

func (e *SearchError) Unwrap() error {
	return e.Cause
}

// FetchError reports that no job text could be fetched.
type FetchError struct {
	Message string
	Cause   error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("job fetch failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("job fetch failed: %s", e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// ScoringError reports a scorer failure.
type ScoringError struct {
	Message string
	Cause   error
}

func (e *ScoringError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("scoring failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("scoring failed: %s", e.Message)
}

func (e *ScoringError) Unwrap() error {
	return e.Cause
}

// RewriteError reports a rewriter failure.
type RewriteError struct {
	Message string
	Cause   error
}

func (e *RewriteError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("rewrite failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("rewrite failed: %s", e.Message)
}

func (e *RewriteError) Unwrap() error {
	return e.Cause
}

// RenderError reports a failed render. It is recorded, never returned from Run.
type RenderError struct {
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("render failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("render failed: %s", e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// PersistError reports a document that could not be stored. It is recorded,
// never returned from Run.
type PersistError struct {
	Message string
	Cause   error
}

func (e *PersistError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("persist failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("persist failed: %s", e.Message)
}

func (e *PersistError) Unwrap() error {
	return e.Cause
}

// DeliveryError reports a failed email dispatch. It is recorded, never returned from Run.
type DeliveryError struct {
	Message string
	Cause   error
}

func (e *DeliveryError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("delivery failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("delivery failed: %s", e.Message)
}

func (e *DeliveryError) Unwrap() error {
	return e.Cause
}

// StageError wraps a fatal error with the stage it happened in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// FailedStage returns the stage a Run error happened in, if any.
func FailedStage(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
