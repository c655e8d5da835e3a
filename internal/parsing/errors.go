package parsing

import "fmt"

// APICallError wraps a failed model call made while extracting a record.
type APICallError struct {
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	return describe("model call failed", e.Message, e.Cause)
}

func (e *APICallError) Unwrap() error { return e.Cause }

// ParseError means the model answered but its output was not decodable JSON.
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	return describe("unreadable model output", e.Message, e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// ValidationError reports an input or extracted record that breaks a record
// invariant. Field names the offending input or record.
type ValidationError struct {
	Message string
	Field   string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid record: " + e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Cause }

func describe(prefix, msg string, cause error) string {
	if cause == nil {
		return prefix + ": " + msg
	}
	return fmt.Sprintf("%s: %s: %v", prefix, msg, cause)
}
