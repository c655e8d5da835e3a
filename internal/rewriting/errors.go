package rewriting

import "fmt"

// Error reports a failed rewrite: a model failure or output that is not a usable
// candidate record.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("rewrite error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("rewrite error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
