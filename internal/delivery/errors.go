package delivery

import "fmt"

// Error reports a failed draft, decryption or send.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("delivery error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("delivery error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
