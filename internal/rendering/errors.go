// Package rendering turns a candidate record into an HTML page and converts it to PDF.
package rendering

import "fmt"

// TemplateError is returned when the CV page cannot be produced from the record.
type TemplateError struct {
	Message string
	Cause   error
}

func (e *TemplateError) Error() string {
	if e.Cause == nil {
		return "cv template: " + e.Message
	}
	return fmt.Sprintf("cv template: %s: %v", e.Message, e.Cause)
}

func (e *TemplateError) Unwrap() error { return e.Cause }

// RenderError is returned when the HTML page could not become a PDF. The
// pipeline treats it as degradable.
type RenderError struct {
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause == nil {
		return "pdf render: " + e.Message
	}
	return fmt.Sprintf("pdf render: %s: %v", e.Message, e.Cause)
}

func (e *RenderError) Unwrap() error { return e.Cause }
