package types

import "time"

// Content types produced by the renderer.
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeHTML = "text/html; charset=utf-8"
	ContentTypeText = "text/plain; charset=utf-8"
)

// RenderedDocument is the output of the rendering stage.
type RenderedDocument struct {
	Data        []byte `json:"-"`
	ContentType string `json:"content_type"`
	FileName    string `json:"file_name"`
	// Degraded is set when the PDF conversion failed and Data holds the HTML fallback.
	Degraded bool `json:"degraded"`
}

// IsPDF reports whether the document is a PDF.
func (d *RenderedDocument) IsPDF() bool {
	return d != nil && d.ContentType == ContentTypePDF
}

// DeliveryStatus is the outcome of an email dispatch.
type DeliveryStatus string

// DeliveryStatus values
const (
	DeliverySent    DeliveryStatus = "sent"
	DeliverySkipped DeliveryStatus = "skipped"
	DeliveryFailed  DeliveryStatus = "failed"
)

// DeliveryRecord records what happened when the document was emailed.
type DeliveryRecord struct {
	Status    DeliveryStatus `json:"status"`
	Recipient string         `json:"recipient,omitempty"`
	Subject   string         `json:"subject,omitempty"`
	Body      string         `json:"body,omitempty"`
	MessageID string         `json:"message_id,omitempty"`
	Error     string         `json:"error,omitempty"`
	SentAt    *time.Time     `json:"sent_at,omitempty"`
}

// EmailDraft is a generated application email.
type EmailDraft struct {
	Subject string `json:"subject" validate:"required"`
	Body    string `json:"body" validate:"required"`
}

// Validate checks that both subject and body are present.
func (e *EmailDraft) Validate() error {
	return validate.Struct(e)
}
