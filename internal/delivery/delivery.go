// Package delivery drafts the application email and sends the rendered CV to a recruiter.
package delivery

import (
	"context"
	"strings"
	"time"

	"github.com/jonathan/cv-optimizer/internal/types"
	"go.uber.org/zap"
)

// RawSender sends a composed message.
type RawSender interface {
	SendRaw(ctx context.Context, raw []byte) (string, error)
}

// EmailDrafter writes the email text.
type EmailDrafter interface {
	Draft(ctx context.Context, candidate *types.CandidateRecord, job *types.JobRecord) (*types.EmailDraft, error)
}

// Deliverer drafts and sends the application email.
type Deliverer struct {
	drafter EmailDrafter
	sender  RawSender
	logger  *zap.Logger
	now     func() time.Time
}

// NewDeliverer creates a Deliverer. A nil sender drafts the email without sending it.
func NewDeliverer(drafter EmailDrafter, sender RawSender, logger *zap.Logger) *Deliverer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deliverer{drafter: drafter, sender: sender, logger: logger, now: time.Now}
}

// Send emails doc to recipient. The returned record describes the outcome; the error is
// non-nil only when the status is failed.
func (d *Deliverer) Send(ctx context.Context, doc *types.RenderedDocument, recipient string, candidate *types.CandidateRecord, job *types.JobRecord) (*types.DeliveryRecord, error) {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return &types.DeliveryRecord{Status: types.DeliverySkipped, Error: "no recipient"}, nil
	}

	record := &types.DeliveryRecord{Recipient: recipient}
	fail := func(err error) (*types.DeliveryRecord, error) {
		record.Status = types.DeliveryFailed
		record.Error = err.Error()
		d.logger.Warn("delivery failed", zap.String("recipient", recipient), zap.Error(err))
		return record, err
	}

	draft, err := d.drafter.Draft(ctx, candidate, job)
	if err != nil {
		return fail(err)
	}
	record.Subject = draft.Subject
	record.Body = draft.Body

	if d.sender == nil {
		record.Status = types.DeliverySkipped
		record.Error = "email sending disabled"
		return record, nil
	}

	raw, err := BuildMessage(recipient, draft, doc)
	if err != nil {
		return fail(err)
	}
	id, err := d.sender.SendRaw(ctx, raw)
	if err != nil {
		return fail(err)
	}

	sentAt := d.now()
	record.Status = types.DeliverySent
	record.MessageID = id
	record.SentAt = &sentAt
	d.logger.Info("email sent", zap.String("recipient", recipient), zap.String("message_id", id))
	return record, nil
}
