package delivery

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jonathan/cv-optimizer/internal/llm"
	"github.com/jonathan/cv-optimizer/internal/prompts"
	"github.com/jonathan/cv-optimizer/internal/schemas"
	"github.com/jonathan/cv-optimizer/internal/types"
)

const (
	maxDraftSkills  = 10
	fallbackCompany = "Hiring Team"
)

// Drafter writes the application email with the model.
type Drafter struct {
	client llm.Client
}

// NewDrafter creates a Drafter.
func NewDrafter(client llm.Client) *Drafter {
	return &Drafter{client: client}
}

// Draft returns a subject and body for applying to job with candidate.
func (d *Drafter) Draft(ctx context.Context, candidate *types.CandidateRecord, job *types.JobRecord) (*types.EmailDraft, error) {
	if candidate == nil || job == nil {
		return nil, &Error{Message: "candidate and job records are required"}
	}

	company := job.Company
	if strings.TrimSpace(company) == "" {
		company = fallbackCompany
	}
	skills := candidate.Skills
	if len(skills) > maxDraftSkills {
		skills = skills[:maxDraftSkills]
	}

	prompt, err := prompts.Render("delivery.json", "draft-email", map[string]string{
		"Name":    candidate.Name,
		"Title":   job.Title,
		"Company": company,
		"Summary": job.Summary,
		"Skills":  strings.Join(skills, ", "),
	})
	if err != nil {
		return nil, &Error{Message: "failed to build prompt", Cause: err}
	}

	raw, err := d.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, &Error{Message: "failed to draft email", Cause: err}
	}
	raw = llm.CleanJSONBlock(raw)
	if err := schemas.Validate(schemas.Email, raw); err != nil {
		return nil, &Error{Message: "malformed email draft", Cause: err}
	}

	var draft types.EmailDraft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return nil, &Error{Message: "failed to parse email draft", Cause: err}
	}
	draft.Subject = strings.TrimSpace(draft.Subject)
	draft.Body = strings.TrimSpace(draft.Body)
	if err := draft.Validate(); err != nil {
		return nil, &Error{Message: "invalid email draft", Cause: err}
	}
	return &draft, nil
}
