// Package rewriting rewrites a candidate record so it covers more of a job's requirements.
package rewriting

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonathan/cv-optimizer/internal/llm"
	"github.com/jonathan/cv-optimizer/internal/parsing"
	"github.com/jonathan/cv-optimizer/internal/prompts"
	"github.com/jonathan/cv-optimizer/internal/schemas"
	"github.com/jonathan/cv-optimizer/internal/types"
	"go.uber.org/zap"
)

// jobRequirements is the part of the job record the rewriter sees.
type jobRequirements struct {
	Title            string   `json:"title"`
	RequiredSkills   []string `json:"required_skills"`
	PreferredSkills  []string `json:"preferred_skills,omitempty"`
	Responsibilities []string `json:"responsibilities,omitempty"`
}

// Rewriter produces a new candidate record from the current one and feedback.
type Rewriter struct {
	client llm.Client
	logger *zap.Logger
}

// NewRewriter creates a Rewriter.
func NewRewriter(client llm.Client, logger *zap.Logger) *Rewriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Rewriter{client: client, logger: logger}
}

// Rewrite returns a new candidate record. The input record is never modified.
func (r *Rewriter) Rewrite(ctx context.Context, candidate *types.CandidateRecord, feedback string, job *types.JobRecord) (*types.CandidateRecord, error) {
	if candidate == nil || job == nil {
		return nil, &Error{Message: "candidate and job records are required"}
	}

	prompt, err := buildPrompt(candidate, feedback, job)
	if err != nil {
		return nil, &Error{Message: "failed to build prompt", Cause: err}
	}

	// Rewriting needs the most capable tier.
	raw, err := r.client.GenerateJSON(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, &Error{Message: "model call failed", Cause: err}
	}
	raw = llm.CleanJSONBlock(raw)

	if err := schemas.Validate(schemas.Candidate, raw); err != nil {
		return nil, &Error{Message: "rewritten record does not match schema", Cause: err}
	}

	var rewritten types.CandidateRecord
	if err := json.Unmarshal([]byte(raw), &rewritten); err != nil {
		return nil, &Error{Message: "failed to parse rewritten record", Cause: err}
	}

	parsing.NormalizeCandidate(&rewritten)
	restored := restoreDropped(candidate, &rewritten)
	if err := rewritten.Validate(); err != nil {
		return nil, &Error{Message: "rewritten record is invalid", Cause: err}
	}

	if restored > 0 {
		r.logger.Debug("restored content dropped by rewrite", zap.Int("restored", restored))
	}
	return &rewritten, nil
}

func buildPrompt(candidate *types.CandidateRecord, feedback string, job *types.JobRecord) (string, error) {
	cv, err := json.MarshalIndent(candidate, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode candidate: %w", err)
	}
	req, err := json.MarshalIndent(jobRequirements{
		Title:            job.Title,
		RequiredSkills:   job.RequiredSkills,
		PreferredSkills:  job.PreferredSkills,
		Responsibilities: job.Responsibilities,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode job: %w", err)
	}
	if feedback == "" {
		feedback = "None."
	}
	return prompts.Render("rewriting.json", "rewrite-cv", map[string]string{
		"Candidate": string(cv),
		"Job":       string(req),
		"Feedback":  feedback,
	})
}
