package scoring

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jonathan/cv-optimizer/internal/llm"
	"github.com/jonathan/cv-optimizer/internal/schemas"
	"github.com/jonathan/cv-optimizer/internal/types"
)

// Payload limits for the critique prompt.
const (
	maxCritiqueSkills   = 30
	maxCritiqueProjects = 5
	// MaxSuggestions is the most suggestions a critique returns.
	MaxSuggestions = 5
)

// Critic produces improvement suggestions for a candidate against a job.
type Critic struct {
	client llm.Client
}

// NewCritic creates a Critic.
func NewCritic(client llm.Client) *Critic {
	return &Critic{client: client}
}

type critiquePayload struct {
	CandidateSkills         []string        `json:"candidate_skills"`
	CandidateProjects       []types.Project `json:"candidate_projects"`
	RequiredSkills          []string        `json:"required_skills"`
	MissingKeywords         []string        `json:"missing_keywords"`
	RequiredExperienceYears int             `json:"required_experience_years"`
}

// Critique returns at most MaxSuggestions suggestions.
func (c *Critic) Critique(ctx context.Context, candidate *types.CandidateRecord, job *types.JobRecord, missing []string) ([]string, error) {
	if candidate == nil || job == nil {
		return nil, &Error{Message: "candidate and job records are required"}
	}

	payload := critiquePayload{
		CandidateSkills:         head(candidate.Skills, maxCritiqueSkills),
		CandidateProjects:       candidate.Projects,
		RequiredSkills:          job.RequiredSkills,
		MissingKeywords:         missing,
		RequiredExperienceYears: job.RequiredExperienceYears,
	}
	if len(payload.CandidateProjects) > maxCritiqueProjects {
		payload.CandidateProjects = payload.CandidateProjects[:maxCritiqueProjects]
	}

	prompt, err := renderWithJSON("scoring.json", "critique", map[string]any{"Payload": payload})
	if err != nil {
		return nil, &Error{Message: "failed to build prompt", Cause: err}
	}

	raw, err := c.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, &Error{Message: "critique call failed", Cause: err}
	}
	raw = llm.CleanJSONBlock(raw)
	if err := schemas.Validate(schemas.Critique, raw); err != nil {
		return nil, &Error{Message: "malformed critique", Cause: err}
	}

	var out struct {
		Feedback []string `json:"feedback"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, &Error{Message: "failed to parse critique JSON", Cause: err}
	}

	suggestions := make([]string, 0, MaxSuggestions)
	for _, s := range out.Feedback {
		if s = strings.TrimSpace(s); s != "" && len(suggestions) < MaxSuggestions {
			suggestions = append(suggestions, s)
		}
	}
	return suggestions, nil
}

func head(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
