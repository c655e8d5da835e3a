// Package scoring rates how well a candidate record matches a job record and turns the
// gaps into rewrite feedback.
package scoring

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

// MissingDataExplanation is returned when either record lacks the data needed to score.
const MissingDataExplanation = "Missing critical data for evaluation."

// Scorer asks the model for a match score.
type Scorer struct {
	client llm.Client
	logger *zap.Logger
}

// NewScorer creates a Scorer.
func NewScorer(client llm.Client, logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{client: client, logger: logger}
}

type candidatePayload struct {
	Skills           []string          `json:"skills"`
	ExperienceTitles []string          `json:"experience_titles"`
	Education        []types.Education `json:"education"`
}

type jobPayload struct {
	RequiredSkills          []string `json:"required_skills"`
	Responsibilities        []string `json:"responsibilities"`
	RequiredExperienceYears int      `json:"required_experience_years"`
	Education               string   `json:"education"`
}

// Score rates candidate against job. A candidate without skills or a job without
// required skills scores 0 without calling the model.
func (s *Scorer) Score(ctx context.Context, candidate *types.CandidateRecord, job *types.JobRecord) (*types.ScoreResult, error) {
	if candidate == nil || job == nil {
		return nil, &Error{Message: "candidate and job records are required"}
	}

	if len(candidate.Skills) == 0 || len(job.RequiredSkills) == 0 {
		return &types.ScoreResult{
			Score:           0,
			MissingKeywords: append([]string{}, job.RequiredSkills...),
			Explanation:     MissingDataExplanation,
		}, nil
	}

	cp := candidatePayload{Skills: candidate.Skills, Education: candidate.Education}
	for _, e := range candidate.Experience {
		cp.ExperienceTitles = append(cp.ExperienceTitles, e.Title)
	}
	jp := jobPayload{
		RequiredSkills:          job.RequiredSkills,
		Responsibilities:        job.Responsibilities,
		RequiredExperienceYears: job.RequiredExperienceYears,
		Education:               job.EducationRequirements,
	}

	prompt, err := renderWithJSON("scoring.json", "score-match", map[string]any{"Candidate": cp, "Job": jp})
	if err != nil {
		return nil, &Error{Message: "failed to build prompt", Cause: err}
	}

	raw, err := s.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, &Error{Message: "model call failed", Cause: err}
	}
	raw = llm.CleanJSONBlock(raw)
	if err := schemas.Validate(schemas.Score, raw); err != nil {
		return nil, &Error{Message: "malformed score", Cause: err}
	}

	var result types.ScoreResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, &Error{Message: "failed to parse score JSON", Cause: err}
	}
	if err := result.Validate(); err != nil {
		return nil, &Error{Message: "score out of range", Cause: err}
	}
	result.MissingKeywords = parsing.NormalizeSkills(result.MissingKeywords)

	s.logger.Debug("scored candidate",
		zap.Int("score", result.Score), zap.Strings("missing", result.MissingKeywords))
	return &result, nil
}

// renderWithJSON renders a prompt whose placeholders are filled with JSON encodings of values.
func renderWithJSON(file, key string, values map[string]any) (string, error) {
	data := make(map[string]string, len(values))
	for k, v := range values {
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode %s: %w", k, err)
		}
		data[k] = string(b)
	}
	return prompts.Render(file, key, data)
}
