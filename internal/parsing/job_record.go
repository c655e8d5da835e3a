package parsing

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jonathan/cv-optimizer/internal/ingestion"
	"github.com/jonathan/cv-optimizer/internal/llm"
	"github.com/jonathan/cv-optimizer/internal/prompts"
	"github.com/jonathan/cv-optimizer/internal/schemas"
	"github.com/jonathan/cv-optimizer/internal/types"
)

// JobExtractor extracts a JobRecord from job posting text.
type JobExtractor struct {
	client llm.Client
}

// NewJobExtractor creates a JobExtractor.
func NewJobExtractor(client llm.Client) *JobExtractor {
	return &JobExtractor{client: client}
}

// ExtractJob cleans the posting text and extracts its requirements.
func (e *JobExtractor) ExtractJob(ctx context.Context, text string) (*types.JobRecord, error) {
	cleaned := ingestion.CleanJobText(text)
	if cleaned == "" {
		return nil, &ValidationError{Field: "job_text", Message: "job text is empty"}
	}

	prompt, err := prompts.Render("extraction.json", "extract-job", map[string]string{"JobText": cleaned})
	if err != nil {
		return nil, err
	}

	raw, err := e.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, &APICallError{Message: "failed to extract job record", Cause: err}
	}

	job, err := parseJobJSON(raw)
	if err != nil {
		return nil, err
	}

	postProcessJob(job)
	if err := job.Validate(); err != nil {
		return nil, &ValidationError{Field: "job", Message: err.Error(), Cause: err}
	}
	return job, nil
}

func parseJobJSON(raw string) (*types.JobRecord, error) {
	raw = llm.CleanJSONBlock(raw)
	if err := schemas.Validate(schemas.Job, raw); err != nil {
		return nil, &ValidationError{Field: "job", Message: "model output does not match schema", Cause: err}
	}

	var job types.JobRecord
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return nil, &ParseError{Message: "failed to parse job JSON", Cause: err}
	}
	return &job, nil
}

// postProcessJob bounds free-text fields and normalizes skill lists.
func postProcessJob(j *types.JobRecord) {
	j.Title = strings.TrimSpace(j.Title)
	j.Summary = clamp(j.Summary, types.MaxJobSummaryChars)
	j.EducationRequirements = clamp(j.EducationRequirements, types.MaxJobEducationChars)

	responsibilities := make([]string, 0, len(j.Responsibilities))
	for _, r := range j.Responsibilities {
		if r = clamp(r, types.MaxJobResponsibilityChars); r != "" {
			responsibilities = append(responsibilities, r)
		}
	}
	j.Responsibilities = responsibilities

	j.RequiredSkills = NormalizeSkills(j.RequiredSkills)
	j.PreferredSkills = NormalizeSkills(j.PreferredSkills)
	if j.RequiredExperienceYears < 0 {
		j.RequiredExperienceYears = 0
	}
}
