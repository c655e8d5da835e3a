// Package parsing turns résumé and job posting text into structured records with a language model.
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
	"go.uber.org/zap"
)

// CVExtractor reads a résumé file and extracts a CandidateRecord.
type CVExtractor struct {
	client   llm.Client
	minChars int
	logger   *zap.Logger
}

// NewCVExtractor creates a CVExtractor. minChars <= 0 uses ingestion.DefaultMinCVChars.
func NewCVExtractor(client llm.Client, minChars int, logger *zap.Logger) *CVExtractor {
	if minChars <= 0 {
		minChars = ingestion.DefaultMinCVChars
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CVExtractor{client: client, minChars: minChars, logger: logger}
}

// ExtractCV reads the file at sourceRef and extracts the candidate record from it.
func (e *CVExtractor) ExtractCV(ctx context.Context, sourceRef string) (*types.CandidateRecord, error) {
	text, err := ingestion.ReadCVText(sourceRef, e.minChars)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("read cv text", zap.String("source", sourceRef), zap.Int("chars", len(text)))
	return e.ExtractFromText(ctx, text)
}

// ExtractFromText extracts the candidate record from already-read résumé text.
func (e *CVExtractor) ExtractFromText(ctx context.Context, text string) (*types.CandidateRecord, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &ValidationError{Field: "cv_text", Message: "résumé text is empty"}
	}

	prompt, err := prompts.Render("extraction.json", "extract-cv", map[string]string{"CVText": text})
	if err != nil {
		return nil, err
	}

	raw, err := e.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, &APICallError{Message: "failed to extract candidate record", Cause: err}
	}
	raw = llm.CleanJSONBlock(raw)

	if err := schemas.Validate(schemas.Candidate, raw); err != nil {
		return nil, &ValidationError{Field: "candidate", Message: "model output does not match schema", Cause: err}
	}

	var record types.CandidateRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, &ParseError{Message: "failed to parse candidate JSON", Cause: err}
	}

	NormalizeCandidate(&record)
	if err := record.Validate(); err != nil {
		return nil, &ValidationError{Field: "candidate", Message: err.Error(), Cause: err}
	}
	return &record, nil
}

// NormalizeCandidate trims identity fields, normalizes skills and drops untitled
// experience and project entries.
func NormalizeCandidate(c *types.CandidateRecord) {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Skills = NormalizeSkills(c.Skills)

	experience := c.Experience[:0]
	for _, exp := range c.Experience {
		if strings.TrimSpace(exp.Title) != "" {
			experience = append(experience, exp)
		}
	}
	c.Experience = experience

	projects := c.Projects[:0]
	for _, p := range c.Projects {
		if strings.TrimSpace(p.Name) != "" {
			projects = append(projects, p)
		}
	}
	c.Projects = projects
}
