// Package types provides type definitions for structured data used throughout the cv-optimizer system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// CandidateRecord is the structured representation of a résumé.
type CandidateRecord struct {
	Name       string       `json:"name"`
	Email      string       `json:"email,omitempty" validate:"omitempty,email"`
	Phone      string       `json:"phone,omitempty"`
	Location   string       `json:"location,omitempty"`
	Summary    string       `json:"summary,omitempty"`
	Skills     []string     `json:"skills" validate:"dive,required"`
	Experience []Experience `json:"experience" validate:"dive"`
	Education  []Education  `json:"education" validate:"dive"`
	Projects   []Project    `json:"projects" validate:"dive"`
}

// Experience is a single work history entry.
type Experience struct {
	Title       string `json:"title" validate:"required"`
	Company     string `json:"company"`
	Duration    string `json:"duration,omitempty"`
	Description string `json:"description"`
}

// Education is a single degree entry.
type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year,omitempty"`
}

// Project is a personal or professional project listed on the résumé.
type Project struct {
	Name         string   `json:"name" validate:"required"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies,omitempty"`
}

// Validate checks the record against its struct tags.
func (c *CandidateRecord) Validate() error {
	return validate.Struct(c)
}

// HasSkill reports whether the candidate lists skill, ignoring case and surrounding space.
func (c *CandidateRecord) HasSkill(skill string) bool {
	want := strings.ToLower(strings.TrimSpace(skill))
	for _, s := range c.Skills {
		if strings.ToLower(strings.TrimSpace(s)) == want {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of c. It returns nil for a nil record.
func (c *CandidateRecord) Clone() *CandidateRecord {
	if c == nil {
		return nil
	}
	out := *c
	out.Skills = append([]string(nil), c.Skills...)
	out.Experience = append([]Experience(nil), c.Experience...)
	out.Education = append([]Education(nil), c.Education...)
	out.Projects = make([]Project, len(c.Projects))
	for i, p := range c.Projects {
		p.Technologies = append([]string(nil), p.Technologies...)
		out.Projects[i] = p
	}
	return &out
}
