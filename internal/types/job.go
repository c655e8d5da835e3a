package types

// Output bounds applied to extracted job records.
const (
	MaxJobSummaryChars        = 300
	MaxJobEducationChars      = 80
	MaxJobResponsibilityChars = 120
)

// JobRecord is the structured representation of a job posting's requirements.
type JobRecord struct {
	Title                   string   `json:"title"`
	Company                 string   `json:"company,omitempty"`
	Location                string   `json:"location,omitempty"`
	Summary                 string   `json:"summary,omitempty" validate:"max=300"`
	RequiredSkills          []string `json:"required_skills" validate:"dive,required"`
	PreferredSkills         []string `json:"preferred_skills,omitempty"`
	Responsibilities        []string `json:"responsibilities,omitempty" validate:"dive,max=120"`
	RequiredExperienceYears int      `json:"required_experience_years" validate:"min=0"`
	EducationRequirements   string   `json:"education_requirements,omitempty" validate:"max=80"`
	SalaryRange             string   `json:"salary_range,omitempty"`
}

// Validate checks the record against its struct tags.
func (j *JobRecord) Validate() error {
	return validate.Struct(j)
}

// Posting is a single search hit for a job title.
type Posting struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet,omitempty"`
}
