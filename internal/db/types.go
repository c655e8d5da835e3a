package db

import (
	"time"

	"github.com/google/uuid"
)

// Run statuses
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run represents a pipeline run record
type Run struct {
	ID             uuid.UUID  `json:"id"`
	UserID         string     `json:"user_id,omitempty"`
	JobInput       string     `json:"job_input"`
	JobInputKind   string     `json:"job_input_kind"`
	JobURL         string     `json:"job_url,omitempty"`
	RoleTitle      string     `json:"role_title,omitempty"`
	Company        string     `json:"company,omitempty"`
	Status         string     `json:"status"`
	InitialScore   *int       `json:"initial_score,omitempty"`
	MatchScore     *int       `json:"match_score,omitempty"`
	Iterations     int        `json:"iterations"`
	RenderDegraded bool       `json:"render_degraded"`
	DocumentRef    string     `json:"document_ref,omitempty"`
	Error          string     `json:"error,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// RunInput holds the fields known when a run starts.
type RunInput struct {
	ID           uuid.UUID
	UserID       string
	JobInput     string
	JobInputKind string
}

// RunOutcome holds the fields written when a run ends.
type RunOutcome struct {
	Status         string
	JobURL         string
	RoleTitle      string
	Company        string
	InitialScore   *int
	MatchScore     *int
	Iterations     int
	RenderDegraded bool
	DocumentRef    string
	Error          string
}

// ArtifactSummary describes a stored artifact without its content.
type ArtifactSummary struct {
	ID        uuid.UUID `json:"id"`
	Stage     string    `json:"stage"`
	IsText    bool      `json:"is_text"`
	CreatedAt time.Time `json:"created_at"`
}
