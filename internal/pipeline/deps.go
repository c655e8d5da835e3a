package pipeline

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jonathan/cv-optimizer/internal/db"
	"github.com/jonathan/cv-optimizer/internal/types"
)

// CVExtractor builds a candidate record from a résumé source.
type CVExtractor interface {
	ExtractCV(ctx context.Context, sourceRef string) (*types.CandidateRecord, error)
}

// JobExtractor builds a job record from job text.
type JobExtractor interface {
	ExtractJob(ctx context.Context, text string) (*types.JobRecord, error)
}

// Searcher finds job postings for a title.
type Searcher interface {
	SearchPostings(ctx context.Context, title string) ([]types.Posting, error)
}

// Fetcher downloads a page and returns its cleaned text.
type Fetcher interface {
	FetchAndClean(ctx context.Context, url string) (string, error)
}

// Scorer rates a candidate against a job.
type Scorer interface {
	Score(ctx context.Context, candidate *types.CandidateRecord, job *types.JobRecord) (*types.ScoreResult, error)
}

// Critic suggests improvements before the first rewrite.
type Critic interface {
	Critique(ctx context.Context, candidate *types.CandidateRecord, job *types.JobRecord, missing []string) ([]string, error)
}

// Rewriter produces a new candidate record from feedback.
type Rewriter interface {
	Rewrite(ctx context.Context, candidate *types.CandidateRecord, feedback string, job *types.JobRecord) (*types.CandidateRecord, error)
}

// Renderer produces the output document.
type Renderer interface {
	Render(ctx context.Context, candidate *types.CandidateRecord) (*types.RenderedDocument, error)
}

// Store persists a document and returns a reference to it.
type Store interface {
	Save(ctx context.Context, runID uuid.UUID, doc *types.RenderedDocument) (string, error)
}

// Deliverer emails the document.
type Deliverer interface {
	Send(ctx context.Context, doc *types.RenderedDocument, recipient string, candidate *types.CandidateRecord, job *types.JobRecord) (*types.DeliveryRecord, error)
}

// Recorder persists run history. *db.DB implements it.
type Recorder interface {
	CreateRun(ctx context.Context, in db.RunInput) error
	SaveArtifact(ctx context.Context, runID uuid.UUID, stage string, content any) error
	SaveTextArtifact(ctx context.Context, runID uuid.UUID, stage, text string) error
	CompleteRun(ctx context.Context, runID uuid.UUID, out db.RunOutcome) error
}

// Deps are the collaborators a Runner calls. Searcher is needed for title input and
// Fetcher for title and URL input. Critic, Renderer, Store and Deliverer are optional;
// without them the matching stage is a no-op.
type Deps struct {
	CVExtractor  CVExtractor
	JobExtractor JobExtractor
	Searcher     Searcher
	Fetcher      Fetcher
	Scorer       Scorer
	Critic       Critic
	Rewriter     Rewriter
	Renderer     Renderer
	Store        Store
	Deliverer    Deliverer
}

func (d Deps) validate() error {
	var errs []error
	if d.CVExtractor == nil {
		errs = append(errs, errors.New("cv extractor is required"))
	}
	if d.JobExtractor == nil {
		errs = append(errs, errors.New("job extractor is required"))
	}
	if d.Scorer == nil {
		errs = append(errs, errors.New("scorer is required"))
	}
	if d.Rewriter == nil {
		errs = append(errs, errors.New("rewriter is required"))
	}
	return errors.Join(errs...)
}
