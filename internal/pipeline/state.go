package pipeline

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/cv-optimizer/internal/optimize"
	"github.com/jonathan/cv-optimizer/internal/types"
)

// State is the record threaded through the stages of one run. Each field names the
// stage that populates it; only the executing stage mutates the state.
type State struct {
	RunID       uuid.UUID // INGEST
	CVSourceRef string    // caller, immutable
	JobRawInput string    // caller, immutable
	UserID      string    // caller
	Recipient   string    // caller

	JobInputKind   types.JobInputKind // INGEST; JOB_HUNT upgrades TITLE to URL
	ResolvedJobURL string             // JOB_HUNT
	JobRawText     string             // JOB_HUNT

	Candidate *types.CandidateRecord // EXTRACT_CV; replaced by accepted OPTIMIZE iterations
	Job       *types.JobRecord       // JOB_ANALYZE

	Scored           bool     // SCORE
	InitialScore     int      // SCORE
	MatchScore       int      // SCORE, OPTIMIZE
	MissingKeywords  []string // SCORE, OPTIMIZE
	ScoreExplanation string   // SCORE, OPTIMIZE

	CritiqueFeedback []string           // INGEST (empty), CRITIQUE
	Feedback         string             // OPTIMIZE
	Iterations       int                // INGEST (0), OPTIMIZE
	Attempts         []optimize.Attempt // OPTIMIZE

	Document       *types.RenderedDocument // RENDER
	RenderDegraded bool                    // RENDER
	RenderError    string                  // RENDER
	DocumentRef    string                  // PERSIST
	PersistError   string                  // PERSIST
	Delivery       *types.DeliveryRecord   // DELIVER

	Trace []Stage // stages completed so far
}

// NewState creates the state for a run from the caller's input.
func NewState(in Input) *State {
	return &State{
		CVSourceRef: in.CVSourceRef,
		JobRawInput: in.JobRawInput,
		UserID:      in.UserID,
		Recipient:   in.Recipient,
	}
}

// require checks the entry contract of stage.
func (s *State) require(stage Stage) error {
	var missing []string
	need := func(ok bool, what string) {
		if !ok {
			missing = append(missing, what)
		}
	}

	switch stage {
	case StageIngest:
	case StageExtractCV:
		need(s.RunID != uuid.Nil, "run id")
		need(strings.TrimSpace(s.CVSourceRef) != "", "cv source")
	case StageRoute:
		_, err := types.ParseJobInputKind(string(s.JobInputKind))
		need(err == nil, "job input kind")
		need(s.Candidate != nil, "candidate record")
	case StageJobHunt:
		need(s.JobInputKind == types.JobInputTitle || s.JobInputKind == types.JobInputURL, "title or url input")
	case StageJobAnalyze:
		need(s.jobText() != "", "job text")
	case StageScore:
		need(s.Candidate != nil, "candidate record")
		need(s.Job != nil, "job record")
	case StageCritique, StageOptimize:
		need(s.Candidate != nil, "candidate record")
		need(s.Job != nil, "job record")
		need(s.Scored, "initial score")
	case StageRender:
		need(s.Candidate != nil, "candidate record")
	case StagePersist, StageDeliver:
		need(s.Scored, "match score")
	default:
		return fmt.Errorf("unknown stage %q", stage)
	}

	if len(missing) > 0 {
		return fmt.Errorf("%s entry check failed: missing %s", stage, strings.Join(missing, ", "))
	}
	return nil
}

// jobText is the text JOB_ANALYZE extracts from: the fetched page for URL input, the
// raw input for TEXT input.
func (s *State) jobText() string {
	switch s.JobInputKind {
	case types.JobInputURL:
		return strings.TrimSpace(s.JobRawText)
	case types.JobInputText:
		return strings.TrimSpace(s.JobRawInput)
	case types.JobInputTitle:
		return ""
	default:
		return ""
	}
}
