// Package pipeline runs the résumé optimization graph: ingestion, job discovery,
// scoring, the bounded optimization loop, rendering, persistence and delivery.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/cv-optimizer/internal/db"
	"github.com/jonathan/cv-optimizer/internal/ingestion"
	"github.com/jonathan/cv-optimizer/internal/optimize"
	"github.com/jonathan/cv-optimizer/internal/rendering"
	"github.com/jonathan/cv-optimizer/internal/scoring"
	"github.com/jonathan/cv-optimizer/internal/types"
)

// Progress event statuses
const (
	StatusStarted   = "started"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusAttempt   = "attempt"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Stage    Stage  `json:"stage"`
	Category string `json:"category"`
	Status   string `json:"status"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Input is what a caller supplies for one run.
type Input struct {
	CVSourceRef string
	JobRawInput string
	UserID      string
	Recipient   string
	OnProgress  ProgressCallback
}

// Result is the public outcome of a run. On failure it still carries everything
// computed before the failing stage.
type Result struct {
	RunID           uuid.UUID               `json:"run_id"`
	JobInputKind    types.JobInputKind      `json:"job_input_kind"`
	ResolvedJobURL  string                  `json:"resolved_job_url,omitempty"`
	InitialScore    int                     `json:"initial_score"`
	MatchScore      int                     `json:"match_score"`
	MissingKeywords []string                `json:"missing_keywords"`
	Explanation     string                  `json:"explanation,omitempty"`
	Iterations      int                     `json:"iterations"`
	Attempts        []optimize.Attempt      `json:"attempts,omitempty"`
	Candidate       *types.CandidateRecord  `json:"candidate,omitempty"`
	Job             *types.JobRecord        `json:"job,omitempty"`
	Document        *types.RenderedDocument `json:"-"`
	DocumentRef     string                  `json:"document_ref,omitempty"`
	RenderDegraded  bool                    `json:"render_degraded"`
	RenderError     string                  `json:"render_error,omitempty"`
	PersistError    string                  `json:"persist_error,omitempty"`
	Delivery        *types.DeliveryRecord   `json:"delivery,omitempty"`
	Stages          []Stage                 `json:"stages"`
	Error           string                  `json:"error,omitempty"`
	FailedStage     Stage                   `json:"failed_stage,omitempty"`
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRecorder enables run history persistence. Recorder failures are logged only.
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) { r.recorder = rec }
}

// Runner executes the stage graph. It holds no per-run state and is safe for
// concurrent use.
type Runner struct {
	deps     Deps
	loop     optimize.Config
	logger   *zap.Logger
	recorder Recorder
}

// NewRunner creates a Runner.
func NewRunner(deps Deps, loop optimize.Config, opts ...Option) (*Runner, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if loop.MaxIterations < 0 {
		return nil, fmt.Errorf("max iterations must not be negative, got %d", loop.MaxIterations)
	}
	r := &Runner{deps: deps, loop: loop, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// run carries one execution's state and callbacks.
type run struct {
	*Runner
	state      *State
	onProgress ProgressCallback
	logger     *zap.Logger
	recorder   Recorder
}

// Run executes the graph from INGEST to TERMINAL.
func (r *Runner) Run(ctx context.Context, in Input) (*Result, error) {
	x := &run{Runner: r, state: NewState(in), onProgress: in.OnProgress, logger: r.logger, recorder: r.recorder}
	s := x.state

	stage := StageIngest
	for stage != StageTerminal {
		if err := ctx.Err(); err != nil {
			return x.fail(ctx, stage, fmt.Errorf("run cancelled: %w", err))
		}

		def := StageRegistry[stage]
		x.emit(stage, StatusStarted, "", nil)
		started := time.Now()

		if err := x.execute(ctx, stage); err != nil {
			if def.Fatal {
				return x.fail(ctx, stage, err)
			}
			x.logger.Warn("stage failed, continuing", zap.String("stage", string(stage)), zap.Error(err))
			x.emit(stage, StatusFailed, err.Error(), nil)
		} else {
			x.emit(stage, StatusCompleted, x.summary(stage), nil)
		}

		s.Trace = append(s.Trace, stage)
		x.logger.Debug("stage done", zap.String("stage", string(stage)), zap.Duration("took", time.Since(started)))
		x.saveArtifact(ctx, stage)

		next, err := Next(stage, s.JobInputKind)
		if err != nil {
			return x.fail(ctx, stage, err)
		}
		stage = next
	}

	x.complete(ctx, db.StatusCompleted, "")
	x.logger.Info("run completed",
		zap.Int("initial_score", s.InitialScore),
		zap.Int("score", s.MatchScore),
		zap.Int("iterations", s.Iterations),
		zap.Bool("render_degraded", s.RenderDegraded))
	return x.result(), nil
}

func (x *run) execute(ctx context.Context, stage Stage) error {
	if err := x.state.require(stage); err != nil {
		return err
	}
	switch stage {
	case StageIngest:
		return x.ingest(ctx)
	case StageExtractCV:
		return x.extractCV(ctx)
	case StageRoute:
		return nil
	case StageJobHunt:
		return x.jobHunt(ctx)
	case StageJobAnalyze:
		return x.jobAnalyze(ctx)
	case StageScore:
		return x.score(ctx)
	case StageCritique:
		return x.critique(ctx)
	case StageOptimize:
		return x.optimize(ctx)
	case StageRender:
		return x.render(ctx)
	case StagePersist:
		return x.persist(ctx)
	case StageDeliver:
		return x.deliver(ctx)
	default:
		return fmt.Errorf("no handler for stage %s", stage)
	}
}

func (x *run) ingest(ctx context.Context) error {
	s := x.state
	if strings.TrimSpace(s.CVSourceRef) == "" {
		return &InputError{Message: "a CV source is required"}
	}
	if strings.TrimSpace(s.JobRawInput) == "" {
		return &InputError{Message: "a job title, URL or description is required"}
	}

	s.RunID = uuid.New()
	s.JobInputKind = ingestion.Classify(s.JobRawInput)
	s.Iterations = 0
	s.CritiqueFeedback = []string{}
	x.logger = x.logger.With(zap.String("run_id", s.RunID.String()))

	if x.recorder != nil {
		err := x.recorder.CreateRun(ctx, db.RunInput{
			ID:           s.RunID,
			UserID:       s.UserID,
			JobInput:     s.JobRawInput,
			JobInputKind: string(s.JobInputKind),
		})
		if err != nil {
			x.logger.Warn("failed to record run, continuing without history", zap.Error(err))
			x.recorder = nil
		}
	}
	x.logger.Info("run started", zap.Stringer("job_input_kind", s.JobInputKind))
	return nil
}

func (x *run) extractCV(ctx context.Context) error {
	candidate, err := x.deps.CVExtractor.ExtractCV(ctx, x.state.CVSourceRef)
	if err != nil {
		return &ExtractionError{Message: "could not extract the CV", Cause: err}
	}
	if candidate == nil {
		return &ExtractionError{Message: "CV extraction returned no record"}
	}
	x.state.Candidate = candidate
	return nil
}

func (x *run) jobHunt(ctx context.Context) error {
	s := x.state
	if x.deps.Fetcher == nil {
		return &FetchError{Message: "page fetching is not configured"}
	}

	switch s.JobInputKind {
	case types.JobInputURL:
		url := strings.TrimSpace(s.JobRawInput)
		text, err := x.deps.Fetcher.FetchAndClean(ctx, url)
		if err != nil {
			return &FetchError{Message: "could not fetch " + url, Cause: err}
		}
		if strings.TrimSpace(text) == "" {
			return &FetchError{Message: "no text found at " + url}
		}
		s.ResolvedJobURL = url
		s.JobRawText = text
		return nil

	case types.JobInputTitle:
		return x.huntByTitle(ctx)

	case types.JobInputText:
		return fmt.Errorf("%s does not handle %s input", StageJobHunt, s.JobInputKind)
	default:
		return fmt.Errorf("%s: unknown job input kind %q", StageJobHunt, s.JobInputKind)
	}
}

// huntByTitle searches for postings and takes the first one that can be fetched,
// upgrading the input kind to URL.
func (x *run) huntByTitle(ctx context.Context) error {
	s := x.state
	if x.deps.Searcher == nil {
		return &SearchError{Message: "job search is not configured"}
	}
	title := strings.TrimSpace(s.JobRawInput)

	postings, err := x.deps.Searcher.SearchPostings(ctx, title)
	if err != nil {
		return &SearchError{Message: fmt.Sprintf("search for %q failed", title), Cause: err}
	}
	if len(postings) == 0 {
		return &SearchError{Message: fmt.Sprintf("no postings found for %q", title)}
	}

	var errs []error
	for _, p := range postings {
		text, err := x.deps.Fetcher.FetchAndClean(ctx, p.Link)
		if err == nil && strings.TrimSpace(text) == "" {
			err = errors.New("page has no text")
		}
		if err != nil {
			x.logger.Debug("posting fetch failed", zap.String("url", p.Link), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", p.Link, err))
			continue
		}

		s.JobInputKind = types.JobInputURL
		s.ResolvedJobURL = p.Link
		s.JobRawText = text
		x.logger.Info("resolved job title to posting", zap.String("url", p.Link))
		return nil
	}
	return &FetchError{
		Message: fmt.Sprintf("none of the %d postings for %q could be fetched", len(postings), title),
		Cause:   errors.Join(errs...),
	}
}

func (x *run) jobAnalyze(ctx context.Context) error {
	job, err := x.deps.JobExtractor.ExtractJob(ctx, x.state.jobText())
	if err != nil {
		return &ExtractionError{Message: "could not extract the job description", Cause: err}
	}
	if job == nil {
		return &ExtractionError{Message: "job extraction returned no record"}
	}
	x.state.Job = job
	return nil
}

func (x *run) score(ctx context.Context) error {
	s := x.state
	result, err := x.deps.Scorer.Score(ctx, s.Candidate, s.Job)
	if err != nil {
		return &ScoringError{Message: "initial scoring failed", Cause: err}
	}
	if result == nil {
		return &ScoringError{Message: "scorer returned no result"}
	}
	if err := result.Validate(); err != nil {
		return &ScoringError{Message: "scorer returned an invalid result", Cause: err}
	}

	s.Scored = true
	s.InitialScore = result.Score
	s.MatchScore = result.Score
	s.MissingKeywords = result.MissingKeywords
	s.ScoreExplanation = result.Explanation
	x.logger.Info("initial score", zap.Int("score", result.Score), zap.Strings("missing", result.MissingKeywords))
	return nil
}

func (x *run) critique(ctx context.Context) error {
	s := x.state
	if x.deps.Critic == nil {
		return nil
	}
	suggestions, err := x.deps.Critic.Critique(ctx, s.Candidate, s.Job, s.MissingKeywords)
	if err != nil {
		return fmt.Errorf("critique failed, rewriting from missing keywords only: %w", err)
	}
	s.CritiqueFeedback = suggestions
	return nil
}

func (x *run) optimize(ctx context.Context) error {
	s := x.state
	loop := optimize.New(x.deps.Rewriter, x.deps.Scorer, x.loop, x.logger)
	loop.OnAttempt(func(a optimize.Attempt) {
		x.emit(StageOptimize, StatusAttempt, fmt.Sprintf("iteration %d scored %d", a.Iteration, a.Score), a)
	})

	res, err := loop.Run(ctx, s.Job, optimize.Start{
		Candidate:       s.Candidate,
		Score:           s.MatchScore,
		MissingKeywords: s.MissingKeywords,
		Explanation:     s.ScoreExplanation,
		Feedback:        scoring.FormatCritique(s.CritiqueFeedback, s.MissingKeywords),
	})
	if res != nil {
		s.Candidate = res.Candidate
		s.MatchScore = res.Score
		s.MissingKeywords = res.MissingKeywords
		s.ScoreExplanation = res.Explanation
		s.Feedback = res.Feedback
		s.Iterations = res.Iterations
		s.Attempts = res.Attempts
	}
	if err != nil {
		var loopErr *optimize.Error
		if errors.As(err, &loopErr) {
			switch loopErr.Op {
			case optimize.OpRewrite:
				return &RewriteError{Message: fmt.Sprintf("iteration %d", loopErr.Iteration), Cause: loopErr.Err}
			case optimize.OpScore:
				return &ScoringError{Message: fmt.Sprintf("rescoring in iteration %d", loopErr.Iteration), Cause: loopErr.Err}
			}
		}
		return err
	}
	return nil
}

func (x *run) render(ctx context.Context) error {
	s := x.state
	if x.deps.Renderer == nil {
		return nil
	}
	doc, err := x.deps.Renderer.Render(ctx, s.Candidate)
	if err == nil && doc == nil {
		err = errors.New("renderer returned no document")
	}
	if err != nil {
		renderErr := &RenderError{Message: "falling back to the HTML document", Cause: err}
		s.Document = rendering.Fallback(s.Candidate)
		s.RenderDegraded = true
		s.RenderError = renderErr.Error()
		return renderErr
	}
	s.Document = doc
	s.RenderDegraded = doc.Degraded
	return nil
}

func (x *run) persist(ctx context.Context) error {
	s := x.state
	if x.deps.Store == nil || s.Document == nil {
		return nil
	}
	ref, err := x.deps.Store.Save(ctx, s.RunID, s.Document)
	if err != nil {
		persistErr := &PersistError{Message: "could not store the document", Cause: err}
		s.PersistError = persistErr.Error()
		return persistErr
	}
	s.DocumentRef = ref
	return nil
}

func (x *run) deliver(ctx context.Context) error {
	s := x.state
	switch {
	case x.deps.Deliverer == nil:
		s.Delivery = &types.DeliveryRecord{Status: types.DeliverySkipped, Error: "delivery not configured"}
		return nil
	case s.Document == nil:
		s.Delivery = &types.DeliveryRecord{Status: types.DeliverySkipped, Recipient: s.Recipient, Error: "no document to send"}
		return nil
	}

	record, err := x.deps.Deliverer.Send(ctx, s.Document, s.Recipient, s.Candidate, s.Job)
	if err != nil {
		deliveryErr := &DeliveryError{Message: "could not email the CV", Cause: err}
		if record == nil {
			record = &types.DeliveryRecord{Status: types.DeliveryFailed, Recipient: s.Recipient}
		}
		record.Status = types.DeliveryFailed
		record.Error = deliveryErr.Error()
		s.Delivery = record
		return deliveryErr
	}
	s.Delivery = record
	return nil
}

// fail records a fatal error and returns the partial result.
func (x *run) fail(ctx context.Context, stage Stage, err error) (*Result, error) {
	stageErr := &StageError{Stage: stage, Err: err}
	x.logger.Error("run failed", zap.String("stage", string(stage)), zap.Error(err))
	x.emit(stage, StatusFailed, err.Error(), nil)
	// history is written even when ctx is already cancelled
	x.complete(context.WithoutCancel(ctx), db.StatusFailed, stageErr.Error())

	res := x.result()
	res.Error = stageErr.Error()
	res.FailedStage = stage
	return res, stageErr
}

func (x *run) complete(ctx context.Context, status, errMsg string) {
	s := x.state
	if x.recorder == nil || s.RunID == uuid.Nil {
		return
	}
	out := db.RunOutcome{
		Status:         status,
		JobURL:         s.ResolvedJobURL,
		Iterations:     s.Iterations,
		RenderDegraded: s.RenderDegraded,
		DocumentRef:    s.DocumentRef,
		Error:          errMsg,
	}
	if s.Job != nil {
		out.RoleTitle = s.Job.Title
		out.Company = s.Job.Company
	}
	if s.Scored {
		initial, final := s.InitialScore, s.MatchScore
		out.InitialScore = &initial
		out.MatchScore = &final
	}
	if err := x.recorder.CompleteRun(ctx, s.RunID, out); err != nil {
		x.logger.Warn("failed to record run outcome", zap.Error(err))
	}
}

// saveArtifact stores the output of a completed stage.
func (x *run) saveArtifact(ctx context.Context, stage Stage) {
	s := x.state
	if x.recorder == nil {
		return
	}
	name := strings.ToLower(string(stage))

	var err error
	switch stage {
	case StageExtractCV:
		err = x.recorder.SaveArtifact(ctx, s.RunID, name, s.Candidate)
	case StageJobHunt:
		err = x.recorder.SaveTextArtifact(ctx, s.RunID, name, s.JobRawText)
	case StageJobAnalyze:
		err = x.recorder.SaveArtifact(ctx, s.RunID, name, s.Job)
	case StageScore, StageOptimize:
		err = x.recorder.SaveArtifact(ctx, s.RunID, name, map[string]any{
			"candidate":        s.Candidate,
			"score":            s.MatchScore,
			"missing_keywords": s.MissingKeywords,
			"explanation":      s.ScoreExplanation,
			"attempts":         s.Attempts,
		})
	case StageCritique:
		err = x.recorder.SaveArtifact(ctx, s.RunID, name, s.CritiqueFeedback)
	case StageRender:
		if s.Document != nil {
			err = x.recorder.SaveArtifact(ctx, s.RunID, name, s.Document)
		}
	case StageDeliver:
		err = x.recorder.SaveArtifact(ctx, s.RunID, name, s.Delivery)
	case StageIngest, StageRoute, StagePersist, StageTerminal:
	}
	if err != nil {
		x.logger.Warn("failed to save artifact", zap.String("stage", string(stage)), zap.Error(err))
	}
}

func (x *run) summary(stage Stage) string {
	s := x.state
	switch stage {
	case StageIngest:
		return fmt.Sprintf("job input classified as %s", s.JobInputKind)
	case StageExtractCV:
		return fmt.Sprintf("extracted CV with %d skills", len(s.Candidate.Skills))
	case StageRoute:
		return fmt.Sprintf("routing %s input", s.JobInputKind)
	case StageJobHunt:
		return "fetched job posting from " + s.ResolvedJobURL
	case StageJobAnalyze:
		return fmt.Sprintf("analyzed job %q with %d required skills", s.Job.Title, len(s.Job.RequiredSkills))
	case StageScore:
		return fmt.Sprintf("initial match score %d", s.MatchScore)
	case StageCritique:
		return fmt.Sprintf("%d suggestions", len(s.CritiqueFeedback))
	case StageOptimize:
		return fmt.Sprintf("final match score %d after %d iterations", s.MatchScore, s.Iterations)
	case StageRender:
		if s.Document == nil {
			return "rendering disabled"
		}
		return "rendered " + s.Document.FileName
	case StagePersist:
		if s.PersistError != "" {
			return s.PersistError
		}
		if s.DocumentRef == "" {
			return "nothing stored"
		}
		return "stored " + s.DocumentRef
	case StageDeliver:
		if s.Delivery == nil {
			return ""
		}
		return "delivery " + string(s.Delivery.Status)
	default:
		return ""
	}
}

func (x *run) emit(stage Stage, status, message string, content any) {
	if x.onProgress == nil {
		return
	}
	ev := ProgressEvent{
		Stage:    stage,
		Category: StageRegistry[stage].Category,
		Status:   status,
		Message:  message,
		Content:  content,
	}
	if x.state.RunID != uuid.Nil {
		ev.RunID = x.state.RunID.String()
	}
	x.onProgress(ev)
}

func (x *run) result() *Result {
	s := x.state
	return &Result{
		RunID:           s.RunID,
		JobInputKind:    s.JobInputKind,
		ResolvedJobURL:  s.ResolvedJobURL,
		InitialScore:    s.InitialScore,
		MatchScore:      s.MatchScore,
		MissingKeywords: s.MissingKeywords,
		Explanation:     s.ScoreExplanation,
		Iterations:      s.Iterations,
		Attempts:        s.Attempts,
		Candidate:       s.Candidate,
		Job:             s.Job,
		Document:        s.Document,
		DocumentRef:     s.DocumentRef,
		RenderDegraded:  s.RenderDegraded,
		RenderError:     s.RenderError,
		PersistError:    s.PersistError,
		Delivery:        s.Delivery,
		Stages:          s.Trace,
	}
}
