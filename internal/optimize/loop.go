// Package optimize runs the bounded rewrite-and-rescore loop that raises a candidate's
// match score.
package optimize

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/cv-optimizer/internal/scoring"
	"github.com/jonathan/cv-optimizer/internal/types"
	"go.uber.org/zap"
)

const (
	DefaultThreshold     = 75
	DefaultMaxIterations = 2
)

// Rewriter produces a new candidate record from feedback.
type Rewriter interface {
	Rewrite(ctx context.Context, candidate *types.CandidateRecord, feedback string, job *types.JobRecord) (*types.CandidateRecord, error)
}

// Scorer rates a candidate against a job.
type Scorer interface {
	Score(ctx context.Context, candidate *types.CandidateRecord, job *types.JobRecord) (*types.ScoreResult, error)
}

// Config holds the loop parameters.
type Config struct {
	Threshold     int
	MaxIterations int
	// ContinueOnError treats a failed attempt as rejected instead of aborting the loop.
	ContinueOnError bool
}

// DefaultConfig returns the default loop parameters.
func DefaultConfig() Config {
	return Config{Threshold: DefaultThreshold, MaxIterations: DefaultMaxIterations}
}

// Start is the state the loop begins from: the extracted record, its score and the
// critique feedback for the first rewrite.
type Start struct {
	Candidate       *types.CandidateRecord
	Score           int
	MissingKeywords []string
	Explanation     string
	Feedback        string
}

// Attempt records the outcome of one iteration.
type Attempt struct {
	Iteration int    `json:"iteration"`
	Score     int    `json:"score"`
	Accepted  bool   `json:"accepted"`
	Error     string `json:"error,omitempty"`
}

// Result is the best candidate/score pair seen by the accept rule.
type Result struct {
	Candidate       *types.CandidateRecord
	Score           int
	MissingKeywords []string
	Explanation     string
	Feedback        string
	// Iterations is the number of rewrite attempts made.
	Iterations int
	Accepted   int
	Attempts   []Attempt
}

// Decision is the accept/stop outcome of one iteration.
type Decision struct {
	Accept bool
	Stop   bool
}

// Decide applies the acceptance policy: a candidate is accepted when it does not regress
// the current score, and the loop stops once the best score reaches threshold.
func Decide(current, candidate, threshold int) Decision {
	best := current
	accept := candidate >= current
	if accept {
		best = candidate
	}
	return Decision{Accept: accept, Stop: best >= threshold}
}

// Loop re-runs the rewriter and scorer within a fixed iteration budget.
type Loop struct {
	rewriter  Rewriter
	scorer    Scorer
	cfg       Config
	logger    *zap.Logger
	onAttempt func(Attempt)
}

// New creates a Loop. A nil logger disables logging.
func New(rewriter Rewriter, scorer Scorer, cfg Config, logger *zap.Logger) *Loop {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{rewriter: rewriter, scorer: scorer, cfg: cfg, logger: logger}
}

// OnAttempt registers a callback invoked after every iteration's decision.
func (l *Loop) OnAttempt(fn func(Attempt)) {
	l.onAttempt = fn
}

// Run executes the loop. The returned Result is non-nil even when an error is returned
// and then holds the best pair accepted before the failure.
func (l *Loop) Run(ctx context.Context, job *types.JobRecord, start Start) (*Result, error) {
	if start.Candidate == nil || job == nil {
		return nil, errors.New("optimize: candidate and job records are required")
	}

	res := &Result{
		Candidate:       start.Candidate,
		Score:           start.Score,
		MissingKeywords: start.MissingKeywords,
		Explanation:     start.Explanation,
		Feedback:        start.Feedback,
	}

	for i := 1; i <= l.cfg.MaxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("optimization cancelled before iteration %d: %w", i, err)
		}
		res.Iterations = i

		attempt, decision, err := l.iterate(ctx, i, job, res)
		res.Attempts = append(res.Attempts, attempt)
		l.notify(attempt)
		if err != nil {
			if !l.cfg.ContinueOnError {
				return res, err
			}
			l.logger.Warn("optimization attempt failed, keeping current record",
				zap.Int("iteration", i), zap.Error(err))
		}

		if decision.Stop {
			l.logger.Debug("threshold reached", zap.Int("iteration", i), zap.Int("score", res.Score))
			break
		}
	}
	return res, nil
}

// iterate runs one rewrite and rescore and applies the decision to res. A failed
// attempt counts as rejected.
func (l *Loop) iterate(ctx context.Context, i int, job *types.JobRecord, res *Result) (Attempt, Decision, error) {
	attempt := Attempt{Iteration: i}
	rejected := Decision{Stop: res.Score >= l.cfg.Threshold}

	rewritten, err := l.rewriter.Rewrite(ctx, res.Candidate, res.Feedback, job)
	if err == nil && rewritten == nil {
		err = errors.New("rewriter returned no record")
	}
	if err != nil {
		attempt.Error = err.Error()
		return attempt, rejected, &Error{Iteration: i, Op: OpRewrite, Err: err}
	}

	scored, err := l.scorer.Score(ctx, rewritten, job)
	if err == nil && scored == nil {
		err = errors.New("scorer returned no result")
	}
	if err != nil {
		attempt.Error = err.Error()
		return attempt, rejected, &Error{Iteration: i, Op: OpScore, Err: err}
	}
	attempt.Score = scored.Score

	decision := Decide(res.Score, scored.Score, l.cfg.Threshold)
	if decision.Accept {
		attempt.Accepted = true
		res.Candidate = rewritten
		res.Score = scored.Score
		res.MissingKeywords = scored.MissingKeywords
		res.Explanation = scored.Explanation
		res.Feedback = scoring.FormatFeedback(scored.MissingKeywords)
		res.Accepted++
	}

	l.logger.Info("optimization attempt",
		zap.Int("iteration", i),
		zap.Int("score", scored.Score),
		zap.Int("best", res.Score),
		zap.Bool("accepted", decision.Accept))
	return attempt, decision, nil
}

func (l *Loop) notify(a Attempt) {
	if l.onAttempt != nil {
		l.onAttempt(a)
	}
}
