package pipeline

import (
	"fmt"

	"github.com/jonathan/cv-optimizer/internal/types"
)

// Stage is a node of the pipeline graph.
type Stage string

// Stages in execution order. ROUTE is the only branch point.
const (
	StageIngest     Stage = "INGEST"
	StageExtractCV  Stage = "EXTRACT_CV"
	StageRoute      Stage = "ROUTE"
	StageJobHunt    Stage = "JOB_HUNT"
	StageJobAnalyze Stage = "JOB_ANALYZE"
	StageScore      Stage = "SCORE"
	StageCritique   Stage = "CRITIQUE"
	StageOptimize   Stage = "OPTIMIZE"
	StageRender     Stage = "RENDER"
	StagePersist    Stage = "PERSIST"
	StageDeliver    Stage = "DELIVER"
	StageTerminal   Stage = "TERMINAL"
)

// Stage categories, used to group progress events and stored artifacts.
const (
	CategoryIngestion    = "ingestion"
	CategoryAnalysis     = "analysis"
	CategoryOptimization = "optimization"
	CategoryOutput       = "output"
)

// StageDefinition describes a stage.
type StageDefinition struct {
	Stage    Stage
	Category string
	// Fatal stages abort the run on error; the others record the failure and continue.
	Fatal bool
}

// StageRegistry holds all stage definitions
var StageRegistry = map[Stage]StageDefinition{
	StageIngest:     {Stage: StageIngest, Category: CategoryIngestion, Fatal: true},
	StageExtractCV:  {Stage: StageExtractCV, Category: CategoryIngestion, Fatal: true},
	StageRoute:      {Stage: StageRoute, Category: CategoryIngestion, Fatal: true},
	StageJobHunt:    {Stage: StageJobHunt, Category: CategoryIngestion, Fatal: true},
	StageJobAnalyze: {Stage: StageJobAnalyze, Category: CategoryAnalysis, Fatal: true},
	StageScore:      {Stage: StageScore, Category: CategoryAnalysis, Fatal: true},
	StageCritique:   {Stage: StageCritique, Category: CategoryAnalysis, Fatal: false},
	StageOptimize:   {Stage: StageOptimize, Category: CategoryOptimization, Fatal: true},
	StageRender:     {Stage: StageRender, Category: CategoryOutput, Fatal: false},
	StagePersist:    {Stage: StagePersist, Category: CategoryOutput, Fatal: false},
	StageDeliver:    {Stage: StageDeliver, Category: CategoryOutput, Fatal: false},
	StageTerminal:   {Stage: StageTerminal, Category: CategoryOutput, Fatal: false},
}

// Next returns the stage that follows stage. kind is only consulted at ROUTE.
func Next(stage Stage, kind types.JobInputKind) (Stage, error) {
	switch stage {
	case StageIngest:
		return StageExtractCV, nil
	case StageExtractCV:
		return StageRoute, nil
	case StageRoute:
		switch kind {
		case types.JobInputTitle, types.JobInputURL:
			return StageJobHunt, nil
		case types.JobInputText:
			return StageJobAnalyze, nil
		default:
			return "", fmt.Errorf("cannot route unknown job input kind %q", kind)
		}
	case StageJobHunt:
		return StageJobAnalyze, nil
	case StageJobAnalyze:
		return StageScore, nil
	case StageScore:
		return StageCritique, nil
	case StageCritique:
		return StageOptimize, nil
	case StageOptimize:
		return StageRender, nil
	case StageRender:
		return StagePersist, nil
	case StagePersist:
		return StageDeliver, nil
	case StageDeliver:
		return StageTerminal, nil
	case StageTerminal:
		return "", fmt.Errorf("%s has no successor", StageTerminal)
	default:
		return "", fmt.Errorf("unknown stage %q", stage)
	}
}
