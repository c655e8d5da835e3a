package pipeline

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/cv-optimizer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext(t *testing.T) {
	tests := []struct {
		stage Stage
		kind  types.JobInputKind
		want  Stage
	}{
		{StageIngest, "", StageExtractCV},
		{StageExtractCV, "", StageRoute},
		{StageRoute, types.JobInputTitle, StageJobHunt},
		{StageRoute, types.JobInputURL, StageJobHunt},
		{StageRoute, types.JobInputText, StageJobAnalyze},
		{StageJobHunt, types.JobInputURL, StageJobAnalyze},
		{StageJobAnalyze, types.JobInputText, StageScore},
		{StageScore, "", StageCritique},
		{StageCritique, "", StageOptimize},
		{StageOptimize, "", StageRender},
		{StageRender, "", StagePersist},
		{StagePersist, "", StageDeliver},
		{StageDeliver, "", StageTerminal},
	}
	for _, tt := range tests {
		t.Run(string(tt.stage)+"/"+string(tt.kind), func(t *testing.T) {
			got, err := Next(tt.stage, tt.kind)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNext_Errors(t *testing.T) {
	_, err := Next(StageRoute, "fax")
	assert.Error(t, err)

	_, err = Next(StageTerminal, types.JobInputText)
	assert.Error(t, err)

	_, err = Next("BOGUS", types.JobInputText)
	assert.Error(t, err)
}

func TestStageRegistry_CoversEveryStage(t *testing.T) {
	stage := StageIngest
	seen := 0
	for stage != StageTerminal {
		def, ok := StageRegistry[stage]
		require.True(t, ok, "missing definition for %s", stage)
		assert.Equal(t, stage, def.Stage)
		assert.NotEmpty(t, def.Category)
		seen++

		kind := types.JobInputTitle
		next, err := Next(stage, kind)
		require.NoError(t, err)
		stage = next
	}
	assert.Equal(t, 11, seen)

	for _, s := range []Stage{StageCritique, StageRender, StagePersist, StageDeliver} {
		assert.False(t, StageRegistry[s].Fatal, "%s should not abort the run", s)
	}
	for _, s := range []Stage{StageIngest, StageExtractCV, StageJobHunt, StageJobAnalyze, StageScore, StageOptimize} {
		assert.True(t, StageRegistry[s].Fatal, "%s should abort the run", s)
	}
}

func TestState_Require(t *testing.T) {
	s := NewState(Input{CVSourceRef: "cv.pdf", JobRawInput: "Go Developer"})

	assert.NoError(t, s.require(StageIngest))
	assert.ErrorContains(t, s.require(StageExtractCV), "run id")

	s.RunID = uuid.New()
	assert.NoError(t, s.require(StageExtractCV))

	assert.ErrorContains(t, s.require(StageRoute), "job input kind")
	s.JobInputKind = types.JobInputTitle
	s.Candidate = &types.CandidateRecord{Name: "Ada"}
	assert.NoError(t, s.require(StageRoute))
	assert.NoError(t, s.require(StageJobHunt))

	assert.ErrorContains(t, s.require(StageJobAnalyze), "job text")
	s.JobInputKind = types.JobInputURL
	s.JobRawText = "We need Go"
	assert.NoError(t, s.require(StageJobAnalyze))

	assert.ErrorContains(t, s.require(StageScore), "job record")
	s.Job = &types.JobRecord{Title: "Go Developer"}
	assert.NoError(t, s.require(StageScore))

	assert.ErrorContains(t, s.require(StageOptimize), "initial score")
	s.Scored = true
	assert.NoError(t, s.require(StageCritique))
	assert.NoError(t, s.require(StageOptimize))
	assert.NoError(t, s.require(StageRender))
	assert.NoError(t, s.require(StagePersist))
	assert.NoError(t, s.require(StageDeliver))

	assert.Error(t, s.require("BOGUS"))
}

func TestState_JobText(t *testing.T) {
	s := NewState(Input{JobRawInput: "  raw description  "})
	s.JobRawText = " fetched page "

	s.JobInputKind = types.JobInputText
	assert.Equal(t, "raw description", s.jobText())

	s.JobInputKind = types.JobInputURL
	assert.Equal(t, "fetched page", s.jobText())

	s.JobInputKind = types.JobInputTitle
	assert.Empty(t, s.jobText())
}

func TestFailedStage(t *testing.T) {
	err := &StageError{Stage: StageScore, Err: &ScoringError{Message: "boom"}}
	stage, ok := FailedStage(err)
	require.True(t, ok)
	assert.Equal(t, StageScore, stage)

	_, ok = FailedStage(assert.AnError)
	assert.False(t, ok)
}
