package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidateRecord_Validate(t *testing.T) {
	valid := &CandidateRecord{
		Name:   "Ada Lovelace",
		Email:  "ada@example.com",
		Skills: []string{"Python"},
		Experience: []Experience{
			{Title: "Engineer", Company: "Analytical Engines"},
		},
	}
	require.NoError(t, valid.Validate())

	badEmail := valid.Clone()
	badEmail.Email = "not-an-email"
	assert.Error(t, badEmail.Validate())

	emptySkill := valid.Clone()
	emptySkill.Skills = append(emptySkill.Skills, "")
	assert.Error(t, emptySkill.Validate())
}

func TestCandidateRecord_Clone(t *testing.T) {
	orig := &CandidateRecord{
		Skills:   []string{"Go"},
		Projects: []Project{{Name: "p", Technologies: []string{"pgx"}}},
	}
	cp := orig.Clone()
	cp.Skills[0] = "Rust"
	cp.Projects[0].Technologies[0] = "sqlx"

	assert.Equal(t, "Go", orig.Skills[0])
	assert.Equal(t, "pgx", orig.Projects[0].Technologies[0])

	var nilRecord *CandidateRecord
	assert.Nil(t, nilRecord.Clone())
}

func TestCandidateRecord_HasSkill(t *testing.T) {
	c := &CandidateRecord{Skills: []string{" Docker ", "python"}}
	assert.True(t, c.HasSkill("docker"))
	assert.True(t, c.HasSkill("Python"))
	assert.False(t, c.HasSkill("Kubernetes"))
}

func TestJobRecord_Validate(t *testing.T) {
	j := &JobRecord{Title: "ML Engineer", RequiredSkills: []string{"Python"}}
	require.NoError(t, j.Validate())

	j.Summary = strings.Repeat("x", MaxJobSummaryChars+1)
	assert.Error(t, j.Validate())

	j.Summary = ""
	j.RequiredExperienceYears = -1
	assert.Error(t, j.Validate())
}

func TestScoreResult_Validate(t *testing.T) {
	tests := []struct {
		score   int
		wantErr bool
	}{
		{0, false},
		{100, false},
		{-1, true},
		{101, true},
	}
	for _, tt := range tests {
		err := (&ScoreResult{Score: tt.score}).Validate()
		if tt.wantErr {
			assert.Error(t, err, "score %d", tt.score)
		} else {
			assert.NoError(t, err, "score %d", tt.score)
		}
	}
}

func TestParseJobInputKind(t *testing.T) {
	k, err := ParseJobInputKind(" URL ")
	require.NoError(t, err)
	assert.Equal(t, JobInputURL, k)
	assert.Equal(t, "URL", k.String())

	_, err = ParseJobInputKind("pdf")
	assert.Error(t, err)
}

func TestEmailDraft_Validate(t *testing.T) {
	assert.NoError(t, (&EmailDraft{Subject: "s", Body: "b"}).Validate())
	assert.Error(t, (&EmailDraft{Subject: "s"}).Validate())
}
