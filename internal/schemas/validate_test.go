package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Candidate(t *testing.T) {
	valid := `{"name":"Ada","skills":["Python"],"experience":[{"title":"Engineer"}]}`
	assert.NoError(t, Validate(Candidate, valid))

	missingSkills := `{"name":"Ada"}`
	err := Validate(Candidate, missingSkills)
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, Candidate, ve.Schema)
	assert.NotEmpty(t, ve.Errors)
}

func TestValidate_Score(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		valid bool
	}{
		{"valid", `{"score": 85, "missing_keywords": [], "explanation": "ok"}`, true},
		{"above range", `{"score": 140, "missing_keywords": []}`, false},
		{"fractional", `{"score": 40.5, "missing_keywords": []}`, false},
		{"missing keywords absent", `{"score": 10}`, false},
		{"string score", `{"score": "high", "missing_keywords": []}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(Score, tt.doc)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_JobAllowsNulls(t *testing.T) {
	doc := `{"title":"ML Engineer","required_skills":["Python"],"company":null,"required_experience_years":null}`
	assert.NoError(t, Validate(Job, doc))
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("nope", `{}`)
	var le *SchemaLoadError
	require.True(t, errors.As(err, &le))
}

func TestValidate_MalformedDocument(t *testing.T) {
	assert.Error(t, Validate(Email, `{not json`))
}

func TestValidateJSONString(t *testing.T) {
	schema := `{"type":"object","required":["a"]}`
	assert.NoError(t, ValidateJSONString(schema, `{"a":1}`))
	assert.Error(t, ValidateJSONString(schema, `{}`))
	assert.Error(t, ValidateJSONString(`{"type": 12}`, `{}`))
}
