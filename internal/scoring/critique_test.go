package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jonathan/cv-optimizer/internal/llm/llmtest"
	"github.com/jonathan/cv-optimizer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCritique(t *testing.T) {
	feedback := make([]string, 7)
	for i := range feedback {
		feedback[i] = fmt.Sprintf("suggestion %d", i+1)
	}
	feedback[1] = "  "
	body, err := json.Marshal(map[string][]string{"feedback": feedback})
	require.NoError(t, err)

	client := llmtest.New(string(body))
	candidate := pythonCandidate()
	for i := 0; i < 40; i++ {
		candidate.Skills = append(candidate.Skills, fmt.Sprintf("skill-%02d", i))
	}
	for i := 0; i < 8; i++ {
		candidate.Projects = append(candidate.Projects, types.Project{Name: fmt.Sprintf("project-%d", i)})
	}

	got, err := NewCritic(client).Critique(context.Background(), candidate, pythonDockerJob(), []string{"Docker"})
	require.NoError(t, err)
	assert.Equal(t, []string{"suggestion 1", "suggestion 3", "suggestion 4", "suggestion 5", "suggestion 6"}, got)

	prompt := client.LastPrompt()
	assert.Contains(t, prompt, "skill-28")
	assert.NotContains(t, prompt, "skill-29")
	assert.Contains(t, prompt, "project-4")
	assert.NotContains(t, prompt, "project-5")
	assert.True(t, strings.Contains(prompt, `"missing_keywords"`))
}

func TestCritique_ModelError(t *testing.T) {
	client := llmtest.New().Push(llmtest.Response{Err: errors.New("boom")})
	_, err := NewCritic(client).Critique(context.Background(), pythonCandidate(), pythonDockerJob(), nil)

	var scoringErr *Error
	assert.True(t, errors.As(err, &scoringErr))
}
