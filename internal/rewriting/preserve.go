package rewriting

import (
	"strings"

	"github.com/jonathan/cv-optimizer/internal/types"
)

// restoreDropped puts back skills, experience entries and projects that exist in
// original but are missing from rewritten. Returns how many items were restored.
func restoreDropped(original, rewritten *types.CandidateRecord) int {
	restored := 0

	for _, skill := range original.Skills {
		if !rewritten.HasSkill(skill) {
			rewritten.Skills = append(rewritten.Skills, skill)
			restored++
		}
	}

	have := make(map[string]bool, len(rewritten.Experience))
	for _, e := range rewritten.Experience {
		have[experienceKey(e)] = true
	}
	for _, e := range original.Experience {
		if !have[experienceKey(e)] {
			rewritten.Experience = append(rewritten.Experience, e)
			restored++
		}
	}

	projects := make(map[string]bool, len(rewritten.Projects))
	for _, p := range rewritten.Projects {
		projects[strings.ToLower(strings.TrimSpace(p.Name))] = true
	}
	for _, p := range original.Projects {
		if !projects[strings.ToLower(strings.TrimSpace(p.Name))] {
			rewritten.Projects = append(rewritten.Projects, p)
			restored++
		}
	}

	if len(rewritten.Education) < len(original.Education) {
		rewritten.Education = append([]types.Education(nil), original.Education...)
		restored++
	}
	if rewritten.Name == "" {
		rewritten.Name = original.Name
	}
	if rewritten.Email == "" {
		rewritten.Email = original.Email
	}
	return restored
}

func experienceKey(e types.Experience) string {
	return strings.ToLower(strings.TrimSpace(e.Title)) + "|" + strings.ToLower(strings.TrimSpace(e.Company))
}
