package ingestion

import (
	"strings"
	"unicode/utf8"

	"github.com/jonathan/cv-optimizer/internal/types"
)

// maxTitleChars is the longest input still treated as a job title.
const maxTitleChars = 300

// Classify decides whether the raw job input is a URL, a full job description or a
// bare job title. It is total: every string, including "", maps to exactly one kind.
// Short descriptions without the marker words are classified as titles; the job hunt
// copes with that.
func Classify(raw string) types.JobInputKind {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	if strings.HasPrefix(lowered, "http://") || strings.HasPrefix(lowered, "https://") {
		return types.JobInputURL
	}

	if utf8.RuneCountInString(raw) > maxTitleChars ||
		strings.Contains(lowered, "responsibilities") ||
		strings.Contains(lowered, "requirements") ||
		strings.Contains(raw, "\n-") {
		return types.JobInputText
	}

	return types.JobInputTitle
}
