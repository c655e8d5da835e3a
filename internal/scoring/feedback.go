package scoring

import "strings"

// FormatFeedback turns the latest missing-keyword list into rewrite instructions.
// Only the current gap analysis is described; earlier feedback is not carried over.
func FormatFeedback(missing []string) string {
	if len(missing) == 0 {
		return "All required keywords are present. Strengthen the evidence for the required skills in the experience descriptions without removing content."
	}
	return "Add these missing keywords verbatim to the skills list and, where they fit, to the experience descriptions: " +
		strings.Join(missing, ", ") + "."
}

// FormatCritique combines critique suggestions with the missing keywords into the
// feedback for the first rewrite.
func FormatCritique(suggestions []string, missing []string) string {
	var sb strings.Builder
	for _, s := range suggestions {
		if s = strings.TrimSpace(s); s != "" {
			sb.WriteString("- ")
			sb.WriteString(s)
			sb.WriteString("\n")
		}
	}
	sb.WriteString(FormatFeedback(missing))
	return sb.String()
}
