// Package ingestion turns raw user inputs into clean text: résumé files, job descriptions,
// and the classification of the job input.
package ingestion

import (
	"regexp"
	"strings"
)

var (
	multiSpaceRe   = regexp.MustCompile(`[ \t\f\v]+`)
	blankLinesRe   = regexp.MustCompile(`\n{3,}`)
	emailRe        = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	bulletPrefixes = []string{"- ", "* ", "• ", "· "}
)

// CleanText normalizes line endings and spacing while keeping headings, bullets and
// paragraph breaks.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	result := strings.Join(lines, "\n")
	result = blankLinesRe.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

func cleanLine(line string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return ""
	}
	// markdown headings lose their indentation
	if strings.HasPrefix(trimmed, "#") {
		return trimmed
	}

	indent := len(line) - len(strings.TrimLeft(line, " \t"))
	body := multiSpaceRe.ReplaceAllString(trimmed, " ")
	if isBulletLine(trimmed) && indent > 0 {
		return strings.Repeat(" ", indent) + body
	}
	return body
}

func isBulletLine(line string) bool {
	for _, p := range bulletPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// StripEmails removes email addresses, which the job extractor does not need.
func StripEmails(text string) string {
	return emailRe.ReplaceAllString(text, "")
}

// CleanJobText prepares a pasted or scraped job description for extraction.
func CleanJobText(text string) string {
	return CleanText(StripEmails(text))
}
