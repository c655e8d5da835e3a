package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText_PreserveMarkdownHeadings(t *testing.T) {
	result := CleanText("  # Title\n## Subtitle\nContent here")

	assert.Equal(t, "# Title\n## Subtitle\nContent here", result)
}

func TestCleanText_PreserveBulletLists(t *testing.T) {
	result := CleanText("- Item 1\n  - Nested   item\n* Item 3")

	assert.Equal(t, "- Item 1\n  - Nested item\n* Item 3", result)
}

func TestCleanText_NormalizeWhitespace(t *testing.T) {
	result := CleanText("Line    with \t multiple    spaces   ")

	assert.Equal(t, "Line with multiple spaces", result)
}

func TestCleanText_RemoveExcessiveBlankLines(t *testing.T) {
	result := CleanText("Line 1\n\n\n\n\nLine 2")

	assert.Equal(t, "Line 1\n\nLine 2", result)
}

func TestCleanText_NormalizeLineEndings(t *testing.T) {
	result := CleanText("Line 1\r\nLine 2\rLine 3")

	assert.Equal(t, "Line 1\nLine 2\nLine 3", result)
}

func TestCleanText_EmptyAndWhitespace(t *testing.T) {
	assert.Equal(t, "", CleanText(""))
	assert.Equal(t, "", CleanText("   \n\t\n  "))
}

func TestCleanText_Deterministic(t *testing.T) {
	input := "Some   text\n\n\n- bullet\r\n"
	assert.Equal(t, CleanText(input), CleanText(input))
}

func TestStripEmails(t *testing.T) {
	in := "Send your CV to jobs@acme.io or hr.team+ml@acme.co.uk today."
	assert.Equal(t, "Send your CV to  or  today.", StripEmails(in))
}

func TestCleanJobText(t *testing.T) {
	in := "Contact: recruiter@acme.io\r\n\r\n\r\n\r\nRequirements:\n-   Python"
	assert.Equal(t, "Contact:\n\nRequirements:\n- Python", CleanJobText(in))
}
