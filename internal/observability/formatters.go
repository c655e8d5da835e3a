// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/cv-optimizer/internal/optimize"
	"github.com/jonathan/cv-optimizer/internal/pipeline"
	"github.com/jonathan/cv-optimizer/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}

// writeList writes up to limit bullet items and a count of the rest.
func writeList(sb *strings.Builder, heading string, items []string, limit int) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "%s:\n", heading)
	for _, item := range items[:min(len(items), limit)] {
		fmt.Fprintf(sb, "  • %s\n", item)
	}
	if len(items) > limit {
		fmt.Fprintf(sb, "  ... and %d more\n", len(items)-limit)
	}
}

// PrintProgress prints one line per stage transition.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintProgress(ev pipeline.ProgressEvent) {
	marker := "…"
	switch ev.Status {
	case pipeline.StatusCompleted:
		marker = "✓"
	case pipeline.StatusFailed:
		marker = "✗"
	case pipeline.StatusAttempt:
		marker = "↻"
	}
	if ev.Message == "" {
		fmt.Fprintf(p.out, "%s %s\n", marker, ev.Stage)
		return
	}
	fmt.Fprintf(p.out, "%s %s: %s\n", marker, ev.Stage, ev.Message)
}

// PrintCandidate outputs a summary of the extracted CV.
func (p *Printer) PrintCandidate(c *types.CandidateRecord) {
	if c == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Name:       %s\n", c.Name)
	if c.Email != "" {
		fmt.Fprintf(&sb, "Email:      %s\n", c.Email)
	}
	fmt.Fprintf(&sb, "Experience: %d roles\n", len(c.Experience))
	fmt.Fprintf(&sb, "Projects:   %d\n", len(c.Projects))
	sb.WriteString("\n")
	writeList(&sb, "Skills", c.Skills, maxItemsToShow)

	p.printBox("CANDIDATE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintJob outputs a human-readable summary of the extracted job record.
func (p *Printer) PrintJob(j *types.JobRecord) {
	if j == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Role:     %s\n", j.Title)
	if j.Company != "" {
		fmt.Fprintf(&sb, "Company:  %s\n", j.Company)
	}
	if j.RequiredExperienceYears > 0 {
		fmt.Fprintf(&sb, "Years:    %d+\n", j.RequiredExperienceYears)
	}
	sb.WriteString("\n")
	writeList(&sb, "Required Skills", j.RequiredSkills, maxItemsToShow)
	writeList(&sb, "Preferred Skills", j.PreferredSkills, 3)

	p.printBox("JOB REQUIREMENTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintAttempts outputs one line per optimization iteration.
func (p *Printer) PrintAttempts(initial int, attempts []optimize.Attempt) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Initial score: %d\n", initial)
	if len(attempts) == 0 {
		sb.WriteString("No rewrites attempted")
	}
	for _, a := range attempts {
		verdict := "rejected"
		switch {
		case a.Error != "":
			verdict = "failed: " + a.Error
		case a.Accepted:
			verdict = "accepted"
		}
		fmt.Fprintf(&sb, "#%d  score %3d  %s\n", a.Iteration, a.Score, verdict)
	}

	p.printBox("OPTIMIZATION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintResult outputs the final outcome of a run.
func (p *Printer) PrintResult(res *pipeline.Result) {
	if res == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Run:        %s\n", res.RunID)
	if res.ResolvedJobURL != "" {
		fmt.Fprintf(&sb, "Job URL:    %s\n", res.ResolvedJobURL)
	}
	fmt.Fprintf(&sb, "Score:      %d → %d after %d iterations\n", res.InitialScore, res.MatchScore, res.Iterations)
	switch {
	case res.PersistError != "":
		fmt.Fprintf(&sb, "Document:   not stored (%s)\n", res.PersistError)
	case res.DocumentRef != "" && res.RenderDegraded:
		fmt.Fprintf(&sb, "Document:   %s (HTML fallback)\n", res.DocumentRef)
	case res.DocumentRef != "":
		fmt.Fprintf(&sb, "Document:   %s\n", res.DocumentRef)
	}
	if d := res.Delivery; d != nil {
		fmt.Fprintf(&sb, "Email:      %s", d.Status)
		if d.Recipient != "" {
			fmt.Fprintf(&sb, " to %s", d.Recipient)
		}
		sb.WriteString("\n")
	}
	if len(res.MissingKeywords) > 0 {
		sb.WriteString("\n")
		writeList(&sb, "Still missing", res.MissingKeywords, maxItemsToShow)
	}

	title := "✅ RUN COMPLETE"
	if res.Error != "" {
		title = "❌ RUN FAILED AT " + string(res.FailedStage)
		fmt.Fprintf(&sb, "\n%s\n", res.Error)
	}
	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}
