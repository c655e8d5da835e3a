package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/cv-optimizer/internal/optimize"
	"github.com/jonathan/cv-optimizer/internal/pipeline"
	"github.com/jonathan/cv-optimizer/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestPrintJob(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintJob(&types.JobRecord{
		Title:           "ML Engineer",
		Company:         "Acme Corp",
		RequiredSkills:  []string{"Python", "Docker", "SQL", "Go", "Kubernetes", "Terraform"},
		PreferredSkills: []string{"Rust"},
	})
	output := buf.String()

	assert.Contains(t, output, "JOB REQUIREMENTS")
	assert.Contains(t, output, "Acme Corp")
	assert.Contains(t, output, "Kubernetes")
	assert.NotContains(t, output, "Terraform")
	assert.Contains(t, output, "... and 1 more")
	assert.Contains(t, output, "Rust")
}

func TestPrintNil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintJob(nil)
	p.PrintCandidate(nil)
	p.PrintResult(nil)

	assert.Empty(t, buf.String())
}

func TestPrintCandidate(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintCandidate(&types.CandidateRecord{Name: "Ada Lovelace", Skills: []string{"Python"}})
	assert.Contains(t, buf.String(), "Ada Lovelace")
	assert.Contains(t, buf.String(), "• Python")
}

func TestPrintAttempts(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintAttempts(50, []optimize.Attempt{
		{Iteration: 1, Score: 40},
		{Iteration: 2, Score: 90, Accepted: true},
	})
	output := buf.String()

	assert.Contains(t, output, "Initial score: 50")
	assert.Contains(t, output, "#1  score  40  rejected")
	assert.Contains(t, output, "#2  score  90  accepted")
}

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintResult(&pipeline.Result{
		RunID:           uuid.New(),
		InitialScore:    50,
		MatchScore:      100,
		Iterations:      1,
		DocumentRef:     "output/run/CV_Ada.html",
		RenderDegraded:  true,
		MissingKeywords: []string{"Kafka"},
		Delivery:        &types.DeliveryRecord{Status: types.DeliverySkipped},
	})
	output := buf.String()

	assert.Contains(t, output, "RUN COMPLETE")
	assert.Contains(t, output, "50 → 100")
	assert.Contains(t, output, "HTML fallback")
	assert.Contains(t, output, "Email:      skipped")
	assert.Contains(t, output, "Kafka")
}

func TestPrintResult_DocumentNotStored(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintResult(&pipeline.Result{
		MatchScore:   80,
		PersistError: "persist failed: disk full",
		Delivery:     &types.DeliveryRecord{Status: types.DeliverySent, Recipient: "ada@example.com"},
	})
	output := buf.String()

	assert.Contains(t, output, "RUN COMPLETE")
	assert.Contains(t, output, "not stored (persist failed")
	assert.Contains(t, output, "Email:      sent")
}

func TestPrintResult_Failed(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintResult(&pipeline.Result{FailedStage: pipeline.StageScore, Error: "stage SCORE: model unavailable"})
	assert.Contains(t, buf.String(), "RUN FAILED AT SCORE")
}

func TestPrintProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintProgress(pipeline.ProgressEvent{Stage: pipeline.StageScore, Status: pipeline.StatusCompleted, Message: "initial match score 50"})
	p.PrintProgress(pipeline.ProgressEvent{Stage: pipeline.StageRender, Status: pipeline.StatusFailed, Message: "no chrome"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{"✓ SCORE: initial match score 50", "✗ RENDER: no chrome"}, lines)
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("T", strings.Repeat("é", 100))
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), boxWidth)
	}
}
