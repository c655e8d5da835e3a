package rendering

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jonathan/cv-optimizer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConverter struct {
	pdf  []byte
	err  error
	html []byte
}

func (f *fakeConverter) HTMLToPDF(_ context.Context, html []byte) ([]byte, error) {
	f.html = html
	return f.pdf, f.err
}

func sampleCandidate() *types.CandidateRecord {
	return &types.CandidateRecord{
		Name:     "Ada Lovelace",
		Email:    "ada@example.com",
		Location: "London",
		Summary:  "Engineer <b>and</b> mathematician",
		Skills:   []string{"Python", "Docker"},
		Experience: []types.Experience{
			{Title: "ML Engineer", Company: "Acme", Duration: "2020 - 2024", Description: "- Built models\n- Shipped them"},
		},
		Projects:  []types.Project{{Name: "Engine", Technologies: []string{"Go", "SQL"}}},
		Education: []types.Education{{Degree: "BSc Mathematics", Institution: "UCL", Year: "2019"}},
	}
}

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML(sampleCandidate())
	require.NoError(t, err)
	out := string(html)

	assert.Contains(t, out, "<h1>Ada Lovelace</h1>")
	assert.Contains(t, out, "ada@example.com | London")
	assert.Contains(t, out, "<li>Docker</li>")
	assert.Contains(t, out, "<p>Built models</p>")
	assert.Contains(t, out, "Go, SQL")
	assert.Contains(t, out, "BSc Mathematics")
	assert.Contains(t, out, "Engineer &lt;b&gt;and&lt;/b&gt; mathematician")
	assert.NotContains(t, out, "<h2>Summary</h2>\n<p>Engineer <b>")
}

func TestRenderHTML_OmitsEmptySections(t *testing.T) {
	html, err := RenderHTML(&types.CandidateRecord{Name: "Ada", Skills: []string{"Go"}})
	require.NoError(t, err)

	assert.NotContains(t, string(html), "<h2>Experience</h2>")
	assert.NotContains(t, string(html), "<h2>Education</h2>")
}

func TestRender_PDF(t *testing.T) {
	conv := &fakeConverter{pdf: []byte("%PDF-1.4")}

	doc, err := NewRenderer(conv, nil).Render(context.Background(), sampleCandidate())
	require.NoError(t, err)

	assert.True(t, doc.IsPDF())
	assert.Equal(t, "CV_Ada_Lovelace.pdf", doc.FileName)
	assert.False(t, doc.Degraded)
	assert.Contains(t, string(conv.html), "Ada Lovelace")
}

func TestRender_NoConverter(t *testing.T) {
	doc, err := NewRenderer(nil, nil).Render(context.Background(), sampleCandidate())
	require.NoError(t, err)

	assert.Equal(t, types.ContentTypeHTML, doc.ContentType)
	assert.Equal(t, "CV_Ada_Lovelace.html", doc.FileName)
	assert.False(t, doc.Degraded)
}

func TestRender_ConverterFailure(t *testing.T) {
	tests := []struct {
		name string
		conv *fakeConverter
	}{
		{"error", &fakeConverter{err: errors.New("chrome not found")}},
		{"empty", &fakeConverter{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRenderer(tt.conv, nil).Render(context.Background(), sampleCandidate())

			var renderErr *RenderError
			assert.True(t, errors.As(err, &renderErr))
		})
	}
}

func TestFallback(t *testing.T) {
	doc := Fallback(sampleCandidate())
	assert.True(t, doc.Degraded)
	assert.Equal(t, types.ContentTypeHTML, doc.ContentType)

	doc = Fallback(nil)
	assert.True(t, doc.Degraded)
	assert.Equal(t, types.ContentTypeText, doc.ContentType)
	assert.Equal(t, "CV_Candidate.txt", doc.FileName)
}

func TestPlainText(t *testing.T) {
	text := PlainText(sampleCandidate())

	assert.True(t, strings.HasPrefix(text, "Ada Lovelace\n"))
	assert.Contains(t, text, "SKILLS\nPython, Docker\n")
	assert.Contains(t, text, "ML Engineer | Acme | 2020 - 2024")
	assert.Contains(t, text, "BSc Mathematics | UCL | 2019")
	assert.Empty(t, PlainText(nil))
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Ada Lovelace", "CV_Ada_Lovelace.pdf"},
		{"  José / Dev ", "CV_Jos_Dev.pdf"},
		{"", "CV_Candidate.pdf"},
		{"../../etc", "CV_etc.pdf"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FileName(tt.name, "pdf"), tt.name)
	}
}
