package rendering

import (
	"context"
	"regexp"
	"strings"

	"github.com/jonathan/cv-optimizer/internal/types"
	"go.uber.org/zap"
)

// Renderer produces the final document for a candidate record.
type Renderer struct {
	converter Converter
	logger    *zap.Logger
}

// NewRenderer creates a Renderer. A nil converter makes Render return HTML.
func NewRenderer(converter Converter, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{converter: converter, logger: logger}
}

// Render returns a PDF document, or an HTML document when no converter is configured.
// A failed conversion returns a *RenderError.
func (r *Renderer) Render(ctx context.Context, candidate *types.CandidateRecord) (*types.RenderedDocument, error) {
	html, err := RenderHTML(candidate)
	if err != nil {
		return nil, &RenderError{Message: "failed to render HTML", Cause: err}
	}

	if r.converter == nil {
		return htmlDocument(candidate, html, false), nil
	}

	pdf, err := r.converter.HTMLToPDF(ctx, html)
	if err != nil {
		return nil, &RenderError{Message: "failed to convert HTML to PDF", Cause: err}
	}
	if len(pdf) == 0 {
		return nil, &RenderError{Message: "converter returned an empty document"}
	}

	r.logger.Debug("rendered PDF", zap.Int("bytes", len(pdf)))
	return &types.RenderedDocument{
		Data:        pdf,
		ContentType: types.ContentTypePDF,
		FileName:    FileName(candidate.Name, "pdf"),
	}, nil
}

// Fallback builds the degraded document used when Render fails: the HTML page, or plain
// text if even the template cannot be executed. It never fails.
func Fallback(candidate *types.CandidateRecord) *types.RenderedDocument {
	if html, err := RenderHTML(candidate); err == nil {
		return htmlDocument(candidate, html, true)
	}

	name := ""
	if candidate != nil {
		name = candidate.Name
	}
	return &types.RenderedDocument{
		Data:        []byte(PlainText(candidate)),
		ContentType: types.ContentTypeText,
		FileName:    FileName(name, "txt"),
		Degraded:    true,
	}
}

func htmlDocument(candidate *types.CandidateRecord, html []byte, degraded bool) *types.RenderedDocument {
	return &types.RenderedDocument{
		Data:        html,
		ContentType: types.ContentTypeHTML,
		FileName:    FileName(candidate.Name, "html"),
		Degraded:    degraded,
	}
}

// PlainText renders the record as plain text.
func PlainText(candidate *types.CandidateRecord) string {
	if candidate == nil {
		return ""
	}
	var sb strings.Builder
	line := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			sb.WriteString(s)
			sb.WriteString("\n")
		}
	}

	line(candidate.Name)
	line(strings.Join(nonEmpty(candidate.Email, candidate.Phone, candidate.Location), " | "))
	if candidate.Summary != "" {
		sb.WriteString("\nSUMMARY\n")
		line(candidate.Summary)
	}
	if len(candidate.Skills) > 0 {
		sb.WriteString("\nSKILLS\n")
		line(strings.Join(candidate.Skills, ", "))
	}
	if len(candidate.Experience) > 0 {
		sb.WriteString("\nEXPERIENCE\n")
		for _, e := range candidate.Experience {
			line(strings.Join(nonEmpty(e.Title, e.Company, e.Duration), " | "))
			line(e.Description)
		}
	}
	if len(candidate.Projects) > 0 {
		sb.WriteString("\nPROJECTS\n")
		for _, p := range candidate.Projects {
			line(p.Name)
			line(p.Description)
		}
	}
	if len(candidate.Education) > 0 {
		sb.WriteString("\nEDUCATION\n")
		for _, e := range candidate.Education {
			line(strings.Join(nonEmpty(e.Degree, e.Institution, e.Year), " | "))
		}
	}
	return sb.String()
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// FileName returns "CV_<name>.<ext>" with the name reduced to safe characters.
func FileName(name, ext string) string {
	safe := strings.Trim(unsafeFileChars.ReplaceAllString(strings.TrimSpace(name), "_"), "_")
	if safe == "" {
		safe = "Candidate"
	}
	return "CV_" + safe + "." + ext
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
