package rendering

import (
	"bytes"
	"embed"
	"html/template"
	"strings"

	"github.com/jonathan/cv-optimizer/internal/types"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var cvTemplate = template.Must(
	template.New("cv.html.tmpl").
		Funcs(template.FuncMap{
			"join":       strings.Join,
			"paragraphs": paragraphs,
		}).
		ParseFS(templateFS, "templates/cv.html.tmpl"),
)

// templateData is the view of a candidate record passed to the template.
type templateData struct {
	*types.CandidateRecord
	Contact []string
}

// RenderHTML renders the candidate record as a standalone HTML page. Field values are
// escaped by html/template.
func RenderHTML(candidate *types.CandidateRecord) ([]byte, error) {
	if candidate == nil {
		return nil, &TemplateError{Message: "candidate record is nil"}
	}

	data := templateData{CandidateRecord: candidate}
	for _, c := range []string{candidate.Email, candidate.Phone, candidate.Location} {
		if c = strings.TrimSpace(c); c != "" {
			data.Contact = append(data.Contact, c)
		}
	}

	var buf bytes.Buffer
	if err := cvTemplate.Execute(&buf, data); err != nil {
		return nil, &TemplateError{Message: "failed to execute template", Cause: err}
	}
	return buf.Bytes(), nil
}

// paragraphs splits a description into non-empty lines, dropping bullet markers.
func paragraphs(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-•* ")
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
