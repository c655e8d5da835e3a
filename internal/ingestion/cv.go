package ingestion

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DefaultMinCVChars is the shortest cleaned résumé text accepted. Scanned PDFs without a
// text layer fall below it.
const DefaultMinCVChars = 50

// maxCVBytes bounds the size of a résumé file.
const maxCVBytes = 20 << 20

// SourceError reports a résumé source that could not be turned into usable text.
type SourceError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SourceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cv source %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("cv source %s: %s", e.Path, e.Message)
}

func (e *SourceError) Unwrap() error {
	return e.Cause
}

// ReadCVText reads a résumé file (.pdf, .txt or .md) and returns its cleaned text.
// Text shorter than minChars is rejected.
func ReadCVText(path string, minChars int) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", &SourceError{Path: path, Message: "path is empty"}
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", &SourceError{Path: path, Message: "cannot open file", Cause: err}
	}
	if info.Size() > maxCVBytes {
		return "", &SourceError{Path: path, Message: fmt.Sprintf("file larger than %d bytes", maxCVBytes)}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", &SourceError{Path: path, Message: "cannot read file", Cause: err}
	}

	var raw string
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		raw, err = pdfText(data)
	case ".txt", ".md", "":
		raw = string(data)
	default:
		return "", &SourceError{Path: path, Message: fmt.Sprintf("unsupported file type %q", ext)}
	}
	if err != nil {
		return "", &SourceError{Path: path, Message: "cannot extract text", Cause: err}
	}

	text := CleanText(raw)
	if len([]rune(text)) < minChars {
		msg := "not enough text extracted"
		if ext == ".pdf" {
			msg = "PDF appears to be image-based, OCR required"
		}
		return "", &SourceError{Path: path, Message: msg}
	}
	return text, nil
}

func pdfText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	rd, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rd); err != nil {
		return "", err
	}
	return buf.String(), nil
}
