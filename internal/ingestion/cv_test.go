package ingestion

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCV = `Ada Lovelace
ada@example.com

Skills: Python, Machine Learning, SQL

Experience
- Research Engineer, Analytical Engines (2019-2024)`

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestReadCVText_PlainText(t *testing.T) {
	for _, name := range []string{"cv.txt", "cv.md"} {
		path := writeFile(t, name, []byte(sampleCV))

		text, err := ReadCVText(path, DefaultMinCVChars)
		require.NoError(t, err, name)
		assert.Contains(t, text, "Ada Lovelace")
		assert.Contains(t, text, "- Research Engineer")
	}
}

func TestReadCVText_RejectsDocx(t *testing.T) {
	path := writeFile(t, "cv.docx", []byte("PK\x03\x04"))

	_, err := ReadCVText(path, DefaultMinCVChars)
	var srcErr *SourceError
	require.True(t, errors.As(err, &srcErr))
	assert.Contains(t, srcErr.Message, `unsupported file type ".docx"`)
}

func TestReadCVText_TooShort(t *testing.T) {
	path := writeFile(t, "cv.txt", []byte("Ada"))

	_, err := ReadCVText(path, DefaultMinCVChars)
	var srcErr *SourceError
	require.True(t, errors.As(err, &srcErr))
	assert.Contains(t, srcErr.Message, "not enough text")
}

func TestReadCVText_InvalidPDF(t *testing.T) {
	path := writeFile(t, "cv.pdf", []byte("%PDF-1.4 garbage"))

	_, err := ReadCVText(path, DefaultMinCVChars)
	var srcErr *SourceError
	require.True(t, errors.As(err, &srcErr))
	assert.Equal(t, path, srcErr.Path)
}

func TestReadCVText_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"empty path", "", "path is empty"},
		{"missing file", filepath.Join(t.TempDir(), "missing.pdf"), "cannot open file"},
		{"unsupported type", writeFile(t, "cv.png", []byte(strings.Repeat("x", 100))), "unsupported file type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCVText(tt.path, DefaultMinCVChars)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
