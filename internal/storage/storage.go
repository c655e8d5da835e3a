// Package storage persists rendered documents and returns a reference to them.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/cv-optimizer/internal/types"
)

// DBRefPrefix prefixes references to documents stored in Postgres.
const DBRefPrefix = "db://documents/"

// FileStore writes documents under a base directory, one subdirectory per run.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Save writes doc to <dir>/<runID>/<file name> and returns the path.
func (s *FileStore) Save(_ context.Context, runID uuid.UUID, doc *types.RenderedDocument) (string, error) {
	if doc == nil {
		return "", errors.New("document is nil")
	}
	name := filepath.Base(doc.FileName)
	if name == "." || name == string(filepath.Separator) || strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("invalid document file name %q", doc.FileName)
	}

	runDir := filepath.Join(s.dir, runID.String())
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(runDir, name)
	if err := os.WriteFile(path, doc.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write document: %w", err)
	}
	return path, nil
}

// DocumentSaver is the subset of the database used by DBStore.
type DocumentSaver interface {
	SaveDocument(ctx context.Context, runID uuid.UUID, doc *types.RenderedDocument) (uuid.UUID, error)
}

// DBStore stores documents in Postgres.
type DBStore struct {
	db DocumentSaver
}

// NewDBStore creates a DBStore.
func NewDBStore(db DocumentSaver) *DBStore {
	return &DBStore{db: db}
}

// Save stores doc and returns a db:// reference.
func (s *DBStore) Save(ctx context.Context, runID uuid.UUID, doc *types.RenderedDocument) (string, error) {
	id, err := s.db.SaveDocument(ctx, runID, doc)
	if err != nil {
		return "", err
	}
	return DBRefPrefix + id.String(), nil
}

// ParseDBRef extracts the document ID from a db:// reference.
func ParseDBRef(ref string) (uuid.UUID, bool) {
	rest, ok := strings.CutPrefix(ref, DBRefPrefix)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(rest)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
