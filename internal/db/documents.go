package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/cv-optimizer/internal/types"
)

// SaveDocument stores a rendered document and returns its ID.
func (db *DB) SaveDocument(ctx context.Context, runID uuid.UUID, doc *types.RenderedDocument) (uuid.UUID, error) {
	if doc == nil {
		return uuid.Nil, errors.New("document is nil")
	}
	id := uuid.New()
	_, err := db.pool.Exec(ctx,
		`INSERT INTO documents (id, run_id, file_name, content_type, degraded, data)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		id, runID, doc.FileName, doc.ContentType, doc.Degraded, doc.Data,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save document: %w", err)
	}
	return id, nil
}

// GetDocument retrieves a document by ID. It returns nil, nil when it does not exist.
func (db *DB) GetDocument(ctx context.Context, id uuid.UUID) (*types.RenderedDocument, error) {
	var doc types.RenderedDocument
	err := db.pool.QueryRow(ctx,
		`SELECT file_name, content_type, degraded, data FROM documents WHERE id = $1`,
		id,
	).Scan(&doc.FileName, &doc.ContentType, &doc.Degraded, &doc.Data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &doc, nil
}
