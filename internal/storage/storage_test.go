package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/cv-optimizer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Save(t *testing.T) {
	dir := t.TempDir()
	runID := uuid.New()
	doc := &types.RenderedDocument{Data: []byte("%PDF"), FileName: "CV_Ada.pdf"}

	path, err := NewFileStore(dir).Save(context.Background(), runID, doc)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, runID.String(), "CV_Ada.pdf"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF"), data)
}

func TestFileStore_StaysInsideRunDir(t *testing.T) {
	dir := t.TempDir()
	runID := uuid.New()

	path, err := NewFileStore(dir).Save(context.Background(), runID, &types.RenderedDocument{FileName: "../../escape.pdf"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, runID.String(), "escape.pdf"), path)
}

func TestFileStore_Invalid(t *testing.T) {
	store := NewFileStore(t.TempDir())

	_, err := store.Save(context.Background(), uuid.New(), nil)
	assert.Error(t, err)

	_, err = store.Save(context.Background(), uuid.New(), &types.RenderedDocument{FileName: ""})
	assert.Error(t, err)
}

type fakeSaver struct {
	id  uuid.UUID
	err error
}

func (f *fakeSaver) SaveDocument(context.Context, uuid.UUID, *types.RenderedDocument) (uuid.UUID, error) {
	return f.id, f.err
}

func TestDBStore_Save(t *testing.T) {
	id := uuid.New()
	ref, err := NewDBStore(&fakeSaver{id: id}).Save(context.Background(), uuid.New(), &types.RenderedDocument{})
	require.NoError(t, err)
	assert.Equal(t, "db://documents/"+id.String(), ref)

	parsed, ok := ParseDBRef(ref)
	assert.True(t, ok)
	assert.Equal(t, id, parsed)

	_, err = NewDBStore(&fakeSaver{err: errors.New("down")}).Save(context.Background(), uuid.New(), &types.RenderedDocument{})
	assert.Error(t, err)
}

func TestParseDBRef_Invalid(t *testing.T) {
	for _, ref := range []string{"", "output/x.pdf", "db://documents/not-a-uuid"} {
		_, ok := ParseDBRef(ref)
		assert.False(t, ok, ref)
	}
}
