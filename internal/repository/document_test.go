package repository_test

import (
	"context"
	"crypto/sha256"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/obielum/doctrack/internal/common"
	"github.com/obielum/doctrack/internal/entity"
	"github.com/obielum/doctrack/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRepo(t *testing.T) repository.DocumentRepository {
	t.Helper()
	ctx := context.Background()

	dsn := "file:" + filepath.Join(t.TempDir(), "doctrack_test.db")
	db, err := repository.Open(ctx, repository.Config{DSN: dsn, MaxConns: 1}, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { repository.Close(db, testLogger()) })

	repo := repository.NewDocumentRepository(db, testLogger())
	require.NoError(t, repo.Migrate(ctx))
	return repo
}

func newDoc(filename string, content []byte, createdAt time.Time) *entity.Document {
	size := int64(len(content))
	hash := sha256.Sum256(content)
	return &entity.Document{
		ID:          uuid.New().String(),
		Filename:    filename,
		FileExt:     filepath.Ext(filename),
		FileSize:    &size,
		ContentHash: hash[:],
		SourcePath:  "/inbox/" + filename,
		CreatedAt:   createdAt,
	}
}

func TestDocumentCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	doc := newDoc("report.pdf", []byte("q3 figures"), time.Now().UTC().Truncate(time.Second))
	require.NoError(t, repo.Create(ctx, doc))

	got, err := repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	require.Equal(t, doc.Filename, got.Filename)
	require.Equal(t, doc.ContentHash, got.ContentHash)
	require.NotNil(t, got.FileSize)
	require.Equal(t, *doc.FileSize, *got.FileSize)
	require.False(t, got.Processed)
	require.Nil(t, got.Summary)
	require.WithinDuration(t, doc.CreatedAt, got.CreatedAt, time.Second)
}

func TestDocumentGetByIDNotFound(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.GetByID(context.Background(), uuid.New().String())
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestDocumentGetByHash(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	doc := newDoc("notes.md", []byte("same bytes"), time.Now().UTC())
	require.NoError(t, repo.Create(ctx, doc))

	got, err := repo.GetByHash(ctx, doc.ContentHash)
	require.NoError(t, err)
	require.Equal(t, doc.ID, got.ID)

	other := sha256.Sum256([]byte("different bytes"))
	_, err = repo.GetByHash(ctx, other[:])
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestDocumentMarkProcessed(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	doc := newDoc("scan.png", []byte{0x89, 0x50}, time.Now().UTC())
	require.NoError(t, repo.Create(ctx, doc))

	summary := "an image of a receipt"
	require.NoError(t, repo.MarkProcessed(ctx, doc.ID, &summary))

	got, err := repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	require.True(t, got.Processed)
	require.NotNil(t, got.Summary)
	require.Equal(t, summary, *got.Summary)

	require.ErrorIs(t, repo.MarkProcessed(ctx, uuid.New().String(), nil), common.ErrNotFound)
}

func TestDocumentDelete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	doc := newDoc("old.txt", []byte("stale"), time.Now().UTC())
	require.NoError(t, repo.Create(ctx, doc))

	require.NoError(t, repo.Delete(ctx, doc.ID))
	_, err := repo.GetByID(ctx, doc.ID)
	require.ErrorIs(t, err, common.ErrNotFound)

	require.ErrorIs(t, repo.Delete(ctx, doc.ID), common.ErrNotFound)
}

func TestDocumentListWindow(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	old := newDoc("jan.txt", []byte("january"), base.AddDate(0, -7, 0))
	mid := newDoc("aug1.txt", []byte("august one"), base)
	late := newDoc("aug20.txt", []byte("august twenty"), base.AddDate(0, 0, 19))
	for _, d := range []*entity.Document{old, mid, late} {
		require.NoError(t, repo.Create(ctx, d))
	}

	all, err := repo.List(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, late.ID, all[0].ID, "newest first")
	require.Equal(t, old.ID, all[2].ID)

	from := base.AddDate(0, 0, -1)
	windowed, err := repo.List(ctx, &from, nil)
	require.NoError(t, err)
	require.Len(t, windowed, 2)

	to := base.AddDate(0, 0, 1)
	windowed, err = repo.List(ctx, &from, &to)
	require.NoError(t, err)
	require.Len(t, windowed, 1)
	require.Equal(t, mid.ID, windowed[0].ID)
}
