package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/obielum/doctrack/internal/common"
	"github.com/obielum/doctrack/internal/entity"
)

const documentsSchemaSQLite = `
CREATE TABLE IF NOT EXISTS documents (
	id           TEXT PRIMARY KEY,
	filename     TEXT NOT NULL,
	file_ext     TEXT NOT NULL,
	file_size    INTEGER,
	content_hash BLOB,
	source_path  TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMP NOT NULL,
	processed    BOOLEAN NOT NULL DEFAULT 0,
	summary      TEXT
);
CREATE INDEX IF NOT EXISTS idx_documents_hash ON documents(content_hash);`

const documentsSchemaPostgres = `
CREATE TABLE IF NOT EXISTS documents (
	id           TEXT PRIMARY KEY,
	filename     TEXT NOT NULL,
	file_ext     TEXT NOT NULL,
	file_size    BIGINT,
	content_hash BYTEA,
	source_path  TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL,
	processed    BOOLEAN NOT NULL DEFAULT FALSE,
	summary      TEXT
);
CREATE INDEX IF NOT EXISTS idx_documents_hash ON documents(content_hash);`

type DocumentRepository interface {
	Migrate(ctx context.Context) error
	Create(ctx context.Context, doc *entity.Document) error
	GetByID(ctx context.Context, id string) (*entity.Document, error)
	GetByHash(ctx context.Context, hash []byte) (*entity.Document, error)
	List(ctx context.Context, from, to *time.Time) ([]*entity.Document, error)
	MarkProcessed(ctx context.Context, id string, summary *string) error
	Delete(ctx context.Context, id string) error
}

type documentRepo struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewDocumentRepository(db *sqlx.DB, logger *slog.Logger) DocumentRepository {
	return &documentRepo{db: db, logger: logger}
}

func (r *documentRepo) Migrate(ctx context.Context) error {
	schema := documentsSchemaSQLite
	if r.db.DriverName() == "pgx" {
		schema = documentsSchemaPostgres
	}
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		r.logger.Error("documents migration failed", "error", err)
		return common.WrapError(err, "migrate documents")
	}
	return nil
}

func (r *documentRepo) Create(ctx context.Context, doc *entity.Document) error {
	q := r.db.Rebind(`INSERT INTO documents
		(id, filename, file_ext, file_size, content_hash, source_path, created_at, processed, summary)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, q,
		doc.ID, doc.Filename, doc.FileExt, doc.FileSize, doc.ContentHash,
		doc.SourcePath, doc.CreatedAt, doc.Processed, doc.Summary)
	if err != nil {
		r.logger.Error("failed to create document", "document_id", doc.ID, "filename", doc.Filename, "error", err)
		return common.WrapError(err, "create document")
	}
	return nil
}

func (r *documentRepo) GetByID(ctx context.Context, id string) (*entity.Document, error) {
	var doc entity.Document
	q := r.db.Rebind(`SELECT * FROM documents WHERE id = ?`)
	if err := r.db.GetContext(ctx, &doc, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		r.logger.Error("failed to get document", "document_id", id, "error", err)
		return nil, common.WrapError(err, "get document")
	}
	return &doc, nil
}

func (r *documentRepo) GetByHash(ctx context.Context, hash []byte) (*entity.Document, error) {
	var doc entity.Document
	q := r.db.Rebind(`SELECT * FROM documents WHERE content_hash = ?`)
	if err := r.db.GetContext(ctx, &doc, q, hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, common.WrapError(err, "get document by hash")
	}
	return &doc, nil
}

func (r *documentRepo) List(ctx context.Context, from, to *time.Time) ([]*entity.Document, error) {
	q := `SELECT * FROM documents`
	var args []interface{}
	switch {
	case from != nil && to != nil:
		q += ` WHERE created_at >= ? AND created_at <= ?`
		args = append(args, *from, *to)
	case from != nil:
		q += ` WHERE created_at >= ?`
		args = append(args, *from)
	case to != nil:
		q += ` WHERE created_at <= ?`
		args = append(args, *to)
	}
	q += ` ORDER BY created_at DESC`

	var docs []*entity.Document
	if err := r.db.SelectContext(ctx, &docs, r.db.Rebind(q), args...); err != nil {
		r.logger.Error("failed to list documents", "error", err)
		return nil, common.WrapError(err, "list documents")
	}
	return docs, nil
}

func (r *documentRepo) MarkProcessed(ctx context.Context, id string, summary *string) error {
	q := r.db.Rebind(`UPDATE documents SET processed = ?, summary = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, q, true, summary, id)
	if err != nil {
		r.logger.Error("failed to mark document processed", "document_id", id, "error", err)
		return common.WrapError(err, "mark processed")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	r.logger.Info("document marked processed", "document_id", id)
	return nil
}

func (r *documentRepo) Delete(ctx context.Context, id string) error {
	q := r.db.Rebind(`DELETE FROM documents WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		r.logger.Error("failed to delete document", "document_id", id, "error", err)
		return common.WrapError(err, "delete document")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}
