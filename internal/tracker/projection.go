package tracker

import (
	"context"
	"log/slog"
	"time"

	"github.com/obielum/doctrack/constants"
	"github.com/obielum/doctrack/internal/entity"
)

// DocumentStore is the slice of the document repository the projection needs.
type DocumentStore interface {
	MarkProcessed(ctx context.Context, documentID string, summary *string) error
}

// Projection reconciles terminal jobs into the durable document model. A
// completed job marks its document processed and copies the summary, whether
// or not the document is currently displayed anywhere. A failed job changes
// no document field; the error stays readable on the registry entry until the
// grace period expires.
type Projection struct {
	store  DocumentStore
	logger *slog.Logger
}

func NewProjection(store DocumentStore, logger *slog.Logger) *Projection {
	if logger == nil {
		logger = slog.Default()
	}
	return &Projection{store: store, logger: logger}
}

func (p *Projection) Apply(ctx context.Context, job entity.ProcessingJob, summary *string) {
	switch job.Status {
	case constants.JobStatusCompleted:
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := p.store.MarkProcessed(ctx, job.DocumentID, summary); err != nil {
			p.logger.Error("failed to mark document processed", "document_id", job.DocumentID, "error", err)
			return
		}
		p.logger.Info("document processed", "document_id", job.DocumentID, "has_summary", summary != nil)
	case constants.JobStatusFailed:
		msg := ""
		if job.ErrorMessage != nil {
			msg = *job.ErrorMessage
		}
		p.logger.Warn("document processing failed", "document_id", job.DocumentID, "error", msg)
	}
}
