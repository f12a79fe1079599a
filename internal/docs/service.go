package docs

import (
	"context"
	"crypto/sha256"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/obielum/doctrack/constants"
	"github.com/obielum/doctrack/internal/common"
	"github.com/obielum/doctrack/internal/entity"
	"github.com/obielum/doctrack/internal/repository"
	"github.com/obielum/doctrack/internal/tracker"
	"github.com/obielum/doctrack/internal/transport"
	"github.com/obielum/doctrack/internal/upload"
)

// Service composes the upload initiator, the document store and the job
// tracker into the application-facing document workflow.
type Service struct {
	initiator *upload.Initiator
	documents repository.DocumentRepository
	tracker   *tracker.Tracker
	logger    *slog.Logger
}

func NewService(initiator *upload.Initiator, documents repository.DocumentRepository, trk *tracker.Tracker, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		initiator: initiator,
		documents: documents,
		tracker:   trk,
		logger:    logger,
	}
}

// UploadRequest represents file upload parameters.
type UploadRequest struct {
	Path        string
	MIME        string
	AutoProcess bool
	Process     transport.ProcessRequest
	Metadata    map[string]string
	OnProgress  func(percent int)
}

// UploadOutcome is the per-file upload result.
type UploadOutcome struct {
	Document     *entity.Document
	Deduplicated bool
	JobStarted   bool
}

// UploadFile hashes and uploads one local file, records the document, and
// optionally starts processing. Whether to auto-process is the caller's
// policy, not this package's.
func (s *Service) UploadFile(ctx context.Context, req UploadRequest) (*UploadOutcome, error) {
	v := common.NewValidator()
	v.Field("path", req.Path, common.Required)
	if err := v.Error(); err != nil {
		return nil, common.NewAppError("INVALID_REQUEST", err.Error(), common.ErrInvalidInput)
	}

	abs, err := filepath.Abs(req.Path)
	if err != nil {
		return nil, common.WrapError(err, "abs path")
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, common.WrapError(err, "stat file")
	}

	hash, err := hashFile(abs)
	if err != nil {
		return nil, common.WrapError(err, "hash file")
	}

	// Content-hash dedup happens before any network activity.
	if existing, err := s.documents.GetByHash(ctx, hash); err == nil {
		s.logger.Info("duplicate upload skipped", "document_id", existing.ID, "path", abs)
		return &UploadOutcome{Document: existing, Deduplicated: true}, nil
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	f, err := os.Open(abs)
	if err != nil {
		return nil, common.WrapError(err, "open file")
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("close file error", "path", abs, "error", err)
		}
	}()

	res, err := s.initiator.Upload(ctx, transport.UploadFile{
		Name:    filepath.Base(abs),
		Size:    info.Size(),
		MIME:    req.MIME,
		Content: f,
	}, transport.UploadOptions{
		OnProgress:     req.OnProgress,
		AdditionalData: req.Metadata,
	})
	if err != nil {
		return nil, err
	}

	size := info.Size()
	doc := &entity.Document{
		ID:          res.DocumentID,
		Filename:    res.Filename,
		FileExt:     constants.NormalizeExt(filepath.Ext(abs)),
		FileSize:    &size,
		ContentHash: hash,
		SourcePath:  abs,
		CreatedAt:   time.Now().UTC(),
		Processed:   false,
	}
	if doc.Filename == "" {
		doc.Filename = filepath.Base(abs)
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		return nil, err
	}

	out := &UploadOutcome{Document: doc}
	if req.AutoProcess {
		started, err := s.tracker.StartJob(ctx, doc.ID, req.Process)
		if err != nil {
			// The document is stored either way; the caller may retry
			// processing explicitly.
			s.logger.Error("auto-process failed", "document_id", doc.ID, "error", err)
			return out, nil
		}
		out.JobStarted = started
	}
	return out, nil
}

// StartProcessing starts (or retries) processing for a stored document.
func (s *Service) StartProcessing(ctx context.Context, documentID string, req transport.ProcessRequest) (bool, error) {
	v := common.NewValidator()
	v.Field("document_id", documentID, common.Required)
	if err := common.ValidateAndReturnError(v); err != nil {
		return false, err
	}
	if _, err := s.documents.GetByID(ctx, documentID); err != nil {
		return false, err
	}
	return s.tracker.StartJob(ctx, documentID, req)
}

// JobStatus is a pure read of the tracked job for documentID, nil when
// untracked.
func (s *Service) JobStatus(documentID string) *entity.ProcessingJob {
	return s.tracker.GetStatus(documentID)
}

// GetDocument returns the stored document record.
func (s *Service) GetDocument(ctx context.Context, documentID string) (*entity.Document, error) {
	return s.documents.GetByID(ctx, documentID)
}

// ListDocuments returns stored documents, optionally bounded by creation time.
func (s *Service) ListDocuments(ctx context.Context, from, to *time.Time) ([]*entity.Document, error) {
	return s.documents.List(ctx, from, to)
}

// DeleteDocument removes the stored record and immediately drops any tracked
// job for it, bypassing the grace period.
func (s *Service) DeleteDocument(ctx context.Context, documentID string) error {
	v := common.NewValidator()
	v.Field("document_id", documentID, common.Required)
	if err := common.ValidateAndReturnError(v); err != nil {
		return err
	}
	if err := s.documents.Delete(ctx, documentID); err != nil {
		return err
	}
	s.tracker.NotifyDeleted(documentID)
	s.logger.Info("document deleted", "document_id", documentID)
	return nil
}

func hashFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}
