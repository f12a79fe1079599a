package transport

import (
	"context"
	"io"

	"github.com/obielum/doctrack/constants"
)

// UploadFile describes the candidate file handed to the upload collaborator.
type UploadFile struct {
	Name    string
	Size    int64
	MIME    string
	Content io.Reader
}

// UploadOptions carries the progress callback and freeform metadata forwarded
// with the transfer. OnProgress receives 0-100 and is called at least once
// with 100 on success.
type UploadOptions struct {
	OnProgress     func(percent int)
	AdditionalData map[string]string
}

// UploadResult is the upload collaborator's acceptance payload.
type UploadResult struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
}

// Uploader is the upload collaborator contract.
type Uploader interface {
	UploadFile(ctx context.Context, file UploadFile, opts UploadOptions) (*UploadResult, error)
}

// ProcessRequest carries per-document processing options.
type ProcessRequest struct {
	GenerateSummary bool              `json:"generate_summary"`
	Language        string            `json:"language,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// ProcessAccepted is returned when the server accepts (or synchronously
// completes) a processing request.
type ProcessAccepted struct {
	Summary       *string  `json:"summary,omitempty"`
	MemoryItemIDs []string `json:"memory_item_ids,omitempty"`
}

// StatusReport is one status-collaborator answer for a single document.
type StatusReport struct {
	Status   constants.JobStatus `json:"status"`
	Progress int                 `json:"progress"`
	Summary  *string             `json:"summary,omitempty"`
	Error    *string             `json:"error,omitempty"`
}

// Processor is the processing collaborator contract: start work for a
// document and query its status until terminal.
type Processor interface {
	StartProcessing(ctx context.Context, documentID string, req ProcessRequest) (*ProcessAccepted, error)
	GetStatus(ctx context.Context, documentID string) (*StatusReport, error)
}
