package upload

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/url"

	"github.com/obielum/doctrack/internal/common"
	"github.com/obielum/doctrack/internal/transport"
)

// Initiator validates a file and delegates the transfer to the upload
// collaborator. It never retries; retry is the caller's decision.
type Initiator struct {
	uploader transport.Uploader
	maxBytes int64
	logger   *slog.Logger
}

func NewInitiator(uploader transport.Uploader, maxBytes int64, logger *slog.Logger) *Initiator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Initiator{uploader: uploader, maxBytes: maxBytes, logger: logger}
}

// Upload validates first and short-circuits on validation failure without
// touching the transport. Progress re-emitted to the caller is clamped
// non-decreasing regardless of what the transport reports.
func (i *Initiator) Upload(ctx context.Context, file transport.UploadFile, opts transport.UploadOptions) (*transport.UploadResult, error) {
	if err := ValidateFile(FileInfo{Name: file.Name, Size: file.Size, MIME: file.MIME}, i.maxBytes); err != nil {
		i.logger.Warn("upload rejected by validation", "filename", file.Name, "size", file.Size, "error", err)
		return nil, err
	}

	if cb := opts.OnProgress; cb != nil {
		last := -1
		opts.OnProgress = func(pct int) {
			if pct < 0 {
				pct = 0
			} else if pct > 100 {
				pct = 100
			}
			if pct <= last {
				return
			}
			last = pct
			cb(pct)
		}
	}

	res, err := i.uploader.UploadFile(ctx, file, opts)
	if err != nil {
		appErr := classifyUploadError(err)
		i.logger.Error("upload failed", "filename", file.Name, "code", appErr.Code, "error", err)
		return nil, appErr
	}

	i.logger.Info("upload accepted", "filename", res.Filename, "document_id", res.DocumentID)
	return res, nil
}

// classifyUploadError folds transport failures into the small user-facing
// taxonomy: network, timeout, server, unknown.
func classifyUploadError(err error) *common.AppError {
	var se *transport.StatusError
	if errors.As(err, &se) {
		return common.NewAppError(common.CodeUploadServer,
			"the server could not accept the upload, try again later", err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return common.NewAppError(common.CodeUploadTimeout,
			"the upload timed out, try again", err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return common.NewAppError(common.CodeUploadTimeout,
			"the upload timed out, try again", err)
	}

	var oe *net.OpError
	var ue *url.Error
	if errors.As(err, &oe) || errors.As(err, &ue) {
		return common.NewAppError(common.CodeUploadNetwork,
			"a network error interrupted the upload, check your connection", err)
	}

	return common.NewAppError(common.CodeUploadUnknown, "the upload failed", err)
}
