package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StatusError is returned for non-2xx responses so callers can classify
// server-side failures separately from connectivity problems.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("server returned %d", e.StatusCode)
}

// Client talks HTTP to the document server. It implements both the Uploader
// and Processor contracts.
type Client struct {
	base   string
	hc     *http.Client
	logger *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		base:   strings.TrimRight(baseURL, "/"),
		hc:     &http.Client{Timeout: timeout},
		logger: logger,
	}
}

var (
	_ Uploader  = (*Client)(nil)
	_ Processor = (*Client)(nil)
)

// UploadFile streams the file as multipart form data, reporting transfer
// progress through opts.OnProgress. OnProgress is invoked with 100 exactly
// once after the server accepts the upload.
func (c *Client) UploadFile(ctx context.Context, file UploadFile, opts UploadOptions) (*UploadResult, error) {
	reqID := uuid.New().String()
	start := time.Now()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		var err error
		defer func() { _ = pw.CloseWithError(err) }()
		for k, v := range opts.AdditionalData {
			if err = mw.WriteField(k, v); err != nil {
				return
			}
		}
		var part io.Writer
		if part, err = mw.CreateFormFile("file", file.Name); err != nil {
			return
		}
		src := file.Content
		if opts.OnProgress != nil && file.Size > 0 {
			// Cap the wire-side callback at 99; 100 is only reported once the
			// server has acknowledged the whole transfer.
			src = newProgressReader(src, file.Size, 99, opts.OnProgress)
		}
		if _, err = io.Copy(part, src); err != nil {
			return
		}
		err = mw.Close()
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/documents", pr)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	c.logger.Info("upload.request", "req_id", reqID, "filename", file.Name, "size", file.Size)

	resp, err := c.hc.Do(req)
	if err != nil {
		c.logger.Error("upload.send_error", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, err
	}
	defer closeBody(resp.Body, c.logger, reqID)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		c.logger.Error("upload.server_error", "req_id", reqID, "status", resp.StatusCode)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(raw), 512)}
	}

	var out UploadResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	if out.DocumentID == "" {
		return nil, fmt.Errorf("upload response missing document_id")
	}
	if opts.OnProgress != nil {
		opts.OnProgress(100)
	}

	c.logger.Info("upload.ok",
		"req_id", reqID,
		"document_id", out.DocumentID,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return &out, nil
}

// StartProcessing asks the server to begin processing an uploaded document.
func (c *Client) StartProcessing(ctx context.Context, documentID string, pr ProcessRequest) (*ProcessAccepted, error) {
	reqID := uuid.New().String()

	bs, err := json.Marshal(pr)
	if err != nil {
		return nil, fmt.Errorf("encode process request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/documents/%s/process", c.base, url.PathEscape(documentID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bs))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Info("process.start.request", "req_id", reqID, "document_id", documentID)

	resp, err := c.hc.Do(req)
	if err != nil {
		c.logger.Error("process.start.send_error", "req_id", reqID, "document_id", documentID, "error", err)
		return nil, err
	}
	defer closeBody(resp.Body, c.logger, reqID)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		c.logger.Error("process.start.rejected", "req_id", reqID, "document_id", documentID, "status", resp.StatusCode)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(raw), 512)}
	}

	var out ProcessAccepted
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("decode process response: %w", err)
		}
	}
	return &out, nil
}

// GetStatus fetches the current processing status for one document. The
// payload is schema-checked before decoding.
func (c *Client) GetStatus(ctx context.Context, documentID string) (*StatusReport, error) {
	endpoint := fmt.Sprintf("%s/documents/%s/status", c.base, url.PathEscape(documentID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer closeBody(resp.Body, c.logger, "")

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(raw), 512)}
	}

	if err := ValidateStatusPayload(raw); err != nil {
		return nil, err
	}
	var out StatusReport
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode status response: %w", err)
	}
	return &out, nil
}

func closeBody(body io.ReadCloser, logger *slog.Logger, reqID string) {
	if err := body.Close(); err != nil {
		logger.Warn("http.response_body_close_error", "req_id", reqID, "error", err)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
