// Package upload sends CSV files to the external analysis service.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"csvdash/domain/analysis"
	"csvdash/domain/core"
	"csvdash/internal"
	"csvdash/internal/errors"
)

// FormField is the multipart field carrying the CSV file
const FormField = "file"

// maxErrorBody bounds how much of a failed response is kept for the log
const maxErrorBody = 512

// Config configures a Client
type Config struct {
	// UploadURL is the full endpoint, usually {API_BASE}/upload-csv/
	UploadURL string
	Timeout   time.Duration
}

// Client posts CSV files and decodes the analysis payload. It implements
// ports.UploadTransport.
type Client struct {
	url  string
	http *http.Client
	log  *internal.Logger
}

// NewClient creates an upload client
func NewClient(config Config, logger *internal.Logger) *Client {
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Client{
		url:  strings.TrimSpace(config.UploadURL),
		http: &http.Client{Timeout: config.Timeout},
		log:  logger.With("Upload"),
	}
}

// URL returns the endpoint the client posts to
func (c *Client) URL() string { return c.url }

// Upload posts the file as multipart form data and decodes the response body.
// Network failures, non-2xx statuses and undecodable bodies are TransportErrors.
func (c *Client) Upload(ctx context.Context, filename string, file io.Reader) (*analysis.Payload, error) {
	body, contentType, err := encodeForm(filename, file)
	if err != nil {
		return nil, errors.Wrap(err, "build upload form")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return nil, errors.TransportError(0, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	requestID := core.NewRequestID()
	req.Header.Set("X-Request-ID", requestID.String())

	started := time.Now()
	c.log.Info("uploading %s (%d bytes) to %s [%s]", filename, body.Len(), c.url, requestID)
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("upload %s failed: %v", filename, err)
		return nil, errors.TransportError(0, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.TransportError(0, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := strings.TrimSpace(string(raw))
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		c.log.Error("upload %s rejected: HTTP %d: %s", filename, resp.StatusCode, snippet)
		return nil, errors.TransportError(resp.StatusCode, fmt.Errorf("%s", snippet))
	}

	payload, err := analysis.Decode(raw)
	if err != nil {
		c.log.Error("upload %s returned an undecodable body: %v", filename, err)
		return nil, errors.TransportError(0, err)
	}
	c.log.Info("upload %s analysed in %s (%d rows)", filename, time.Since(started).Round(time.Millisecond), payload.RowCount)
	return payload, nil
}

func encodeForm(filename string, file io.Reader) (*bytes.Buffer, string, error) {
	if file == nil {
		return nil, "", errors.InvalidInput("no file to upload")
	}
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(FormField, filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
