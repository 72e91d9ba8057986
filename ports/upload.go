package ports

import (
	"context"
	"io"

	"csvdash/domain/analysis"
)

// UploadTransport sends a CSV file to the analysis service and returns its payload.
// Network failures and non-2xx responses are reported as TransportError.
type UploadTransport interface {
	Upload(ctx context.Context, filename string, file io.Reader) (*analysis.Payload, error)
}
