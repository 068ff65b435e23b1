package collector

import (
	"context"

	"MomentumScanner/internal/model"
)

// Fetcher is the transport to the screener: it posts a request and returns the
// raw response body.
type Fetcher interface {
	Fetch(ctx context.Context, req *model.ScanRequest) ([]byte, error)
	Name() string
}
