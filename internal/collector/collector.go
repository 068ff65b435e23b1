package collector

import (
	"context"
	"time"

	"go.uber.org/zap"

	"MomentumScanner/internal/logger"
	"MomentumScanner/internal/metrics"
	"MomentumScanner/internal/model"
	"MomentumScanner/internal/normalizer"
	"MomentumScanner/internal/query"
)

// Collector runs one profile end to end: build the request, fetch it and normalize
// the rows.
type Collector struct {
	Client *ScanClient
	Now    func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher) *Collector {
	return &Collector{Client: NewScanClient(fetcher), Now: time.Now}
}

// Collect produces a fresh result for p. Malformed rows are dropped and logged;
// the result is still returned. A failed fetch returns a *FetchError.
func (c *Collector) Collect(ctx context.Context, p *model.ScanProfile, schema *normalizer.Schema) (*model.ScanResult, error) {
	req, err := query.Build(p)
	if err != nil {
		return nil, err
	}
	if schema == nil {
		if schema, err = normalizer.Compile(p); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	resp, err := c.Client.Fetch(ctx, req)
	metrics.FetchDuration.WithLabelValues(p.Name).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.FetchTotal.WithLabelValues(p.Name, string(KindOf(err))).Inc()
		return nil, err
	}
	metrics.FetchTotal.WithLabelValues(p.Name, metrics.OutcomeOK).Inc()

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	result, rowErrs := normalizer.Normalize(schema, resp, now())
	for _, re := range rowErrs {
		logger.Warn("row dropped",
			zap.String("profile", p.Name),
			zap.Int("row", re.Row),
			zap.String("field", re.Field),
			zap.Error(re.Err),
		)
	}
	if len(rowErrs) > 0 {
		metrics.RowsDropped.WithLabelValues(p.Name).Add(float64(len(rowErrs)))
	}
	metrics.Records.WithLabelValues(p.Name).Set(float64(result.Len()))

	logger.Debug("profile collected",
		zap.String("profile", p.Name),
		zap.Int("records", result.Len()),
		zap.Int("total_count", result.TotalCount),
		zap.Duration("took", time.Since(start)),
	)
	return result, nil
}
