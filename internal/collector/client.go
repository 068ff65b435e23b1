package collector

import (
	"context"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"MomentumScanner/internal/model"
)

// ScanClient sends built requests through a Fetcher and validates the response
// shape. It never retries; the refresh interval is the retry mechanism.
type ScanClient struct {
	Fetcher Fetcher
}

// NewScanClient creates a ScanClient.
func NewScanClient(fetcher Fetcher) *ScanClient {
	return &ScanClient{Fetcher: fetcher}
}

// Fetch performs one outbound call. Every failure is returned as a *FetchError;
// zero matching rows is a valid, empty response.
func (c *ScanClient) Fetch(ctx context.Context, req *model.ScanRequest) (*model.ScanResponse, error) {
	body, err := c.Fetcher.Fetch(ctx, req)
	if err != nil {
		return nil, classifyTransport(req.Profile, err)
	}
	resp, err := ParseResponse(body)
	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) {
			fe.Profile = req.Profile
		}
		return nil, err
	}
	return resp, nil
}

// ParseResponse validates {"data": [{"d": [...]}, ...]} and returns its rows in order.
// A null data member is treated as no rows.
func ParseResponse(body []byte) (*model.ScanResponse, error) {
	if !gjson.ValidBytes(body) {
		return nil, &FetchError{Kind: KindMalformedJSON, Err: fmt.Errorf("invalid JSON (%d bytes)", len(body))}
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, shapeError("top level is %s, want object", root.Type)
	}

	data := root.Get("data")
	switch {
	case !data.Exists():
		if msg := root.Get("error"); msg.Exists() {
			return nil, shapeError("no data member, error: %s", msg.String())
		}
		return nil, shapeError("no data member")
	case data.Type == gjson.Null:
		return &model.ScanResponse{TotalCount: int(root.Get("totalCount").Int())}, nil
	case !data.IsArray():
		return nil, shapeError("data is %s, want array", data.Type)
	}

	items := data.Array()
	resp := &model.ScanResponse{Rows: make([]model.RawRow, 0, len(items))}
	for i, item := range items {
		d := item.Get("d")
		if !d.IsArray() {
			return nil, shapeError("data[%d] has no d array", i)
		}
		resp.Rows = append(resp.Rows, model.RawRow{
			Ticker: item.Get("s").String(),
			Values: d.Array(),
		})
	}

	resp.TotalCount = len(resp.Rows)
	if tc := root.Get("totalCount"); tc.Type == gjson.Number {
		resp.TotalCount = int(tc.Int())
	}
	return resp, nil
}

func shapeError(format string, args ...any) *FetchError {
	return &FetchError{Kind: KindUnexpectedShape, Err: fmt.Errorf(format, args...)}
}
