package collector

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"MomentumScanner/internal/model"
)

const (
	// DefaultEndpoint is the screener's scan endpoint for US stocks.
	DefaultEndpoint = "https://scanner.tradingview.com/america/scan"

	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
	maxErrorBody     = 512

	// minRequestSpacing spaces consecutive screener calls, including the
	// back-to-back profile fetches of one cycle.
	minRequestSpacing = 250 * time.Millisecond
)

// TradingViewFetcher implements Fetcher against the TradingView screener.
type TradingViewFetcher struct {
	Endpoint      string
	SessionCookie string
	UserAgent     string
	Client        *http.Client
	// Limiter, when set, paces outbound requests.
	Limiter *rate.Limiter
}

// NewTradingViewFetcher creates a fetcher with optional proxy support. The client
// timeout bounds every fetch, so a hung call cannot stall a refresh cycle.
func NewTradingViewFetcher(endpoint, sessionCookie, proxyURL string, timeout time.Duration) *TradingViewFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &TradingViewFetcher{
		Endpoint:      endpoint,
		SessionCookie: sessionCookie,
		UserAgent:     defaultUserAgent,
		Limiter:       rate.NewLimiter(rate.Every(minRequestSpacing), 1),
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (f *TradingViewFetcher) Name() string { return "tradingview" }

func (f *TradingViewFetcher) scanURL() (string, error) {
	u, err := url.Parse(f.Endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("label-product", "screener-stock")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Fetch posts the request and returns the response body.
func (f *TradingViewFetcher) Fetch(ctx context.Context, req *model.ScanRequest) ([]byte, error) {
	if f.Limiter != nil {
		if err := f.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("tradingview rate limit: %w", err)
		}
	}
	endpoint, err := f.scanURL()
	if err != nil {
		return nil, err
	}
	payload, err := req.Body()
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Origin", "https://www.tradingview.com")
	httpReq.Header.Set("Referer", "https://www.tradingview.com/")
	httpReq.Header.Set("User-Agent", f.UserAgent)
	if f.SessionCookie != "" {
		httpReq.Header.Set("Cookie", f.SessionCookie)
	}

	resp, err := f.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("tradingview post: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tradingview read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
