package collector

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"MomentumScanner/internal/profile"
	"MomentumScanner/internal/query"
)

func TestTradingViewFetcher_PostsRequest(t *testing.T) {
	var got *http.Request
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"totalCount":1,"data":[{"s":"NASDAQ:ABCD","d":["ABCD"]}]}`))
	}))
	defer srv.Close()

	f := NewTradingViewFetcher(srv.URL+"/america/scan", "sessionid=abc", "", 2*time.Second)
	req, err := query.Build(profile.MarketHours())
	require.NoError(t, err)

	raw, err := f.Fetch(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "NASDAQ:ABCD")

	require.NotNil(t, got)
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/america/scan", got.URL.Path)
	assert.Equal(t, "screener-stock", got.URL.Query().Get("label-product"))
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.Equal(t, "https://www.tradingview.com", got.Header.Get("Origin"))
	assert.Equal(t, "sessionid=abc", got.Header.Get("Cookie"))
	assert.NotEmpty(t, got.Header.Get("User-Agent"))

	parsed := gjson.ParseBytes(body)
	assert.Equal(t, "america", parsed.Get("markets.0").String())
	assert.Equal(t, "market_cap_basic", parsed.Get("sort.sortBy").String())
	assert.Equal(t, int64(5), parsed.Get("filter.#").Int())
	assert.False(t, parsed.Get("Profile").Exists())
}

func TestTradingViewFetcher_NoCookieByDefault(t *testing.T) {
	var cookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie = r.Header.Get("Cookie")
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	req, err := query.Build(profile.PreMarket())
	require.NoError(t, err)
	_, err = NewTradingViewFetcher(srv.URL, "", "", time.Second).Fetch(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, cookie)
}

func TestTradingViewFetcher_Non2xxIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`rate limited`))
	}))
	defer srv.Close()

	req, err := query.Build(profile.MarketHours())
	require.NoError(t, err)

	client := NewScanClient(NewTradingViewFetcher(srv.URL, "", "", time.Second))
	_, err = client.Fetch(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, KindNetwork, KindOf(err))

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusTooManyRequests, se.Code)
	assert.Equal(t, "rate limited", se.Body)
}

func TestTradingViewFetcher_TimeoutIsClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	req, err := query.Build(profile.MarketHours())
	require.NoError(t, err)

	client := NewScanClient(NewTradingViewFetcher(srv.URL, "", "", 50*time.Millisecond))
	start := time.Now()
	_, err = client.Fetch(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, KindTimeout, KindOf(err))
	assert.Less(t, time.Since(start), time.Second)
}

func TestTradingViewFetcher_UnreachableIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	req, err := query.Build(profile.MarketHours())
	require.NoError(t, err)
	_, err = NewScanClient(NewTradingViewFetcher(url, "", "", time.Second)).Fetch(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, KindNetwork, KindOf(err))
}

func TestTradingViewFetcher_PacesRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	req, err := query.Build(profile.MarketHours())
	require.NoError(t, err)
	f := NewTradingViewFetcher(srv.URL, "", "", time.Second)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := f.Fetch(context.Background(), req)
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 2*minRequestSpacing-10*time.Millisecond)
}
