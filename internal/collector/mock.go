package collector

import (
	"context"
	"sync"

	"MomentumScanner/internal/model"
)

// MockFetcher returns controllable fixed responses for development and testing.
type MockFetcher struct {
	// Bodies and Errors are keyed by profile name. Errors take precedence.
	Bodies  map[string][]byte
	Errors  map[string]error
	Default []byte

	mu       sync.Mutex
	requests []*model.ScanRequest
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) Fetch(ctx context.Context, req *model.ScanRequest) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := m.Errors[req.Profile]; ok && err != nil {
		return nil, err
	}
	if body, ok := m.Bodies[req.Profile]; ok {
		return body, nil
	}
	if m.Default != nil {
		return m.Default, nil
	}
	return []byte(`{"totalCount":0,"data":[]}`), nil
}

// Requests returns the requests seen so far, in call order.
func (m *MockFetcher) Requests() []*model.ScanRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.ScanRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// SetBody replaces the response for a profile.
func (m *MockFetcher) SetBody(profile string, body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Bodies == nil {
		m.Bodies = make(map[string][]byte)
	}
	m.Bodies[profile] = body
}

// SetError makes every fetch for a profile fail with err; nil clears it.
func (m *MockFetcher) SetError(profile string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Errors == nil {
		m.Errors = make(map[string]error)
	}
	m.Errors[profile] = err
}
