package mocks

import (
	"context"
	"sync"

	"github.com/civica-labs/lexrag-core/internal/core/ports/driven"
)

// MockCrawler is a mock implementation of Crawler for testing
type MockCrawler struct {
	mu        sync.Mutex
	result    *driven.CrawlResult
	err       error
	panicMsg  string
	renderSet map[string]bool
	lastReq   *driven.CrawlRequest
}

// NewMockCrawler creates a crawler returning the given result
func NewMockCrawler(result *driven.CrawlResult) *MockCrawler {
	return &MockCrawler{
		result:    result,
		renderSet: make(map[string]bool),
	}
}

func (m *MockCrawler) Probe(ctx context.Context, url string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.renderSet[url], nil
}

func (m *MockCrawler) Crawl(ctx context.Context, req driven.CrawlRequest) (*driven.CrawlResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastReq = &req
	if m.panicMsg != "" {
		panic(m.panicMsg)
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *MockCrawler) HealthCheck(ctx context.Context) error {
	return nil
}

// Helper methods for testing

func (m *MockCrawler) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetPanic makes the next Crawl panic, simulating a crash in the engine client
func (m *MockCrawler) SetPanic(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panicMsg = msg
}

// SetRender marks a URL as requiring browser rendering
func (m *MockCrawler) SetRender(url string, render bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renderSet[url] = render
}

// LastRequest returns the most recent crawl request
func (m *MockCrawler) LastRequest() *driven.CrawlRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastReq
}
