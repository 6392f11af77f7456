package mocks

import (
	"context"
	"sync"
)

// MockAssetUploader records PDF handoffs for testing
type MockAssetUploader struct {
	mu       sync.Mutex
	uploaded map[string][]string
	err      error
}

// NewMockAssetUploader creates a new MockAssetUploader
func NewMockAssetUploader() *MockAssetUploader {
	return &MockAssetUploader{uploaded: make(map[string][]string)}
}

func (m *MockAssetUploader) UploadPDFs(ctx context.Context, state string, urls []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.uploaded[state] = append(m.uploaded[state], urls...)
	return nil
}

// Helper methods for testing

func (m *MockAssetUploader) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Uploaded returns the URLs handed off for a state
func (m *MockAssetUploader) Uploaded(state string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.uploaded[state]...)
}
