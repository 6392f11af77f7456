package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/civica-labs/lexrag-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.AssetUploader = (*Service)(nil)

// Service hands discovered PDF URLs to the document processing service,
// which fetches, converts and stores them under a per-state prefix
type Service struct {
	baseURL    string
	httpClient *http.Client
}

// Config holds uploader connection configuration
type Config struct {
	// BaseURL is the document service endpoint
	BaseURL string

	// Timeout for HTTP requests
	Timeout time.Duration
}

// NewService creates a new uploader client
func NewService(cfg Config) *Service {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Service{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// uploadRequest is the handoff payload
type uploadRequest struct {
	Prefix string   `json:"prefix"`
	URLs   []string `json:"urls"`
}

// UploadPDFs hands PDF URLs off for asynchronous processing.
// PDFs are stored under "states/<state>/pdf".
func (s *Service) UploadPDFs(ctx context.Context, state string, urls []string) error {
	if len(urls) == 0 {
		return nil
	}

	body, err := json.Marshal(uploadRequest{
		Prefix: fmt.Sprintf("states/%s/pdf", state),
		URLs:   urls,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal upload request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/documents", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("document service returned status %d", resp.StatusCode)
	}
	return nil
}
