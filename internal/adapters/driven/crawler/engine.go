package crawler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/civica-labs/lexrag-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.Crawler = (*Engine)(nil)

// Engine implements driven.Crawler against an external crawl service
type Engine struct {
	baseURL    string
	httpClient *http.Client
}

// Config holds crawl service connection configuration
type Config struct {
	// BaseURL is the crawl service endpoint (e.g., http://localhost:8700)
	BaseURL string

	// Timeout for HTTP requests. Crawls of a whole site take a while,
	// so this is far longer than a typical API timeout.
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL: baseURL,
		Timeout: 10 * time.Minute,
	}
}

// NewEngine creates a new crawl service client
func NewEngine(cfg Config) *Engine {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultConfig(cfg.BaseURL).Timeout
	}
	return &Engine{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// probeRequest asks the service whether a URL needs browser rendering
type probeRequest struct {
	URL string `json:"url"`
}

type probeResponse struct {
	URL           string `json:"url"`
	RequiresJS    bool   `json:"requiresJs"`
	ContentLength int    `json:"contentLength"`
}

// crawlRequest is the request body for a crawl run
type crawlRequest struct {
	URLs    []string        `json:"urls"`
	MaxURLs int             `json:"maxUrls"`
	Render  map[string]bool `json:"render,omitempty"`
}

type crawlResponse struct {
	Pages []struct {
		URL      string `json:"url"`
		Markup   string `json:"markup"`
		MimeType string `json:"mimeType"`
	} `json:"pages"`
	PDFURLs    []string `json:"pdfUrls"`
	FailedURLs []string `json:"failedUrls"`
	Error      string   `json:"error,omitempty"`
}

// Probe asks the crawl service whether a URL needs browser rendering to
// produce usable markup
func (e *Engine) Probe(ctx context.Context, url string) (bool, error) {
	var resp probeResponse
	if err := e.post(ctx, "/v1/probe", probeRequest{URL: url}, &resp); err != nil {
		return false, fmt.Errorf("probe %s: %w", url, err)
	}
	return resp.RequiresJS, nil
}

// Crawl runs a crawl from the given seed URLs
func (e *Engine) Crawl(ctx context.Context, req driven.CrawlRequest) (*driven.CrawlResult, error) {
	var resp crawlResponse
	err := e.post(ctx, "/v1/crawl", crawlRequest{
		URLs:    req.URLs,
		MaxURLs: req.MaxURLs,
		Render:  req.Render,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("crawl service error: %s", resp.Error)
	}

	result := &driven.CrawlResult{
		PDFURLs:    resp.PDFURLs,
		FailedURLs: resp.FailedURLs,
	}
	for _, p := range resp.Pages {
		result.Pages = append(result.Pages, &driven.CrawledPage{
			URL:      p.URL,
			Markup:   p.Markup,
			MimeType: p.MimeType,
		})
	}
	return result, nil
}

// HealthCheck verifies the crawl service is reachable
func (e *Engine) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("crawl service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("crawl service returned status %d", resp.StatusCode)
	}
	return nil
}

func (e *Engine) post(ctx context.Context, path string, reqBody, out any) error {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("crawl service returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
