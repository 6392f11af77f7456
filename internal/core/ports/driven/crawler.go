package driven

import (
	"context"
)

// CrawledPage is one web page retrieved by the crawl engine
type CrawledPage struct {
	URL      string `json:"url"`
	Markup   string `json:"markup"`
	MimeType string `json:"mime_type"`
}

// CrawlRequest is the frontier handed to the crawl engine
type CrawlRequest struct {
	URLs    []string `json:"urls"`
	MaxURLs int      `json:"max_urls"`

	// Render marks URLs that need browser rendering before extraction
	Render map[string]bool `json:"render,omitempty"`
}

// CrawlResult is what the engine retrieved. Worker concurrency, per-URL
// retries and request timeouts are the engine's own concern.
type CrawlResult struct {
	Pages      []*CrawledPage `json:"pages"`
	PDFURLs    []string       `json:"pdf_urls"`
	FailedURLs []string       `json:"failed_urls"`
}

// WebURLs returns the URLs of the retrieved pages
func (r *CrawlResult) WebURLs() []string {
	urls := make([]string, len(r.Pages))
	for i, p := range r.Pages {
		urls[i] = p.URL
	}
	return urls
}

// Crawler is the client for the external crawl engine
type Crawler interface {
	// Probe reports whether a URL requires browser rendering
	Probe(ctx context.Context, url string) (bool, error)

	// Crawl retrieves pages for the frontier, up to MaxURLs total
	Crawl(ctx context.Context, req CrawlRequest) (*CrawlResult, error)

	// HealthCheck verifies the crawl engine is reachable
	HealthCheck(ctx context.Context) error
}
