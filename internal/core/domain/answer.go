package domain

// TTLClass selects the cache expiry applied to a stored answer
type TTLClass string

const (
	// TTLClassNoData is the short expiry used for "no relevant data" answers
	TTLClassNoData TTLClass = "no_data"

	// TTLClassFound is the default expiry used for answers built from passages
	TTLClassFound TTLClass = "found"
)

// Answer is the result of a question against one state's passages
type Answer struct {
	Content string   `json:"answer"`
	Sources []string `json:"sources"`
}

// IngestRequest is the payload accepted by the ingestion entry points
type IngestRequest struct {
	URLs    []string `json:"urls"`
	MaxURLs int      `json:"maxUrls,omitempty"`
}

// IngestStats summarizes one completed ingestion run
type IngestStats struct {
	InputURLs      int `json:"inputUrls"`
	CrawledWebURLs int `json:"crawledWebUrls"`
	CrawledPDFURLs int `json:"crawledPdfUrls"`
	PassagesStored int `json:"passagesStored"`
}

// CrawledURLs lists what the crawl engine actually retrieved
type CrawledURLs struct {
	Web []string `json:"web"`
	PDF []string `json:"pdf"`
}

// IngestResult is returned by a synchronous ingestion run
type IngestResult struct {
	JobID       string      `json:"jobId"`
	Stats       IngestStats `json:"stats"`
	CrawledURLs CrawledURLs `json:"crawledUrls"`
}
