package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/civica-labs/lexrag-core/internal/chunker"
	"github.com/civica-labs/lexrag-core/internal/core/domain"
	"github.com/civica-labs/lexrag-core/internal/core/ports/driven"
	"github.com/civica-labs/lexrag-core/internal/core/ports/driving"
)

// Ensure IngestOrchestrator implements IngestService
var _ driving.IngestService = (*IngestOrchestrator)(nil)

const defaultMaxURLs = 100

// IngestOrchestrator coordinates the ingestion pipeline:
//  1. Validate the URL frontier
//  2. Create the crawl job
//  3. Probe URLs for required rendering mode (concurrent)
//  4. Crawl via the external engine
//  5. Per page: normalise -> chunk -> embed
//  6. Replace the batch's passages wholesale (dedupe/upsert)
//  7. Hand discovered PDFs to the asset uploader
//  8. Resolve the job to a terminal state
//
// Any error after the job exists resolves that job to failed with a captured
// message before being surfaced.
type IngestOrchestrator struct {
	jobs        driven.JobStore
	passages    driven.PassageStore
	crawler     driven.Crawler
	embedder    driven.EmbeddingService
	normalisers driven.NormaliserRegistry
	chunks      *chunker.SemanticChunker
	chunkCfg    chunker.Config
	uploader    driven.AssetUploader
	queue       driven.TaskQueue
	pool        *ants.Pool
	logger      *slog.Logger
}

// IngestOrchestratorConfig holds dependencies for IngestOrchestrator
type IngestOrchestratorConfig struct {
	JobStore     driven.JobStore
	PassageStore driven.PassageStore
	Crawler      driven.Crawler
	Embedder     driven.EmbeddingService
	Normalisers  driven.NormaliserRegistry
	Chunker      *chunker.SemanticChunker
	ChunkConfig  chunker.Config
	Uploader     driven.AssetUploader
	TaskQueue    driven.TaskQueue
	ProbeWorkers int
	Logger       *slog.Logger
}

// NewIngestOrchestrator creates the ingestion orchestrator
func NewIngestOrchestrator(cfg IngestOrchestratorConfig) (*IngestOrchestrator, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	workers := cfg.ProbeWorkers
	if workers <= 0 {
		workers = 4
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create probe pool: %w", err)
	}

	chunkCfg := cfg.ChunkConfig
	if chunkCfg.MaxTokens == 0 {
		chunkCfg = chunker.DefaultConfig()
	}

	return &IngestOrchestrator{
		jobs:        cfg.JobStore,
		passages:    cfg.PassageStore,
		crawler:     cfg.Crawler,
		embedder:    cfg.Embedder,
		normalisers: cfg.Normalisers,
		chunks:      cfg.Chunker,
		chunkCfg:    chunkCfg,
		uploader:    cfg.Uploader,
		queue:       cfg.TaskQueue,
		pool:        pool,
		logger:      logger,
	}, nil
}

// Close releases the probe pool
func (o *IngestOrchestrator) Close() {
	o.pool.Release()
}

// Ingest runs the full pipeline synchronously
func (o *IngestOrchestrator) Ingest(ctx context.Context, state string, req domain.IngestRequest) (*domain.IngestResult, error) {
	job, err := o.createJob(ctx, state, req)
	if err != nil {
		return nil, err
	}
	return o.runJob(ctx, job)
}

// IngestDetached validates the request, creates the job and enqueues the
// work. The returned job ID is the only handle the caller keeps.
func (o *IngestOrchestrator) IngestDetached(ctx context.Context, state string, req domain.IngestRequest) (string, error) {
	job, err := o.createJob(ctx, state, req)
	if err != nil {
		return "", err
	}

	task := &driven.IngestTask{
		ID:         uuid.NewString(),
		JobID:      job.ID,
		State:      state,
		URLs:       job.InputURLs,
		MaxURLs:    job.MaxURLs,
		EnqueuedAt: time.Now(),
	}
	if err := o.queue.Enqueue(ctx, task); err != nil {
		o.failJob(ctx, job, fmt.Errorf("failed to enqueue ingestion task: %w", err))
		return "", err
	}

	o.logger.Info("ingestion job enqueued", "job_id", job.ID, "state", state, "urls", len(job.InputURLs))
	return job.ID, nil
}

// RunJobByID loads a previously created job and runs the pipeline for it.
// Used by the background worker for detached tasks.
func (o *IngestOrchestrator) RunJobByID(ctx context.Context, jobID string) error {
	job, err := o.jobs.Get(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to load job %s: %w", jobID, err)
	}
	_, err = o.runJob(ctx, job)
	return err
}

// createJob validates the request and persists a pending job.
// Validation failures never create a job.
func (o *IngestOrchestrator) createJob(ctx context.Context, state string, req domain.IngestRequest) (*domain.CrawlJob, error) {
	if strings.TrimSpace(state) == "" {
		return nil, fmt.Errorf("%w: state is required", domain.ErrInvalidInput)
	}
	if len(req.URLs) == 0 {
		return nil, fmt.Errorf("%w: urls must be a non-empty array", domain.ErrInvalidInput)
	}
	for _, raw := range req.URLs {
		u, err := url.ParseRequestURI(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return nil, fmt.Errorf("%w: unparseable URL %q", domain.ErrInvalidInput, raw)
		}
	}

	maxURLs := req.MaxURLs
	if maxURLs <= 0 {
		maxURLs = defaultMaxURLs
	}

	job := domain.NewCrawlJob(state, req.URLs, maxURLs)
	if err := o.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return job, nil
}

// runJob executes the pipeline for an existing job, guaranteeing a terminal
// transition even when the crawl engine panics
func (o *IngestOrchestrator) runJob(ctx context.Context, job *domain.CrawlJob) (result *domain.IngestResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ingestion panicked: %v", r)
			o.failJob(ctx, job, err)
			result = nil
		}
	}()

	o.logger.Info("starting ingestion", "job_id", job.ID, "state", job.State, "urls", len(job.InputURLs))

	if err := job.Start(); err != nil {
		return nil, err
	}
	if err := o.jobs.Update(ctx, job); err != nil {
		return nil, o.failJob(ctx, job, fmt.Errorf("failed to mark job processing: %w", err))
	}

	crawlRes, err := o.crawl(ctx, job)
	if err != nil {
		return nil, o.failJob(ctx, job, err)
	}

	// Progress is observable while embedding still runs
	if err := o.jobs.UpdateProgress(ctx, job.ID, len(crawlRes.Pages), len(crawlRes.PDFURLs)); err != nil {
		o.logger.Warn("failed to update job progress", "job_id", job.ID, "error", err)
	}

	stored, err := o.processPages(ctx, job, crawlRes.Pages)
	if err != nil {
		return nil, o.failJob(ctx, job, err)
	}

	if len(crawlRes.PDFURLs) > 0 && o.uploader != nil {
		if err := o.uploader.UploadPDFs(ctx, job.State, crawlRes.PDFURLs); err != nil {
			o.logger.Warn("pdf handoff failed", "job_id", job.ID, "count", len(crawlRes.PDFURLs), "error", err)
		}
	}

	if err := job.Complete(len(crawlRes.Pages), len(crawlRes.PDFURLs)); err != nil {
		return nil, o.failJob(ctx, job, err)
	}
	if err := o.jobs.Update(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to persist completed job: %w", err)
	}

	o.logger.Info("ingestion completed",
		"job_id", job.ID,
		"state", job.State,
		"web_urls", job.WebURLsFound,
		"pdf_urls", job.PDFURLsFound,
		"passages", stored,
		"duration_seconds", job.DurationSeconds,
	)

	return &domain.IngestResult{
		JobID: job.ID,
		Stats: domain.IngestStats{
			InputURLs:      len(job.InputURLs),
			CrawledWebURLs: len(crawlRes.Pages),
			CrawledPDFURLs: len(crawlRes.PDFURLs),
			PassagesStored: stored,
		},
		CrawledURLs: domain.CrawledURLs{
			Web: crawlRes.WebURLs(),
			PDF: crawlRes.PDFURLs,
		},
	}, nil
}

// crawl probes render modes concurrently, then delegates to the engine
func (o *IngestOrchestrator) crawl(ctx context.Context, job *domain.CrawlJob) (*driven.CrawlResult, error) {
	render := make(map[string]bool, len(job.InputURLs))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, u := range job.InputURLs {
		u := u
		wg.Add(1)
		if err := o.pool.Submit(func() {
			defer wg.Done()
			needed, err := o.crawler.Probe(ctx, u)
			if err != nil {
				// Probe is advisory; the engine falls back to plain fetch
				o.logger.Warn("render probe failed", "url", u, "error", err)
				return
			}
			mu.Lock()
			render[u] = needed
			mu.Unlock()
		}); err != nil {
			wg.Done()
			return nil, fmt.Errorf("failed to submit probe: %w", err)
		}
	}
	wg.Wait()

	res, err := o.crawler.Crawl(ctx, driven.CrawlRequest{
		URLs:    job.InputURLs,
		MaxURLs: job.MaxURLs,
		Render:  render,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCrawlFailed, err)
	}
	if len(res.Pages) == 0 {
		return nil, fmt.Errorf("%w: no usable web URLs retrieved", domain.ErrCrawlFailed)
	}
	if len(res.FailedURLs) > 0 {
		o.logger.Warn("some URLs failed to crawl", "job_id", job.ID, "failed", len(res.FailedURLs))
	}
	return res, nil
}

// processPages normalises, chunks and embeds every page, then replaces the
// batch's passages in the store wholesale
func (o *IngestOrchestrator) processPages(ctx context.Context, job *domain.CrawlJob, pages []*driven.CrawledPage) (int, error) {
	var batch []*domain.Passage
	urls := make([]string, 0, len(pages))
	now := time.Now()

	for _, page := range pages {
		normaliser := o.normalisers.Get(page.MimeType)
		if normaliser == nil {
			o.logger.Warn("no normaliser for page", "url", page.URL, "mime_type", page.MimeType)
			continue
		}
		markdown, err := normaliser.Normalise(page.Markup)
		if err != nil {
			o.logger.Warn("failed to normalise page", "url", page.URL, "error", err)
			continue
		}

		chunks, err := o.chunks.Chunk(ctx, markdown, page.URL, o.chunkCfg)
		if err != nil {
			return 0, fmt.Errorf("failed to chunk %s: %w", page.URL, err)
		}
		if len(chunks) == 0 {
			continue
		}

		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Content
		}
		embeddings, err := o.embedder.Embed(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("failed to embed passages for %s: %w", page.URL, err)
		}
		if len(embeddings) != len(chunks) {
			return 0, fmt.Errorf("embedding result mismatch for %s: expected %d, received %d",
				page.URL, len(chunks), len(embeddings))
		}

		for i, c := range chunks {
			passage := &domain.Passage{
				DocumentID:  c.DocumentID,
				ChunkNumber: c.Number,
				ChunkCount:  c.Count,
				Content:     c.Content,
				Embedding:   embeddings[i],
				TokenLength: c.TokenLength,
				SourceURL:   page.URL,
				State:       job.State,
				IngestedAt:  now,
			}
			// Malformed vectors abort the whole batch rather than being
			// stored silently
			if err := passage.Validate(); err != nil {
				return 0, err
			}
			batch = append(batch, passage)
		}
		urls = append(urls, page.URL)
	}

	if len(batch) == 0 {
		return 0, nil
	}

	if err := o.passages.Replace(ctx, urls, batch); err != nil {
		return 0, fmt.Errorf("failed to store passages: %w", err)
	}
	return len(batch), nil
}

// failJob resolves the job to failed with a captured message and returns err
func (o *IngestOrchestrator) failJob(ctx context.Context, job *domain.CrawlJob, err error) error {
	o.logger.Error("ingestion failed", "job_id", job.ID, "state", job.State, "error", err)

	if ferr := job.Fail(err.Error()); ferr != nil {
		// Already terminal; nothing left to record
		return err
	}
	if uerr := o.jobs.Update(ctx, job); uerr != nil {
		o.logger.Error("failed to persist failed job", "job_id", job.ID, "error", uerr)
	}
	return err
}
