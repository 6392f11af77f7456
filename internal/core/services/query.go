package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/civica-labs/lexrag-core/internal/core/domain"
	"github.com/civica-labs/lexrag-core/internal/core/ports/driven"
	"github.com/civica-labs/lexrag-core/internal/core/ports/driving"
)

// Ensure queryEngine implements QueryService
var _ driving.QueryService = (*queryEngine)(nil)

const (
	searchTopK         = 8
	highRelevanceScore = 0.7
)

var (
	markdownImageRe = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	markdownLinkRe  = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	whitespaceRunRe = regexp.MustCompile(`\s+`)
	sourceTrailerRe = regexp.MustCompile(`(?i)\s*source:\s*\S+\s*$`)
)

// queryEngine orchestrates cache lookup, filtered vector search, relevance
// acceptance, context assembly and the language-model call
type queryEngine struct {
	passages driven.PassageStore
	cache    driven.AnswerCache
	embedder driven.EmbeddingService
	llm      driven.LLMService
	logger   *slog.Logger
}

// QueryEngineConfig holds dependencies for the query engine
type QueryEngineConfig struct {
	PassageStore driven.PassageStore
	Cache        driven.AnswerCache
	Embedder     driven.EmbeddingService
	LLM          driven.LLMService
	Logger       *slog.Logger
}

// NewQueryEngine creates the query service
func NewQueryEngine(cfg QueryEngineConfig) driving.QueryService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &queryEngine{
		passages: cfg.PassageStore,
		cache:    cfg.Cache,
		embedder: cfg.Embedder,
		llm:      cfg.LLM,
		logger:   logger,
	}
}

// Answer resolves a question for one state
func (e *queryEngine) Answer(ctx context.Context, state, question string) (*domain.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question must be a non-empty string", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(state) == "" {
		return nil, fmt.Errorf("%w: state is required", domain.ErrInvalidInput)
	}

	// Cache first; read failures degrade to a miss
	cached, err := e.cache.Get(ctx, state, question)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		e.logger.Warn("answer cache read failed", "state", state, "error", err)
	}

	queryEmbedding, err := e.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	results, err := e.passages.Search(ctx, queryEmbedding, searchTopK, state)
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}

	if !areResultsRelevant(question, results) {
		answer := e.noDataAnswer(state)
		e.cacheAnswer(ctx, state, question, answer, domain.TTLClassNoData)
		return answer, nil
	}

	// Only passages that individually clear the high-relevance bar feed the
	// model and the source list
	var high []*domain.ScoredPassage
	for _, r := range results {
		if r.Score >= highRelevanceScore {
			high = append(high, r)
		}
	}
	sources := dedupedSources(high)

	content, err := e.llm.Complete(ctx, systemPrompt(state), userPrompt(state, question, buildContext(high)))
	if err != nil {
		return nil, fmt.Errorf("%w: completion failed: %v", domain.ErrServiceUnavailable, err)
	}

	answer := &domain.Answer{Content: content, Sources: sources}
	e.cacheAnswer(ctx, state, question, answer, domain.TTLClassFound)
	return answer, nil
}

// cacheAnswer writes through to the cache; failures are logged and skipped
func (e *queryEngine) cacheAnswer(ctx context.Context, state, question string, answer *domain.Answer, class domain.TTLClass) {
	if err := e.cache.Set(ctx, state, question, answer, class); err != nil {
		e.logger.Warn("answer cache write failed", "state", state, "class", class, "error", err)
	}
}

// noDataAnswer is the deterministic fallback when retrieval is rejected.
// Its source list is always empty.
func (e *queryEngine) noDataAnswer(state string) *domain.Answer {
	return &domain.Answer{
		Content: fmt.Sprintf("I don't have information about that topic for %s yet. "+
			"The content may not have been ingested for %s, or the question may be outside the ingested sources.", state, state),
		Sources: []string{},
	}
}

// dedupedSources extracts the unique source URLs of the high-relevance
// passages, preserving first-seen order
func dedupedSources(results []*domain.ScoredPassage) []string {
	sources := []string{}
	seen := make(map[string]struct{})
	for _, r := range results {
		url := r.Passage.SourceURL
		if _, ok := seen[url]; ok || url == "" {
			continue
		}
		seen[url] = struct{}{}
		sources = append(sources, url)
	}
	return sources
}

// buildContext assembles the model context from the high-relevance passages,
// prefixing each cleaned passage with its relevance score
func buildContext(results []*domain.ScoredPassage) string {
	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "[relevance %.2f] %s", r.Score, cleanPassageText(r.Passage.Content))
	}
	return sb.String()
}

// cleanPassageText strips markdown image/link syntax down to the link text,
// collapses whitespace and drops trailing "Source: ..." annotations
func cleanPassageText(text string) string {
	text = markdownImageRe.ReplaceAllString(text, "$1")
	text = markdownLinkRe.ReplaceAllString(text, "$1")
	text = whitespaceRunRe.ReplaceAllString(text, " ")
	text = sourceTrailerRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

func systemPrompt(state string) string {
	return fmt.Sprintf(`You answer questions about %s using ONLY the provided context.
Rules:
- Answer strictly from the context; never use outside knowledge.
- Never mix information from other states or jurisdictions into an answer about %s.
- Use plain language a person without legal training understands.
- If the context does not contain the answer, say the information is not available instead of guessing.`, state, state)
}

func userPrompt(state, question, context string) string {
	return fmt.Sprintf("State: %s\nQuestion: %s\n\nContext:\n%s", state, question, context)
}
