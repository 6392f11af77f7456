package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/civica-labs/lexrag-core/internal/core/domain"
	"github.com/civica-labs/lexrag-core/internal/core/ports/driven/mocks"
)

type queryFixture struct {
	engine   *queryEngine
	store    *mocks.MockPassageStore
	cache    *mocks.MockAnswerCache
	embedder *mocks.MockEmbeddingService
	llm      *mocks.MockLLMService
}

func newQueryFixture() *queryFixture {
	store := mocks.NewMockPassageStore()
	cache := mocks.NewMockAnswerCache()
	embedder := mocks.NewMockEmbeddingService()
	llm := mocks.NewMockLLMService()

	engine := NewQueryEngine(QueryEngineConfig{
		PassageStore: store,
		Cache:        cache,
		Embedder:     embedder,
		LLM:          llm,
	}).(*queryEngine)

	return &queryFixture{
		engine:   engine,
		store:    store,
		cache:    cache,
		embedder: embedder,
		llm:      llm,
	}
}

// seedMatching stores a passage whose embedding equals the question's query
// embedding, so search scores it 1.0
func (f *queryFixture) seedMatching(t *testing.T, state, question, content, sourceURL string) {
	t.Helper()
	embedding, err := f.embedder.EmbedQuery(context.Background(), question)
	if err != nil {
		t.Fatalf("EmbedQuery failed: %v", err)
	}
	f.store.Seed(&domain.Passage{
		DocumentID: "doc-1",
		Content:    content,
		Embedding:  embedding,
		SourceURL:  sourceURL,
		State:      state,
	})
}

// seedOpposed stores a passage whose embedding is the negation of the
// question's query embedding, scoring -1.0
func (f *queryFixture) seedOpposed(t *testing.T, state, question, content, sourceURL string) {
	t.Helper()
	embedding, err := f.embedder.EmbedQuery(context.Background(), question)
	if err != nil {
		t.Fatalf("EmbedQuery failed: %v", err)
	}
	negated := make([]float32, len(embedding))
	for i, v := range embedding {
		negated[i] = -v
	}
	f.store.Seed(&domain.Passage{
		DocumentID: "doc-2",
		Content:    content,
		Embedding:  negated,
		SourceURL:  sourceURL,
		State:      state,
	})
}

func TestAnswer_EmptyQuestion(t *testing.T) {
	f := newQueryFixture()

	_, err := f.engine.Answer(context.Background(), "California", "   ")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAnswer_EmptyState(t *testing.T) {
	f := newQueryFixture()

	_, err := f.engine.Answer(context.Background(), "", "what are the notary requirements")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAnswer_CacheHit(t *testing.T) {
	f := newQueryFixture()
	cached := &domain.Answer{Content: "cached answer", Sources: []string{"https://example.gov/a"}}
	if err := f.cache.Set(context.Background(), "California", "question", cached, domain.TTLClassFound); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	answer, err := f.engine.Answer(context.Background(), "California", "question")
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if answer.Content != "cached answer" {
		t.Errorf("expected cached content, got %q", answer.Content)
	}
	if f.llm.Calls() != 0 {
		t.Errorf("expected no completion calls on cache hit, got %d", f.llm.Calls())
	}
}

func TestAnswer_NoResultsReturnsNoDataAnswer(t *testing.T) {
	f := newQueryFixture()

	answer, err := f.engine.Answer(context.Background(), "California", "what are the notary requirements")
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if answer.Sources == nil || len(answer.Sources) != 0 {
		t.Errorf("expected empty non-nil sources, got %#v", answer.Sources)
	}
	if !strings.Contains(answer.Content, "California") {
		t.Errorf("expected no-data answer to name the state, got %q", answer.Content)
	}
	if f.llm.Calls() != 0 {
		t.Errorf("expected no completion calls, got %d", f.llm.Calls())
	}

	class, ok := f.cache.ClassFor("California", "what are the notary requirements")
	if !ok || class != domain.TTLClassNoData {
		t.Errorf("expected no-data TTL class recorded, got %v ok=%v", class, ok)
	}
}

func TestAnswer_IrrelevantResultsReturnNoData(t *testing.T) {
	f := newQueryFixture()
	question := "what are the notary requirements"
	f.seedMatching(t, "California", question, "unrelated text about maritime traditions", "https://example.gov/a")

	answer, err := f.engine.Answer(context.Background(), "California", question)
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if len(answer.Sources) != 0 {
		t.Errorf("expected no sources, got %v", answer.Sources)
	}
	if class, _ := f.cache.ClassFor("California", question); class != domain.TTLClassNoData {
		t.Errorf("expected no-data TTL class, got %v", class)
	}
}

func TestAnswer_FullPath(t *testing.T) {
	f := newQueryFixture()
	question := "what are the notary requirements"
	f.seedMatching(t, "California", question, "Notary requirements include a state commission.", "https://example.gov/notary")
	f.llm.SetResponse("You need a state commission.")

	answer, err := f.engine.Answer(context.Background(), "California", question)
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if answer.Content != "You need a state commission." {
		t.Errorf("unexpected answer content %q", answer.Content)
	}
	if len(answer.Sources) != 1 || answer.Sources[0] != "https://example.gov/notary" {
		t.Errorf("unexpected sources %v", answer.Sources)
	}

	system, user := f.llm.LastPrompts()
	if !strings.Contains(system, "California") {
		t.Errorf("expected state in system prompt, got %q", system)
	}
	if !strings.Contains(user, "[relevance") {
		t.Errorf("expected scored context in user prompt, got %q", user)
	}

	class, ok := f.cache.ClassFor("California", question)
	if !ok || class != domain.TTLClassFound {
		t.Errorf("expected found TTL class recorded, got %v ok=%v", class, ok)
	}
}

func TestAnswer_SourcesDeduplicated(t *testing.T) {
	f := newQueryFixture()
	question := "what are the notary requirements"
	f.seedMatching(t, "California", question, "Notary requirements part one.", "https://example.gov/notary")
	f.seedMatching(t, "California", question, "Notary requirements part two.", "https://example.gov/notary")

	answer, err := f.engine.Answer(context.Background(), "California", question)
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if len(answer.Sources) != 1 {
		t.Errorf("expected deduplicated sources, got %v", answer.Sources)
	}
}

func TestAnswer_LowScorePassagesExcludedFromSources(t *testing.T) {
	f := newQueryFixture()
	question := "what are the notary requirements"
	f.seedMatching(t, "California", question, "Notary requirements and commission details.", "https://example.gov/high")
	f.seedOpposed(t, "California", question, "More notary requirements over here.", "https://example.gov/low")

	answer, err := f.engine.Answer(context.Background(), "California", question)
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if len(answer.Sources) != 1 || answer.Sources[0] != "https://example.gov/high" {
		t.Errorf("expected only the high-relevance source, got %v", answer.Sources)
	}
}

func TestAnswer_StateFilterExcludesOtherStates(t *testing.T) {
	f := newQueryFixture()
	question := "what are the notary requirements"
	f.seedMatching(t, "Nevada", question, "Notary requirements for another jurisdiction.", "https://example.gov/nv")

	answer, err := f.engine.Answer(context.Background(), "California", question)
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if len(answer.Sources) != 0 {
		t.Errorf("expected no cross-state results, got %v", answer.Sources)
	}
	if f.llm.Calls() != 0 {
		t.Errorf("expected no completion calls, got %d", f.llm.Calls())
	}
}

func TestAnswer_CacheReadFailureDegradesToMiss(t *testing.T) {
	f := newQueryFixture()
	question := "what are the notary requirements"
	f.seedMatching(t, "California", question, "Notary requirements include a bond.", "https://example.gov/a")
	f.cache.SetGetError(errors.New("connection refused"))

	answer, err := f.engine.Answer(context.Background(), "California", question)
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if answer.Content == "" {
		t.Error("expected a computed answer despite cache read failure")
	}
}

func TestAnswer_CacheWriteFailureIsNonFatal(t *testing.T) {
	f := newQueryFixture()
	question := "what are the notary requirements"
	f.seedMatching(t, "California", question, "Notary requirements include a bond.", "https://example.gov/a")
	f.cache.SetSetError(errors.New("connection refused"))

	answer, err := f.engine.Answer(context.Background(), "California", question)
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if answer == nil {
		t.Fatal("expected an answer despite cache write failure")
	}
}

func TestAnswer_CompletionFailure(t *testing.T) {
	f := newQueryFixture()
	question := "what are the notary requirements"
	f.seedMatching(t, "California", question, "Notary requirements include a bond.", "https://example.gov/a")
	f.llm.SetError(errors.New("model overloaded"))

	_, err := f.engine.Answer(context.Background(), "California", question)
	if !errors.Is(err, domain.ErrServiceUnavailable) {
		t.Errorf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestAnswer_EmbeddingFailure(t *testing.T) {
	f := newQueryFixture()
	f.embedder.SetFailNext(true)

	_, err := f.engine.Answer(context.Background(), "California", "what are the notary requirements")
	if err == nil {
		t.Error("expected an error when query embedding fails")
	}
}

func TestCleanPassageText(t *testing.T) {
	in := "See ![diagram](https://x/img.png) and [the form](https://x/form).\n\nDetails   here. Source: https://x/page"
	got := cleanPassageText(in)
	want := "See diagram and the form. Details here."
	if got != want {
		t.Errorf("cleanPassageText = %q, want %q", got, want)
	}
}

func TestBuildContext(t *testing.T) {
	results := []*domain.ScoredPassage{
		scored(0.91, "First passage."),
		scored(0.72, "Second passage."),
	}
	got := buildContext(results)
	if !strings.Contains(got, "[relevance 0.91] First passage.") {
		t.Errorf("missing first entry in %q", got)
	}
	if !strings.Contains(got, "\n\n[relevance 0.72] Second passage.") {
		t.Errorf("missing separator before second entry in %q", got)
	}
}
