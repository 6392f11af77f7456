package chunker

import (
	"context"
	"strings"
	"sync"
	"testing"
)

// stubEmbedder returns either one shared vector for every text (similarity
// 1.0 everywhere) or a distinct one-hot vector per unique text (similarity
// 0.0 between differing windows)
type stubEmbedder struct {
	mu       sync.Mutex
	distinct bool
	dims     int
	seen     map[string]int
}

func newStubEmbedder(distinct bool) *stubEmbedder {
	return &stubEmbedder{
		distinct: distinct,
		dims:     16,
		seen:     make(map[string]int),
	}
}

func (s *stubEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	v := make([]float32, s.dims)
	if !s.distinct {
		v[0] = 1
		return v, nil
	}

	s.mu.Lock()
	idx, ok := s.seen[text]
	if !ok {
		idx = len(s.seen) % s.dims
		s.seen[text] = idx
	}
	s.mu.Unlock()

	v[idx] = 1
	return v, nil
}

func (s *stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := s.EmbedQuery(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (s *stubEmbedder) Dimensions() int                     { return s.dims }
func (s *stubEmbedder) Model() string                       { return "stub" }
func (s *stubEmbedder) HealthCheck(_ context.Context) error { return nil }
func (s *stubEmbedder) Close() error                        { return nil }

func mustChunker(t *testing.T, distinct bool) *SemanticChunker {
	t.Helper()
	c, err := New(newStubEmbedder(distinct))
	if err != nil {
		t.Fatalf("failed to create chunker: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestChunk_SingleUnit(t *testing.T) {
	c := mustChunker(t, false)

	chunks, err := c.Chunk(context.Background(), "Just one sentence.", "doc", DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Number != 1 || chunks[0].Count != 1 {
		t.Errorf("expected ordinal 1/1, got %d/%d", chunks[0].Number, chunks[0].Count)
	}
	if chunks[0].Content != "Just one sentence." {
		t.Errorf("unexpected content %q", chunks[0].Content)
	}
}

func TestChunk_EmptyText(t *testing.T) {
	c := mustChunker(t, false)

	chunks, err := c.Chunk(context.Background(), "", "doc", DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chunks != nil {
		t.Errorf("expected no chunks, got %d", len(chunks))
	}
}

// Concatenating all chunks reconstructs the original unit sequence,
// no unit omitted or duplicated
func TestChunk_Coverage(t *testing.T) {
	text := "# Title\nFirst sentence. Second sentence.\n- a list item\n\nClosing prose."
	units := SplitUnits(text)

	for _, distinct := range []bool{false, true} {
		c := mustChunker(t, distinct)
		chunks, err := c.Chunk(context.Background(), text, "doc", DefaultConfig())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var joined []string
		for _, chunk := range chunks {
			joined = append(joined, chunk.Content)
		}
		got := strings.Join(joined, " ")
		want := strings.Join(units, " ")
		if got != want {
			t.Errorf("distinct=%v: coverage broken:\ngot  %q\nwant %q", distinct, got, want)
		}
	}
}

func TestChunk_CountConsistency(t *testing.T) {
	text := "One. Two. Three. Four. Five."
	c := mustChunker(t, true)

	chunks, err := c.Chunk(context.Background(), text, "doc", DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, chunk := range chunks {
		if chunk.Count != len(chunks) {
			t.Errorf("chunk %d carries count %d, want %d", chunk.Number, chunk.Count, len(chunks))
		}
	}
	for i, chunk := range chunks {
		if chunk.Number != i+1 {
			t.Errorf("expected ordinal %d, got %d", i+1, chunk.Number)
		}
	}
}

func TestChunk_MaxTokensClosesChunk(t *testing.T) {
	// Similarity never dips (constant embedder): only the budget cuts
	text := "Alpha bravo charlie. Delta echo foxtrot. Golf hotel india."
	c := mustChunker(t, false)

	cfg := DefaultConfig()
	cfg.MaxTokens = 25

	chunks, err := c.Chunk(context.Background(), text, "doc", cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected budget to force multiple chunks, got %d", len(chunks))
	}
	for _, chunk := range chunks {
		if chunk.TokenLength != len(chunk.Content) {
			t.Errorf("token length %d does not match content length %d", chunk.TokenLength, len(chunk.Content))
		}
	}
}

// High threshold plus a heading boundary forces at least two chunks
func TestChunk_ScenarioHeadingAndThreshold(t *testing.T) {
	c := mustChunker(t, true)

	cfg := Config{WindowSize: 1, SimilarityThreshold: 0.99, MaxTokens: 1000}
	chunks, err := c.Chunk(context.Background(), "# Title\nSentence one. Sentence two.", "doc", cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
}

func TestChunk_WithEmbeddings(t *testing.T) {
	c := mustChunker(t, true)

	cfg := DefaultConfig()
	cfg.WithEmbeddings = true

	chunks, err := c.Chunk(context.Background(), "One. Two. Three.", "doc", cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			t.Errorf("chunk %d missing embedding", chunk.Number)
		}
	}
}

func TestChunk_DocumentIDUniquePerCall(t *testing.T) {
	c := mustChunker(t, false)

	a, err := c.Chunk(context.Background(), "Some text.", "doc", DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := c.Chunk(context.Background(), "Some text.", "doc", DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a[0].DocumentID == b[0].DocumentID {
		t.Error("expected distinct document IDs across calls")
	}
}

func TestChunk_WindowSizeZero(t *testing.T) {
	c := mustChunker(t, true)

	cfg := Config{WindowSize: 0, SimilarityThreshold: 0.5, MaxTokens: 1000}
	chunks, err := c.Chunk(context.Background(), "Alpha. Beta. Gamma.", "doc", cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Each window degenerates to the anchor unit; distinct units are
	// orthogonal, so every unit becomes its own chunk
	if len(chunks) != 3 {
		t.Errorf("expected 3 chunks, got %d", len(chunks))
	}
}
