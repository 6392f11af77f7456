package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/civica-labs/lexrag-core/internal/core/domain"
)

// setupTestAnswerCache creates a test Redis client and AnswerCache
func setupTestAnswerCache(t *testing.T) (*AnswerCache, *miniredis.Miniredis, func()) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cache := NewAnswerCache(client, DefaultAnswerCacheConfig())

	return cache, mr, func() {
		client.Close()
		mr.Close()
	}
}

func testAnswer() *domain.Answer {
	return &domain.Answer{
		Content: "The filing fee is twenty five dollars.",
		Sources: []string{"https://example.gov/fees"},
	}
}

func TestAnswerCache_SetAndGet(t *testing.T) {
	cache, _, cleanup := setupTestAnswerCache(t)
	defer cleanup()
	ctx := context.Background()

	if err := cache.Set(ctx, "California", "what are the fees", testAnswer(), domain.TTLClassFound); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := cache.Get(ctx, "California", "what are the fees")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Content != "The filing fee is twenty five dollars." {
		t.Errorf("unexpected content %q", got.Content)
	}
	if len(got.Sources) != 1 || got.Sources[0] != "https://example.gov/fees" {
		t.Errorf("unexpected sources %v", got.Sources)
	}
}

func TestAnswerCache_MissReturnsNotFound(t *testing.T) {
	cache, _, cleanup := setupTestAnswerCache(t)
	defer cleanup()

	_, err := cache.Get(context.Background(), "California", "never asked")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAnswerCache_KeysAreStateScoped(t *testing.T) {
	cache, _, cleanup := setupTestAnswerCache(t)
	defer cleanup()
	ctx := context.Background()

	if err := cache.Set(ctx, "California", "what are the fees", testAnswer(), domain.TTLClassFound); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	_, err := cache.Get(ctx, "Nevada", "what are the fees")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected miss for a different state, got %v", err)
	}
}

func TestAnswerCache_QuestionNormalisation(t *testing.T) {
	cache, _, cleanup := setupTestAnswerCache(t)
	defer cleanup()
	ctx := context.Background()

	if err := cache.Set(ctx, "California", "What Are The Fees?", testAnswer(), domain.TTLClassFound); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := cache.Get(ctx, "California", "  what are   the fees?  ")
	if err != nil {
		t.Fatalf("expected hit for reformatted question, got %v", err)
	}
	if got.Content == "" {
		t.Error("expected cached content")
	}
}

func TestAnswerCache_FoundTTL(t *testing.T) {
	cache, mr, cleanup := setupTestAnswerCache(t)
	defer cleanup()
	ctx := context.Background()

	if err := cache.Set(ctx, "California", "q", testAnswer(), domain.TTLClassFound); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Survives past the no-data horizon
	mr.FastForward(61 * time.Second)
	if _, err := cache.Get(ctx, "California", "q"); err != nil {
		t.Fatalf("expected hit before found TTL, got %v", err)
	}

	mr.FastForward(240 * time.Second)
	if _, err := cache.Get(ctx, "California", "q"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected expiry after found TTL, got %v", err)
	}
}

func TestAnswerCache_NoDataTTLIsShorter(t *testing.T) {
	cache, mr, cleanup := setupTestAnswerCache(t)
	defer cleanup()
	ctx := context.Background()

	noData := &domain.Answer{Content: "no information yet", Sources: []string{}}
	if err := cache.Set(ctx, "California", "q", noData, domain.TTLClassNoData); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	mr.FastForward(61 * time.Second)
	if _, err := cache.Get(ctx, "California", "q"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected no-data entry to expire within a minute, got %v", err)
	}
}

func TestAnswerCache_Ping(t *testing.T) {
	cache, mr, cleanup := setupTestAnswerCache(t)
	defer cleanup()

	if err := cache.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}

	mr.Close()
	if err := cache.Ping(context.Background()); err == nil {
		t.Error("expected Ping to fail after shutdown")
	}
}
