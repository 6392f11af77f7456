package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/civica-labs/lexrag-core/internal/core/domain"
	"github.com/civica-labs/lexrag-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.AnswerCache = (*AnswerCache)(nil)

const answerPrefix = "answer:"

// AnswerCacheConfig holds the TTL per answer class
type AnswerCacheConfig struct {
	// NoDataTTL bounds how long a "no data" answer is served before
	// retrieval is retried. Kept short so fresh ingestion shows up quickly.
	NoDataTTL time.Duration

	// FoundTTL bounds how long a computed answer is served
	FoundTTL time.Duration
}

// DefaultAnswerCacheConfig returns the standard TTLs
func DefaultAnswerCacheConfig() AnswerCacheConfig {
	return AnswerCacheConfig{
		NoDataTTL: 60 * time.Second,
		FoundTTL:  300 * time.Second,
	}
}

// AnswerCache implements driven.AnswerCache using Redis with TTL expiry
type AnswerCache struct {
	client *redis.Client
	cfg    AnswerCacheConfig
}

// NewAnswerCache creates a new Redis-backed AnswerCache
func NewAnswerCache(client *redis.Client, cfg AnswerCacheConfig) *AnswerCache {
	if cfg.NoDataTTL <= 0 {
		cfg.NoDataTTL = DefaultAnswerCacheConfig().NoDataTTL
	}
	if cfg.FoundTTL <= 0 {
		cfg.FoundTTL = DefaultAnswerCacheConfig().FoundTTL
	}
	return &AnswerCache{client: client, cfg: cfg}
}

// Get retrieves a cached answer, returning domain.ErrNotFound on a miss
func (c *AnswerCache) Get(ctx context.Context, state, question string) (*domain.Answer, error) {
	data, err := c.client.Get(ctx, answerKey(state, question)).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached answer: %w", err)
	}

	var answer domain.Answer
	if err := json.Unmarshal(data, &answer); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached answer: %w", err)
	}
	return &answer, nil
}

// Set stores an answer with the TTL of its class
func (c *AnswerCache) Set(ctx context.Context, state, question string, answer *domain.Answer, class domain.TTLClass) error {
	data, err := json.Marshal(answer)
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}

	ttl := c.cfg.FoundTTL
	if class == domain.TTLClassNoData {
		ttl = c.cfg.NoDataTTL
	}

	if err := c.client.Set(ctx, answerKey(state, question), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache answer: %w", err)
	}
	return nil
}

// Ping checks if Redis is reachable
func (c *AnswerCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// answerKey derives the cache key from the state and the normalised
// question, so trivially reworded lookups of the same question share an
// entry and keys stay bounded in length
func answerKey(state, question string) string {
	normalised := strings.Join(strings.Fields(strings.ToLower(question)), " ")
	sum := sha256.Sum256([]byte(normalised))
	return answerPrefix + state + ":" + hex.EncodeToString(sum[:])
}
