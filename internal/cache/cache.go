// Package cache provides Redis-backed caching for query interpretations and
// embeddings, plus per-upstream cooldown tracking so a failing LLM provider
// is backed off rather than retried on every request (spec.md §7's
// RetrievalUpstreamError "exponential-backoff-then-cooldown" handling).
// Grounded on the teacher's internal/skills/redis_cache.go Redis-client
// shape, generalized from rendered-prompt caching to interpretation and
// embedding caching.
package cache

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Config selects and configures the Redis connection.
type Config struct {
	Enabled               bool
	Addr                  string
	Password              string
	DB                    int
	TLSInsecureSkipVerify bool
}

// Cache wraps a Redis client with the key schemas this service needs. A nil
// *Cache (or one built from a disabled Config) is safe to call: every
// method degrades to a cache miss / no-op, so callers never need a nil
// check of their own.
type Cache struct {
	client             redis.UniversalClient
	interpretationTTL  time.Duration
	embeddingTTL       time.Duration
}

// New builds a Redis-backed Cache. Returns (nil, nil) when disabled.
func New(cfg Config) (*Cache, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	opts := &redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}
	if cfg.TLSInsecureSkipVerify {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("cache: redis ping: %w", err)
	}
	return &Cache{client: client, interpretationTTL: 24 * time.Hour, embeddingTTL: 7 * 24 * time.Hour}, nil
}

func interpretationKey(contractID, query string) string {
	return fmt.Sprintf("interp:%s:%s", contractID, hashQuery(query))
}

func embeddingKey(text string) string {
	return fmt.Sprintf("emb:%s", hashQuery(text))
}

// GetInterpretation returns a cached, JSON-decoded interpretation payload.
func (c *Cache) GetInterpretation(ctx context.Context, contractID, query string, out any) bool {
	if c == nil || c.client == nil {
		return false
	}
	val, err := c.client.Get(ctx, interpretationKey(contractID, query)).Result()
	if err != nil {
		if err != redis.Nil {
			log.Debug().Err(err).Msg("cache_get_interpretation_error")
		}
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		log.Debug().Err(err).Msg("cache_unmarshal_interpretation_error")
		return false
	}
	return true
}

// SetInterpretation caches an interpretation payload.
func (c *Cache) SetInterpretation(ctx context.Context, contractID, query string, v any) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, interpretationKey(contractID, query), data, c.interpretationTTL).Err(); err != nil {
		log.Debug().Err(err).Msg("cache_set_interpretation_error")
	}
}

// GetEmbedding returns a cached embedding vector for text.
func (c *Cache) GetEmbedding(ctx context.Context, text string) ([]float32, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	val, err := c.client.Get(ctx, embeddingKey(text)).Result()
	if err != nil {
		return nil, false
	}
	var vec []float32
	if err := json.Unmarshal([]byte(val), &vec); err != nil {
		return nil, false
	}
	return vec, true
}

// SetEmbedding caches an embedding vector for text.
func (c *Cache) SetEmbedding(ctx context.Context, text string, vec []float32) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(vec)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, embeddingKey(text), data, c.embeddingTTL).Err(); err != nil {
		log.Debug().Err(err).Msg("cache_set_embedding_error")
	}
}

// Close releases the Redis connection.
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
