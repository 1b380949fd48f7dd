package external

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/lab-report-explainer/internal/domain"
)

const cacheKeyPrefix = "labexplain:translation:"

// CacheClient wraps a Redis client for translation results
type CacheClient struct {
	redis      *redis.Client
	defaultTTL time.Duration
}

// NewCacheClient connects to Redis and verifies the connection
func NewCacheClient(ctx context.Context, config domain.CacheConfig) (*CacheClient, error) {
	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	if config.PoolSize > 0 {
		opts.PoolSize = config.PoolSize
	}
	if config.PoolTimeout > 0 {
		opts.PoolTimeout = config.PoolTimeout
	}
	if config.MaxRetries > 0 {
		opts.MaxRetries = config.MaxRetries
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &CacheClient{
		redis:      client,
		defaultTTL: config.TTL,
	}, nil
}

// CachedTranslation is the Redis payload for one translated string
type CachedTranslation struct {
	Text      string    `json:"text"`
	Language  string    `json:"language"`
	CachedAt  time.Time `json:"cached_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// GetTranslation returns a cached translation. Missing, expired or corrupt
// entries are reported as a miss.
func (c *CacheClient) GetTranslation(ctx context.Context, key string) (string, bool, error) {
	val, err := c.redis.Get(ctx, cacheKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get translation cache: %w", err)
	}

	var cached CachedTranslation
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		c.redis.Del(ctx, cacheKeyPrefix+key)
		return "", false, nil
	}
	if time.Now().After(cached.ExpiresAt) {
		c.redis.Del(ctx, cacheKeyPrefix+key)
		return "", false, nil
	}

	return cached.Text, true, nil
}

// SetTranslation stores a translation. A zero ttl uses the default.
func (c *CacheClient) SetTranslation(ctx context.Context, key, language, text string, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}

	now := time.Now()
	data, err := json.Marshal(CachedTranslation{
		Text:      text,
		Language:  language,
		CachedAt:  now,
		ExpiresAt: now.Add(ttl),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal translation cache data: %w", err)
	}

	return c.redis.Set(ctx, cacheKeyPrefix+key, data, ttl).Err()
}

// Close closes the Redis connection
func (c *CacheClient) Close() error {
	return c.redis.Close()
}

// TranslationCache is a two tier cache: an in-process expiring LRU in front
// of an optional shared Redis cache. Redis failures degrade to a miss.
type TranslationCache struct {
	memory *expirable.LRU[string, string]
	redis  *CacheClient
	ttl    time.Duration
	logger *logrus.Logger
}

// NewTranslationCache creates the cache. redisClient may be nil.
func NewTranslationCache(config domain.CacheConfig, redisClient *CacheClient, logger *logrus.Logger) *TranslationCache {
	if config.MemorySize <= 0 {
		config.MemorySize = 2048
	}
	if config.TTL <= 0 {
		config.TTL = 24 * time.Hour
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &TranslationCache{
		memory: expirable.NewLRU[string, string](config.MemorySize, nil, config.TTL),
		redis:  redisClient,
		ttl:    config.TTL,
		logger: logger,
	}
}

// Get looks up a translation of text into targetLanguage
func (c *TranslationCache) Get(ctx context.Context, targetLanguage, text string) (string, bool) {
	key := translationKey(targetLanguage, text)

	if v, ok := c.memory.Get(key); ok {
		return v, true
	}
	if c.redis == nil {
		return "", false
	}

	v, found, err := c.redis.GetTranslation(ctx, key)
	if err != nil {
		c.logger.WithError(err).Debug("Translation cache lookup failed")
		return "", false
	}
	if found {
		c.memory.Add(key, v)
	}
	return v, found
}

// Set stores a translation in both tiers
func (c *TranslationCache) Set(ctx context.Context, targetLanguage, text, translated string) {
	key := translationKey(targetLanguage, text)
	c.memory.Add(key, translated)

	if c.redis == nil {
		return
	}
	if err := c.redis.SetTranslation(ctx, key, targetLanguage, translated, c.ttl); err != nil {
		c.logger.WithError(err).Debug("Failed to store translation in Redis")
	}
}

// Len returns the number of entries held in memory
func (c *TranslationCache) Len() int {
	return c.memory.Len()
}

// Close releases the Redis connection if any
func (c *TranslationCache) Close() error {
	if c.redis == nil {
		return nil
	}
	return c.redis.Close()
}

func translationKey(language, text string) string {
	sum := sha256.Sum256([]byte(language + "\x00" + text))
	return language + ":" + hex.EncodeToString(sum[:])
}
