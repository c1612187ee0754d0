package ai

import (
	"context"
	"encoding/json"
	"time"

	"github.com/thomas-vilte/ticketmate/internal/cache"
	"github.com/thomas-vilte/ticketmate/internal/logger"
)

// CachingCaller answers repeated prompts from the on-disk cache. Prompts
// are deterministic, so provider, model and both prompt texts identify a
// reply.
type CachingCaller struct {
	next  Provider
	cache *cache.Cache
}

func NewCachingCaller(next Provider, c *cache.Cache) *CachingCaller {
	return &CachingCaller{next: next, cache: c}
}

func (c *CachingCaller) GetModelName() string    { return c.next.GetModelName() }
func (c *CachingCaller) GetProviderName() string { return c.next.GetProviderName() }

func (c *CachingCaller) Call(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	start := time.Now()
	hash := c.cache.GenerateHash(c.next.GetProviderName(), c.next.GetModelName(), systemPrompt, userMessage)

	logger.Debug(ctx, "checking cache for prompt", "cache_key_hash", hash)

	cached, hit, err := c.cache.Get(hash)
	if err != nil {
		logger.Warn(ctx, "ignoring unreadable cache entry", "cache_key_hash", hash, "error", err)
	}
	if hit {
		var reply string
		if err := json.Unmarshal(cached, &reply); err == nil {
			logger.Info(ctx, "cache hit",
				"provider", c.next.GetProviderName(),
				"cache_key_hash", hash,
				"duration_ms", time.Since(start).Milliseconds())
			return reply, nil
		}
	}

	reply, err := c.next.Call(ctx, systemPrompt, userMessage)
	if err != nil {
		return "", err
	}

	if err := c.cache.Set(hash, reply); err != nil {
		logger.Warn(ctx, "failed to store reply in cache", "error", err)
	}
	return reply, nil
}
