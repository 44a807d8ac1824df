package embedding

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"time"

	"github.com/patrickmn/go-cache"
)

// CachedProvider memoizes embeddings in process memory. FAQ scoring embeds the
// same search keys for every question, so most lookups hit the cache.
type CachedProvider struct {
	next  EmbeddingProvider
	cache *cache.Cache
}

func NewCachedProvider(next EmbeddingProvider, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &CachedProvider{
		next:  next,
		cache: cache.New(ttl, 30*time.Minute),
	}
}

func (p *CachedProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	key := cacheKey(text, taskType)
	if x, found := p.cache.Get(key); found {
		return x.(*EmbeddingResponse), nil
	}

	res, err := p.next.Generate(ctx, text, taskType)
	if err != nil {
		return nil, err
	}

	p.cache.Set(key, res, cache.DefaultExpiration)
	return res, nil
}

// Len returns the number of cached embeddings.
func (p *CachedProvider) Len() int {
	return p.cache.ItemCount()
}

func cacheKey(text, taskType string) string {
	sum := sha1.Sum([]byte(taskType + "\x00" + text))
	return hex.EncodeToString(sum[:])
}
