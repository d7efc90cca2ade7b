package translation

import (
	"context"
	"strings"
	"sync"
)

// Cache stores translations in memory, keyed by language pair and text.
// It is safe for concurrent use.
type Cache struct {
	mu           sync.RWMutex
	translations map[string]Result
}

// NewCache creates a new translation cache
func NewCache() *Cache {
	return &Cache{
		translations: make(map[string]Result),
	}
}

func cacheKey(req Request) string {
	return strings.ToLower(req.SourceLanguage) + "\x00" +
		strings.ToLower(req.TargetLanguage) + "\x00" +
		strings.TrimSpace(req.Text)
}

// Add adds a translation to the cache
func (c *Cache) Add(req Request, res Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.translations[cacheKey(req)] = res
}

// Get retrieves a translation from the cache
func (c *Cache) Get(req Request) (Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res, ok := c.translations[cacheKey(req)]
	return res, ok
}

// Len returns the number of cached translations
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.translations)
}

// CachedProvider answers repeated requests from a Cache.
type CachedProvider struct {
	provider Provider
	cache    *Cache
}

// NewCachedProvider wraps p with cache.
func NewCachedProvider(p Provider, cache *Cache) *CachedProvider {
	if cache == nil {
		cache = NewCache()
	}
	return &CachedProvider{provider: p, cache: cache}
}

// Name returns the wrapped provider's name
func (p *CachedProvider) Name() string {
	return p.provider.Name()
}

// Translate returns a cached result or asks the wrapped provider.
func (p *CachedProvider) Translate(ctx context.Context, req Request) (Result, error) {
	if res, ok := p.cache.Get(req); ok {
		return res, nil
	}

	res, err := p.provider.Translate(ctx, req)
	if err != nil {
		return Result{}, err
	}
	p.cache.Add(req, res)
	return res, nil
}
