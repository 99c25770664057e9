package providers

import (
	"context"

	"github.com/emataei/pr-companion/internal/cache"
)

// cachedCompleter serves repeated prompts from the file cache instead of
// re-calling the provider.
type cachedCompleter struct {
	inner Completer
	model string
	store *cache.Cache
}

// WithCache wraps a Completer with response caching. Returns the inner
// Completer unchanged when the cache is nil or disabled.
func WithCache(inner Completer, model string, store *cache.Cache) Completer {
	if inner == nil || store == nil || !store.Enabled() {
		return inner
	}
	return &cachedCompleter{inner: inner, model: model, store: store}
}

func (c *cachedCompleter) Name() string { return c.inner.Name() }

func (c *cachedCompleter) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	key := cache.BuildCacheKey(c.inner.Name(), c.model, req.SystemPrompt+"\n"+req.UserPrompt)
	if content, ok := c.store.Get(key); ok {
		return CompletionResponse{Content: content}, nil
	}

	resp, err := c.inner.Complete(ctx, req)
	if err != nil {
		return resp, err
	}
	// Cache writes are best effort; a failed write never fails the call.
	_ = c.store.Put(key, resp.Content)
	return resp, nil
}
