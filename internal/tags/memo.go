package tags

import (
	"context"
	"strings"
	"sync"
)

type memoKey struct{}

type memo struct {
	mu      sync.Mutex
	entries map[string]Set
}

// WithMemo attaches an empty tag cache to ctx. The cache lives exactly as long
// as the context; calling it on a context that already has one is a no-op.
func WithMemo(ctx context.Context) context.Context {
	if _, ok := ctx.Value(memoKey{}).(*memo); ok {
		return ctx
	}
	return context.WithValue(ctx, memoKey{}, &memo{entries: make(map[string]Set)})
}

// Memoize wraps next so repeated extractions of the same normalized text and
// kind within one memo-carrying context are answered from the cache.
func Memoize(next Extractor) Extractor {
	return &memoized{next: next}
}

type memoized struct {
	next Extractor
}

func (m *memoized) Name() string { return m.next.Name() }

func (m *memoized) Extract(ctx context.Context, text string, kind Kind) Set {
	cache, ok := ctx.Value(memoKey{}).(*memo)
	if !ok {
		return m.next.Extract(ctx, text, kind)
	}

	key := m.next.Name() + "\x00" + string(kind) + "\x00" + normalizeText(text)

	cache.mu.Lock()
	cached, hit := cache.entries[key]
	cache.mu.Unlock()
	if hit {
		return NewSet(cached...)
	}

	set := m.next.Extract(ctx, text, kind)

	cache.mu.Lock()
	cache.entries[key] = NewSet(set...)
	cache.mu.Unlock()

	return set
}

func normalizeText(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}
