package cache

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/hupe1980/astrocache/codec"
)

// Cache is a typed view over a Store. Payloads of type T are encoded with an
// explicit codec; an entry written by a different codec reads as a miss.
type Cache[T any] struct {
	store *Store
	codec codec.Codec
	kind  string
}

// NewTyped returns a typed cache over store. A nil codec selects codec.Default.
func NewTyped[T any](store *Store, c codec.Codec) *Cache[T] {
	if c == nil {
		c = codec.Default
	}
	return &Cache[T]{
		store: store,
		codec: c,
		kind:  reflect.TypeFor[T]().String(),
	}
}

// Store returns the underlying store.
func (c *Cache[T]) Store() *Store { return c.store }

// Get returns the payload cached for name under the current fingerprint of sources.
// Missing, expired and corrupt entries all report ok=false.
func (c *Cache[T]) Get(ctx context.Context, name string, sources []string) (T, bool) {
	return c.get(ctx, c.store.Key(name, sources))
}

func (c *Cache[T]) get(ctx context.Context, k Key) (T, bool) {
	v, out := c.lookup(ctx, k)
	c.record(k, out)
	return v, out == outcomeHit
}

// record counts exactly one result per lookup.
func (c *Cache[T]) record(k Key, out outcome) {
	switch out {
	case outcomeHit:
		c.store.rec.RecordCacheHit(k.Name)
	case outcomeCorrupt:
		c.store.rec.RecordCacheCorrupt(k.Name)
	default:
		c.store.rec.RecordCacheMiss(k.Name)
	}
}

// lookup is get without accounting.
func (c *Cache[T]) lookup(ctx context.Context, k Key) (T, outcome) {
	var zero T

	e, out := c.store.load(ctx, k)
	if out != outcomeHit {
		return zero, out
	}

	if e.Codec != c.codec.Name() {
		c.store.discard(ctx, k, fmt.Errorf("%w: entry %q, reader %q", ErrCodecMismatch, e.Codec, c.codec.Name()))
		return zero, outcomeCorrupt
	}

	var v T
	if err := c.codec.Unmarshal(e.Payload, &v); err != nil {
		c.store.discard(ctx, k, fmt.Errorf("%w: %w", ErrCorrupt, err))
		return zero, outcomeCorrupt
	}

	c.store.logger.DebugContext(ctx, "cache hit", "name", k.Name)
	return v, outcomeHit
}

// Set caches value for name under the current fingerprint of sources.
// Failures are logged and otherwise ignored.
func (c *Cache[T]) Set(ctx context.Context, name string, value T, sources []string) {
	c.set(ctx, c.store.Key(name, sources), value)
}

func (c *Cache[T]) set(ctx context.Context, k Key, value T) {
	if len(k.Name) > maxNameLen {
		c.store.logger.WarnContext(ctx, "cache name too long, not caching",
			"bytes", len(k.Name), "limit", maxNameLen, "error", ErrNameTooLong)
		return
	}

	payload, err := c.codec.Marshal(value)
	if err != nil {
		c.store.logger.WarnContext(ctx, "cache encode failed", "name", k.Name, "codec", c.codec.Name(), "error", err)
		return
	}
	if err := c.store.write(k, c.codec.Name(), payload); err != nil {
		c.store.logger.WarnContext(ctx, "cache write failed", "name", k.Name, "dir", c.store.dir, "error", err)
		return
	}
	c.store.logger.DebugContext(ctx, "cache entry written", "name", k.Name, "bytes", len(payload))
}

// GetOrCompute returns the cached payload for name, or runs compute, caches
// its result and returns it. An error from compute is returned as-is and
// nothing is cached. Concurrent callers for the same key in this process
// share a single compute.
func (c *Cache[T]) GetOrCompute(ctx context.Context, name string, sources []string, compute func(context.Context) (T, error)) (T, error) {
	k := c.store.Key(name, sources)
	if v, ok := c.get(ctx, k); ok {
		return v, nil
	}

	res, err, _ := c.store.flight.Do(c.kind+"|"+k.FileName(), func() (any, error) {
		// Another caller may have finished the compute while we waited.
		// The outer lookup already counted this call.
		if v, out := c.lookup(ctx, k); out == outcomeHit {
			return v, nil
		}

		start := time.Now()
		v, err := compute(ctx)
		elapsed := time.Since(start)
		c.store.rec.RecordCompute(k.Name, elapsed, err)
		if err != nil {
			c.store.logger.WarnContext(ctx, "cache compute failed", "name", k.Name, "duration", elapsed, "error", err)
			return nil, err
		}

		c.store.logger.InfoContext(ctx, "computed cache entry", "name", k.Name, "duration", elapsed)
		c.set(ctx, k, v)
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	v, _ := res.(T)
	return v, nil
}
