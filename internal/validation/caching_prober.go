package validation

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/sandeepkv93/catalog-console/internal/observability"
)

const probeNamespace = "image_probe"

var probeLoaded = []byte("loaded")

// CachingProber remembers successful probes for a TTL and collapses
// concurrent probes of the same address into one request.
type CachingProber struct {
	next    ImageProber
	store   ProbeCacheStore
	backend string
	ttl     time.Duration
	group   singleflight.Group
	logger  *slog.Logger
}

func NewCachingProber(next ImageProber, store ProbeCacheStore, backend string, ttl time.Duration, logger *slog.Logger) *CachingProber {
	if store == nil {
		store = NewNoopProbeCacheStore()
		backend = "none"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachingProber{next: next, store: store, backend: backend, ttl: ttl, logger: logger}
}

func (p *CachingProber) Probe(ctx context.Context, rawURL string) error {
	key := ProbeTarget(rawURL)
	if _, ok, err := p.store.Get(ctx, probeNamespace, key); err != nil {
		observability.RecordProbeCacheEvent(ctx, p.backend, "error")
		p.logger.WarnContext(ctx, "probe cache read failed", "backend", p.backend, "error", err)
	} else if ok {
		observability.RecordProbeCacheEvent(ctx, p.backend, "hit")
		return nil
	} else {
		observability.RecordProbeCacheEvent(ctx, p.backend, "miss")
	}

	// The shared probe outlives any single caller; each caller stops
	// waiting when its own context ends.
	shared := context.WithoutCancel(ctx)
	ch := p.group.DoChan(key, func() (any, error) {
		if err := p.next.Probe(shared, rawURL); err != nil {
			return nil, err
		}
		if err := p.store.Set(shared, probeNamespace, key, probeLoaded, p.ttl); err != nil {
			p.logger.WarnContext(shared, "probe cache write failed", "backend", p.backend, "error", err)
		}
		return nil, nil
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Purge drops every remembered probe.
func (p *CachingProber) Purge(ctx context.Context) error {
	return p.store.InvalidateNamespace(ctx, probeNamespace)
}
