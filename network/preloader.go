package network

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// ErrPreloaderClosed is reported for fetches started after Close.
var ErrPreloaderClosed = errors.New("preloader closed")

// PreloadStats counts preload outcomes.
type PreloadStats struct {
	Fetched   int64
	CacheHits int64
	Failed    int64
	Skipped   int64
}

// Preloader warms the response cache with images. Each Preload call runs in
// its own goroutine and reports nothing to the caller; concurrent preloads
// of one URL share a single request.
type Preloader struct {
	client  *Client
	cache   *Cache
	limiter *rate.Limiter
	group   singleflight.Group
	logger  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool

	fetched, cacheHits, failed, skipped atomic.Int64
}

// PreloaderOption configures a Preloader.
type PreloaderOption func(*Preloader)

// WithPreloadLogger sets the preloader's logger.
func WithPreloadLogger(logger *zap.Logger) PreloaderOption {
	return func(p *Preloader) {
		p.logger = logger.Named("preloader")
	}
}

// WithPreloadCache shares cache with other consumers.
func WithPreloadCache(cache *Cache) PreloaderOption {
	return func(p *Preloader) {
		p.cache = cache
	}
}

// WithRateLimit bounds outgoing fetches to perSecond with the given burst.
// A non-positive perSecond disables limiting.
func WithRateLimit(perSecond float64, burst int) PreloaderOption {
	return func(p *Preloader) {
		if perSecond <= 0 {
			p.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		p.limiter = rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))
	}
}

// NewPreloader creates a preloader fetching through client.
func NewPreloader(client *Client, opts ...PreloaderOption) *Preloader {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Preloader{
		client:  client,
		cache:   NewCache(256),
		limiter: rate.NewLimiter(rate.Limit(8), 4),
		logger:  zap.NewNop(),
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Preload starts fetching ref, resolved against base. It returns
// immediately. Unsupported schemes and unparsable URLs are logged and
// skipped.
func (p *Preloader) Preload(base, ref string) {
	target, err := ResolveReference(base, ref)
	if err != nil {
		p.skipped.Add(1)
		p.logger.Warn("Skipping preload of unparsable URL", zap.String("url", ref), zap.Error(err))
		return
	}
	if target.Scheme != "http" && target.Scheme != "https" {
		p.skipped.Add(1)
		p.logger.Debug("Skipping preload of non-HTTP URL", zap.String("url", target.String()))
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		p.skipped.Add(1)
		p.logger.Debug("Preload requested after close", zap.String("url", target.String()))
		return
	}

	p.wg.Add(1)
	go func(u string) {
		defer p.wg.Done()
		if err := p.fetch(u); err != nil {
			p.failed.Add(1)
			p.logger.Warn("Image preload failed", zap.String("url", u), zap.Error(err))
		}
	}(target.String())
}

func (p *Preloader) fetch(u string) error {
	if _, ok := p.cache.Fresh(u); ok {
		p.cacheHits.Add(1)
		return nil
	}

	_, err, shared := p.group.Do(u, func() (any, error) {
		if err := p.limiter.Wait(p.ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
		resp, err := p.client.Get(p.ctx, u, "image/avif,image/webp,image/*,*/*;q=0.8")
		if err != nil {
			return nil, err
		}
		if !resp.OK() {
			return nil, fmt.Errorf("unexpected status %s", resp.Status)
		}
		if !IsImageContentType(resp.ContentType) {
			p.logger.Debug("Preloaded resource is not an image",
				zap.String("url", u), zap.String("contentType", resp.ContentType))
		}
		p.cache.Set(u, resp)
		p.fetched.Add(1)
		return resp, nil
	})
	if err == nil && shared {
		p.logger.Debug("Preload shared an in-flight request", zap.String("url", u))
	}
	return err
}

// Cached returns the preloaded response for an absolute URL.
func (p *Preloader) Cached(u string) (*Response, bool) {
	return p.cache.Fresh(u)
}

// Stats returns a snapshot of the outcome counters.
func (p *Preloader) Stats() PreloadStats {
	return PreloadStats{
		Fetched:   p.fetched.Load(),
		CacheHits: p.cacheHits.Load(),
		Failed:    p.failed.Load(),
		Skipped:   p.skipped.Load(),
	}
}

// Wait blocks until every started preload has finished.
func (p *Preloader) Wait() {
	p.wg.Wait()
}

// Close cancels in-flight fetches and waits for their goroutines. Later
// Preload calls are skipped.
func (p *Preloader) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPreloaderClosed
	}
	p.closed = true
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
	p.client.CloseIdleConnections()
	return nil
}

// ResolveReference resolves ref against base. An empty or opaque base
// (such as about:blank) leaves ref as parsed.
func ResolveReference(base, ref string) (*url.URL, error) {
	r, err := url.Parse(ref)
	if err != nil {
		return nil, err
	}
	if base == "" {
		return r, nil
	}
	b, err := url.Parse(base)
	if err != nil || b.Opaque != "" || b.Scheme == "about" {
		return r, nil
	}
	return b.ResolveReference(r), nil
}
