package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stripview/pkg/cache"
	"github.com/matzehuels/stripview/pkg/canvas"
	"github.com/matzehuels/stripview/pkg/render/frame"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete transform → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Transform
	start := time.Now()
	t, samples := Replay(ctx, opts, opts.Logger)
	result.Transform = t
	result.Stats.Samples = samples
	result.Stats.TransformTime = time.Since(start)

	r.Logger.Info("replayed gestures",
		"samples", samples,
		"transform", t,
		"duration", result.Stats.TransformTime)

	// Stage 2: Render
	start = time.Now()
	f := frame.New(opts.Config, opts.Viewport, t, opts.FrameOptions()...)
	artifacts, hits, err := r.RenderWithCacheInfo(ctx, f, opts.Config, opts.Formats, opts.Refresh)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Frame = f
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)
	result.CacheInfo.Hits = hits
	result.CacheInfo.RenderHit = len(hits) == len(opts.Formats)

	r.Logger.Info("rendered frame",
		"formats", opts.Formats,
		"cached", len(hits),
		"duration", result.Stats.RenderTime)

	return result, nil
}

// RenderWithCacheInfo renders f in every format, serving each from cache
// when possible. It returns the artifacts and the formats that were cache
// hits. Refresh skips cache reads but still writes.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, f frame.Frame, cfg canvas.Configuration, formats []string, refresh bool) (map[string][]byte, []string, error) {
	if err := ValidateFormats(formats); err != nil {
		return nil, nil, err
	}

	artifacts := make(map[string][]byte, len(formats))
	var hits []string

	for _, format := range formats {
		key := r.Keyer.FrameKey(FrameKeyOpts(f, cfg, format))

		if !refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				artifacts[format] = data
				hits = append(hits, format)
				continue
			} else if err != nil {
				r.Logger.Warn("cache read failed", "format", format, "error", err)
			}
		}

		data, err := frame.Render(ctx, f, format)
		if err != nil {
			return nil, nil, err
		}
		artifacts[format] = data

		if err := r.Cache.Set(ctx, key, data, cache.FrameTTL); err != nil {
			r.Logger.Warn("cache write failed", "format", format, "error", err)
		}
	}

	return artifacts, hits, nil
}

// Render renders one format of f with caching.
func (r *Runner) Render(ctx context.Context, f frame.Frame, cfg canvas.Configuration, format string) ([]byte, bool, error) {
	artifacts, hits, err := r.RenderWithCacheInfo(ctx, f, cfg, []string{format}, false)
	if err != nil {
		return nil, false, err
	}
	return artifacts[format], len(hits) == 1, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
