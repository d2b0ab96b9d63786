package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/rnaviz/pkg/cache"
	rnaerrors "github.com/matzehuels/rnaviz/pkg/errors"
	"github.com/matzehuels/rnaviz/pkg/layout"
	"github.com/matzehuels/rnaviz/pkg/observability"
	"github.com/matzehuels/rnaviz/pkg/structure"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner holds no per-run state, so multiple goroutines can share one
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the per-stage entry lifetimes when positive.
	TTL time.Duration
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

// Execute runs the complete structure → layout → scene → render pipeline.
//
// A disconnected structure graph yields a complete result with
// [Result.Warning] set and a nil error.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result, err := r.runLayout(ctx, opts)
	if err != nil {
		return nil, err
	}

	// Stage 3: Scene
	scene, err := BuildScene(result.Structure, result.Layout, opts)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	result.Scene = scene
	result.Overlaps = scene.Overlaps()
	if n := len(result.Overlaps); n > 0 {
		opts.Logger.Debug("overlapping nucleotide markers", "count", n)
	}

	// Stage 4: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, result, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"engine", opts.Engine,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ExecuteLayout runs only the structure and layout stages.
func (r *Runner) ExecuteLayout(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForParse(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if err := opts.ValidateForLayout(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return r.runLayout(ctx, opts)
}

func (r *Runner) runLayout(ctx context.Context, opts Options) (*Result, error) {
	result := &Result{}

	// Stage 1: Structure
	parseStart := time.Now()
	observability.Pipeline().OnParseStart(ctx, len(opts.Sequence))
	s, err := BuildStructure(opts)
	result.Stats.ParseTime = time.Since(parseStart)
	if err != nil {
		observability.Pipeline().OnParseComplete(ctx, 0, 0, result.Stats.ParseTime, err)
		return nil, fmt.Errorf("structure: %w", err)
	}
	observability.Pipeline().OnParseComplete(ctx, s.Len(), len(s.Pairings()), result.Stats.ParseTime, nil)
	result.Structure = s
	result.StructureHash = StructureHash(s)
	result.Stats.Nucleotides = s.Len()
	result.Stats.Pairings = len(s.Pairings())

	opts.Logger.Debug("built structure",
		"nucleotides", s.Len(),
		"pairings", len(s.Pairings()),
		"dot_bracket", s.DotBracket())

	// Stage 2: Layout
	layoutStart := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, opts.Mode, s.Len())
	l, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, s, opts)
	result.Stats.LayoutTime = time.Since(layoutStart)
	if err != nil && !rnaerrors.IsWarning(err) {
		observability.Pipeline().OnLayoutComplete(ctx, opts.Mode, 0, result.Stats.LayoutTime, err)
		return nil, fmt.Errorf("layout: %w", err)
	}
	observability.Pipeline().OnLayoutComplete(ctx, opts.Mode, l.Iterations(), result.Stats.LayoutTime, err)
	result.Layout = l
	result.Warning = err
	result.CacheInfo.LayoutHit = layoutHit
	result.Stats.Components = len(l.Components)
	if result.Stats.Components == 0 && l.Len() > 0 {
		result.Stats.Components = 1
	}
	result.Stats.Iterations = l.Iterations()
	result.Stats.Stress = l.Stress()
	if data, err := MarshalLayout(l); err == nil {
		result.LayoutHash = cache.Hash(data)
	}

	if result.Warning != nil {
		opts.Logger.Warn("structure graph is disconnected; components were laid out independently",
			"components", len(l.Components))
	}
	opts.Logger.Info("computed layout",
		"mode", opts.Mode,
		"nucleotides", s.Len(),
		"iterations", l.Iterations(),
		"stress", l.Stress(),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	return result, nil
}

// ComputeLayoutWithCacheInfo computes the layout of s with caching and
// reports whether it came from the cache. A disconnected-graph warning is
// returned alongside the layout on hits and misses alike.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, s *structure.Structure, opts Options) (*layout.Layout, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}

	cacheKey := r.Keyer.LayoutKey(StructureHash(s), opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if l, err := UnmarshalLayout(data); err == nil && l.Len() == s.Len() {
				observability.Cache().OnCacheHit(ctx, "layout")
				return l, true, l.Warning()
			}
			// Undecodable entries fall through to recompute.
		} else if err != nil {
			opts.Logger.Warn("cache read failed", "key", cacheKey, "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	l, err := GenerateLayout(ctx, s, opts)
	if err != nil && !rnaerrors.IsWarning(err) {
		return nil, false, err
	}

	if data, mErr := MarshalLayout(l); mErr == nil {
		r.store(ctx, opts.Logger, "layout", cacheKey, data, cache.TTLLayout)
	}
	return l, false, err
}

// ComputeLayout is a convenience wrapper that discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, s *structure.Structure, opts Options) (*layout.Layout, error) {
	l, _, err := r.ComputeLayoutWithCacheInfo(ctx, s, opts)
	return l, err
}

// RenderWithCacheInfo renders every requested format of result.Scene and
// reports whether all of them came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, result *Result, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	if result.Scene == nil {
		return nil, false, rnaerrors.New(rnaerrors.ErrCodeInternal, "render called without a scene")
	}

	layoutHash := result.LayoutHash
	if layoutHash == "" {
		data, err := MarshalLayout(result.Layout)
		if err != nil {
			return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
		}
		layoutHash = cache.Hash(data)
	}
	// Layout JSON alone does not carry the sequence; scenes with equal
	// coordinates but different bases must not share artifacts.
	layoutHash = cache.Hash([]byte(layoutHash + result.StructureHash))

	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts := make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
			return artifacts, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	rendered, err := Render(ctx, result.Scene, result.Structure, result.Layout, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		r.store(ctx, opts.Logger, "artifact", key, data, cache.TTLArtifact)
	}
	return rendered, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// store writes a cache entry. Cache failures are logged and never fail a run.
func (r *Runner) store(ctx context.Context, logger *log.Logger, keyType, key string, data []byte, ttl time.Duration) {
	if r.TTL > 0 {
		ttl = r.TTL
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
// It must run before validation, which installs a discard logger.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
