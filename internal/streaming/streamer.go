// Package streaming keeps the chunks around the camera loaded. It fetches
// voxel grids from the remote generator, falls back to local generation,
// turns grids into GPU batches and evicts chunks that fall out of range.
//
// Everything except the HTTP round trips runs on the render thread: I/O
// goroutines post their results to a Loop which the frame loop drains with
// Streamer.Pump.
package streaming

import (
	"io"
	"log"
	"math/rand/v2"
	"net/http"

	"github.com/go-gl/mathgl/mgl32"

	"voxelview/internal/chunkapi"
	"voxelview/internal/config"
	"voxelview/internal/scene"
)

type options struct {
	client   *http.Client
	sched    Scheduler
	logger   *log.Logger
	fallback Fallback
	rng      *rand.Rand
}

// Option customizes a Streamer.
type Option func(*options)

func WithHTTPClient(c *http.Client) Option { return func(o *options) { o.client = c } }

// WithScheduler replaces the wall-clock scheduler, e.g. with a manual clock in tests.
func WithScheduler(s Scheduler) Option { return func(o *options) { o.sched = s } }

func WithLogger(l *log.Logger) Option { return func(o *options) { o.logger = l } }

// WithFallback replaces the local generator.
func WithFallback(f Fallback) Option { return func(o *options) { o.fallback = f } }

// WithRand seeds the stock fallback generator's dirt depth.
func WithRand(r *rand.Rand) Option { return func(o *options) { o.rng = r } }

// Streamer is one viewer's streaming scope. Two streamers share nothing.
type Streamer struct {
	loop  *Loop
	life  *Lifecycle
	reg   *Registry
	ctrl  *Controller
	cache *ResponseCache
	root  *scene.Group
}

// New attaches a chunk group under sc.World and wires the streaming
// components from cfg.
func New(cfg config.Config, sc *scene.Context, opts ...Option) (*Streamer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := options{client: http.DefaultClient}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard, "", 0)
	}
	if o.fallback == nil {
		o.fallback = NewFallback(cfg, o.rng)
	}

	loop := NewLoop()
	if o.sched == nil {
		o.sched = NewTimerScheduler(loop)
	}
	life := NewLifecycle(o.sched)

	cache, err := NewResponseCache(cfg.Fetch.CacheEntries)
	if err != nil {
		return nil, err
	}
	fetcher, err := NewFetcher(FetcherConfig{
		Endpoint: cfg.Endpoint,
		Params: chunkapi.Params{
			Size:           cfg.ChunkSize,
			Seed:           cfg.WorldSeed,
			Base:           cfg.Base(),
			SurfaceScale:   cfg.Generator.SurfaceScale,
			CavesScale:     cfg.Generator.CavesScale,
			CavesThreshold: cfg.Generator.CavesThreshold,
			GrassDepth:     cfg.Generator.GrassDepth,
			DirtDepth:      cfg.Generator.DirtDepth,
		},
		Timeout:  cfg.Fetch.Timeout,
		Retry:    RetryPolicy{MaxRetries: cfg.Fetch.MaxRetries, BaseDelay: cfg.Fetch.BackoffBase},
		Client:   o.client,
		Cache:    cache,
		Fallback: o.fallback,
		Logger:   o.logger,
	}, life, loop)
	if err != nil {
		cache.Close()
		return nil, err
	}

	root := scene.NewGroup("chunks")
	sc.World.Add(root)
	reg := NewRegistry(root)
	mat := NewMaterializer(sc, cfg.ChunkSize, cfg.DebugHull.Opacity)
	ctrl := NewController(ControllerConfig{
		ChunkSize:    cfg.ChunkSize,
		ViewRadius:   cfg.ViewRadius,
		KeepRadius:   cfg.KeepRadius(),
		LoadStagger:  cfg.Fetch.LoadStagger,
		EvictStagger: cfg.Fetch.EvictStagger,
	}, life, reg, fetcher, mat, o.logger)

	life.OnDispose(func() {
		root.Detach()
		cache.Close()
	})

	return &Streamer{loop: loop, life: life, reg: reg, ctrl: ctrl, cache: cache, root: root}, nil
}

// Update is the per-frame camera hook.
func (s *Streamer) Update(pos mgl32.Vec3) { s.ctrl.Update(pos) }

// Pump runs queued I/O continuations and timer callbacks.
func (s *Streamer) Pump() int { return s.loop.Drain() }

// Wake is signalled when there is work for Pump.
func (s *Streamer) Wake() <-chan struct{} { return s.loop.Wake() }

func (s *Streamer) Controller() *Controller { return s.ctrl }
func (s *Streamer) Registry() *Registry     { return s.reg }
func (s *Streamer) Lifecycle() *Lifecycle   { return s.life }
func (s *Streamer) Stats() Stats            { return s.ctrl.Stats() }

// Dispose cancels all outstanding work and releases every chunk. It is idempotent.
func (s *Streamer) Dispose() { s.life.Dispose() }
