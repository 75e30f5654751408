package streaming

import (
	"errors"
	"io"
	"log"
	"slices"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"voxelview/internal/profiling"
	"voxelview/internal/world"
)

// ControllerConfig holds the controller's geometry and pacing.
type ControllerConfig struct {
	ChunkSize  int
	ViewRadius int
	// KeepRadius is the Chebyshev distance beyond which chunks are evicted
	// and in-flight loads are cancelled.
	KeepRadius   int
	LoadStagger  time.Duration
	EvictStagger time.Duration
}

// load is a key between Queued and Live.
type load struct {
	key   world.ChunkKey
	state LoadState
	timer Handle
	job   *FetchJob
}

// Controller decides which chunks should exist around the camera, schedules
// their loads nearest first and evicts chunks that drift out of range.
type Controller struct {
	cfg     ControllerConfig
	life    *Lifecycle
	reg     *Registry
	fetcher *Fetcher
	mat     *Materializer
	log     *log.Logger

	hasLast bool
	last    world.ChunkCoord

	loads    map[world.ChunkKey]*load
	evicting map[world.ChunkKey]Handle
	stats    Stats
}

func NewController(cfg ControllerConfig, life *Lifecycle, reg *Registry, fetcher *Fetcher, mat *Materializer, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	c := &Controller{
		cfg:      cfg,
		life:     life,
		reg:      reg,
		fetcher:  fetcher,
		mat:      mat,
		log:      logger,
		loads:    make(map[world.ChunkKey]*load),
		evicting: make(map[world.ChunkKey]Handle),
	}
	life.OnDispose(c.dispose)
	return c
}

// Update observes the camera position and recomputes the desired set when
// the camera has entered a different chunk. It reports whether it did.
func (c *Controller) Update(pos mgl32.Vec3) bool {
	if c.life.Disposed() {
		return false
	}
	cc := world.ChunkOf(pos, c.cfg.ChunkSize)
	if c.hasLast && cc == c.last {
		return false
	}
	c.hasLast = true
	c.last = cc
	c.EnsureChunksAround(cc.X, cc.Z)
	return true
}

type candidate struct {
	key      world.ChunkKey
	priority float64
}

// EnsureChunksAround schedules loads for every missing chunk within the view
// radius of (cx, cz), highest priority first, and schedules removal of live
// chunks beyond the keep radius.
func (c *Controller) EnsureChunksAround(cx, cz int) {
	defer profiling.Track("streaming.EnsureChunksAround")()
	if c.life.Disposed() {
		return
	}
	center := world.KeyOf(cx, cz)
	c.cancelOutOfRange(center)

	r := c.cfg.ViewRadius
	var cands []candidate
	for dx := -r; dx <= r; dx++ {
		for dz := -r; dz <= r; dz++ {
			k := world.KeyOf(cx+dx, cz+dz)
			if c.reg.Has(k) || c.reg.InFlight(k) {
				continue
			}
			cands = append(cands, candidate{key: k, priority: max(0, float64(r)-world.Euclidean(dx, dz))})
		}
	}
	slices.SortStableFunc(cands, func(a, b candidate) int {
		switch {
		case a.priority > b.priority:
			return -1
		case a.priority < b.priority:
			return 1
		}
		return 0
	})
	for i, cand := range cands {
		c.enqueue(cand.key, time.Duration(i)*c.cfg.LoadStagger)
	}

	var removals []world.ChunkKey
	for _, rec := range c.reg.Snapshot() {
		if _, pending := c.evicting[rec.Key]; pending {
			continue
		}
		if world.Chebyshev(rec.Key, center) > c.cfg.KeepRadius {
			removals = append(removals, rec.Key)
		}
	}
	for i, k := range removals {
		c.scheduleEviction(k, time.Duration(i)*c.cfg.EvictStagger)
	}
}

// LoadChunkAt requests a single chunk immediately. It reports false when the
// chunk is already live, already loading, or the controller is disposed.
func (c *Controller) LoadChunkAt(cx, cz int) bool {
	k := world.KeyOf(cx, cz)
	if c.life.Disposed() || c.reg.Has(k) || c.reg.InFlight(k) {
		return false
	}
	c.enqueue(k, 0)
	return true
}

func (c *Controller) enqueue(k world.ChunkKey, delay time.Duration) {
	l := &load{key: k, state: Queued}
	c.reg.MarkInFlight(k)
	c.loads[k] = l
	l.timer = c.life.Schedule(delay, func() {
		l.timer = 0
		c.startFetch(l)
	})
}

func (c *Controller) startFetch(l *load) {
	if c.life.Disposed() || c.loads[l.key] != l {
		return
	}
	l.state = Fetching
	l.job = c.fetcher.Fetch(l.key, func(res FetchResult) { c.onFetched(l, res) })
}

func (c *Controller) onFetched(l *load, res FetchResult) {
	if c.life.Disposed() || c.loads[l.key] != l {
		return
	}
	if res.Err != nil {
		c.finishLoad(l)
		if errors.Is(res.Err, ErrCancelled) {
			c.stats.Cancellations++
			return
		}
		c.stats.Failures++
		c.log.Printf("chunk %v: load failed: %v", l.key, res.Err)
		return
	}

	l.state = Materializing
	node, err := c.mat.Build(l.key, res.Grid, res.Provenance)
	if err != nil {
		c.finishLoad(l)
		c.stats.Failures++
		c.log.Printf("chunk %v: %v", l.key, err)
		return
	}
	rec := &Record{Key: l.key, Node: node, Origin: node.Position, Provenance: res.Provenance}
	if err := c.reg.Publish(rec); err != nil {
		node.Release()
		c.finishLoad(l)
		c.stats.Failures++
		c.log.Printf("chunk %v: %v", l.key, err)
		return
	}
	c.finishLoad(l)
	if res.Provenance == Local {
		c.stats.LocalLoads++
	} else {
		c.stats.RemoteLoads++
	}
}

func (c *Controller) finishLoad(l *load) {
	delete(c.loads, l.key)
	c.reg.ClearInFlight(l.key)
}

func (c *Controller) cancelLoad(l *load) {
	c.life.Cancel(l.timer)
	if l.job != nil {
		l.job.Cancel()
	}
	c.finishLoad(l)
	c.stats.Cancellations++
}

func (c *Controller) cancelOutOfRange(center world.ChunkKey) {
	for k, l := range c.loads {
		if world.Chebyshev(k, center) > c.cfg.KeepRadius {
			c.cancelLoad(l)
		}
	}
}

func (c *Controller) scheduleEviction(k world.ChunkKey, delay time.Duration) {
	c.evicting[k] = c.life.Schedule(delay, func() {
		delete(c.evicting, k)
		if !c.reg.Has(k) {
			return
		}
		if c.hasLast && world.Chebyshev(k, c.last) <= c.cfg.KeepRadius {
			return
		}
		c.reg.Remove(k)
		c.stats.Evictions++
	})
}

// State reports where key is in its load sequence.
func (c *Controller) State(k world.ChunkKey) LoadState {
	if l, ok := c.loads[k]; ok {
		if l.job != nil && l.state == Fetching {
			if s := l.job.State(); s != Idle {
				return s
			}
		}
		return l.state
	}
	if _, ok := c.evicting[k]; ok {
		return Evicting
	}
	if c.reg.Has(k) {
		return Live
	}
	return Idle
}

func (c *Controller) Stats() Stats {
	s := c.stats
	s.Live = c.reg.Len()
	s.InFlight = c.reg.InFlightLen()
	s.PendingTimers = c.life.Pending()
	return s
}

// dispose runs after the lifecycle has cancelled timers and requests.
func (c *Controller) dispose() {
	for _, l := range c.loads {
		if l.job != nil {
			l.job.Cancel()
		}
	}
	clear(c.loads)
	clear(c.evicting)
	c.reg.ResetInFlight()

	if n := c.reg.ReleaseAll(); n > 0 {
		c.log.Printf("released %d chunks", n)
	}
	c.mat.Release()
}
