package streaming

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"time"

	"github.com/klauspost/compress/zstd"

	"voxelview/internal/chunkapi"
	"voxelview/internal/world"
)

// RetryPolicy is exponential backoff: retry n waits BaseDelay·2^(n-1).
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// Delay returns the wait before the given 1-based retry.
func (p RetryPolicy) Delay(retry int) time.Duration {
	if retry < 1 {
		retry = 1
	}
	return p.BaseDelay << (retry - 1)
}

// FetchResult is the outcome of one chunk load. Exactly one of Grid and Err is set.
type FetchResult struct {
	Coord      world.ChunkCoord
	Grid       world.VoxelGrid
	Provenance Provenance
	Err        error
	Attempts   int
}

// FetcherConfig configures a Fetcher.
type FetcherConfig struct {
	Endpoint string
	// Params is the request template; the chunk coordinates are filled per fetch.
	Params  chunkapi.Params
	Timeout time.Duration
	Retry   RetryPolicy

	Client   *http.Client
	Cache    *ResponseCache
	Fallback Fallback
	Logger   *log.Logger
}

// Fetcher retrieves chunk voxels from the remote generator, retrying with
// backoff and falling back to local generation once retries run out.
// Requests run on their own goroutines; results come back through the loop.
type Fetcher struct {
	cfg  FetcherConfig
	life *Lifecycle
	loop *Loop
	size int
}

func NewFetcher(cfg FetcherConfig, life *Lifecycle, loop *Loop) (*Fetcher, error) {
	if cfg.Client == nil {
		cfg.Client = http.DefaultClient
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard, "", 0)
	}
	if cfg.Fallback == nil {
		return nil, errors.New("fetcher: no fallback generator")
	}
	if _, err := cfg.Params.URL(cfg.Endpoint); err != nil {
		return nil, err
	}
	return &Fetcher{cfg: cfg, life: life, loop: loop, size: cfg.Params.Size}, nil
}

// FetchJob is one load sequence for a chunk. It is driven from the render thread.
type FetchJob struct {
	f      *Fetcher
	coord  world.ChunkCoord
	url    string
	done   func(FetchResult)
	ctx    context.Context
	cancel context.CancelCauseFunc

	state    LoadState
	attempts int
	gen      int
	finished bool

	timeout Handle
	backoff Handle
	abort   context.CancelCauseFunc
}

// Fetch starts loading coord. done is called once on the render thread,
// unless the job is stopped with Cancel.
func (f *Fetcher) Fetch(coord world.ChunkCoord, done func(FetchResult)) *FetchJob {
	p := f.cfg.Params
	p.CX, p.CY, p.CZ = coord.X, 0, coord.Z
	url, _ := p.URL(f.cfg.Endpoint)

	ctx, cancel := context.WithCancelCause(f.life.Context())
	j := &FetchJob{f: f, coord: coord, url: url, done: done, ctx: ctx, cancel: cancel}
	j.attempt()
	return j
}

// State is Fetching, Retrying or FallbackGenerating while the job runs and
// Idle once it has finished.
func (j *FetchJob) State() LoadState { return j.state }

func (j *FetchJob) Attempts() int { return j.attempts }

// Cancel stops the job: pending timers are cancelled and the request is
// aborted. done is not called.
func (j *FetchJob) Cancel() {
	if j.finished {
		return
	}
	j.finished = true
	j.state = Idle
	j.stopTimers()
	j.cancel(ErrCancelled)
}

func (j *FetchJob) stopTimers() {
	j.f.life.Cancel(j.timeout)
	j.f.life.Cancel(j.backoff)
	j.timeout, j.backoff = 0, 0
}

func (j *FetchJob) attempt() {
	if j.ctx.Err() != nil {
		j.finish(FetchResult{Err: ErrCancelled})
		return
	}
	j.attempts++
	j.state = Fetching
	j.gen++
	gen := j.gen

	if grid, ok := j.f.cfg.Cache.Get(j.url); ok {
		j.f.loop.Post(func() { j.complete(gen, grid, nil, true) })
		return
	}

	actx, abort := context.WithCancelCause(j.ctx)
	j.abort = abort
	j.timeout = j.f.life.Schedule(j.f.cfg.Timeout, func() {
		j.timeout = 0
		abort(errAttemptTimeout)
	})
	go func() {
		grid, err := j.f.roundTrip(actx, j.url)
		j.f.loop.Post(func() { j.complete(gen, grid, err, false) })
	}()
}

func (j *FetchJob) complete(gen int, grid world.VoxelGrid, err error, cached bool) {
	if j.finished || gen != j.gen {
		return
	}
	j.f.life.Cancel(j.timeout)
	j.timeout = 0
	if j.abort != nil {
		j.abort(nil)
		j.abort = nil
	}
	if j.ctx.Err() != nil {
		j.finish(FetchResult{Err: ErrCancelled})
		return
	}
	if err == nil {
		if !cached {
			j.f.cfg.Cache.Put(j.url, grid)
		}
		j.finish(FetchResult{Grid: grid, Provenance: Remote})
		return
	}

	logger := j.f.cfg.Logger
	if IsRetryable(err) && j.attempts <= j.f.cfg.Retry.MaxRetries {
		delay := j.f.cfg.Retry.Delay(j.attempts)
		logger.Printf("chunk %v: attempt %d failed: %v; retrying in %v", j.coord, j.attempts, err, delay)
		j.state = Retrying
		j.backoff = j.f.life.Schedule(delay, func() {
			j.backoff = 0
			j.attempt()
		})
		return
	}
	logger.Printf("chunk %v: remote generator failed after %d attempts (%v); generating locally", j.coord, j.attempts, err)
	j.fallback()
}

func (j *FetchJob) fallback() {
	j.state = FallbackGenerating
	grid, err := j.f.cfg.Fallback.Generate(j.coord)
	if err == nil {
		err = grid.Validate(j.f.size)
	}
	if err != nil {
		j.finish(FetchResult{Err: &FallbackError{Err: err}})
		return
	}
	j.finish(FetchResult{Grid: grid, Provenance: Local})
}

func (j *FetchJob) finish(res FetchResult) {
	j.finished = true
	j.state = Idle
	j.stopTimers()
	j.cancel(nil)
	res.Coord = j.coord
	res.Attempts = j.attempts
	j.done(res)
}

// roundTrip performs one attempt. It runs off the render thread and must not
// touch job state.
func (f *Fetcher) roundTrip(ctx context.Context, url string) (world.VoxelGrid, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("Accept", chunkapi.ContentType)
	req.Header.Set("Accept-Encoding", "zstd")

	resp, err := f.cfg.Client.Do(req)
	if err != nil {
		return nil, attemptError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &TransportError{Status: resp.StatusCode}
	}

	var r io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "zstd" {
		zr, err := zstd.NewReader(resp.Body, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, &TransportError{Err: fmt.Errorf("zstd: %w", err)}
		}
		defer zr.Close()
		r = zr
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, attemptError(ctx, err)
	}
	if len(body) == 0 {
		return nil, ErrEmptyBody
	}
	if want := world.Volume(f.size); len(body) != want {
		return nil, &SizeMismatchError{Got: len(body), Want: want}
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err != nil || mt != chunkapi.ContentType {
			f.cfg.Logger.Printf("warning: chunk response content type %q, want %q", ct, chunkapi.ContentType)
		}
	}
	return body, nil
}

// attemptError classifies a transport failure: an attempt timeout is
// retryable, any other cancellation is not.
func attemptError(ctx context.Context, err error) error {
	cause := context.Cause(ctx)
	switch {
	case errors.Is(cause, errAttemptTimeout):
		return &TransportError{Err: errAttemptTimeout}
	case ctx.Err() != nil:
		return ErrCancelled
	}
	return &TransportError{Err: err}
}
