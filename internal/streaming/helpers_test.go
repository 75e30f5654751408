package streaming

import (
	"bytes"
	"context"
	"io"
	"math/rand/v2"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"voxelview/internal/chunkapi"
	"voxelview/internal/config"
	"voxelview/internal/scene"
	"voxelview/internal/world"
)

// manualScheduler is a Scheduler driven by an explicit clock.
type manualScheduler struct {
	now    time.Duration
	next   Handle
	timers map[Handle]*manualTimer
}

type manualTimer struct {
	at time.Duration
	h  Handle
	fn func()
}

func newManualScheduler() *manualScheduler {
	return &manualScheduler{timers: make(map[Handle]*manualTimer)}
}

func (s *manualScheduler) Schedule(delay time.Duration, fn func()) Handle {
	s.next++
	s.timers[s.next] = &manualTimer{at: s.now + delay, h: s.next, fn: fn}
	return s.next
}

func (s *manualScheduler) Cancel(h Handle) { delete(s.timers, h) }

func (s *manualScheduler) Pending() int { return len(s.timers) }

// Advance moves the clock forward by d, firing due timers in order,
// including ones scheduled by earlier callbacks within the window.
func (s *manualScheduler) Advance(d time.Duration) {
	target := s.now + d
	for {
		var due *manualTimer
		for _, t := range s.timers {
			if t.at > target {
				continue
			}
			if due == nil || t.at < due.at || (t.at == due.at && t.h < due.h) {
				due = t
			}
		}
		if due == nil {
			break
		}
		delete(s.timers, due.h)
		s.now = due.at
		due.fn()
	}
	s.now = target
}

// scriptedTransport answers chunk requests from a script and counts calls
// per chunk.
type scriptedTransport struct {
	mu      sync.Mutex
	calls   map[world.ChunkKey]int
	order   []world.ChunkKey
	respond func(ctx context.Context, p chunkapi.Params, call int) (*http.Response, error)
}

func newTransport(respond func(ctx context.Context, p chunkapi.Params, call int) (*http.Response, error)) *scriptedTransport {
	return &scriptedTransport{calls: make(map[world.ChunkKey]int), respond: respond}
}

func (t *scriptedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	p, err := chunkapi.ParseParams(req.URL.Query())
	if err != nil {
		return nil, err
	}
	k := world.KeyOf(p.CX, p.CZ)
	t.mu.Lock()
	t.calls[k]++
	n := t.calls[k]
	t.order = append(t.order, k)
	t.mu.Unlock()
	return t.respond(req.Context(), p, n)
}

func (t *scriptedTransport) Calls(k world.ChunkKey) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls[k]
}

func (t *scriptedTransport) Total() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.order)
}

func (t *scriptedTransport) Order() []world.ChunkKey {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]world.ChunkKey(nil), t.order...)
}

func response(status int, body []byte) *http.Response {
	return &http.Response{
		StatusCode:    status,
		Header:        http.Header{"Content-Type": {chunkapi.ContentType}},
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
	}
}

func solid(size int, b world.BlockType) []byte {
	g := world.NewVoxelGrid(size)
	g.Fill(b)
	return g
}

func stoneEverywhere(_ context.Context, p chunkapi.Params, _ int) (*http.Response, error) {
	return response(http.StatusOK, solid(p.Size, world.BlockTypeStone)), nil
}

func testConfig(radius int) config.Config {
	cfg := config.Defaults()
	cfg.ChunkSize = 16
	cfg.ViewRadius = radius
	cfg.Endpoint = "http://chunks.test" + chunkapi.Path
	return cfg
}

type harness struct {
	t     *testing.T
	cfg   config.Config
	sched *manualScheduler
	tr    *scriptedTransport
	dev   *scene.HeadlessDevice
	sc    *scene.Context
	s     *Streamer
}

func newHarness(t *testing.T, cfg config.Config, tr *scriptedTransport, opts ...Option) *harness {
	t.Helper()
	dev := scene.NewHeadlessDevice()
	sc, err := scene.NewContext(dev, scene.DefaultMaterials())
	if err != nil {
		t.Fatal(err)
	}
	sched := newManualScheduler()
	opts = append([]Option{
		WithScheduler(sched),
		WithHTTPClient(&http.Client{Transport: tr}),
		WithRand(rand.New(rand.NewPCG(1, 2))),
	}, opts...)
	s, err := New(cfg, sc, opts...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Dispose)
	return &harness{t: t, cfg: cfg, sched: sched, tr: tr, dev: dev, sc: sc, s: s}
}

// pumpUntil drains the loop until cond holds, failing after two seconds.
func (h *harness) pumpUntil(what string, cond func() bool) {
	h.t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		h.s.Pump()
		if cond() {
			return
		}
		select {
		case <-h.s.Wake():
		case <-time.After(10 * time.Millisecond):
		case <-deadline:
			h.t.Fatalf("timed out waiting for %s; stats %+v", what, h.s.Stats())
		}
	}
}

func (h *harness) state(cx, cz int) LoadState {
	return h.s.Controller().State(world.KeyOf(cx, cz))
}

func (h *harness) liveKeys() []world.ChunkKey {
	var keys []world.ChunkKey
	for _, rec := range h.s.Registry().Snapshot() {
		keys = append(keys, rec.Key)
	}
	return keys
}

func hullOf(t *testing.T, rec *Record) *scene.LineBox {
	t.Helper()
	for _, n := range rec.Node.Children() {
		if l, ok := n.(*scene.LineBox); ok {
			return l
		}
	}
	t.Fatalf("chunk %v has no hull", rec.Key)
	return nil
}

func sortKeys(keys []world.ChunkKey) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].X != keys[j].X {
			return keys[i].X < keys[j].X
		}
		return keys[i].Z < keys[j].Z
	})
}
