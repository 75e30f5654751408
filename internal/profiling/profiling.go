// Package profiling is a lightweight per-frame CPU profiler.
//
// Usage: defer profiling.Track("streaming.EnsureChunksAround")()
package profiling

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Sample is the accumulated time spent under one name in the current frame.
type Sample struct {
	Name  string
	Total time.Duration
	Calls int
}

var (
	mu     sync.Mutex
	frame  = make(map[string]*Sample)
	frames uint64
)

// Track returns a stop function that records the elapsed time under name.
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		s, ok := frame[name]
		if !ok {
			s = &Sample{Name: name}
			frame[name] = s
		}
		s.Total += d
		s.Calls++
		mu.Unlock()
	}
}

// ResetFrame clears the current totals. Call at the start of each frame.
func ResetFrame() {
	mu.Lock()
	clear(frame)
	frames++
	mu.Unlock()
}

// Frames returns how many times ResetFrame has been called.
func Frames() uint64 {
	mu.Lock()
	defer mu.Unlock()
	return frames
}

// Snapshot returns the current samples, slowest first.
func Snapshot() []Sample {
	mu.Lock()
	out := make([]Sample, 0, len(frame))
	for _, s := range frame {
		out = append(out, *s)
	}
	mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// TopN formats the n slowest entries of the current frame,
// e.g. "streaming.Materialize:4.2ms(3), streaming.Drain:2.1ms(1)".
func TopN(n int) string {
	samples := Snapshot()
	if n > len(samples) {
		n = len(samples)
	}
	parts := make([]string, 0, n)
	for _, s := range samples[:n] {
		ms := float64(s.Total.Microseconds()) / 1000.0
		parts = append(parts, s.Name+":"+strconv.FormatFloat(ms, 'f', 1, 64)+"ms("+strconv.Itoa(s.Calls)+")")
	}
	return strings.Join(parts, ", ")
}
