package streaming

import (
	"sync"

	"github.com/klauspost/compress/zstd"

	"voxelview/internal/world"
)

// ResponseCache keeps validated chunk bodies by request URL. Bodies are
// immutable per URL, so entries never expire; the oldest is dropped once
// the cache is full. Entries are stored zstd-compressed.
type ResponseCache struct {
	mu      sync.Mutex
	max     int
	entries map[string][]byte
	order   []string

	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewResponseCache creates a cache holding up to max bodies. A max of zero
// or less disables caching.
func NewResponseCache(max int) (*ResponseCache, error) {
	c := &ResponseCache{max: max, entries: make(map[string][]byte)}
	if max <= 0 {
		return c, nil
	}
	var err error
	if c.enc, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest)); err != nil {
		return nil, err
	}
	if c.dec, err = zstd.NewReader(nil); err != nil {
		c.enc.Close()
		return nil, err
	}
	return c, nil
}

// Get returns a fresh copy of the body cached for url. A nil cache never hits.
func (c *ResponseCache) Get(url string) (world.VoxelGrid, bool) {
	if c == nil || c.max <= 0 {
		return nil, false
	}
	c.mu.Lock()
	packed, ok := c.entries[url]
	c.mu.Unlock()
	if !ok {
		return nil, false
	}
	body, err := c.dec.DecodeAll(packed, nil)
	if err != nil {
		return nil, false
	}
	return body, true
}

// Put stores body for url. Existing entries are kept as they are.
func (c *ResponseCache) Put(url string, body []byte) {
	if c == nil || c.max <= 0 {
		return
	}
	packed := c.enc.EncodeAll(body, make([]byte, 0, len(body)/8))

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[url]; ok {
		return
	}
	for len(c.order) >= c.max {
		delete(c.entries, c.order[0])
		c.order = c.order[1:]
	}
	c.entries[url] = packed
	c.order = append(c.order, url)
}

func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close releases the codec resources. The cache is empty afterwards.
func (c *ResponseCache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
	c.order = nil
	if c.enc != nil {
		c.enc.Close()
		c.dec.Close()
		c.enc, c.dec = nil, nil
		c.max = 0
	}
}
