package streaming

import (
	"bytes"
	"testing"
)

func TestResponseCacheRoundTrip(t *testing.T) {
	c, err := NewResponseCache(4)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	body := bytes.Repeat([]byte{1, 1, 2, 3}, 1024)
	c.Put("u1", body)
	got, ok := c.Get("u1")
	if !ok || !bytes.Equal(got, body) {
		t.Fatal("expected cached body back")
	}

	// Callers may mutate what they get.
	got[0] = 9
	again, _ := c.Get("u1")
	if again[0] != 1 {
		t.Error("expected cache entries to be immutable")
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss")
	}
}

func TestResponseCacheFIFO(t *testing.T) {
	c, err := NewResponseCache(2)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	c.Put("a", []byte{1})
	c.Put("b", []byte{2})
	c.Put("a", []byte{9})
	c.Put("c", []byte{3})

	if _, ok := c.Get("a"); ok {
		t.Error("expected oldest entry dropped")
	}
	if v, ok := c.Get("b"); !ok || v[0] != 2 {
		t.Error("expected b kept")
	}
	if c.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", c.Len())
	}
}

func TestResponseCacheDisabled(t *testing.T) {
	c, err := NewResponseCache(0)
	if err != nil {
		t.Fatal(err)
	}
	c.Put("a", []byte{1})
	if _, ok := c.Get("a"); ok {
		t.Error("expected disabled cache to miss")
	}

	var nilCache *ResponseCache
	nilCache.Put("a", []byte{1})
	if _, ok := nilCache.Get("a"); ok {
		t.Error("expected nil cache to miss")
	}
}
