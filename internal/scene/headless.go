package scene

import (
	"sync"
)

// HeadlessDevice is a Device without a GPU. It hands out handles and tracks
// which are live, so leaks and double frees are observable.
type HeadlessDevice struct {
	mu      sync.Mutex
	next    Handle
	live    map[Handle]string
	freed   int
	failure error
}

func NewHeadlessDevice() *HeadlessDevice {
	return &HeadlessDevice{live: make(map[Handle]string)}
}

// SetFailure makes subsequent uploads fail with err; nil restores success.
func (d *HeadlessDevice) SetFailure(err error) {
	d.mu.Lock()
	d.failure = err
	d.mu.Unlock()
}

func (d *HeadlessDevice) alloc(kind string) (Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failure != nil {
		return 0, d.failure
	}
	d.next++
	d.live[d.next] = kind
	return d.next, nil
}

func (d *HeadlessDevice) UploadGeometry(*Geometry) (Handle, error)       { return d.alloc("geometry") }
func (d *HeadlessDevice) UploadInstances(*InstancedMesh) (Handle, error) { return d.alloc("instances") }
func (d *HeadlessDevice) UploadLines(*LineBox) (Handle, error)           { return d.alloc("lines") }

func (d *HeadlessDevice) Free(h Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.live[h]; !ok {
		panic("scene: free of unknown or already freed handle")
	}
	delete(d.live, h)
	d.freed++
}

// Live returns the number of live handles of the given kind, or of all kinds
// when kind is empty.
func (d *HeadlessDevice) Live(kind string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if kind == "" {
		return len(d.live)
	}
	n := 0
	for _, k := range d.live {
		if k == kind {
			n++
		}
	}
	return n
}

// Freed returns the number of successful Free calls.
func (d *HeadlessDevice) Freed() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.freed
}
