// Package input tracks held keys by code name and manages pointer lock.
package input

import (
	"sync"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// Key codes the viewer reacts to.
const (
	KeyW      = "KeyW"
	KeyA      = "KeyA"
	KeyS      = "KeyS"
	KeyD      = "KeyD"
	Space     = "Space"
	ShiftLeft = "ShiftLeft"
)

var codes = map[glfw.Key]string{
	glfw.KeyW:         KeyW,
	glfw.KeyA:         KeyA,
	glfw.KeyS:         KeyS,
	glfw.KeyD:         KeyD,
	glfw.KeySpace:     Space,
	glfw.KeyLeftShift: ShiftLeft,
}

// CodeOf returns the code name for a physical key.
func CodeOf(key glfw.Key) (string, bool) {
	c, ok := codes[key]
	return c, ok
}

// KeyState is the keys[code] → held table.
type KeyState struct {
	mu   sync.RWMutex
	keys map[string]bool
}

func NewKeyState() *KeyState {
	return &KeyState{keys: make(map[string]bool)}
}

// HandleKeyEvent updates state from a GLFW key event. Unknown keys are ignored.
func (k *KeyState) HandleKeyEvent(key glfw.Key, action glfw.Action) {
	code, ok := CodeOf(key)
	if !ok {
		return
	}
	k.Set(code, action == glfw.Press || action == glfw.Repeat)
}

func (k *KeyState) Set(code string, down bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.keys[code] = down
}

func (k *KeyState) Pressed(code string) bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.keys[code]
}

// Reset releases every key.
func (k *KeyState) Reset() {
	k.mu.Lock()
	defer k.mu.Unlock()
	clear(k.keys)
}

// Release removes the callback and forgets held keys.
func (k *KeyState) Release(w *glfw.Window) {
	w.SetKeyCallback(nil)
	k.Reset()
}
