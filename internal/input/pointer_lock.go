package input

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

// Cursor is the part of a window pointer lock needs.
type Cursor interface {
	SetInputMode(mode glfw.InputMode, value int)
}

// PointerLock captures the cursor and turns cursor motion into look deltas
// while locked.
type PointerLock struct {
	cursor Cursor
	onLook func(dx, dy float64)

	locked     bool
	firstMouse bool
	lastX      float64
	lastY      float64
}

func NewPointerLock(c Cursor, onLook func(dx, dy float64)) *PointerLock {
	return &PointerLock{cursor: c, onLook: onLook}
}

func (p *PointerLock) IsLocked() bool { return p.locked }

func (p *PointerLock) Lock() {
	if p.locked {
		return
	}
	p.cursor.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	p.locked = true
	p.firstMouse = true
}

func (p *PointerLock) Unlock() {
	if !p.locked {
		return
	}
	p.cursor.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	p.locked = false
}

// HandleCursor reports movement since the previous position. The first
// event after locking only records the position.
func (p *PointerLock) HandleCursor(x, y float64) {
	if !p.locked {
		return
	}
	if p.firstMouse {
		p.lastX, p.lastY = x, y
		p.firstMouse = false
		return
	}
	dx, dy := x-p.lastX, y-p.lastY
	p.lastX, p.lastY = x, y
	if p.onLook != nil {
		p.onLook(dx, dy)
	}
}

// Attach locks on left click, unlocks on Escape, and feeds cursor motion.
// keys receives all other key events.
func (p *PointerLock) Attach(w *glfw.Window, keys *KeyState) {
	w.SetCursorPosCallback(func(w *glfw.Window, x, y float64) {
		p.HandleCursor(x, y)
	})
	w.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if button == glfw.MouseButtonLeft && action == glfw.Press {
			p.Lock()
		}
	})
	w.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			p.Unlock()
			keys.Reset()
			return
		}
		keys.HandleKeyEvent(key, action)
	})
}

// Release unlocks the cursor and removes the callbacks installed by Attach.
func (p *PointerLock) Release(w *glfw.Window) {
	p.Unlock()
	w.SetCursorPosCallback(nil)
	w.SetMouseButtonCallback(nil)
}
