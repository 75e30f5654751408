// Package player is the free-flying viewer camera.
package player

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Keys reports whether a key, by code name, is held.
type Keys interface {
	Pressed(code string) bool
}

// Camera is a fly camera with yaw/pitch mouse look.
type Camera struct {
	Position mgl32.Vec3
	Yaw      float64 // degrees, -90 looks down -Z
	Pitch    float64 // degrees, clamped to ±89

	Speed       float32 // world units per second
	MaxDelta    float64 // seconds; longer frames are clamped
	Sensitivity float64
}

func NewCamera(pos mgl32.Vec3, speed float32, maxDelta float64) *Camera {
	return &Camera{
		Position:    pos,
		Yaw:         -90,
		Speed:       speed,
		MaxDelta:    maxDelta,
		Sensitivity: 0.1,
	}
}

// Front is the unit view direction.
func (c *Camera) Front() mgl32.Vec3 {
	y := mgl32.DegToRad(float32(c.Yaw))
	p := mgl32.DegToRad(float32(c.Pitch))
	fx := float32(math.Cos(float64(y)) * math.Cos(float64(p)))
	fy := float32(math.Sin(float64(p)))
	fz := float32(math.Sin(float64(y)) * math.Cos(float64(p)))
	return mgl32.Vec3{fx, fy, fz}.Normalize()
}

// forward is the view direction flattened onto the ground plane.
func (c *Camera) forward() mgl32.Vec3 {
	y := float64(mgl32.DegToRad(float32(c.Yaw)))
	return mgl32.Vec3{float32(math.Cos(y)), 0, float32(math.Sin(y))}
}

// MoveForward moves parallel to the ground along the view direction.
func (c *Camera) MoveForward(d float32) {
	c.Position = c.Position.Add(c.forward().Mul(d))
}

// MoveRight strafes parallel to the ground.
func (c *Camera) MoveRight(d float32) {
	right := c.forward().Cross(mgl32.Vec3{0, 1, 0}).Normalize()
	c.Position = c.Position.Add(right.Mul(d))
}

// Look turns the camera by a cursor delta in pixels.
func (c *Camera) Look(dx, dy float64) {
	c.Yaw += dx * c.Sensitivity
	c.Pitch -= dy * c.Sensitivity
	c.Pitch = max(-89, min(89, c.Pitch))
}

// Step applies one frame of WASD/Space/ShiftLeft movement. dt is clamped to MaxDelta.
func (c *Camera) Step(keys Keys, dt float64) {
	if c.MaxDelta > 0 && dt > c.MaxDelta {
		dt = c.MaxDelta
	}
	d := c.Speed * float32(dt)
	if keys.Pressed("KeyW") {
		c.MoveForward(d)
	}
	if keys.Pressed("KeyS") {
		c.MoveForward(-d)
	}
	if keys.Pressed("KeyD") {
		c.MoveRight(d)
	}
	if keys.Pressed("KeyA") {
		c.MoveRight(-d)
	}
	if keys.Pressed("Space") {
		c.Position[1] += d
	}
	if keys.Pressed("ShiftLeft") {
		c.Position[1] -= d
	}
}

func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front()), mgl32.Vec3{0, 1, 0})
}
