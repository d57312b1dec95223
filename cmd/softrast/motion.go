package main

import (
	"github.com/charmbracelet/harmonica"
)

// Axis is one degree of camera motion. Input adds velocity; a critically
// damped spring brings it back to rest so motion eases out instead of
// stopping dead.
type Axis struct {
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64
}

// NewAxis creates an axis decaying at the frame rate fps.
func NewAxis(fps int) Axis {
	return Axis{
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
	}
}

// Step returns the displacement for this frame and decays the velocity.
func (a *Axis) Step() float64 {
	d := a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
	return d
}

// Motion holds the camera's translation and rotation axes.
type Motion struct {
	Right, Up, Forward Axis
	Yaw, Pitch         Axis
	fps                int
}

// NewMotion creates a motion at rest, stepped at fps frames per second.
func NewMotion(fps int) *Motion {
	m := &Motion{fps: fps}
	m.Reset()
	return m
}

// Reset stops every axis.
func (m *Motion) Reset() {
	m.Right = NewAxis(m.fps)
	m.Up = NewAxis(m.fps)
	m.Forward = NewAxis(m.fps)
	m.Yaw = NewAxis(m.fps)
	m.Pitch = NewAxis(m.fps)
}

// Moving reports whether any axis still has noticeable velocity.
func (m *Motion) Moving() bool {
	const rest = 1e-3
	for _, a := range []*Axis{&m.Right, &m.Up, &m.Forward, &m.Yaw, &m.Pitch} {
		if a.Velocity > rest || a.Velocity < -rest {
			return true
		}
	}
	return false
}

// camera is the part of scene.Camera that Motion drives.
type camera interface {
	MoveSight(dx, dy, dz float64)
	RotateFromMouse(dx, dy float64)
}

// Apply moves cam by one frame of motion.
func (m *Motion) Apply(cam camera) {
	cam.RotateFromMouse(m.Yaw.Step(), m.Pitch.Step())
	cam.MoveSight(m.Right.Step(), m.Up.Step(), m.Forward.Step())
}
