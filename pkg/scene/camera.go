package scene

import (
	"fmt"

	"github.com/taigrr/softrast/pkg/math3d"
)

// Camera movement sensitivities.
const (
	// MoveStep is the distance travelled per unit of MoveSight delta.
	MoveStep = 0.1
	// RotStep is the angle in radians per unit of mouse delta.
	RotStep = 0.001
)

// Camera is a pinhole camera looking down its local -z axis.
type Camera struct {
	Pos        math3d.Vec3
	ZNear      float64
	CanvasSide float64

	// sightRot turns world objects into the camera's view. It is the
	// inverse of the camera's own rotation: rot * sightRot == identity.
	sightRot math3d.Rotation
}

// NewCamera returns the default camera.
func NewCamera() Camera {
	return Camera{
		Pos:        math3d.V3(1, 1, 12),
		ZNear:      0.5,
		CanvasSide: 0.1,
		sightRot:   math3d.IdentityRotation(),
	}
}

// Rot is the rotation of the camera itself. The camera points towards
// -Rot().W and its up vector is Rot().V.
func (c *Camera) Rot() math3d.Rotation {
	return c.sightRot.Inv()
}

// SightRot returns the world-to-view rotation.
func (c *Camera) SightRot() math3d.Rotation {
	return c.sightRot
}

// SetSightRot replaces the world-to-view rotation.
func (c *Camera) SetSightRot(r math3d.Rotation) {
	c.sightRot = r
}

// ResetRot looks straight down -z again.
func (c *Camera) ResetRot() {
	c.sightRot = math3d.IdentityRotation()
}

// RotateFromMouse applies a yaw of dx and a pitch of dy, in mouse units.
func (c *Camera) RotateFromMouse(dx, dy float64) {
	// Objects turn the opposite way of the camera.
	c.sightRot = math3d.FromAngles(0, dx*RotStep, 0).
		Mul(c.sightRot).
		Mul(math3d.FromAngles(dy*RotStep, 0, 0))
}

// MoveSight moves along the camera's own axes: dx left to right, dy bottom
// to top, dz back to front.
func (c *Camera) MoveSight(dx, dy, dz float64) {
	rot := c.Rot()
	delta := rot.U.Scale(dx).Add(rot.V.Scale(dy)).Sub(rot.W.Scale(dz))
	c.Pos = c.Pos.Add(delta.Scale(MoveStep))
}

// WorldToSight expresses a world point in camera space.
func (c *Camera) WorldToSight(p math3d.Vec3) math3d.Vec3 {
	return p.Sub(c.Pos).MulRot(c.sightRot)
}

// ViewProj returns a matrix equivalent to the rasterizer's projection for
// a viewport of the given width/height ratio. Clip depth runs from 0 at
// ZNear to 1 at far.
func (c *Camera) ViewProj(ratio, far float64) math3d.Mat4 {
	f := c.ZNear / c.CanvasSide
	sx, sy := f, f
	if ratio > 1 {
		sx /= ratio
	} else {
		sy *= ratio
	}
	view := c.sightRot.Mat4().Mul(math3d.Translate(c.Pos.Negate()))
	return math3d.Perspective(sx, sy, c.ZNear, far).Mul(view)
}

func (c *Camera) String() string {
	return fmt.Sprintf("pos (%.2f, %.2f, %.2f) sight %v", c.Pos.X, c.Pos.Y, c.Pos.Z, c.sightRot)
}
