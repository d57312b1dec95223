package math3d

import (
	"fmt"
	"math"
)

// Rotation is a 3x3 rotation matrix stored as the unit vectors of the
// rotated basis.
type Rotation struct {
	U, V, W Vec3
}

// IdentityRotation returns the identity basis.
func IdentityRotation() Rotation {
	return Rotation{
		U: Vec3{1, 0, 0},
		V: Vec3{0, 1, 0},
		W: Vec3{0, 0, 1},
	}
}

// FromAngles builds the rotation around the y axis, then the x axis, then
// the z axis (rot_z * rot_x * rot_y).
func FromAngles(x, y, z float64) Rotation {
	xs, xc := math.Sincos(x)
	ys, yc := math.Sincos(y)
	zs, zc := math.Sincos(z)

	return Rotation{
		U: Vec3{
			zc*yc + zs*xs*ys,
			zs * xc,
			zc*-ys + zs*xs*yc,
		},
		V: Vec3{
			-zs*yc + zc*xs*ys,
			zc * xc,
			-zs*-ys + zc*xs*yc,
		},
		W: Vec3{xc * ys, -xs, xc * yc},
	}
}

// Det returns the determinant.
func (r Rotation) Det() float64 {
	return r.U.X*r.V.Y*r.W.Z +
		r.V.X*r.W.Y*r.U.Z +
		r.W.X*r.U.Y*r.V.Z -
		r.W.X*r.V.Y*r.U.Z -
		r.W.Y*r.V.Z*r.U.X -
		r.W.Z*r.V.X*r.U.Y
}

// Inv returns the adjugate scaled by the determinant. For an orthonormal
// basis (det = ±1) this is the inverse.
func (r Rotation) Inv() Rotation {
	adj := Rotation{
		U: Vec3{
			r.V.Y*r.W.Z - r.W.Y*r.V.Z,
			r.W.Y*r.U.Z - r.U.Y*r.W.Z,
			r.U.Y*r.V.Z - r.V.Y*r.U.Z,
		},
		V: Vec3{
			r.W.X*r.V.Z - r.V.X*r.W.Z,
			r.U.X*r.W.Z - r.U.Z*r.W.X,
			r.V.X*r.U.Z - r.U.X*r.V.Z,
		},
		W: Vec3{
			r.V.X*r.W.Y - r.V.Y*r.W.X,
			r.W.X*r.U.Y - r.U.X*r.W.Y,
			r.U.X*r.V.Y - r.V.X*r.U.Y,
		},
	}
	return adj.Scale(r.Det())
}

// Scale multiplies every basis vector by s.
func (r Rotation) Scale(s float64) Rotation {
	return Rotation{U: r.U.Scale(s), V: r.V.Scale(s), W: r.W.Scale(s)}
}

// Mul returns a * b: each row of a is carried through b's basis.
//
//nolint:st1016 // a*b naming convention is clearer for matrix multiplication
func (a Rotation) Mul(b Rotation) Rotation {
	return Rotation{
		U: a.U.MulRot(b),
		V: a.V.MulRot(b),
		W: a.W.MulRot(b),
	}
}

// Mat4 returns the matrix m such that m.MulPoint(p) == p.MulRot(r).
func (r Rotation) Mat4() Mat4 {
	return Mat4{
		r.U.X, r.U.Y, r.U.Z, 0,
		r.V.X, r.V.Y, r.V.Z, 0,
		r.W.X, r.W.Y, r.W.Z, 0,
		0, 0, 0, 1,
	}
}

func (r Rotation) String() string {
	return fmt.Sprintf("[%.3f %.3f %.3f | %.3f %.3f %.3f | %.3f %.3f %.3f]",
		r.U.X, r.U.Y, r.U.Z, r.V.X, r.V.Y, r.V.Z, r.W.X, r.W.Y, r.W.Z)
}
