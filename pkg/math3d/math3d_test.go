package math3d

import (
	"math"
	"testing"
)

const eps = 1e-9

func vecNear(a, b Vec3, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Vec3
		want Vec3
	}{
		{"already unit", V3(0, 1, 0), V3(0, 1, 0)},
		{"zero", V3(0, 0, 0), V3(0, 0, 0)},
		{"axis", V3(0, 0, -5), V3(0, 0, -1)},
		{"diagonal", V3(3, 4, 0), V3(0.6, 0.8, 0)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.in.Normalize()
			if !vecNear(got, tc.want, eps) {
				t.Errorf("Normalize(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestCross(t *testing.T) {
	got := V3(1, 0, 0).Cross(V3(0, 1, 0))
	if got != V3(0, 0, 1) {
		t.Errorf("x cross y = %v, want z", got)
	}
}

func TestFromAnglesIsOrthonormal(t *testing.T) {
	angles := [][3]float64{
		{0, 0, 0},
		{0.3, 0, 0},
		{0, 1.2, 0},
		{0, 0, -math.Pi / 3},
		{0.4, -0.7, 2.1},
	}

	for _, a := range angles {
		r := FromAngles(a[0], a[1], a[2])
		if d := r.Det(); math.Abs(d-1) > 1e-9 {
			t.Errorf("det(FromAngles%v) = %v, want 1", a, d)
		}
		for _, v := range []Vec3{r.U, r.V, r.W} {
			if math.Abs(v.Len()-1) > 1e-9 {
				t.Errorf("FromAngles%v basis vector %v is not unit", a, v)
			}
		}
	}
}

func TestFromAnglesYaw(t *testing.T) {
	// A quarter turn around y sends x onto -z.
	r := FromAngles(0, math.Pi/2, 0)
	got := V3(1, 0, 0).MulRot(r)
	if !vecNear(got, V3(0, 0, -1), 1e-12) {
		t.Errorf("x * yaw(pi/2) = %v, want (0,0,-1)", got)
	}
}

func TestInvIsInverse(t *testing.T) {
	r := FromAngles(0.4, -0.7, 2.1)
	id := r.Mul(r.Inv())
	want := IdentityRotation()

	for i, pair := range [][2]Vec3{{id.U, want.U}, {id.V, want.V}, {id.W, want.W}} {
		if !vecNear(pair[0], pair[1], 1e-9) {
			t.Errorf("row %d of r*inv(r) = %v, want %v", i, pair[0], pair[1])
		}
	}
}

func TestRotationMat4MatchesMulRot(t *testing.T) {
	r := FromAngles(0.1, 0.2, 0.3)
	p := V3(1, -2, 3)

	if got, want := r.Mat4().MulPoint(p), p.MulRot(r); !vecNear(got, want, 1e-12) {
		t.Errorf("Mat4().MulPoint = %v, MulRot = %v", got, want)
	}
}

func TestFromQuatMatchesAngles(t *testing.T) {
	// Quaternion for a rotation of pi/2 around z.
	s := math.Sqrt2 / 2
	m := FromQuat([4]float64{0, 0, s, s})
	got := m.MulPoint(V3(1, 0, 0))
	if !vecNear(got, V3(0, 1, 0), 1e-12) {
		t.Errorf("quat z(pi/2) * x = %v, want y", got)
	}
}

func TestPerspectiveDepthRange(t *testing.T) {
	p := Perspective(1, 1, 0.5, 100)

	near := p.MulVec4(Point(V3(0, 0, -0.5))).PerspectiveDivide()
	far := p.MulVec4(Point(V3(0, 0, -100))).PerspectiveDivide()

	if math.Abs(near.Z) > 1e-9 {
		t.Errorf("near plane depth = %v, want 0", near.Z)
	}
	if math.Abs(far.Z-1) > 1e-9 {
		t.Errorf("far plane depth = %v, want 1", far.Z)
	}
}

func TestColorRoundTrip(t *testing.T) {
	tests := []uint32{0xff181818, 0xffff0000, 0x00000000, 0x80402010, 0xffffffff}
	for _, c := range tests {
		if got := ColorFromARGB(c).ARGB(); got != c {
			t.Errorf("round trip of %#08x = %#08x", c, got)
		}
	}
}

func TestColorScaleTouchesAlpha(t *testing.T) {
	got := ColorFromARGB(0xff804020).Scale(0.5).ARGB()
	if want := uint32(0x7f402010); got != want {
		t.Errorf("Scale(0.5) = %#08x, want %#08x", got, want)
	}
}

func TestColorSaturates(t *testing.T) {
	c := ColorF{A: 300, R: -4, G: 255.9, B: 12.7}
	if got, want := c.ARGB(), uint32(0xff00ff0c); got != want {
		t.Errorf("ARGB() = %#08x, want %#08x", got, want)
	}
}

func TestColorFromRGBA(t *testing.T) {
	got := ColorFromRGBA([4]float64{1, 0, 0.5, 1}).ARGB()
	if want := uint32(0xffff007f); got != want {
		t.Errorf("ColorFromRGBA = %#08x, want %#08x", got, want)
	}
}
