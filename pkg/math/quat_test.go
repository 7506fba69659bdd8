package math

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("Identity quaternion should be (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
	if q.ToMat4() != Identity() {
		t.Error("Identity quaternion should produce identity matrix")
	}
}

func TestQuatNormalize(t *testing.T) {
	q := Quat{X: 1, Y: 2, Z: 3, W: 4}
	n := q.Normalize()

	length := float32(math.Sqrt(float64(n.X*n.X + n.Y*n.Y + n.Z*n.Z + n.W*n.W)))
	if math.Abs(float64(length-1.0)) > 0.0001 {
		t.Errorf("Normalized quaternion length should be 1, got %v", length)
	}
}

func TestQuatFromAxisAngleZeroAxis(t *testing.T) {
	if q := QuatFromAxisAngle(Vec3{}, 1.5); q != QuatIdentity() {
		t.Errorf("zero axis should give identity, got %v", q)
	}
}

func TestQuatToMat4MatchesMathGL(t *testing.T) {
	axis := Vec3{0.3, -1, 0.5}
	q := QuatFromAxisAngle(axis, 1.1)
	n := axis.Normalize()
	ref := mgl32.QuatRotate(1.1, mgl32.Vec3{n.X, n.Y, n.Z}).Mat4()

	m := q.ToMat4()
	for i := 0; i < 16; i++ {
		if abs(m[i]-ref[i]) > 1e-5 {
			t.Fatalf("element %d: got %f, want %f", i, m[i], ref[i])
		}
	}
}

func TestQuatMul(t *testing.T) {
	a := QuatFromAxisAngle(Vec3{0, 0, 1}, float32(math.Pi/4))
	got := a.Mul(a).ToMat4().TransformVec3(Vec3{1, 0, 0})

	// Two 45 degree turns around Z map X onto Y
	if abs(got.X) > 1e-5 || abs(got.Y-1) > 1e-5 || abs(got.Z) > 1e-5 {
		t.Errorf("combined rotation: got %v, want (0, 1, 0)", got)
	}
}
