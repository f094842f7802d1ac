package gmath_test

import (
	"math"
	"testing"

	"github.com/gyroflick/gyroflick/gmath"
	"github.com/stretchr/testify/assert"
)

func TestVecBasics(t *testing.T) {
	v := gmath.Vec3{X: 3, Y: 4, Z: 0}
	assert.InDelta(t, 5.0, v.Length(), 1e-12)

	n := v.Normalize()
	assert.InDelta(t, 1.0, n.Length(), 1e-12)
	assert.InDelta(t, 0.6, n.X, 1e-12)
	assert.InDelta(t, 0.8, n.Y, 1e-12)

	// zero vector stays put instead of producing NaN
	z := gmath.Vec3{}.Normalize()
	assert.Equal(t, gmath.Vec3{}, z)
}

func TestCrossRightHanded(t *testing.T) {
	x := gmath.Vec3{X: 1}
	y := gmath.Vec3{Y: 1}
	assert.Equal(t, gmath.Vec3{Z: 1}, x.Cross(y))
	assert.Equal(t, gmath.Vec3{Z: -1}, y.Cross(x))
}

func TestQuatRotate(t *testing.T) {
	type testCase struct {
		name  string
		q     gmath.Quat
		in    gmath.Vec3
		want  gmath.Vec3
		delta float64
	}

	cases := []testCase{
		{
			name:  "identity leaves vector unchanged",
			q:     gmath.QuatIdentity(),
			in:    gmath.Vec3{X: 1, Y: 2, Z: 3},
			want:  gmath.Vec3{X: 1, Y: 2, Z: 3},
			delta: 1e-12,
		},
		{
			name:  "quarter turn around Y sends -Z to -X",
			q:     gmath.QuatFromAxisAngle(gmath.Vec3{Y: 1}, math.Pi/2),
			in:    gmath.Vec3{Z: -1},
			want:  gmath.Vec3{X: -1},
			delta: 1e-9,
		},
		{
			name:  "half turn around X flips Y",
			q:     gmath.QuatFromAxisAngle(gmath.Vec3{X: 1}, math.Pi),
			in:    gmath.Vec3{Y: 1},
			want:  gmath.Vec3{Y: -1},
			delta: 1e-9,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.q.Rotate(tc.in)
			assert.InDelta(t, tc.want.X, got.X, tc.delta)
			assert.InDelta(t, tc.want.Y, got.Y, tc.delta)
			assert.InDelta(t, tc.want.Z, got.Z, tc.delta)
		})
	}
}

func TestQuatMulComposesLocally(t *testing.T) {
	// Rotating around local Y then local X must equal applying the combined
	// quaternion, with the later rotation on the right.
	yaw := gmath.QuatFromAxisAngle(gmath.Vec3{Y: 1}, 0.3)
	pitch := gmath.QuatFromAxisAngle(gmath.Vec3{X: 1}, 0.2)
	combined := yaw.Mul(pitch)

	v := gmath.Vec3{Z: -1}
	step := yaw.Rotate(pitch.Rotate(v))
	got := combined.Rotate(v)

	assert.InDelta(t, step.X, got.X, 1e-12)
	assert.InDelta(t, step.Y, got.Y, 1e-12)
	assert.InDelta(t, step.Z, got.Z, 1e-12)
}

func TestQuatInverse(t *testing.T) {
	q := gmath.QuatFromAxisAngle(gmath.Vec3{X: 0.6, Y: 0.8}.Normalize(), 1.1)
	id := q.Mul(q.Inverse())
	assert.InDelta(t, 1.0, id.W, 1e-12)
	assert.InDelta(t, 0.0, id.X, 1e-12)
	assert.InDelta(t, 0.0, id.Y, 1e-12)
	assert.InDelta(t, 0.0, id.Z, 1e-12)
}

func TestQuatNormalize(t *testing.T) {
	q := gmath.Quat{X: 2, Y: 0, Z: 0, W: 2}.Normalize()
	n := math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	assert.InDelta(t, 1.0, n, 1e-12)

	// degenerate input falls back to identity
	assert.Equal(t, gmath.QuatIdentity(), gmath.Quat{}.Normalize())
}
