package tracker_test

import (
	"math"
	"testing"

	"github.com/gyroflick/gyroflick/gmath"
	"github.com/gyroflick/gyroflick/tracker"
	"github.com/stretchr/testify/assert"
)

const (
	second      = uint64(1_000_000_000)
	millisecond = uint64(1_000_000)
)

// yawPitchOf decomposes a forwards vector the same way Recentre does.
func yawPitchOf(fwd gmath.Vec3) (yaw, pitch float64) {
	return math.Atan2(-fwd.X, -fwd.Z), math.Asin(fwd.Y)
}

func TestForwardsBeforeAnySample(t *testing.T) {
	tr := tracker.New()
	fwd := tr.Forwards()

	assert.False(t, math.IsNaN(fwd.X) || math.IsNaN(fwd.Y) || math.IsNaN(fwd.Z))
	assert.InDelta(t, 1.0, fwd.Length(), 1e-12)
	assert.Equal(t, gmath.Vec3{Z: -1}, fwd)
}

func TestZeroAngularVelocityIsIdentity(t *testing.T) {
	tr := tracker.New()
	tr.PushGyroSample(1*second, gmath.Vec3{})
	tr.PushGyroSample(1*second+10*millisecond, gmath.Vec3{})

	assert.Equal(t, gmath.Vec3{Z: -1}, tr.Forwards())
}

func TestConstantYawRateIntegration(t *testing.T) {
	// Half a second of +pi rad/s around Y, delivered in 10ms samples, must
	// turn the forwards vector by ~90 degrees counter-clockwise.
	tr := tracker.New()
	rate := gmath.Vec3{Y: math.Pi}

	ts := 1 * second
	tr.PushGyroSample(ts, rate) // first sample only seeds the stream
	for i := 0; i < 50; i++ {
		ts += 10 * millisecond
		tr.PushGyroSample(ts, rate)
	}

	yaw, pitch := yawPitchOf(tr.Forwards())
	assert.InDelta(t, math.Pi/2, yaw, 1e-3)
	assert.InDelta(t, 0, pitch, 1e-3)
}

func TestStaleGapSkipsIntegration(t *testing.T) {
	tr := tracker.New()
	rate := gmath.Vec3{Y: 1}

	tr.PushGyroSample(1*second, rate)
	// A gap well beyond 500ms: no rotation may be applied for this step.
	tr.PushGyroSample(3*second, rate)
	assert.Equal(t, gmath.Vec3{Z: -1}, tr.Forwards())

	// The stream resumes cleanly: the next delta is measured from the
	// post-gap timestamp only.
	tr.PushGyroSample(3*second+100*millisecond, rate)
	yaw, _ := yawPitchOf(tr.Forwards())
	assert.InDelta(t, 0.1, yaw, 1e-3)
}

func TestRecentreZeroesYawAndPitch(t *testing.T) {
	type testCase struct {
		name string
		rate gmath.Vec3
	}

	cases := []testCase{
		{name: "yawed", rate: gmath.Vec3{Y: 1.5}},
		{name: "pitched", rate: gmath.Vec3{X: -0.8}},
		{name: "yawed pitched and rolled", rate: gmath.Vec3{X: 0.6, Y: 1.1, Z: 0.9}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := tracker.New()
			ts := 1 * second
			tr.PushGyroSample(ts, tc.rate)
			for i := 0; i < 40; i++ {
				ts += 10 * millisecond
				tr.PushGyroSample(ts, tc.rate)
			}

			tr.Recentre()
			yaw, pitch := yawPitchOf(tr.Forwards())
			assert.InDelta(t, 0, yaw, 1e-6)
			assert.InDelta(t, 0, pitch, 1e-6)
		})
	}
}

func TestRecentreIsIdempotent(t *testing.T) {
	tr := tracker.New()
	tr.PushGyroSample(1*second, gmath.Vec3{Y: 2})
	tr.PushGyroSample(1*second+16*millisecond, gmath.Vec3{Y: 2})

	tr.Recentre()
	first := tr.Forwards()
	tr.Recentre()
	again := tr.Forwards()

	assert.InDelta(t, first.X, again.X, 1e-12)
	assert.InDelta(t, first.Y, again.Y, 1e-12)
	assert.InDelta(t, first.Z, again.Z, 1e-12)
}

func TestAccelerometerCorrectsDrift(t *testing.T) {
	tr := tracker.New()

	// Build up a false pitch, as if the gyro had drifted.
	ts := 1 * second
	tr.PushGyroSample(ts, gmath.Vec3{X: 0.5})
	for i := 0; i < 30; i++ {
		ts += 10 * millisecond
		tr.PushGyroSample(ts, gmath.Vec3{X: 0.5})
	}
	_, pitchBefore := yawPitchOf(tr.Forwards())
	assert.Greater(t, math.Abs(pitchBefore), 0.1)

	// Gravity says the controller is actually flat. Feed the correction for
	// a while; the error must shrink monotonically toward zero.
	down := gmath.Vec3{Y: -9.81}
	ts2 := ts
	tr.PushAccelerometerSample(ts2, down)
	prev := math.Abs(pitchBefore)
	for i := 0; i < 200; i++ {
		ts2 += 10 * millisecond
		tr.PushAccelerometerSample(ts2, down)
	}
	_, pitchAfter := yawPitchOf(tr.Forwards())
	assert.Less(t, math.Abs(pitchAfter), prev)
}

func TestAccelerometerGuards(t *testing.T) {
	tr := tracker.New()

	// Zero magnitude must be ignored outright.
	tr.PushAccelerometerSample(1*second, gmath.Vec3{})
	tr.PushAccelerometerSample(1*second+10*millisecond, gmath.Vec3{})
	assert.Equal(t, gmath.Vec3{Z: -1}, tr.Forwards())

	// Gravity already aligned with the estimate: zero cross product, no-op.
	tr.PushAccelerometerSample(1*second+20*millisecond, gmath.Vec3{Y: -9.81})
	assert.Equal(t, gmath.Vec3{Z: -1}, tr.Forwards())
}
