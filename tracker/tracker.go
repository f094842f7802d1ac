// Package tracker fuses controller gyroscope and accelerometer events into an
// absolute orientation estimate.
//
// The tracker keeps two rotations: current-to-initial, which accumulates every
// gyro sample since the first one, and initial-to-recentre, which pins the
// reference frame to wherever the controller pointed when it was last
// recentred. The exposed forwards vector is relative to the recentre frame,
// so recentring never discards the underlying integration.
package tracker

import (
	"math"

	"github.com/gyroflick/gyroflick/gmath"
)

// staleSampleNS is the largest inter-sample gap we are willing to integrate
// over. Anything bigger means the stream was interrupted (controller asleep,
// app unfocused) and integrating across it would apply one huge bogus
// rotation.
const staleSampleNS = 500_000_000

// axes of the controller in its own frame
var (
	axisX = gmath.Vec3{X: 1}
	axisY = gmath.Vec3{Y: 1}
	axisZ = gmath.Vec3{Z: 1}

	// down in the initial frame; the controller is assumed horizontal when
	// its first sample arrives, which costs nothing (the output is the
	// difference between current and recentre frames) and gives the
	// accelerometer a fixed direction to correct against.
	initialDown = gmath.Vec3{Y: -1}

	// forwards points out of the controller's USB port when held flat
	forwards = gmath.Vec3{Z: -1}
)

// Tracker integrates motion sensor events into an output direction vector.
// It is single-owner state: all methods must be called from one goroutine
// with monotonically increasing timestamps.
type Tracker struct {
	currentToInitial  gmath.Quat
	initialToRecentre gmath.Quat

	lastAngVel        gmath.Vec3
	lastGyroTimestamp uint64

	lastAccelTimestamp uint64

	// Steady-state bias of the gyro in rad/s. Left at zero: the driver layer
	// already calibrates the sensor before samples reach us.
	bias gmath.Vec3
}

// New returns a tracker whose frames all coincide, so Forwards reports the
// canonical forward axis until samples arrive.
func New() *Tracker {
	return &Tracker{
		currentToInitial:  gmath.QuatIdentity(),
		initialToRecentre: gmath.QuatIdentity(),
	}
}

// PushGyroSample integrates an angular velocity sample (rad/s) into the
// orientation. Samples separated by more than 500ms are treated as a
// discontinuity: the sample is cached for the next integration step but no
// rotation is applied.
func (t *Tracker) PushGyroSample(timestampNS uint64, angularVelocity gmath.Vec3) {
	deltaNS := timestampNS - t.lastGyroTimestamp
	t.lastGyroTimestamp = timestampNS
	if deltaNS > staleSampleNS {
		t.lastAngVel = angularVelocity
		return
	}

	deltaS := float64(deltaNS) / 1e9

	// Assume the true angular velocity was linearly interpolated between the
	// previous and current samples; the exact integral of that ramp is the
	// average of the endpoints times the elapsed time.
	avg := t.lastAngVel.Add(angularVelocity).Scale(0.5).Sub(t.bias)
	euler := avg.Scale(deltaS)

	// Compose the incremental rotation from single-axis quaternions in X, Y,
	// Z order. A fixed order is only an approximation of the true rotation,
	// but the per-sample angles are small enough that the error is far below
	// the gyro's own noise floor.
	inc := gmath.QuatFromAxisAngle(axisX, euler.X)
	inc = inc.Mul(gmath.QuatFromAxisAngle(axisY, euler.Y))
	inc = inc.Mul(gmath.QuatFromAxisAngle(axisZ, euler.Z))

	t.currentToInitial = t.currentToInitial.Mul(inc).Normalize()

	t.lastAngVel = angularVelocity
}

// PushAccelerometerSample corrects gyro drift using the measured direction of
// gravity. The correction each step is proportional to both the angular error
// and the elapsed time, which makes it a first-order IIR filter: shaking the
// controller perturbs the estimate only slightly, while a steady bias is
// worked off continuously.
func (t *Tracker) PushAccelerometerSample(timestampNS uint64, acceleration gmath.Vec3) {
	deltaNS := timestampNS - t.lastAccelTimestamp
	t.lastAccelTimestamp = timestampNS
	if deltaNS > staleSampleNS {
		return
	}

	deltaS := float64(deltaNS) / 1e9

	magnitude := acceleration.Length()
	if magnitude == 0 {
		return
	}

	// The normalised acceleration is where we assume gravity is; player
	// shakes roughly cancel out over time.
	gravity := acceleration.Scale(1 / magnitude)

	// Where gravity should be, given that the initial frame is defined as
	// horizontal. The inverse converts from the initial frame to the current
	// frame.
	down := t.currentToInitial.Inverse().Rotate(initialDown)

	cross := down.Cross(gravity)
	length := cross.Length()
	if length == 0 {
		// no drift at all
		return
	}
	angle := math.Asin(math.Min(length, 1))
	axis := cross.Scale(1 / length)

	correction := gmath.QuatFromAxisAngle(axis, angle*deltaS)
	t.currentToInitial = t.currentToInitial.Mul(correction).Normalize()
}

// Recentre redefines the reference frame so that the controller's current
// yaw and pitch read as zero. Roll is deliberately ignored. The underlying
// integration state is untouched, so recentring is idempotent for a given
// orientation.
func (t *Tracker) Recentre() {
	// Yaw of the current forward vector relative to the initial frame,
	// positive counter-clockwise viewed from above.
	fwd := t.currentToInitial.Rotate(forwards)
	yaw := math.Atan2(-fwd.X, -fwd.Z)

	// Pitch, positive above the horizon.
	pitch := math.Asin(fwd.Y)

	// Rebuild the recentre-to-initial transform from yaw then pitch only.
	// The yaw must be included even though we only want to cancel the pitch:
	// the plane the pitch acts through depends on the yaw, and without it
	// recentring fails to bring the camera back to the horizon.
	recentreToInitial := gmath.QuatFromAxisAngle(axisY, yaw).
		Mul(gmath.QuatFromAxisAngle(axisX, pitch))

	t.initialToRecentre = recentreToInitial.Inverse()
}

// Forwards returns the direction the controller's USB port faces, relative to
// the recentre frame. This maps to where the player should aim in-game.
// Before any gyro sample has arrived it returns the canonical forward axis,
// never a zero vector or NaN.
func (t *Tracker) Forwards() gmath.Vec3 {
	// Transform the controller-local forward axis into the initial frame,
	// then into the recentre frame. The product collapses every rotation
	// made since the last recentre.
	return t.initialToRecentre.Mul(t.currentToInitial).Rotate(forwards)
}
