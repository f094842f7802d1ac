package shaper

import "math"

// flickFrames is the number of frames a flick takes to rotate the view to its
// target angle.
const flickFrames = 6

// flickEaseOut holds the per-frame share of the target angle applied while a
// flick executes. The weights decay linearly and sum to 1, giving the turn an
// ease-out feel.
var flickEaseOut = [flickFrames]float32{
	0.305555556, 0.249999999, 0.194444445, 0.138888889, 0.083333333, 0.027777778,
}

// flickStick converts a stick flick into an absolute facing command. Snapping
// the stick past the threshold starts a rotation to the stick's direction,
// delivered over flickFrames frames; holding and turning the stick afterwards
// applies smoothed incremental rotation.
type flickStick struct {
	flicking    bool
	lastAngle   float32
	targetAngle float32
	progress    int
	smoothing   smoother
}

func newFlickStick() flickStick {
	// A finished progress counter, so no ease-out rotation is pending.
	return flickStick{progress: flickFrames}
}

// update processes one frame of stick input and returns the immediate extra
// rotation in degrees (zero when a flick is just starting; the eased turn
// toward the target is drained separately via easedTurn).
func (f *flickStick) update(stick Thumbstick, axialDeadzone, threshold, smoothThreshold float32) float32 {
	processed := stick
	var angleChange float32

	if stick.Magnitude() > float32(math.Min(float64(threshold), 1)) { // flick!
		// Snap to axis only if the player wasn't already flicking.
		if !f.flicking || f.progress < flickFrames {
			processed = SlopedAxialDeadzone(stick, axialDeadzone)
		}

		stickAngle := float32(180/math.Pi) * float32(math.Atan2(float64(-processed.X), float64(-processed.Y)))

		if !f.flicking {
			// Flicking begins now, with a new target.
			f.flicking = true
			f.progress = 0
			f.targetAngle = stickAngle
			f.smoothing.reset()
		} else {
			// Was already flicking, just turning now.
			angleChange = stickAngle - f.lastAngle

			// wrap into [-180, 180]
			angleChange = float32(math.Mod(float64(angleChange)+180, 360))
			if angleChange < 0 {
				angleChange += 360
			}
			angleChange -= 180
			angleChange = f.smoothing.smooth(angleChange, smoothThreshold)
		}

		f.lastAngle = stickAngle
	} else {
		f.flicking = false
	}

	return angleChange
}

// easedTurn returns this frame's share of the pending flick rotation in
// degrees, advancing the progress counter. It keeps paying out even after the
// stick has returned to neutral, and returns zero once the flick has fully
// executed.
func (f *flickStick) easedTurn() float32 {
	if f.progress >= flickFrames {
		return 0
	}
	turn := f.targetAngle * flickEaseOut[f.progress]
	f.progress++
	return turn
}
