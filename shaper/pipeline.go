package shaper

import "math"

// Mouse speedup curve bounds, in mouse counts per frame.
const (
	mouseMax = 3000 // maximal mouse move per frame
	mouseMin = 40   // minimal move before the speedup curve engages
)

const pi32 = float32(math.Pi)

// Command accumulates this frame's movement intents. The pipeline adds to the
// fields; the caller owns zeroing them between frames.
type Command struct {
	ForwardMove float32
	SideMove    float32
}

// ViewAngles are the camera angles the pipeline steers, in degrees. Yaw grows
// counter-clockwise, pitch grows downwards, matching the usual client
// convention.
type ViewAngles struct {
	Yaw   float32
	Pitch float32
}

// FrameInput carries one frame's worth of raw input samples.
type FrameInput struct {
	MouseX, MouseY float32

	LeftStick  Thumbstick
	RightStick Thumbstick

	// Instantaneous angular velocity in rad/s, in the controller's frame.
	GyroX, GyroY, GyroZ float32

	// FrameTime is the simulation frame duration in seconds.
	FrameTime float32

	Paused bool
	// GameFocus is true while gameplay (not a menu or console) has input
	// focus. Gyro aiming is suppressed otherwise.
	GameFocus bool
}

// Pipeline owns all per-player input shaping state. Construct one per player
// and call Move once per simulation frame from the owning loop; none of the
// methods are safe for concurrent use.
type Pipeline struct {
	settings Settings

	mouseLooking bool
	altSelector  bool
	strafeHeld   bool
	gyroActive   bool

	oldMouseX float32
	oldMouseY float32

	flick flickStick
}

// New builds a pipeline around a read-only settings snapshot.
func New(settings Settings) *Pipeline {
	return &Pipeline{
		settings: settings,
		gyroActive: settings.GyroMode == GyroButtonDisables ||
			settings.GyroMode == GyroAlwaysOn,
		flick: newFlickStick(),
	}
}

// Settings returns the tuning values the pipeline was built with.
func (p *Pipeline) Settings() Settings { return p.settings }

// Move shapes one frame of raw input into view angle changes and movement
// intents, mutating cmd and view in place. It never fails: out-of-range
// inputs are clamped or ignored.
func (p *Pipeline) Move(cmd *Command, view *ViewAngles, in FrameInput) {
	s := &p.settings
	mouseX, mouseY := in.MouseX, in.MouseY

	if s.MouseFilter {
		if mouseX > 1 || mouseX < -1 {
			mouseX = (mouseX + p.oldMouseX) * 0.5
		}
		if mouseY > 1 || mouseY < -1 {
			mouseY = (mouseY + p.oldMouseY) * 0.5
		}
	}
	p.oldMouseX = mouseX
	p.oldMouseY = mouseY

	if mouseX != 0 || mouseY != 0 {
		if !s.ExponentialSpeedup {
			mouseX *= s.Sensitivity
			mouseY *= s.Sensitivity
		} else if mouseX > mouseMin || mouseY > mouseMin ||
			mouseX < -mouseMin || mouseY < -mouseMin {
			mouseX = clamp32((mouseX*mouseX*mouseX)/4, -mouseMax, mouseMax)
			mouseY = clamp32((mouseY*mouseY*mouseY)/4, -mouseMax, mouseMax)
		}

		// route mouse X/Y to look or strafe/forward movement
		if p.strafeHeld || (s.LookStrafe && p.mouseLooking) {
			cmd.SideMove += s.MouseSide * mouseX
		} else {
			view.Yaw -= s.MouseYaw * mouseX
		}

		if (p.mouseLooking || s.FreeLook) && !p.strafeHeld {
			view.Pitch += s.MousePitch * mouseY
		} else {
			cmd.ForwardMove -= s.MouseForward * mouseY
		}
	}

	left, right := in.LeftStick, in.RightStick

	if left.X != 0 || left.Y != 0 {
		left = RadialDeadzone(left, s.LeftDeadzone)
		if s.Layout == LayoutFlickStickSouthpaw {
			view.Yaw += p.flick.update(left, s.LeftSnapAxis, s.FlickThreshold, s.FlickSmoothing)
		} else {
			left = SlopedAxialDeadzone(left, s.LeftSnapAxis)
			left = ApplyExpo(left, s.LeftExpo)
		}
	} else if s.Layout == LayoutFlickStickSouthpaw {
		p.flick.update(left, s.LeftSnapAxis, s.FlickThreshold, s.FlickSmoothing)
	}

	if right.X != 0 || right.Y != 0 {
		right = RadialDeadzone(right, s.RightDeadzone)
		if s.Layout == LayoutFlickStick {
			view.Yaw += p.flick.update(right, s.RightSnapAxis, s.FlickThreshold, s.FlickSmoothing)
		} else {
			right = SlopedAxialDeadzone(right, s.RightSnapAxis)
			right = ApplyExpo(right, s.RightExpo)
		}
	} else if s.Layout == LayoutFlickStick {
		p.flick.update(right, s.RightSnapAxis, s.FlickThreshold, s.FlickSmoothing)
	}

	var stickYaw, stickPitch float32
	var stickForward, stickSide float32

	switch s.Layout {
	case LayoutSouthpaw:
		stickForward = right.Y
		stickSide = right.X
		stickYaw = left.X
		stickPitch = left.Y
	case LayoutLegacy:
		stickForward = left.Y
		stickSide = right.X
		stickYaw = left.X
		stickPitch = right.Y
	case LayoutLegacySouthpaw:
		stickForward = right.Y
		stickSide = left.X
		stickYaw = right.X
		stickPitch = left.Y
	case LayoutFlickStick: // yaw already handled by the flick stick
		stickForward = left.Y
		stickSide = left.X
	case LayoutFlickStickSouthpaw:
		stickForward = right.Y
		stickSide = right.X
	default: // LayoutDefault
		stickForward = left.Y
		stickSide = left.X
		stickYaw = right.X
		stickPitch = right.Y
	}

	// Turning inputs are scaled with the frame time (sensitivities assume
	// 60Hz) so the same deflection turns at the same rate regardless of the
	// simulation rate. Movement is not scaled: those are absolute per-frame
	// values.
	stickViewFactor := in.FrameTime / referenceFrameTime
	gyroViewFactor := (1 / pi32) * stickViewFactor

	if stickYaw != 0 {
		view.Yaw -= (s.MouseYaw * s.YawSensitivity *
			s.YawSpeed * stickYaw) * stickViewFactor
	}
	if stickPitch != 0 {
		view.Pitch += (s.MousePitch * s.PitchSensitivity *
			s.PitchSpeed * stickPitch) * stickViewFactor
	}

	// Twice as fast because with a stick we run.
	if stickForward != 0 {
		cmd.ForwardMove -= s.MouseForward * s.ForwardSensitivity *
			s.ForwardSpeed * 2 * stickForward
	}
	if stickSide != 0 {
		cmd.SideMove += s.MouseSide * s.SideSensitivity *
			s.SideSpeed * 2 * stickSide
	}

	var gyroYaw, gyroPitch float32
	if p.gyroActive && s.GyroMode != GyroOff && !in.Paused && in.GameFocus {
		if s.GyroTurningAxis == GyroAxisRoll {
			gyroYaw = -in.GyroZ
		} else {
			gyroYaw = in.GyroY
		}
		gyroPitch = in.GyroX
	}

	if gyroYaw != 0 || gyroPitch != 0 {
		gyroIn := Tighten(gyroYaw, gyroPitch, s.GyroTightening)

		if gyroIn.X != 0 {
			view.Yaw += s.MouseYaw * s.GyroYawSensitivity *
				s.YawSpeed * gyroIn.X * gyroViewFactor
		}
		if gyroIn.Y != 0 {
			view.Pitch -= s.MousePitch * s.GyroPitchSensitivity *
				s.PitchSpeed * gyroIn.Y * gyroViewFactor
		}
	}

	// Flick in progress: keep changing the yaw angle toward the target.
	view.Yaw += p.flick.easedTurn()
}
