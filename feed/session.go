package feed

import (
	"github.com/gyroflick/gyroflick/gmath"
	"github.com/gyroflick/gyroflick/shaper"
	"github.com/gyroflick/gyroflick/tracker"
)

// fallbackFrameTime is used when the frame timestamps cannot yield a sane
// frame duration (first frame, clock jumps, long stalls).
const fallbackFrameTime = 0.01666

// maxFrameTime bounds the turn scaling for stalled streams; anything longer
// is treated like a fresh start at the fallback rate.
const maxFrameTime = 0.25

// Session binds one pipeline and one orientation tracker to a stream of
// frames. It is single-owner state, matching the pipeline's threading
// contract: frames must be applied from one goroutine in timestamp order.
type Session struct {
	pipeline *shaper.Pipeline
	track    *tracker.Tracker

	lastButtons     uint16
	lastTimestampNS uint64
}

// NewSession builds a session with a fresh tracker around the given settings.
func NewSession(settings shaper.Settings) *Session {
	return &Session{
		pipeline: shaper.New(settings),
		track:    tracker.New(),
	}
}

// Pipeline exposes the session's pipeline, mainly so callers can feed action
// presses directly when they arrive out of band.
func (s *Session) Pipeline() *shaper.Pipeline { return s.pipeline }

// Tracker exposes the session's orientation tracker.
func (s *Session) Tracker() *tracker.Tracker { return s.track }

// Apply runs one frame through the tracker and the pipeline and returns the
// frame's result. Button transitions are detected against the previous frame.
func (s *Session) Apply(f Frame) Result {
	// Sensor samples first: the pipeline may consult gyro state during Move.
	s.track.PushGyroSample(f.TimestampNS, gmath.Vec3{
		X: float64(f.GyroX), Y: float64(f.GyroY), Z: float64(f.GyroZ),
	})
	s.track.PushAccelerometerSample(f.TimestampNS, gmath.Vec3{
		X: float64(f.AccelX), Y: float64(f.AccelY), Z: float64(f.AccelZ),
	})

	s.applyButtons(f.Buttons)

	frameTime := float32(fallbackFrameTime)
	if s.lastTimestampNS != 0 && f.TimestampNS > s.lastTimestampNS {
		dt := float32(f.TimestampNS-s.lastTimestampNS) / 1e9
		if dt < maxFrameTime {
			frameTime = dt
		}
	}
	s.lastTimestampNS = f.TimestampNS

	var cmd shaper.Command
	var view shaper.ViewAngles
	s.pipeline.Move(&cmd, &view, shaper.FrameInput{
		MouseX:     f.MouseX,
		MouseY:     f.MouseY,
		LeftStick:  shaper.Thumbstick{X: f.LeftX, Y: f.LeftY},
		RightStick: shaper.Thumbstick{X: f.RightX, Y: f.RightY},
		GyroX:      f.GyroX,
		GyroY:      f.GyroY,
		GyroZ:      f.GyroZ,
		FrameTime:  frameTime,
		Paused:     f.Buttons&ButtonPaused != 0,
		GameFocus:  f.Buttons&ButtonGameFocus != 0,
	})

	fwd := s.track.Forwards()
	return Result{
		YawDelta:    view.Yaw,
		PitchDelta:  view.Pitch,
		ForwardMove: cmd.ForwardMove,
		SideMove:    cmd.SideMove,
		ForwardX:    float32(fwd.X),
		ForwardY:    float32(fwd.Y),
		ForwardZ:    float32(fwd.Z),
	}
}

func (s *Session) applyButtons(buttons uint16) {
	changed := buttons ^ s.lastButtons
	pressed := func(bit uint16) bool { return buttons&bit != 0 }

	if changed&ButtonMouseLook != 0 {
		s.pipeline.SetPressed(shaper.ActionMouseLook, pressed(ButtonMouseLook))
	}
	if changed&ButtonAltSelector != 0 {
		s.pipeline.SetPressed(shaper.ActionAltSelector, pressed(ButtonAltSelector))
	}
	if changed&ButtonStrafe != 0 {
		s.pipeline.SetPressed(shaper.ActionStrafe, pressed(ButtonStrafe))
	}
	if changed&ButtonGyroAction != 0 {
		s.pipeline.SetPressed(shaper.ActionGyro, pressed(ButtonGyroAction))
	}
	if changed&ButtonRecentre != 0 && pressed(ButtonRecentre) {
		s.track.Recentre()
	}

	s.lastButtons = buttons
}
