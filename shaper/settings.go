// Package shaper turns raw per-frame input samples (mouse deltas, thumbstick
// vectors, gyro angular velocity) into view angle deltas and movement intents.
//
// The pipeline is a pure per-frame transform apart from a small amount of
// persistent state (mouse filter history, flick stick gesture state). It is
// single-owner: one Pipeline per player, driven synchronously by the client
// frame loop.
package shaper

// referenceFrameTime is the frame duration the turn sensitivities are tuned
// for. Turning inputs are scaled by frameTime/referenceFrameTime so the same
// deflection produces the same total rotation at any simulation rate.
const referenceFrameTime = 0.01666 // 60Hz

// Layout selects which stick axes feed movement versus turning.
type Layout int

const (
	LayoutDefault Layout = iota
	LayoutSouthpaw
	LayoutLegacy
	LayoutLegacySouthpaw
	LayoutFlickStick
	LayoutFlickStickSouthpaw
)

// GyroMode selects when gyro aiming contributes to turning.
type GyroMode int

const (
	GyroOff GyroMode = iota
	// GyroButtonEnables turns gyro aiming on while the gyro action button is
	// held.
	GyroButtonEnables
	// GyroButtonDisables keeps gyro aiming on except while the gyro action
	// button is held.
	GyroButtonDisables
	GyroAlwaysOn
)

// GyroAxis selects which angular velocity axis drives yaw.
type GyroAxis int

const (
	GyroAxisYaw  GyroAxis = iota // turn the controller like a steering wheel held flat
	GyroAxisRoll                 // tilt the controller like a steering wheel held upright
)

// Settings is the read-only tuning surface of the pipeline. The pipeline
// never writes to it; ownership stays with the configuration layer.
//
// Defaults match a 60Hz client with a typical modern pad.
type Settings struct {
	Sensitivity        float32 `help:"Mouse sensitivity." default:"3"`
	MouseFilter        bool    `help:"Average each mouse delta with the previous frame's." default:"false"`
	ExponentialSpeedup bool    `help:"Cubic mouse acceleration above the speedup threshold." default:"false"`
	FreeLook           bool    `help:"Mouse Y controls pitch rather than forward movement." default:"true"`
	LookStrafe         bool    `help:"While mouse-look is held, mouse X strafes instead of turning." default:"false"`
	MouseYaw           float32 `help:"Degrees of yaw per mouse count." default:"0.022"`
	MousePitch         float32 `help:"Degrees of pitch per mouse count." default:"0.022"`
	MouseSide          float32 `help:"Side movement per mouse count when strafing." default:"0.8"`
	MouseForward       float32 `help:"Forward movement per mouse count when not free-looking." default:"1"`

	YawSpeed     float32 `help:"Stick yaw speed in degrees per second." default:"140"`
	PitchSpeed   float32 `help:"Stick pitch speed in degrees per second." default:"150"`
	ForwardSpeed float32 `help:"Forward movement speed units." default:"200"`
	SideSpeed    float32 `help:"Side movement speed units." default:"200"`

	Layout             Layout  `help:"Stick layout: 0 default, 1 southpaw, 2 legacy, 3 legacy southpaw, 4 flick stick, 5 flick stick southpaw." default:"0"`
	YawSensitivity     float32 `help:"Stick yaw sensitivity multiplier." default:"1"`
	PitchSensitivity   float32 `help:"Stick pitch sensitivity multiplier." default:"1"`
	ForwardSensitivity float32 `help:"Stick forward movement sensitivity multiplier." default:"1"`
	SideSensitivity    float32 `help:"Stick side movement sensitivity multiplier." default:"1"`

	LeftExpo      float32 `help:"Left stick response curve exponent." default:"2"`
	LeftSnapAxis  float32 `help:"Left stick axial deadzone (snap-to-axis strength)." default:"0.15"`
	LeftDeadzone  float32 `help:"Left stick radial deadzone." default:"0.16"`
	RightExpo     float32 `help:"Right stick response curve exponent." default:"2"`
	RightSnapAxis float32 `help:"Right stick axial deadzone (snap-to-axis strength)." default:"0.15"`
	RightDeadzone float32 `help:"Right stick radial deadzone." default:"0.16"`

	FlickThreshold float32 `help:"Stick magnitude that begins a flick." default:"0.65"`
	FlickSmoothing float32 `help:"Flick rotation smoothing threshold in degrees; 0 disables." default:"8"`

	GyroMode             GyroMode `help:"Gyro aiming: 0 off, 1 button enables, 2 button disables, 3 always on." default:"2"`
	GyroTurningAxis      GyroAxis `help:"Gyro axis that drives yaw: 0 yaw, 1 roll." default:"0"`
	GyroYawSensitivity   float32  `help:"Gyro yaw sensitivity multiplier." default:"1"`
	GyroPitchSensitivity float32  `help:"Gyro pitch sensitivity multiplier." default:"1"`
	GyroTightening       float32  `help:"Suppress gyro motion below this speed in degrees per second." default:"3.5"`
}

// DefaultSettings returns the documented defaults. The CLI layer gets the
// same values from the struct tags; this is for library consumers and tests.
func DefaultSettings() Settings {
	return Settings{
		Sensitivity:  3,
		FreeLook:     true,
		MouseYaw:     0.022,
		MousePitch:   0.022,
		MouseSide:    0.8,
		MouseForward: 1,

		YawSpeed:     140,
		PitchSpeed:   150,
		ForwardSpeed: 200,
		SideSpeed:    200,

		Layout:             LayoutDefault,
		YawSensitivity:     1,
		PitchSensitivity:   1,
		ForwardSensitivity: 1,
		SideSensitivity:    1,

		LeftExpo:      2,
		LeftSnapAxis:  0.15,
		LeftDeadzone:  0.16,
		RightExpo:     2,
		RightSnapAxis: 0.15,
		RightDeadzone: 0.16,

		FlickThreshold: 0.65,
		FlickSmoothing: 8,

		GyroMode:             GyroButtonDisables,
		GyroTurningAxis:      GyroAxisYaw,
		GyroYawSensitivity:   1,
		GyroPitchSensitivity: 1,
		GyroTightening:       3.5,
	}
}
