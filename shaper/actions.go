package shaper

// Action identifies one of the press/release input modifiers the pipeline
// reacts to. The bindings that trigger them live with the caller.
type Action int

const (
	// ActionMouseLook holds mouse-look: mouse Y drives pitch (and mouse X
	// strafes when LookStrafe is set).
	ActionMouseLook Action = iota
	// ActionAltSelector is the controller's alternate button layer modifier.
	// The pipeline only tracks it; binding resolution happens upstream.
	ActionAltSelector
	// ActionStrafe converts mouse X movement into side movement while held.
	ActionStrafe
	// ActionGyro is the gyro action button; its effect depends on GyroMode.
	ActionGyro
)

// SetPressed records a press (true) or release (false) of an action.
func (p *Pipeline) SetPressed(action Action, pressed bool) {
	switch action {
	case ActionMouseLook:
		p.mouseLooking = pressed
	case ActionAltSelector:
		p.altSelector = pressed
	case ActionStrafe:
		p.strafeHeld = pressed
	case ActionGyro:
		p.gyroAction(pressed)
	}
}

// IsActive reports the current state of an action. For ActionGyro this is
// whether gyro aiming is currently engaged, not the raw button state.
func (p *Pipeline) IsActive(action Action) bool {
	switch action {
	case ActionMouseLook:
		return p.mouseLooking
	case ActionAltSelector:
		return p.altSelector
	case ActionStrafe:
		return p.strafeHeld
	case ActionGyro:
		return p.gyroActive
	}
	return false
}

// gyroAction flips the gyro-active flag according to the configured mode.
// Only the two button modes react; GyroAlwaysOn and GyroOff ignore the
// button.
func (p *Pipeline) gyroAction(pressed bool) {
	switch p.settings.GyroMode {
	case GyroButtonEnables:
		p.gyroActive = pressed
	case GyroButtonDisables:
		p.gyroActive = !pressed
	}
}
