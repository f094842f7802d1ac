package shaper

import "math"

// Thumbstick is a 2D analog stick value. Raw values are pseudo-normalized:
// each axis lies in roughly [-1, 1] but the vector is not guaranteed to stay
// inside the unit circle.
type Thumbstick struct {
	X, Y float32
}

// Magnitude returns the length of the stick vector.
func (s Thumbstick) Magnitude() float32 {
	return float32(math.Sqrt(float64(s.X*s.X + s.Y*s.Y)))
}

func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// mapRange scales v from the [deadzone, 1] range to [0, 1], then inherits
// sign.
func mapRange(v, deadzone, sign float32) float32 {
	return ((v - deadzone) / (1 - deadzone)) * sign
}

// RadialDeadzone suppresses input within a circular dead radius and linearly
// rescales the remainder to fill the stick's range, preserving direction. The
// deadzone is clamped to [0, 0.9].
func RadialDeadzone(stick Thumbstick, deadzone float32) Thumbstick {
	var result Thumbstick
	magnitude := float32(math.Min(float64(stick.Magnitude()), 1))
	deadzone = clamp32(deadzone, 0, 0.9)

	if magnitude > deadzone {
		scale := ((magnitude - deadzone) / (1 - deadzone)) / magnitude
		result.X = stick.X * scale
		result.Y = stick.Y * scale
	}

	return result
}

// SlopedAxialDeadzone deadzones each axis by an amount proportional to the
// other axis's magnitude. This gives a snap-to-axis feel near the axes
// without losing precision near the center of the stick.
func SlopedAxialDeadzone(stick Thumbstick, deadzone float32) Thumbstick {
	var result Thumbstick
	absX := float32(math.Abs(float64(stick.X)))
	absY := float32(math.Abs(float64(stick.Y)))
	signX := float32(math.Copysign(1, float64(stick.X)))
	signY := float32(math.Copysign(1, float64(stick.Y)))
	deadzone = float32(math.Min(float64(deadzone), 0.5))
	deadzoneX := deadzone * absY // deadzone of one axis depends...
	deadzoneY := deadzone * absX // ...on the value of the other axis

	if absX > deadzoneX {
		result.X = mapRange(absX, deadzoneX, signX)
	}
	if absY > deadzoneY {
		result.Y = mapRange(absY, deadzoneY, signY)
	}

	return result
}

// ApplyExpo reshapes the stick magnitude to magnitude^exponent while
// preserving direction, favouring fine control near the center.
func ApplyExpo(stick Thumbstick, exponent float32) Thumbstick {
	var result Thumbstick
	magnitude := stick.Magnitude()
	if magnitude == 0 {
		return result
	}

	eased := float32(math.Pow(float64(magnitude), float64(exponent))) / magnitude
	result.X = stick.X * eased
	result.Y = stick.Y * eased
	return result
}

// Tighten scales a yaw/pitch angular input pair down when its combined
// magnitude sits under threshold degrees per second, suppressing small
// unintentional motion without a hard cutoff.
// See gyrowiki.jibbsmart.com/blog:good-gyro-controls-part-1.
func Tighten(yaw, pitch, thresholdDeg float32) Thumbstick {
	input := Thumbstick{X: yaw, Y: pitch}
	magnitude := input.Magnitude()
	threshold := float32(math.Pi/180) * thresholdDeg

	if magnitude < threshold {
		scale := magnitude / threshold
		input.X *= scale
		input.Y *= scale
	}
	return input
}
