package feed

import (
	"math"

	"github.com/gyroflick/gyroflick/gmath"
)

// Pose is the controller's aiming direction decomposed into view angles, in
// degrees. Yaw is positive counter-clockwise viewed from above; pitch is
// positive above the horizon.
type Pose struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`

	ForwardX float64 `json:"forwardX"`
	ForwardY float64 `json:"forwardY"`
	ForwardZ float64 `json:"forwardZ"`
}

// Forwards reassembles the result's forwards components into a vector.
func (r Result) Forwards() gmath.Vec3 {
	return gmath.Vec3{X: float64(r.ForwardX), Y: float64(r.ForwardY), Z: float64(r.ForwardZ)}
}

// PoseFromForwards decomposes a recentre-relative forwards vector into a
// pose, using the same yaw/pitch convention as the tracker's recentre
// operation.
func PoseFromForwards(fwd gmath.Vec3) Pose {
	return Pose{
		Yaw:      math.Atan2(-fwd.X, -fwd.Z) * 180 / math.Pi,
		Pitch:    math.Asin(math.Max(-1, math.Min(1, fwd.Y))) * 180 / math.Pi,
		ForwardX: fwd.X,
		ForwardY: fwd.Y,
		ForwardZ: fwd.Z,
	}
}
