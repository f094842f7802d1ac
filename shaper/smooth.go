package shaper

import "math"

// maxSmoothSamples is the length of the rolling buffer used to smooth flick
// stick rotation input.
const maxSmoothSamples = 8

// smoother implements soft tiered smoothing for angle rotations: large inputs
// pass through immediately, tiny ones are spread over the rolling buffer, and
// inputs in between blend linearly between the two.
// See gyrowiki.jibbsmart.com/blog:tight-and-smooth:soft-tiered-smoothing.
type smoother struct {
	samples [maxSmoothSamples]float32
	front   int
}

func (s *smoother) reset() {
	s.front = 0
	for i := range s.samples {
		s.samples[i] = 0
	}
}

// smooth feeds one rotation sample through the filter. topThreshold is the
// magnitude above which input is consumed immediately; half of it is the
// point below which input is buffered entirely. A zero threshold disables
// smoothing.
func (s *smoother) smooth(value, topThreshold float32) float32 {
	bottomThreshold := topThreshold / 2
	if topThreshold == 0 {
		return value
	}

	// slot in the circular buffer we want to write over
	s.front = (s.front + 1) % maxSmoothSamples

	immediateWeight := (float32(math.Abs(float64(value))) - bottomThreshold) /
		(topThreshold - bottomThreshold)
	immediateWeight = clamp32(immediateWeight, 0, 1)

	smoothWeight := 1 - immediateWeight
	s.samples[s.front] = value * smoothWeight

	var average float32
	for _, sample := range s.samples {
		average += sample
	}
	average /= maxSmoothSamples

	return average + value*immediateWeight
}
