package shaper

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSmootherTiers(t *testing.T) {
	const top = 8.0

	t.Run("above top threshold passes through", func(t *testing.T) {
		var s smoother
		got := s.smooth(10, top)
		assert.InDelta(t, 10.0, float64(got), 1e-6)
	})

	t.Run("below bottom threshold is fully buffered", func(t *testing.T) {
		var s smoother
		got := s.smooth(2, top)
		// the whole sample lands in the 8-slot buffer; only the average leaks
		assert.InDelta(t, 2.0/maxSmoothSamples, float64(got), 1e-6)
	})

	t.Run("between thresholds blends linearly", func(t *testing.T) {
		var s smoother
		// immediate weight (6-4)/(8-4) = 0.5: half now, half buffered
		got := s.smooth(6, top)
		assert.InDelta(t, 3.0+3.0/maxSmoothSamples, float64(got), 1e-6)
	})

	t.Run("buffered input is released gradually", func(t *testing.T) {
		var s smoother
		s.smooth(2, top)
		var total float64 = 2.0 / maxSmoothSamples
		for i := 0; i < maxSmoothSamples-1; i++ {
			total += float64(s.smooth(0, top))
		}
		// after a full buffer cycle the whole sample has been paid out
		assert.InDelta(t, 2.0, total, 1e-5)
	})

	t.Run("zero threshold disables smoothing", func(t *testing.T) {
		var s smoother
		assert.Equal(t, float32(1.5), s.smooth(1.5, 0))
	})
}

func TestFlickEaseOutWeightsSumToOne(t *testing.T) {
	var sum float64
	for _, w := range flickEaseOut {
		sum += float64(w)
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
}

func TestFlickStickGesture(t *testing.T) {
	f := newFlickStick()

	// Neutral stick: nothing pending.
	assert.Zero(t, f.easedTurn())

	// Snap right past the threshold: a flick starts with target -90 degrees
	// and no immediate rotation.
	change := f.update(Thumbstick{X: 1}, 0.15, 0.65, 0)
	assert.Zero(t, change)
	assert.True(t, f.flicking)
	assert.InDelta(t, -90.0, float64(f.targetAngle), 1e-4)

	// The eased turn pays out the full target over the fixed frame count,
	// even though the stick returns to neutral after two frames.
	var total float64
	total += float64(f.easedTurn())
	total += float64(f.easedTurn())
	f.update(Thumbstick{}, 0.15, 0.65, 0)
	assert.False(t, f.flicking)
	for i := 2; i < flickFrames; i++ {
		total += float64(f.easedTurn())
	}
	assert.InDelta(t, -90.0, total, 1e-3)

	// Frame 7: the ease-out mechanism contributes nothing further.
	assert.Zero(t, f.easedTurn())
}

func TestFlickStickHoldAndTurn(t *testing.T) {
	f := newFlickStick()

	f.update(Thumbstick{X: 0, Y: -1}, 0, 0.65, 0) // flick straight up: target 0
	assert.InDelta(t, 0.0, float64(f.targetAngle), 1e-6)

	// Rotate the held stick 30 degrees clockwise; with smoothing disabled the
	// full delta comes back immediately.
	rad := 30.0 * math.Pi / 180
	s := Thumbstick{X: float32(math.Sin(rad)), Y: float32(-math.Cos(rad))}
	change := f.update(s, 0, 0.65, 0)
	assert.InDelta(t, -30.0, float64(change), 1e-3)
}

func TestFlickStickAngleWrap(t *testing.T) {
	f := newFlickStick()

	// Start close to +180 and cross over to -170-ish: the reported change
	// must wrap into [-180, 180] instead of sweeping the long way round.
	f.update(Thumbstick{X: -0.1, Y: 1}, 0, 0.65, 0)
	change := f.update(Thumbstick{X: 0.1, Y: 1}, 0, 0.65, 0)
	assert.Less(t, float64(change), 90.0)
	assert.Greater(t, float64(change), -90.0)
	assert.NotZero(t, change)
}

func TestFlickStickBelowThresholdResets(t *testing.T) {
	f := newFlickStick()
	f.update(Thumbstick{X: 1}, 0, 0.65, 0)
	assert.True(t, f.flicking)

	f.update(Thumbstick{X: 0.3}, 0, 0.65, 0)
	assert.False(t, f.flicking)
}
