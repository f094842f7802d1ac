package feed_test

import (
	"math"
	"testing"

	"github.com/gyroflick/gyroflick/feed"
	"github.com/gyroflick/gyroflick/shaper"
	"github.com/stretchr/testify/assert"
)

const frameNS = uint64(16_666_000)

func gameSettings() shaper.Settings {
	s := shaper.DefaultSettings()
	s.GyroMode = shaper.GyroOff
	return s
}

func TestSessionCarriesForwards(t *testing.T) {
	session := feed.NewSession(gameSettings())

	result := session.Apply(feed.Frame{TimestampNS: 1_000_000_000})
	assert.Equal(t, float32(0), result.ForwardX)
	assert.Equal(t, float32(0), result.ForwardY)
	assert.Equal(t, float32(-1), result.ForwardZ)
}

func TestSessionIntegratesGyroIntoForwards(t *testing.T) {
	session := feed.NewSession(gameSettings())

	ts := uint64(1_000_000_000)
	f := feed.Frame{TimestampNS: ts, GyroY: float32(math.Pi)}
	session.Apply(f)
	var last feed.Result
	for i := 0; i < 50; i++ {
		ts += 10_000_000
		f.TimestampNS = ts
		last = session.Apply(f)
	}

	// Half a second at pi rad/s: forwards has swung ~90 degrees CCW.
	assert.InDelta(t, -1.0, float64(last.ForwardX), 0.01)
	assert.InDelta(t, 0.0, float64(last.ForwardZ), 0.01)
}

func TestSessionRecentreEdge(t *testing.T) {
	session := feed.NewSession(gameSettings())

	ts := uint64(1_000_000_000)
	f := feed.Frame{TimestampNS: ts, GyroY: 2}
	session.Apply(f)
	for i := 0; i < 20; i++ {
		ts += 10_000_000
		f.TimestampNS = ts
		session.Apply(f)
	}

	// Rising edge recentres: forwards snaps back to canonical.
	ts += 10_000_000
	result := session.Apply(feed.Frame{TimestampNS: ts, Buttons: feed.ButtonRecentre})
	assert.InDelta(t, 0.0, float64(result.ForwardX), 1e-5)
	assert.InDelta(t, -1.0, float64(result.ForwardZ), 1e-5)

	// Holding the button down is not a second edge; rotation drifts away
	// from center again while it stays pressed.
	f.Buttons = feed.ButtonRecentre
	for i := 0; i < 20; i++ {
		ts += 10_000_000
		f.TimestampNS = ts
		result = session.Apply(f)
	}
	assert.Greater(t, math.Abs(float64(result.ForwardX)), 0.05)
}

func TestSessionMouseThroughPipeline(t *testing.T) {
	s := gameSettings()
	s.Sensitivity = 1
	s.MouseYaw = 1
	session := feed.NewSession(s)

	session.Apply(feed.Frame{TimestampNS: 1_000_000_000})
	result := session.Apply(feed.Frame{
		TimestampNS: 1_000_000_000 + frameNS,
		MouseX:      10,
	})
	assert.InDelta(t, -10.0, float64(result.YawDelta), 1e-4)
}

func TestSessionGyroButtonTogglesAiming(t *testing.T) {
	s := shaper.DefaultSettings()
	s.GyroMode = shaper.GyroButtonEnables
	s.GyroTightening = 0
	session := feed.NewSession(s)

	ts := uint64(1_000_000_000)
	session.Apply(feed.Frame{TimestampNS: ts, Buttons: feed.ButtonGameFocus})

	// Without the button, gyro motion must not turn the view.
	ts += frameNS
	result := session.Apply(feed.Frame{
		TimestampNS: ts,
		GyroY:       1,
		Buttons:     feed.ButtonGameFocus,
	})
	assert.Zero(t, result.YawDelta)

	// With the button held, it does.
	ts += frameNS
	result = session.Apply(feed.Frame{
		TimestampNS: ts,
		GyroY:       1,
		Buttons:     feed.ButtonGameFocus | feed.ButtonGyroAction,
	})
	assert.NotZero(t, result.YawDelta)
}
