package feed_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/gyroflick/gyroflick/feed"
	"github.com/stretchr/testify/assert"
)

func TestFrameWireFormat(t *testing.T) {
	f := feed.Frame{
		TimestampNS: 0x0102030405060708,
		MouseX:      1.5,
		MouseY:      -2,
		LeftX:       0.25,
		LeftY:       -0.25,
		RightX:      1,
		RightY:      -1,
		GyroX:       0.5,
		GyroY:       -0.5,
		GyroZ:       3,
		AccelX:      0,
		AccelY:      -9.81,
		AccelZ:      0.1,
		Buttons:     feed.ButtonRecentre | feed.ButtonGameFocus,
	}

	data, err := f.MarshalBinary()
	assert.NoError(t, err)
	assert.Len(t, data, feed.FrameSize)

	// spot-check the layout: timestamp first, buttons last
	assert.Equal(t, f.TimestampNS, binary.LittleEndian.Uint64(data[0:8]))
	assert.Equal(t, math.Float32bits(f.MouseX), binary.LittleEndian.Uint32(data[8:12]))
	assert.Equal(t, f.Buttons, binary.LittleEndian.Uint16(data[feed.FrameSize-2:]))

	var got feed.Frame
	assert.NoError(t, got.UnmarshalBinary(data))
	assert.Equal(t, f, got)

	assert.Error(t, got.UnmarshalBinary(data[:10]))
}

func TestResultWireFormat(t *testing.T) {
	r := feed.Result{
		YawDelta:    -12.5,
		PitchDelta:  3,
		ForwardMove: 400,
		SideMove:    -200,
		ForwardX:    0,
		ForwardY:    0,
		ForwardZ:    -1,
	}

	data, err := r.MarshalBinary()
	assert.NoError(t, err)
	assert.Len(t, data, feed.ResultSize)

	var got feed.Result
	assert.NoError(t, got.UnmarshalBinary(data))
	assert.Equal(t, r, got)

	assert.Error(t, got.UnmarshalBinary(data[:4]))
}
