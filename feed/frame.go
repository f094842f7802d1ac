// Package feed moves raw input frames from a sampling process to the shaping
// pipeline and carries the per-frame results back. It defines the fixed-size
// wire format plus a TCP server and client speaking it, and alternative
// sample sources (MQTT, serial) for driving the orientation tracker remotely.
package feed

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Button bits carried in Frame.Buttons.
const (
	ButtonMouseLook uint16 = 1 << iota
	ButtonAltSelector
	ButtonStrafe
	ButtonGyroAction
	// ButtonRecentre recentres the orientation tracker on its rising edge.
	ButtonRecentre
	ButtonPaused
	ButtonGameFocus
)

// FrameSize is the encoded size of a Frame in bytes.
const FrameSize = 8 + 12*4 + 2

// Frame is one simulation frame of raw input samples.
//
// Wire format (client -> server): fixed 58 bytes, little-endian. Floats are
// IEEE-754 bit patterns.
type Frame struct {
	TimestampNS uint64

	MouseX float32
	MouseY float32

	LeftX  float32
	LeftY  float32
	RightX float32
	RightY float32

	// rad/s in the controller's frame
	GyroX float32
	GyroY float32
	GyroZ float32

	// raw accelerometer reading, any unit (only the direction is used)
	AccelX float32
	AccelY float32
	AccelZ float32

	Buttons uint16
}

// MarshalBinary encodes the frame to the fixed 58-byte wire format.
func (f Frame) MarshalBinary() ([]byte, error) {
	b := make([]byte, FrameSize)
	binary.LittleEndian.PutUint64(b[0:8], f.TimestampNS)
	o := 8

	putF32 := func(v float32) {
		binary.LittleEndian.PutUint32(b[o:o+4], math.Float32bits(v))
		o += 4
	}

	putF32(f.MouseX)
	putF32(f.MouseY)

	putF32(f.LeftX)
	putF32(f.LeftY)
	putF32(f.RightX)
	putF32(f.RightY)

	putF32(f.GyroX)
	putF32(f.GyroY)
	putF32(f.GyroZ)

	putF32(f.AccelX)
	putF32(f.AccelY)
	putF32(f.AccelZ)

	binary.LittleEndian.PutUint16(b[o:o+2], f.Buttons)
	return b, nil
}

// UnmarshalBinary decodes the frame from the fixed 58-byte wire format.
func (f *Frame) UnmarshalBinary(data []byte) error {
	if len(data) != FrameSize {
		return fmt.Errorf("frame: expected %d bytes, got %d", FrameSize, len(data))
	}
	f.TimestampNS = binary.LittleEndian.Uint64(data[0:8])
	o := 8

	getF32 := func() float32 {
		v := math.Float32frombits(binary.LittleEndian.Uint32(data[o : o+4]))
		o += 4
		return v
	}

	f.MouseX = getF32()
	f.MouseY = getF32()

	f.LeftX = getF32()
	f.LeftY = getF32()
	f.RightX = getF32()
	f.RightY = getF32()

	f.GyroX = getF32()
	f.GyroY = getF32()
	f.GyroZ = getF32()

	f.AccelX = getF32()
	f.AccelY = getF32()
	f.AccelZ = getF32()

	f.Buttons = binary.LittleEndian.Uint16(data[o : o+2])
	return nil
}

// ResultSize is the encoded size of a Result in bytes.
const ResultSize = 7 * 4

// Result is the pipeline's output for one frame.
//
// Wire format (server -> client): fixed 28 bytes, little-endian.
type Result struct {
	// view angle deltas in degrees
	YawDelta   float32
	PitchDelta float32

	ForwardMove float32
	SideMove    float32

	// the tracker's recentre-relative forwards vector
	ForwardX float32
	ForwardY float32
	ForwardZ float32
}

// MarshalBinary encodes the result to the fixed 28-byte wire format.
func (r Result) MarshalBinary() ([]byte, error) {
	b := make([]byte, ResultSize)
	o := 0
	putF32 := func(v float32) {
		binary.LittleEndian.PutUint32(b[o:o+4], math.Float32bits(v))
		o += 4
	}

	putF32(r.YawDelta)
	putF32(r.PitchDelta)
	putF32(r.ForwardMove)
	putF32(r.SideMove)
	putF32(r.ForwardX)
	putF32(r.ForwardY)
	putF32(r.ForwardZ)
	return b, nil
}

// UnmarshalBinary decodes the result from the fixed 28-byte wire format.
func (r *Result) UnmarshalBinary(data []byte) error {
	if len(data) != ResultSize {
		return fmt.Errorf("result: expected %d bytes, got %d", ResultSize, len(data))
	}
	o := 0
	getF32 := func() float32 {
		v := math.Float32frombits(binary.LittleEndian.Uint32(data[o : o+4]))
		o += 4
		return v
	}

	r.YawDelta = getF32()
	r.PitchDelta = getF32()
	r.ForwardMove = getF32()
	r.SideMove = getF32()
	r.ForwardX = getF32()
	r.ForwardY = getF32()
	r.ForwardZ = getF32()
	return nil
}
