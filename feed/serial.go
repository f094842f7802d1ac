package feed

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	serial "github.com/jacobsa/go-serial/serial"

	"github.com/gyroflick/gyroflick/gmath"
)

// SerialConfig configures the serial IMU source.
type SerialConfig struct {
	Port string `help:"Serial port the IMU streams on." default:"/dev/ttyUSB0"`
	Baud uint   `help:"Serial baud rate." default:"115200"`
}

// SampleSink consumes raw IMU samples. Both tracker.Tracker and MQTTSource
// satisfy it.
type SampleSink interface {
	PushGyroSample(timestampNS uint64, angularVelocity gmath.Vec3)
	PushAccelerometerSample(timestampNS uint64, acceleration gmath.Vec3)
}

// RunSerialSource reads newline-delimited IMU records from a serial port and
// feeds them into the sink until ctx is cancelled or the port fails.
//
// Record format, one sample per line:
//
//	g,<timestampNs>,<x>,<y>,<z>   gyro sample in rad/s
//	a,<timestampNs>,<x>,<y>,<z>   accelerometer sample
//
// Unparseable lines are skipped; cheap microcontroller links drop bytes.
func RunSerialSource(ctx context.Context, config SerialConfig, sink SampleSink, logger *slog.Logger) error {
	port, err := serial.Open(serial.OpenOptions{
		PortName:        config.Port,
		BaudRate:        config.Baud,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
		ParityMode:      serial.PARITY_NONE,
	})
	if err != nil {
		return fmt.Errorf("open serial port %s: %w", config.Port, err)
	}
	defer port.Close()
	logger.Info("serial IMU source opened", "port", config.Port, "baud", config.Baud)

	go func() {
		// Unblock the reader when the context ends.
		<-ctx.Done()
		port.Close()
	}()

	reader := bufio.NewReader(port)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("serial read: %w", err)
		}

		kind, ts, v, err := parseIMULine(line)
		if err != nil {
			logger.Debug("skipping line", "error", err)
			continue
		}

		switch kind {
		case 'g':
			sink.PushGyroSample(ts, v)
		case 'a':
			sink.PushAccelerometerSample(ts, v)
		}
	}
}

// parseIMULine parses one serial record. The returned kind is 'g' or 'a'.
func parseIMULine(line string) (kind byte, timestampNS uint64, v gmath.Vec3, err error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return 0, 0, gmath.Vec3{}, fmt.Errorf("empty line")
	}

	fields := strings.Split(line, ",")
	if len(fields) != 5 {
		return 0, 0, gmath.Vec3{}, fmt.Errorf("expected 5 fields, got %d", len(fields))
	}

	switch fields[0] {
	case "g", "a":
		kind = fields[0][0]
	default:
		return 0, 0, gmath.Vec3{}, fmt.Errorf("unknown record kind %q", fields[0])
	}

	timestampNS, err = strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return 0, 0, gmath.Vec3{}, fmt.Errorf("timestamp: %w", err)
	}

	var xyz [3]float64
	for i, f := range fields[2:] {
		xyz[i], err = strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return 0, 0, gmath.Vec3{}, fmt.Errorf("axis %d: %w", i, err)
		}
	}

	return kind, timestampNS, gmath.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}
