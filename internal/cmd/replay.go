package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gyroflick/gyroflick/feed"
	"github.com/gyroflick/gyroflick/shaper"
	"github.com/gyroflick/gyroflick/trace"
)

// Replay runs a recorded frame trace through the shaping pipeline offline
// and writes the per-frame results, so a tuning change can be compared
// against the same input.
type Replay struct {
	Input    string          `arg:"" help:"Trace file with one JSON frame per line"`
	Output   string          `help:"Write results to this file instead of stdout"`
	Settings shaper.Settings `embed:"" prefix:"tune."`
}

// Run is called by kong when the replay command is executed.
func (r *Replay) Run(logger *slog.Logger) error {
	in, err := os.Open(r.Input)
	if err != nil {
		return fmt.Errorf("open trace: %w", err)
	}
	defer in.Close()

	var out io.Writer = os.Stdout
	if r.Output != "" {
		f, err := os.Create(r.Output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	reader := trace.NewReader(in)
	writer := trace.NewWriter(out)
	session := feed.NewSession(r.Settings)

	var frames int
	var totalYaw, totalPitch float64
	for {
		var frame feed.Frame
		err := reader.Read(&frame)
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		result := session.Apply(frame)
		if err := writer.Write(result); err != nil {
			return err
		}
		frames++
		totalYaw += float64(result.YawDelta)
		totalPitch += float64(result.PitchDelta)
	}
	if err := writer.Flush(); err != nil {
		return err
	}

	logger.Info("replay finished",
		"frames", frames,
		"totalYawDeg", totalYaw,
		"totalPitchDeg", totalPitch)
	return nil
}
