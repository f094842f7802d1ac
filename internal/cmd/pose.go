package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/gyroflick/gyroflick/feed"
)

// PoseCommand prints the fused orientation, either as published over MQTT
// or by polling a feed server with empty frames.
type PoseCommand struct {
	MQTTConfig feed.MQTTConfig `embed:"" prefix:"mqtt."`

	FeedAddr string `help:"Poll this feed server over TCP instead of subscribing via MQTT."`
	FeedKey  string `help:"Pre-shared key for the feed server." env:"GYROFLICK_KEY"`

	Watch bool `help:"Interactive mode: keep printing, press r to recentre and q to quit." default:"false"`
}

// Run is called by kong when the pose command is executed.
func (p *PoseCommand) Run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poseCh := make(chan feed.Pose, 1)
	errCh := make(chan error, 1)
	recentre := p.startSource(ctx, poseCh, errCh)

	if !p.Watch {
		select {
		case pose := <-poseCh:
			printPose(pose)
			return nil
		case err := <-errCh:
			return err
		case <-ctx.Done():
			return nil
		}
	}

	return watchPoses(ctx, poseCh, errCh, recentre, logger)
}

// startSource launches the pose producer and returns the recentre trigger
// for the watch loop.
func (p *PoseCommand) startSource(ctx context.Context, poseCh chan feed.Pose, errCh chan error) func() error {
	push := func(pose feed.Pose) {
		select {
		case poseCh <- pose:
		default:
		}
	}

	if p.FeedAddr != "" {
		recentreCh := make(chan struct{}, 1)
		go func() {
			errCh <- pollFeed(ctx, p.FeedAddr, p.FeedKey, recentreCh, push)
		}()
		return func() error {
			select {
			case recentreCh <- struct{}{}:
			default:
			}
			return nil
		}
	}

	go func() {
		errCh <- feed.SubscribePose(ctx, p.MQTTConfig, "gyroflick-pose", push)
	}()
	return func() error {
		return feed.PublishRecentre(p.MQTTConfig, "gyroflick-pose-recentre")
	}
}

// pollFeed streams empty frames at the reference rate and reports the
// forwards pose the server answers with. A queued recentre request rides on
// the next frame's button bit.
func pollFeed(ctx context.Context, addr, key string, recentreCh <-chan struct{}, push func(feed.Pose)) error {
	client, err := feed.Dial(addr, key)
	if err != nil {
		return err
	}
	defer client.Close()

	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			frame := feed.Frame{TimestampNS: uint64(time.Now().UnixNano())}
			select {
			case <-recentreCh:
				frame.Buttons |= feed.ButtonRecentre
			default:
			}

			result, err := client.Apply(frame)
			if err != nil {
				return err
			}
			push(feed.PoseFromForwards(result.Forwards()))
		}
	}
}

func watchPoses(ctx context.Context, poseCh <-chan feed.Pose, errCh <-chan error, recentre func() error, logger *slog.Logger) error {
	// Raw mode so single keypresses arrive without a newline.
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("raw terminal: %w", err)
		}
		defer func() {
			_ = term.Restore(fd, oldState)
			fmt.Println()
		}()
	}

	keyCh := make(chan byte, 1)
	go func() {
		buf := make([]byte, 1)
		for {
			if _, err := os.Stdin.Read(buf); err != nil {
				return
			}
			keyCh <- buf[0]
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			if ctx.Err() != nil {
				return nil
			}
			return err
		case pose := <-poseCh:
			fmt.Printf("\ryaw %8.2f  pitch %8.2f  forwards (%6.3f %6.3f %6.3f)   ",
				pose.Yaw, pose.Pitch, pose.ForwardX, pose.ForwardY, pose.ForwardZ)
		case key := <-keyCh:
			switch key {
			case 'q', 3: // q or ctrl-c
				return nil
			case 'r':
				if err := recentre(); err != nil {
					logger.Error("recentre failed", "error", err)
				}
			}
		}
	}
}

func printPose(pose feed.Pose) {
	fmt.Printf("yaw %.2f pitch %.2f forwards (%.3f %.3f %.3f)\n",
		pose.Yaw, pose.Pitch, pose.ForwardX, pose.ForwardY, pose.ForwardZ)
}
