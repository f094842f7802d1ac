package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path"
	"strings"
	"syscall"

	"github.com/gyroflick/gyroflick/feed"
	"github.com/gyroflick/gyroflick/internal/configpaths"
	"github.com/gyroflick/gyroflick/internal/log"
	"github.com/gyroflick/gyroflick/shaper"
	"github.com/gyroflick/gyroflick/tracker"
)

const keyFileName = "gyroflick.key.txt"

// Serve runs the frame feed server, and optionally MQTT and serial IMU
// sources next to it.
type Serve struct {
	FeedConfig feed.ServerConfig `embed:"" prefix:"feed."`
	Settings   shaper.Settings   `embed:"" prefix:"tune."`

	Encrypt bool `help:"Require the pre-shared key even when none is configured; one is generated and persisted on first use." default:"false" env:"GYROFLICK_ENCRYPT"`

	WithMqtt   bool            `name:"with-mqtt" help:"Also run the MQTT IMU source." default:"false"`
	MQTTConfig feed.MQTTConfig `embed:"" prefix:"mqtt."`

	WithSerial   bool              `name:"with-serial" help:"Also run the serial IMU source." default:"false"`
	SerialConfig feed.SerialConfig `embed:"" prefix:"serial."`
}

// Run is called by kong when the serve command is executed.
func (s *Serve) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.StartServer(ctx, logger, rawLogger)
}

func (s *Serve) StartServer(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger) error {
	if s.Encrypt && s.FeedConfig.Key == "" {
		key, err := loadOrCreateKey(logger)
		if err != nil {
			return err
		}
		s.FeedConfig.Key = key
	}

	logger.Info("starting gyroflick feed server", "addr", s.FeedConfig.Addr)

	srv := feed.NewServer(s.FeedConfig, s.Settings, logger, rawLogger)

	feedErrCh := make(chan error, 1)
	go func() {
		feedErrCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-feedErrCh:
		return err
	case <-srv.Ready():
	}

	sourceErrCh := make(chan error, 2)
	var source *feed.MQTTSource
	if s.WithMqtt {
		source = feed.NewMQTTSource(s.MQTTConfig, logger)
		go func() {
			sourceErrCh <- source.Run(ctx)
		}()
	}
	if s.WithSerial {
		// Route serial samples into the MQTT source when it is running, so
		// the fused pose still gets published. Otherwise fuse locally.
		var sink feed.SampleSink = tracker.New()
		if source != nil {
			sink = source
		}
		go func() {
			sourceErrCh <- feed.RunSerialSource(ctx, s.SerialConfig, sink, logger)
		}()
	}

	select {
	case <-ctx.Done():
		_ = srv.Close()
		<-feedErrCh
		return nil
	case err := <-feedErrCh:
		return err
	case err := <-sourceErrCh:
		_ = srv.Close()
		<-feedErrCh
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
}

// loadOrCreateKey reads the persisted pre-shared key, generating and storing
// a new one on first use.
func loadOrCreateKey(logger *slog.Logger) (string, error) {
	keyFileDir, err := configpaths.DefaultConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve key file path: %w", err)
	}
	keyFilePath := path.Join(keyFileDir, keyFileName)
	if pwd, err := os.ReadFile(keyFilePath); err == nil {
		return strings.TrimSpace(string(pwd)), nil
	}

	key, err := feed.GenerateKey()
	if err != nil {
		return "", fmt.Errorf("failed to generate feed key: %w", err)
	}
	if err := os.MkdirAll(keyFileDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config dir for key file: %w", err)
	}
	if err := os.WriteFile(keyFilePath, []byte(key), 0o600); err != nil {
		return "", fmt.Errorf("failed to write feed key: %w", err)
	}
	logger.Info("generated feed pre-shared key", "path", keyFilePath)
	return key, nil
}
