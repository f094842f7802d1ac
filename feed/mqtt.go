package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/gyroflick/gyroflick/gmath"
	"github.com/gyroflick/gyroflick/tracker"
)

// MQTTConfig configures the MQTT sample source and pose publisher.
type MQTTConfig struct {
	Broker        string `help:"MQTT broker URL." default:"tcp://localhost:1883" env:"GYROFLICK_MQTT_BROKER"`
	ClientID      string `help:"MQTT client identifier." default:"gyroflick-feed"`
	SampleTopic   string `help:"Topic carrying raw IMU samples." default:"gyroflick/imu"`
	RecentreTopic string `help:"Topic whose messages trigger a recentre." default:"gyroflick/recentre"`
	PoseTopic     string `help:"Topic the fused pose is published to." default:"gyroflick/pose"`
}

// IMUSample is the JSON payload expected on the sample topic.
type IMUSample struct {
	// Sensor is "gyro" (rad/s) or "accel" (raw acceleration).
	Sensor      string  `json:"sensor"`
	TimestampNS uint64  `json:"timestampNs"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Z           float64 `json:"z"`
}

// MQTTSource subscribes to raw IMU samples, feeds them through an orientation
// tracker and publishes the resulting pose. It is the remote-sensor
// counterpart of pushing samples into a Tracker directly.
type MQTTSource struct {
	config MQTTConfig
	logger *slog.Logger

	mu     sync.Mutex
	track  *tracker.Tracker
	client mqtt.Client
}

// NewMQTTSource builds a source around a fresh tracker.
func NewMQTTSource(config MQTTConfig, logger *slog.Logger) *MQTTSource {
	return &MQTTSource{
		config: config,
		logger: logger,
		track:  tracker.New(),
	}
}

// Pose returns the current fused pose.
func (m *MQTTSource) Pose() Pose {
	m.mu.Lock()
	defer m.mu.Unlock()
	return PoseFromForwards(m.track.Forwards())
}

// Run connects, subscribes and pumps samples until ctx is cancelled.
func (m *MQTTSource) Run(ctx context.Context) error {
	opts := mqtt.NewClientOptions().
		AddBroker(m.config.Broker).
		SetClientID(m.config.ClientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}
	defer client.Disconnect(250)
	m.logger.Info("connected to MQTT broker", "broker", m.config.Broker)

	m.mu.Lock()
	m.client = client
	m.mu.Unlock()

	if token := client.Subscribe(m.config.SampleTopic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		m.handleSample(msg.Payload())
	}); token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", m.config.SampleTopic, token.Error())
	}

	if token := client.Subscribe(m.config.RecentreTopic, 0, func(_ mqtt.Client, _ mqtt.Message) {
		m.mu.Lock()
		m.track.Recentre()
		m.mu.Unlock()
		m.logger.Info("recentred")
	}); token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", m.config.RecentreTopic, token.Error())
	}

	m.logger.Info("subscribed", "samples", m.config.SampleTopic, "recentre", m.config.RecentreTopic)

	<-ctx.Done()
	return ctx.Err()
}

func (m *MQTTSource) handleSample(payload []byte) {
	var sample IMUSample
	if err := json.Unmarshal(payload, &sample); err != nil {
		m.logger.Warn("bad sample payload", "error", err)
		return
	}

	v := gmath.Vec3{X: sample.X, Y: sample.Y, Z: sample.Z}

	switch sample.Sensor {
	case "gyro":
		m.PushGyroSample(sample.TimestampNS, v)
	case "accel":
		m.PushAccelerometerSample(sample.TimestampNS, v)
	default:
		m.logger.Warn("unknown sensor kind", "sensor", sample.Sensor)
	}
}

// PushGyroSample feeds a gyro sample into the tracker and publishes the
// updated pose. Satisfies SampleSink so serial hardware can drive the same
// source.
func (m *MQTTSource) PushGyroSample(timestampNS uint64, angularVelocity gmath.Vec3) {
	m.mu.Lock()
	m.track.PushGyroSample(timestampNS, angularVelocity)
	m.publishPoseLocked()
	m.mu.Unlock()
}

// PushAccelerometerSample feeds an accelerometer sample into the tracker and
// publishes the updated pose.
func (m *MQTTSource) PushAccelerometerSample(timestampNS uint64, acceleration gmath.Vec3) {
	m.mu.Lock()
	m.track.PushAccelerometerSample(timestampNS, acceleration)
	m.publishPoseLocked()
	m.mu.Unlock()
}

func (m *MQTTSource) publishPoseLocked() {
	if m.client == nil {
		return
	}
	pose := PoseFromForwards(m.track.Forwards())
	data, err := json.Marshal(pose)
	if err != nil {
		m.logger.Error("marshal pose", "error", err)
		return
	}
	m.client.Publish(m.config.PoseTopic, 0, false, data)
}

// PublishRecentre asks a running MQTTSource to recentre by publishing to its
// recentre topic.
func PublishRecentre(config MQTTConfig, clientID string) error {
	opts := mqtt.NewClientOptions().
		AddBroker(config.Broker).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}
	defer client.Disconnect(250)

	if token := client.Publish(config.RecentreTopic, 0, false, []byte("recentre")); token.Wait() && token.Error() != nil {
		return fmt.Errorf("publish %s: %w", config.RecentreTopic, token.Error())
	}
	return nil
}

// SubscribePose subscribes to the pose topic, invoking fn for every pose
// published by a running MQTTSource, until ctx is cancelled.
func SubscribePose(ctx context.Context, config MQTTConfig, clientID string, fn func(Pose)) error {
	opts := mqtt.NewClientOptions().
		AddBroker(config.Broker).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}
	defer client.Disconnect(250)

	if token := client.Subscribe(config.PoseTopic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var pose Pose
		if err := json.Unmarshal(msg.Payload(), &pose); err != nil {
			return
		}
		fn(pose)
	}); token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", config.PoseTopic, token.Error())
	}

	<-ctx.Done()
	return ctx.Err()
}
