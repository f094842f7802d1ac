// Package cmd defines the gyroflick command line interface.
package cmd

// LogFlags groups the logging flags shared by all commands.
type LogFlags struct {
	Level   string `help:"Log level (trace, debug, info, warn, error)" default:"info" env:"GYROFLICK_LOG_LEVEL"`
	File    string `help:"Write logs to this file instead of the console" env:"GYROFLICK_LOG_FILE"`
	RawFile string `help:"Write a hex dump of every frame and result to this file" env:"GYROFLICK_LOG_RAW_FILE"`
}

// CLI is the root command structure parsed by kong.
type CLI struct {
	ConfigFile string   `name:"config-file" help:"Path to a config file (json, yaml or toml)" env:"GYROFLICK_CONFIG"`
	Log        LogFlags `embed:"" prefix:"log."`

	Serve  Serve         `cmd:"" help:"Run the input shaping feed server"`
	Replay Replay        `cmd:"" help:"Replay a recorded frame trace through the pipeline"`
	Pose   PoseCommand   `cmd:"" help:"Print the fused orientation published over MQTT"`
	Web    Web           `cmd:"" help:"Serve the pose over HTTP and WebSocket"`
	Config ConfigCommand `cmd:"" help:"Configuration helpers"`
}
