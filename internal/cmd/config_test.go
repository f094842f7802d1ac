package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigInitServeTemplate(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "serve.json")

	c := &ConfigInit{Command: "serve", Format: "json", Output: dest}
	require.NoError(t, c.Run())

	data, err := os.ReadFile(dest)
	require.NoError(t, err)

	var root map[string]any
	require.NoError(t, json.Unmarshal(data, &root))

	feedSection, ok := root["feed"].(map[string]any)
	require.True(t, ok, "template should have a feed section")
	assert.Equal(t, ":4313", feedSection["addr"])

	tune, ok := root["tune"].(map[string]any)
	require.True(t, ok, "template should have a tune section")
	assert.EqualValues(t, 3, tune["sensitivity"])
	assert.EqualValues(t, 0.65, tune["flickThreshold"])

	mqttSection, ok := root["mqtt"].(map[string]any)
	require.True(t, ok, "template should have a mqtt section")
	assert.Equal(t, "tcp://localhost:1883", mqttSection["broker"])
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "web.json")
	require.NoError(t, os.WriteFile(dest, []byte("{}"), 0o644))

	c := &ConfigInit{Command: "web", Format: "json", Output: dest}
	assert.Error(t, c.Run())

	c.Force = true
	assert.NoError(t, c.Run())
}

func TestConfigInitRejectsUnknownFormat(t *testing.T) {
	c := &ConfigInit{Command: "serve", Format: "ini"}
	assert.Error(t, c.Run())
}
