// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	require.NoError(t, err)

	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "1", cfg.I2CBus)
	assert.Equal(t, uint16(0x76), cfg.BME280I2CAddr)
	assert.Equal(t, "/dev/ttyAMA0", cfg.PMS5003SerialPort)
	assert.Equal(t, uint(9600), cfg.PMS5003BaudRate)
	assert.Equal(t, 5*time.Second, cfg.PMS5003ReadTimeout)
	assert.Equal(t, "/proc/cpuinfo", cfg.CPUInfoPath)
	assert.Empty(t, cfg.UploadEndpoint)
	assert.Empty(t, cfg.MQTTBroker)
	assert.Equal(t, "enviro/status", cfg.TopicStatus)
}

func TestParse_Overrides(t *testing.T) {
	input := `
# Enviro+ on a Pi Zero
LOG_LEVEL=debug
LOG_FORMAT=json
BME280_I2C_ADDR=0x77
PMS5003_SERIAL_PORT=/dev/serial0
PMS5003_READ_TIMEOUT=3s
UPLOAD_ENDPOINT=http://localhost:9000/push
MQTT_BROKER=tcp://localhost:1883
TOPIC_STATUS = enviro/kitchen/status
WEB_SERVER_PORT=9090
DISPLAY_I2C_ADDR=0x3D
`
	cfg, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, uint16(0x77), cfg.BME280I2CAddr)
	assert.Equal(t, "/dev/serial0", cfg.PMS5003SerialPort)
	assert.Equal(t, 3*time.Second, cfg.PMS5003ReadTimeout)
	assert.Equal(t, "http://localhost:9000/push", cfg.UploadEndpoint)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
	assert.Equal(t, "enviro/kitchen/status", cfg.TopicStatus)
	assert.Equal(t, 9090, cfg.WebServerPort)
	assert.Equal(t, uint16(0x3D), cfg.DisplayI2CAddr)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"missing separator", "LOG_LEVEL", "invalid config line 1"},
		{"unknown key", "FOO=bar", "unknown config key"},
		{"bad level", "LOG_LEVEL=loud", "invalid LOG_LEVEL"},
		{"bad format", "LOG_FORMAT=xml", "invalid LOG_FORMAT"},
		{"bad bme address", "BME280_I2C_ADDR=0x20", "must be 0x76 or 0x77"},
		{"bad timeout", "PMS5003_READ_TIMEOUT=soon", "invalid PMS5003_READ_TIMEOUT"},
		{"negative timeout", "PMS5003_READ_TIMEOUT=-1s", "must be positive"},
		{"bad endpoint", "UPLOAD_ENDPOINT=ftp://x", "must be an http(s) URL"},
		{"bad port", "WEB_SERVER_PORT=70000", "WEB_SERVER_PORT must be"},
		{"empty serial port", "PMS5003_SERIAL_PORT=", "PMS5003_SERIAL_PORT is required"},
		{"broker without topic", "MQTT_BROKER=tcp://x:1883\nTOPIC_STATUS=", "TOPIC_STATUS is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.txt"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "enviro_config.txt")
	require.NoError(t, os.WriteFile(path, []byte("I2C_BUS=3\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "3", cfg.I2CBus)
}
