// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration values.
type Config struct {
	// Logging
	LogLevel  slog.Level
	LogFormat string // "text" or "json"

	// Climate sensor (BME280)
	I2CBus        string
	BME280I2CAddr uint16

	// Particulate sensor (PMS5003)
	PMS5003SerialPort  string
	PMS5003BaudRate    uint
	PMS5003ResetPin    string
	PMS5003EnablePin   string
	PMS5003ReadTimeout time.Duration

	// Identity
	CPUInfoPath string

	// Upload (empty UploadEndpoint uses the public Sensor.Community push API)
	UploadEndpoint string

	// MQTT (status publishing is disabled when MQTTBroker is empty)
	MQTTBroker            string
	MQTTClientIDCollector string
	MQTTClientIDConsole   string
	MQTTClientIDWeb       string
	MQTTClientIDDisplay   string
	TopicStatus           string

	// Web Server
	WebServerPort int

	// Display
	DisplayI2CAddr        uint16
	DisplayUpdateInterval int // milliseconds
}

// Default returns the configuration for a stock Pimoroni Enviro+ board
// with a PMS5003 attached to the Pi's primary UART.
func Default() *Config {
	return &Config{
		LogLevel:  slog.LevelInfo,
		LogFormat: "text",

		I2CBus:        "1",
		BME280I2CAddr: 0x76,

		PMS5003SerialPort:  "/dev/ttyAMA0",
		PMS5003BaudRate:    9600,
		PMS5003ResetPin:    "GPIO27",
		PMS5003EnablePin:   "GPIO22",
		PMS5003ReadTimeout: 5 * time.Second,

		CPUInfoPath: "/proc/cpuinfo",

		MQTTClientIDCollector: "enviro-collector",
		MQTTClientIDConsole:   "enviro-console",
		MQTTClientIDWeb:       "enviro-web",
		MQTTClientIDDisplay:   "enviro-display",
		TopicStatus:           "enviro/status",

		WebServerPort: 8080,

		DisplayI2CAddr:        0x3C,
		DisplayUpdateInterval: 1000,
	}
}

// Load reads the configuration file and returns a Config struct.
// Keys missing from the file keep their Default value.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// LoadOrDefault behaves like Load but falls back to Default when the file
// does not exist.
func LoadOrDefault(configPath string) (*Config, error) {
	cfg, err := Load(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Parse reads KEY=VALUE lines from r on top of Default.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// Logging
	case "LOG_LEVEL":
		level, err := parseLogLevel(value)
		if err != nil {
			return err
		}
		c.LogLevel = level
	case "LOG_FORMAT":
		switch value {
		case "text", "json":
			c.LogFormat = value
		default:
			return fmt.Errorf("invalid LOG_FORMAT %q (allowed: text, json)", value)
		}

	// Climate sensor
	case "I2C_BUS":
		c.I2CBus = value
	case "BME280_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid BME280_I2C_ADDR %q: %w", value, err)
		}
		if addr != 0x76 && addr != 0x77 {
			return fmt.Errorf("BME280_I2C_ADDR must be 0x76 or 0x77, got 0x%X", addr)
		}
		c.BME280I2CAddr = uint16(addr)

	// Particulate sensor
	case "PMS5003_SERIAL_PORT":
		c.PMS5003SerialPort = value
	case "PMS5003_BAUD_RATE":
		rate, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid PMS5003_BAUD_RATE %q: %w", value, err)
		}
		c.PMS5003BaudRate = uint(rate)
	case "PMS5003_RESET_PIN":
		c.PMS5003ResetPin = value
	case "PMS5003_ENABLE_PIN":
		c.PMS5003EnablePin = value
	case "PMS5003_READ_TIMEOUT":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid PMS5003_READ_TIMEOUT %q: %w", value, err)
		}
		if d <= 0 {
			return fmt.Errorf("PMS5003_READ_TIMEOUT must be positive, got %v", d)
		}
		c.PMS5003ReadTimeout = d

	// Identity
	case "CPUINFO_PATH":
		c.CPUInfoPath = value

	// Upload
	case "UPLOAD_ENDPOINT":
		if value != "" && !strings.HasPrefix(value, "https://") && !strings.HasPrefix(value, "http://") {
			return fmt.Errorf("UPLOAD_ENDPOINT must be an http(s) URL, got %q", value)
		}
		c.UploadEndpoint = value

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_COLLECTOR":
		c.MQTTClientIDCollector = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value
	case "TOPIC_STATUS":
		c.TopicStatus = value

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		if port <= 0 || port > 65535 {
			return fmt.Errorf("WEB_SERVER_PORT must be 1-65535, got %d", port)
		}
		c.WebServerPort = port

	// Display
	case "DISPLAY_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_I2C_ADDR %q: %w", value, err)
		}
		c.DisplayI2CAddr = uint16(addr)
	case "DISPLAY_UPDATE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_UPDATE_INTERVAL %q: %w", value, err)
		}
		c.DisplayUpdateInterval = interval

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.I2CBus == "" {
		return fmt.Errorf("I2C_BUS is required")
	}
	if c.PMS5003SerialPort == "" {
		return fmt.Errorf("PMS5003_SERIAL_PORT is required")
	}
	if c.PMS5003BaudRate == 0 {
		return fmt.Errorf("PMS5003_BAUD_RATE is required")
	}
	if c.CPUInfoPath == "" {
		return fmt.Errorf("CPUINFO_PATH is required")
	}
	if c.MQTTBroker != "" && c.TopicStatus == "" {
		return fmt.Errorf("TOPIC_STATUS is required when MQTT_BROKER is set")
	}
	if c.DisplayUpdateInterval <= 0 {
		return fmt.Errorf("DISPLAY_UPDATE_INTERVAL must be positive")
	}
	return nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
