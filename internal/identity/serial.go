// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package identity

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Prefix is prepended to the board serial to form the X-Sensor ID that was
// registered with sensor.community.
const Prefix = "raspi-"

// ErrSerialNotFound means cpuinfo carries no usable Serial line.
var ErrSerialNotFound = errors.New("serial number not found in cpuinfo")

// SerialNumber returns the value of the first "Serial" line in a
// /proc/cpuinfo style listing.
func SerialNumber(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "Serial") {
			continue
		}
		_, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if serial := strings.TrimSpace(value); serial != "" {
			return serial, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read cpuinfo: %w", err)
	}
	return "", ErrSerialNotFound
}

// Device is the identity of this collector toward the upstream API.
type Device struct {
	Serial string
	ID     string
}

// Load reads the serial from cpuinfoPath and derives the device ID.
func Load(cpuinfoPath string) (Device, error) {
	f, err := os.Open(cpuinfoPath)
	if err != nil {
		return Device{}, fmt.Errorf("open %s: %w", cpuinfoPath, err)
	}
	defer f.Close()

	serial, err := SerialNumber(f)
	if err != nil {
		return Device{}, fmt.Errorf("%s: %w", cpuinfoPath, err)
	}
	return Device{Serial: serial, ID: Prefix + serial}, nil
}
