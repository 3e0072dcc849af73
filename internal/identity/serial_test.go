// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package identity

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cpuinfo = `processor	: 0
model name	: ARMv7 Processor rev 4 (v7l)
BogoMIPS	: 38.40

Hardware	: BCM2835
Revision	: a02082
Serial		: 00000000a1b2c3d4
Model		: Raspberry Pi 3 Model B Rev 1.2
`

func TestSerialNumber(t *testing.T) {
	serial, err := SerialNumber(strings.NewReader(cpuinfo))
	require.NoError(t, err)
	assert.Equal(t, "00000000a1b2c3d4", serial)
}

func TestSerialNumber_Missing(t *testing.T) {
	tests := map[string]string{
		"no serial line": "processor\t: 0\nHardware\t: BCM2835\n",
		"empty value":    "Serial\t\t: \n",
		"no separator":   "Serial 1234\n",
		"empty input":    "",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := SerialNumber(strings.NewReader(input))
			assert.ErrorIs(t, err, ErrSerialNotFound)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cpuinfo")
	require.NoError(t, os.WriteFile(path, []byte(cpuinfo), 0o644))

	dev, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "00000000a1b2c3d4", dev.Serial)
	assert.Equal(t, "raspi-00000000a1b2c3d4", dev.ID)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "cpuinfo")
	require.NoError(t, os.WriteFile(path, []byte("Hardware\t: BCM2835\n"), 0o644))
	_, err = Load(path)
	assert.ErrorIs(t, err, ErrSerialNotFound)
}

func TestWiFiConnected_CommandFailure(t *testing.T) {
	saved := addressCommand
	t.Cleanup(func() { addressCommand = saved })

	addressCommand = []string{"/nonexistent/hostname"}
	assert.False(t, WiFiConnected(context.Background()))
}
