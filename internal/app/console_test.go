// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/enviro_collector/internal/config"
	"github.com/relabs-tech/enviro_collector/internal/env"
	"github.com/relabs-tech/enviro_collector/internal/status"
)

var sampleReading = env.NewReading(
	env.Climate{Temperature: 21.5, Pressure: 1013.2, Humidity: 45},
	env.Particulate{P1: 10, P2: 5},
)

func TestFormatStatusLine(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 5, 0, time.Local)

	line := formatStatusLine(status.Dispatched("raspi-abc", at, sampleReading, true))
	assert.Equal(t, "[OK  ] 2026-03-01 12:00:05 raspi-abc temperature=21.50 pressure=101320.00 humidity=45.00 P1=10 P2=5", line)

	line = formatStatusLine(status.Dispatched("raspi-abc", at, sampleReading, false))
	assert.Contains(t, line, "[FAIL]")

	line = formatStatusLine(status.Failed("raspi-abc", at, errors.New("pms5003: read timeout")))
	assert.Equal(t, "[ERR ] 2026-03-01 12:00:05 raspi-abc pms5003: read timeout", line)
}

func TestRunConsole_RequiresBroker(t *testing.T) {
	cfg := config.Default()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	err := RunConsole(context.Background(), cfg, io.Discard, logger)
	require.ErrorIs(t, err, errNoBroker)
}
