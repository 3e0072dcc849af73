// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"periph.io/x/conn/v3/physic"
)

func TestClimateFromEnv(t *testing.T) {
	e := physic.Env{
		Temperature: physic.ZeroCelsius + 21500*physic.MilliKelvin,
		Pressure:    101320 * physic.Pascal,
		Humidity:    45 * physic.PercentRH,
	}

	c := climateFromEnv(e)
	assert.InDelta(t, 21.5, c.Temperature, 1e-6)
	assert.InDelta(t, 1013.2, c.Pressure, 1e-6)
	assert.InDelta(t, 45.0, c.Humidity, 1e-6)
}
