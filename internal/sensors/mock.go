// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"math"
	"time"

	"github.com/relabs-tech/enviro_collector/internal/env"
)

// MockFrameInterval matches the PMS5003's active-mode output rate.
const MockFrameInterval = time.Second

// MockSensors generates smoothly drifting climate and particulate values
// for running the collector without an Enviro+ board attached.
type MockSensors struct {
	start time.Time
	now   func() time.Time
	sleep func(time.Duration)
}

// NewMockSensors creates a mock source for both sensors.
func NewMockSensors() *MockSensors {
	return &MockSensors{start: time.Now(), now: time.Now, sleep: time.Sleep}
}

func (m *MockSensors) elapsed() float64 {
	return m.now().Sub(m.start).Seconds()
}

func (m *MockSensors) ReadClimate() (env.Climate, error) {
	t := m.elapsed()
	return env.Climate{
		Temperature: 21 + 3*math.Sin(t/600),
		Pressure:    1013 + 4*math.Cos(t/1800),
		Humidity:    45 + 10*math.Sin(t/900),
	}, nil
}

// ReadParticulate blocks for one frame interval like the real UART does.
func (m *MockSensors) ReadParticulate() (env.Particulate, error) {
	m.sleep(MockFrameInterval)
	t := m.elapsed()
	pm25 := math.Round(8 + 6*math.Abs(math.Sin(t/300)))
	return env.Particulate{
		P1: pm25 + math.Round(4*math.Abs(math.Cos(t/450))),
		P2: pm25,
	}, nil
}

func (m *MockSensors) Reset() error { return nil }
