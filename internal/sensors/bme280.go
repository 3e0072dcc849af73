// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"

	"github.com/relabs-tech/enviro_collector/internal/env"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/bmxx80"
	"periph.io/x/host/v3"
)

// ClimateReader is a device producing temperature, pressure and humidity.
type ClimateReader interface {
	ReadClimate() (env.Climate, error)
}

// BME280 is the climate sensor on the Enviro+ I2C bus.
type BME280 struct {
	bus i2c.BusCloser
	dev *bmxx80.Dev
}

// OpenBME280 initializes the periph host, opens the I2C bus and binds the
// BME280 at addr.
func OpenBME280(busName string, addr uint16) (*BME280, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("BME280: periph host init: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("BME280: I2C open (%s): %w", busName, err)
	}

	dev, err := bmxx80.NewI2C(bus, addr, &bmxx80.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("BME280: device init at 0x%02X: %w", addr, err)
	}

	return &BME280{bus: bus, dev: dev}, nil
}

// ReadClimate performs one forced measurement. Errors are returned as-is;
// the device is not retried.
func (b *BME280) ReadClimate() (env.Climate, error) {
	var e physic.Env
	if err := b.dev.Sense(&e); err != nil {
		return env.Climate{}, fmt.Errorf("BME280 sense: %w", err)
	}
	return climateFromEnv(e), nil
}

// Close halts the device and releases the bus.
func (b *BME280) Close() error {
	if err := b.dev.Halt(); err != nil {
		b.bus.Close()
		return fmt.Errorf("BME280 halt: %w", err)
	}
	return b.bus.Close()
}

func climateFromEnv(e physic.Env) env.Climate {
	return env.Climate{
		Temperature: e.Temperature.Celsius(),
		Pressure:    float64(e.Pressure) / float64(100*physic.Pascal), // 1 hPa = 100 Pa
		Humidity:    float64(e.Humidity) / float64(physic.PercentRH),
	}
}
