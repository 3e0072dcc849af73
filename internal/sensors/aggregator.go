// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/relabs-tech/enviro_collector/internal/env"
)

// Aggregator reads both sensors into one Reading per cycle.
type Aggregator struct {
	climate     ClimateReader
	particulate ParticulateReader
	logger      *slog.Logger
}

func NewAggregator(climate ClimateReader, particulate ParticulateReader, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		climate:     climate,
		particulate: particulate,
		logger:      logger,
	}
}

// Collect reads the climate sensor once, then the particulate sensor with
// a single reset+retry on a timeout or checksum failure. Any other error,
// including a failed retry, is returned to the caller.
func (a *Aggregator) Collect() (env.Reading, error) {
	c, err := a.climate.ReadClimate()
	if err != nil {
		return nil, fmt.Errorf("climate read: %w", err)
	}

	pm, err := a.readParticulate()
	if err != nil {
		return nil, err
	}

	return env.NewReading(c, pm), nil
}

func (a *Aggregator) readParticulate() (env.Particulate, error) {
	pm, err := a.particulate.ReadParticulate()
	if err == nil {
		return pm, nil
	}
	if !errors.Is(err, ErrReadTimeout) && !errors.Is(err, ErrChecksumMismatch) {
		return env.Particulate{}, fmt.Errorf("particulate read: %w", err)
	}

	a.logger.Warn("Failed to read PMS5003. Resetting and retrying.", "error", err)
	if err := a.particulate.Reset(); err != nil {
		return env.Particulate{}, fmt.Errorf("particulate reset: %w", err)
	}

	pm, err = a.particulate.ReadParticulate()
	if err != nil {
		return env.Particulate{}, fmt.Errorf("particulate read after reset: %w", err)
	}
	return pm, nil
}
