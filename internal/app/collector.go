// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/relabs-tech/enviro_collector/internal/env"
	"github.com/relabs-tech/enviro_collector/internal/status"
)

// DispatchInterval is the minimum time between two pushes upstream.
const DispatchInterval = 145 * time.Second

// ReadingSource produces one Reading per call, blocking on the sensors.
type ReadingSource interface {
	Collect() (env.Reading, error)
}

// ReadingSender pushes a Reading upstream and reports overall success.
type ReadingSender interface {
	SendReading(ctx context.Context, r env.Reading) bool
}

// StatusPublisher receives the outcome of dispatching and failed cycles.
type StatusPublisher interface {
	Publish(m status.Message)
}

// Collector is the sampling loop. It owns the cycle timer; nothing else
// reads or writes lastDispatch.
type Collector struct {
	source   ReadingSource
	sender   ReadingSender
	status   StatusPublisher
	sensorID string
	logger   *slog.Logger
	now      func() time.Time

	lastDispatch time.Time

	// Last failure status sent, so a fault that repeats every cycle is
	// published once per DispatchInterval.
	lastFailure   string
	lastFailureAt time.Time
}

// CollectorOption customizes a Collector.
type CollectorOption func(*Collector)

// WithStatusPublisher mirrors cycle outcomes to p.
func WithStatusPublisher(p StatusPublisher) CollectorOption {
	return func(c *Collector) { c.status = p }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) CollectorOption {
	return func(c *Collector) { c.now = now }
}

// NewCollector starts the cycle timer at construction time, so the first
// push happens once DispatchInterval has passed.
func NewCollector(source ReadingSource, sender ReadingSender, sensorID string, logger *slog.Logger, opts ...CollectorOption) *Collector {
	c := &Collector{
		source:   source,
		sender:   sender,
		sensorID: sensorID,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.lastDispatch = c.now()
	return c
}

// Run cycles until ctx is cancelled. Cycle failures are logged and the
// loop moves on. There is no pause between cycles; the sensor reads pace
// the loop.
func (c *Collector) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.cycle(ctx); err != nil {
			c.logger.Warn("Main Loop Exception", "error", err)
			c.publishFailure(err)
		}
	}
}

// cycle is the guarded region: collect and dispatch, with panics turned
// into errors.
func (c *Collector) cycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	reading, err := c.source.Collect()
	if err != nil {
		return err
	}

	now := c.now()
	if now.Sub(c.lastDispatch) <= DispatchInterval {
		return nil
	}

	c.logger.Info("reading", "values", reading.String())
	// The timer restarts before the push so a failed push waits a full
	// interval too.
	c.lastDispatch = now

	ok := c.sender.SendReading(ctx, reading)
	if ok {
		c.logger.Info("Sensor.Community Response: OK")
	} else {
		c.logger.Warn("Sensor.Community Response: Failed")
	}
	c.lastFailure = ""
	c.publish(status.Dispatched(c.sensorID, now, reading, ok))
	return nil
}

// publishFailure reports err unless the same error was already reported
// less than DispatchInterval ago.
func (c *Collector) publishFailure(err error) {
	now := c.now()
	text := err.Error()
	if text == c.lastFailure && now.Sub(c.lastFailureAt) < DispatchInterval {
		return
	}
	c.lastFailure = text
	c.lastFailureAt = now
	c.publish(status.Failed(c.sensorID, now, err))
}

func (c *Collector) publish(m status.Message) {
	if c.status != nil {
		c.status.Publish(m)
	}
}
