// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package status

import (
	"time"

	"github.com/google/uuid"

	"github.com/relabs-tech/enviro_collector/internal/env"
)

// Message describes the outcome of one collector cycle that either
// dispatched a reading or failed.
type Message struct {
	CycleID  uuid.UUID   `json:"cycle_id"`
	Time     time.Time   `json:"time"`
	SensorID string      `json:"sensor_id"`
	Reading  env.Reading `json:"reading,omitempty"`
	OK       bool        `json:"ok"`
	Error    string      `json:"error,omitempty"`
}

// Dispatched builds the message for a cycle that pushed r upstream.
func Dispatched(sensorID string, at time.Time, r env.Reading, ok bool) Message {
	return Message{
		CycleID:  uuid.New(),
		Time:     at,
		SensorID: sensorID,
		Reading:  r,
		OK:       ok,
	}
}

// Failed builds the message for a cycle abandoned with err.
func Failed(sensorID string, at time.Time, err error) Message {
	return Message{
		CycleID:  uuid.New(),
		Time:     at,
		SensorID: sensorID,
		Error:    err.Error(),
	}
}
