// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package env

import "strings"

// particulatePrefix marks the fields that belong to the particulate pin.
const particulatePrefix = "P"

// SensorDataValue is one entry of the sensordatavalues array.
type SensorDataValue struct {
	ValueType string `json:"value_type"`
	Value     string `json:"value"`
}

// Payload is the wire form of one partition of a Reading.
type Payload []SensorDataValue

// IsParticulate reports whether a field belongs to the particulate payload.
func IsParticulate(name string) bool {
	return strings.HasPrefix(name, particulatePrefix)
}

// Partition splits r into its particulate and climate payloads. Every
// field ends up in exactly one of them, in the order it appears in r.
func Partition(r Reading) (particulate, climate Payload) {
	particulate = Payload{}
	climate = Payload{}
	for _, f := range r {
		v := SensorDataValue{ValueType: f.Name, Value: f.Value}
		if IsParticulate(f.Name) {
			particulate = append(particulate, v)
		} else {
			climate = append(climate, v)
		}
	}
	return particulate, climate
}
