// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package env

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Field names understood by the sensor.community push API.
const (
	FieldTemperature = "temperature"
	FieldPressure    = "pressure"
	FieldHumidity    = "humidity"
	FieldP1          = "P1"
	FieldP2          = "P2"
)

// pressureScale converts the device's hPa into the Pa the API expects.
const pressureScale = 100

// Field is one formatted value of a Reading.
type Field struct {
	Name  string
	Value string
}

// Reading is one cycle's formatted sensor values in insertion order.
// Values are strings because the upstream API expects them quoted.
type Reading []Field

// NewReading formats a climate and a particulate sample into a Reading.
func NewReading(c Climate, p Particulate) Reading {
	return Reading{
		{FieldTemperature, FormatClimate(c.Temperature)},
		{FieldPressure, FormatClimate(c.Pressure * pressureScale)},
		{FieldHumidity, FormatClimate(c.Humidity)},
		{FieldP1, FormatParticulate(p.P1)},
		{FieldP2, FormatParticulate(p.P2)},
	}
}

// FormatClimate renders a climate value with two decimals.
func FormatClimate(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// FormatParticulate renders a particulate value without a fractional part
// when it is integral, which is always the case for PMS5003 output.
func FormatParticulate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Get returns the value stored under name.
func (r Reading) Get(name string) (string, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// String renders the reading as {name: value, ...} for log lines.
func (r Reading) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %s", f.Name, f.Value)
	}
	b.WriteByte('}')
	return b.String()
}

// MarshalJSON encodes the reading as a JSON object keeping field order.
func (r Reading) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

// UnmarshalJSON decodes a JSON object of string values, keeping the
// order in which keys appear.
func (r *Reading) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(strings.NewReader(string(data)))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("reading: expected JSON object, got %v", tok)
	}

	out := Reading{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("reading: unexpected key %v", tok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("reading: field %q: %w", name, err)
		}
		out = append(out, Field{Name: name, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*r = out
	return nil
}
