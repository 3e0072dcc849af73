// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package env

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatting(t *testing.T) {
	assert.Equal(t, "21.50", FormatClimate(21.5))
	assert.Equal(t, "1013.20", FormatClimate(10.132*pressureScale))
	assert.Equal(t, "7", FormatParticulate(7))
	assert.Equal(t, "0", FormatParticulate(0))
}

func TestNewReading(t *testing.T) {
	r := NewReading(
		Climate{Temperature: 21.5, Pressure: 10.132, Humidity: 45},
		Particulate{P1: 10, P2: 5},
	)

	want := Reading{
		{FieldTemperature, "21.50"},
		{FieldPressure, "1013.20"},
		{FieldHumidity, "45.00"},
		{FieldP1, "10"},
		{FieldP2, "5"},
	}
	assert.Equal(t, want, r)

	v, ok := r.Get(FieldPressure)
	assert.True(t, ok)
	assert.Equal(t, "1013.20", v)

	_, ok = r.Get("altitude")
	assert.False(t, ok)
}

func TestReading_String(t *testing.T) {
	r := Reading{{FieldTemperature, "21.50"}, {FieldP1, "10"}}
	assert.Equal(t, "{temperature: 21.50, P1: 10}", r.String())
	assert.Equal(t, "{}", Reading{}.String())
}

func TestReading_JSONKeepsOrder(t *testing.T) {
	r := Reading{{FieldP2, "5"}, {FieldTemperature, "21.50"}, {FieldP1, "10"}}

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"P2":"5","temperature":"21.50","P1":"10"}`, string(data))
	assert.Equal(t, `{"P2":"5","temperature":"21.50","P1":"10"}`, string(data))

	var back Reading
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, r, back)
}

func TestReading_UnmarshalRejectsNonObject(t *testing.T) {
	var r Reading
	assert.Error(t, json.Unmarshal([]byte(`["P1"]`), &r))
	assert.Error(t, json.Unmarshal([]byte(`{"P1":10}`), &r))
}
