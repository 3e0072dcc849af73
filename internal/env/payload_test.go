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

func TestPartition_EndToEnd(t *testing.T) {
	r := Reading{
		{FieldTemperature, "21.50"},
		{FieldPressure, "1013.20"},
		{FieldHumidity, "45.00"},
		{FieldP1, "10"},
		{FieldP2, "5"},
	}

	pm, climate := Partition(r)

	assert.Equal(t, Payload{
		{ValueType: "temperature", Value: "21.50"},
		{ValueType: "pressure", Value: "1013.20"},
		{ValueType: "humidity", Value: "45.00"},
	}, climate)
	assert.Equal(t, Payload{
		{ValueType: "P1", Value: "10"},
		{ValueType: "P2", Value: "5"},
	}, pm)

	data, err := json.Marshal(pm)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"value_type":"P1","value":"10"},{"value_type":"P2","value":"5"}]`, string(data))
}

func TestPartition_IsExactSplit(t *testing.T) {
	readings := []Reading{
		{},
		{{FieldP1, "1"}},
		{{FieldHumidity, "50.00"}},
		{{"P0", "3"}, {"pressure", "1000.00"}, {"PM", "x"}, {"p1", "lowercase"}, {FieldP2, "9"}},
	}

	for _, r := range readings {
		pm, climate := Partition(r)
		require.Len(t, append(append(Payload{}, pm...), climate...), len(r))

		seen := map[string]int{}
		for _, v := range pm {
			assert.True(t, IsParticulate(v.ValueType), v.ValueType)
			seen[v.ValueType]++
		}
		for _, v := range climate {
			assert.False(t, IsParticulate(v.ValueType), v.ValueType)
			seen[v.ValueType]++
		}
		for _, f := range r {
			assert.Equal(t, 1, seen[f.Name], "field %s must land in exactly one payload", f.Name)
		}
	}
}

func TestPartition_EmptyPayloadsEncodeAsArrays(t *testing.T) {
	pm, climate := Partition(Reading{})

	data, err := json.Marshal(struct {
		PM      Payload `json:"pm"`
		Climate Payload `json:"climate"`
	}{pm, climate})
	require.NoError(t, err)
	assert.JSONEq(t, `{"pm":[],"climate":[]}`, string(data))
}
