// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package env

// Climate is a single BME280 measurement.
type Climate struct {
	Temperature float64 `json:"temp_c"`       // °C
	Pressure    float64 `json:"pressure_hpa"` // hPa, as reported by the device
	Humidity    float64 `json:"humidity_pct"` // %RH
}

// Particulate is a single PMS5003 mass concentration sample in µg/m³.
type Particulate struct {
	P1 float64 `json:"p1"` // PM10
	P2 float64 `json:"p2"` // PM2.5
}
