// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/relabs-tech/enviro_collector/internal/status"
)

func litPixels(img *image1bit.VerticalLSB) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.BitAt(x, y) {
				n++
			}
		}
	}
	return n
}

func TestStatusLines(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 5, 0, time.Local)

	lines := statusLines(status.Message{}, false)
	assert.Contains(t, lines, "Waiting...")

	lines = statusLines(status.Dispatched("raspi-abc", at, sampleReading, true), true)
	assert.Equal(t, []string{
		"T 21.50C",
		"H 45.00%",
		"P 101320.00Pa",
		"PM10 10 PM2.5 5",
		"Upload OK 12:00",
	}, lines)
	for _, l := range lines {
		assert.LessOrEqual(t, len(l), displayWidth/7)
	}

	lines = statusLines(status.Failed("raspi-abc", at, errors.New("pms5003: checksum mismatch")), true)
	assert.Equal(t, "Sensor error", lines[0])
	assert.Equal(t, "pms5003: checksum", lines[2])
}

func TestRenderStatus(t *testing.T) {
	blank := image1bit.NewVerticalLSB(renderSplash().Bounds())
	assert.Zero(t, litPixels(blank))

	splash := renderSplash()
	assert.Equal(t, displayWidth, splash.Bounds().Dx())
	assert.Equal(t, displayHeight, splash.Bounds().Dy())
	assert.Positive(t, litPixels(splash))

	waiting := litPixels(renderStatus(status.Message{}, false))
	full := litPixels(renderStatus(status.Dispatched("raspi-abc", time.Now(), sampleReading, true), true))
	assert.Positive(t, waiting)
	assert.Greater(t, full, waiting)
}

type recordingBus struct {
	addrs []uint16
}

func (b *recordingBus) String() string                  { return "recording" }
func (b *recordingBus) SetSpeed(physic.Frequency) error { return nil }

func (b *recordingBus) Tx(addr uint16, w, r []byte) error {
	b.addrs = append(b.addrs, addr)
	return nil
}

func TestAddrBus_RewritesAddress(t *testing.T) {
	rec := &recordingBus{}
	bus := &addrBus{Bus: rec, addr: 0x3D}

	assert.NoError(t, bus.Tx(0x3C, []byte{0x00}, nil))
	assert.NoError(t, bus.Tx(0x3C, []byte{0x40}, nil))
	assert.Equal(t, []uint16{0x3D, 0x3D}, rec.addrs)
	assert.Equal(t, "recording", bus.String())
}
