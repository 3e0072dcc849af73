// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/enviro_collector/internal/config"
	"github.com/relabs-tech/enviro_collector/internal/env"
	"github.com/relabs-tech/enviro_collector/internal/status"
)

const (
	displayWidth  = 128
	displayHeight = 64
	lineHeight    = 12
)

// addrBus pins every transaction to addr. ssd1306.NewI2C always talks to
// 0x3C, which leaves no way to reach a panel strapped to 0x3D.
type addrBus struct {
	i2c.Bus
	addr uint16
}

func (b *addrBus) Tx(_ uint16, w, r []byte) error {
	return b.Bus.Tx(b.addr, w, r)
}

// displayData holds the latest status message for the screen.
type displayData struct {
	mu   sync.RWMutex
	last status.Message
	have bool
}

func (d *displayData) update(m status.Message) {
	d.mu.Lock()
	d.last = m
	d.have = true
	d.mu.Unlock()
}

func (d *displayData) snapshot() (status.Message, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.last, d.have
}

// RunDisplay renders the latest collector status on an SSD1306 panel.
func RunDisplay(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return fmt.Errorf("failed to open I2C bus %q: %w", cfg.I2CBus, err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(&addrBus{Bus: bus, addr: cfg.DisplayI2CAddr}, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	defer dev.Halt()
	logger.Info("display initialized", "addr", fmt.Sprintf("0x%02X", cfg.DisplayI2CAddr))

	if err := dev.Draw(dev.Bounds(), renderSplash(), image.Point{}); err != nil {
		logger.Warn("display: error showing splash", "error", err)
	}

	client, err := connectSubscriber(cfg.MQTTBroker, cfg.MQTTClientIDDisplay, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	data := &displayData{}
	if err := status.Subscribe(client, cfg.TopicStatus, logger, data.update); err != nil {
		return err
	}

	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	logger.Info("display: starting update loop")
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m, have := data.snapshot()
			if err := dev.Draw(dev.Bounds(), renderStatus(m, have), image.Point{}); err != nil {
				logger.Warn("display: error updating display", "error", err)
			}
		}
	}
}

func newCanvas() (*image1bit.VerticalLSB, *font.Drawer) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, displayWidth, displayHeight))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	return img, drawer
}

func drawLines(drawer *font.Drawer, lines []string) {
	for i, line := range lines {
		drawer.Dot = fixed.P(0, lineHeight*(i+1)-1)
		drawer.DrawBytes([]byte(line))
	}
}

func renderSplash() *image1bit.VerticalLSB {
	img, drawer := newCanvas()

	drawer.Dot = fixed.P(15, 26)
	drawer.DrawBytes([]byte("Enviro+ Pi"))
	drawer.Dot = fixed.P(5, 43)
	drawer.DrawBytes([]byte("Warming up..."))

	return img
}

// statusLines lays out one status message in five 18-column rows.
func statusLines(m status.Message, have bool) []string {
	if !have {
		return []string{"", "Air quality", "Waiting..."}
	}
	if m.Error != "" {
		return []string{
			"Sensor error",
			m.Time.Local().Format(time.TimeOnly),
			truncate(m.Error, 18),
		}
	}

	get := func(name string) string {
		v, ok := m.Reading.Get(name)
		if !ok {
			return "-"
		}
		return v
	}

	state := "Upload OK"
	if !m.OK {
		state = "Upload FAIL"
	}

	return []string{
		"T " + get(env.FieldTemperature) + "C",
		"H " + get(env.FieldHumidity) + "%",
		"P " + get(env.FieldPressure) + "Pa",
		fmt.Sprintf("PM10 %s PM2.5 %s", get(env.FieldP1), get(env.FieldP2)),
		state + " " + m.Time.Local().Format("15:04"),
	}
}

func renderStatus(m status.Message, have bool) *image1bit.VerticalLSB {
	img, drawer := newCanvas()
	drawLines(drawer, statusLines(m, have))
	return img
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimRight(s[:n], " ")
}
