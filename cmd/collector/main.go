// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/enviro_collector/internal/app"
	"github.com/relabs-tech/enviro_collector/internal/config"
	"github.com/relabs-tech/enviro_collector/internal/identity"
	"github.com/relabs-tech/enviro_collector/internal/logging"
	"github.com/relabs-tech/enviro_collector/internal/luftdaten"
	"github.com/relabs-tech/enviro_collector/internal/sensors"
	"github.com/relabs-tech/enviro_collector/internal/status"
)

const banner = `enviro-collector - reads temperature, pressure, humidity, PM2.5 and PM10
and sends them to Sensor.Community, the citizen science air quality project.

Register the device at https://devices.sensor.community/ with the Raspberry Pi
serial number logged below before the data appears on the map.

Press Ctrl+C to exit!`

func main() {
	configPath := flag.String("config", "./enviro_config.txt", "path to the config file")
	mock := flag.Bool("mock", false, "use simulated sensors instead of the Enviro+ board")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg, "collector")
	slog.SetDefault(logger)
	logger.Info(banner)

	if err := run(cfg, *mock, logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, mock bool, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	device, err := identity.Load(cfg.CPUInfoPath)
	if err != nil {
		return fmt.Errorf("device identity: %w", err)
	}

	wifi := "disconnected"
	if identity.WiFiConnected(ctx) {
		wifi = "connected"
	}
	logger.Info("Raspberry Pi serial: " + device.Serial)
	logger.Info("Wi-Fi: " + wifi)

	climate, particulate, closeSensors, err := openSensors(cfg, mock, logger)
	if err != nil {
		return err
	}
	defer closeSensors()

	var opts []app.CollectorOption
	if cfg.MQTTBroker != "" {
		publisher, err := status.Connect(cfg.MQTTBroker, cfg.MQTTClientIDCollector, cfg.TopicStatus, logger)
		if err != nil {
			return err
		}
		defer publisher.Close()
		opts = append(opts, app.WithStatusPublisher(publisher))
	}

	aggregator := sensors.NewAggregator(climate, particulate, logger)
	client := luftdaten.NewClient(luftdaten.Options{
		SensorID: device.ID,
		Endpoint: cfg.UploadEndpoint,
	}, logger)
	collector := app.NewCollector(aggregator, client, device.ID, logger, opts...)

	if err := collector.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	logger.Info("collector stopped")
	return nil
}

func openSensors(cfg *config.Config, mock bool, logger *slog.Logger) (sensors.ClimateReader, sensors.ParticulateReader, func(), error) {
	if mock {
		logger.Warn("using simulated sensors")
		m := sensors.NewMockSensors()
		return m, m, func() {}, nil
	}

	bme280, err := sensors.OpenBME280(cfg.I2CBus, cfg.BME280I2CAddr)
	if err != nil {
		return nil, nil, nil, err
	}

	pms5003, err := sensors.OpenPMS5003(sensors.PMS5003Options{
		SerialPort:  cfg.PMS5003SerialPort,
		BaudRate:    cfg.PMS5003BaudRate,
		ResetPin:    cfg.PMS5003ResetPin,
		EnablePin:   cfg.PMS5003EnablePin,
		ReadTimeout: cfg.PMS5003ReadTimeout,
	})
	if err != nil {
		bme280.Close()
		return nil, nil, nil, err
	}

	closeSensors := func() {
		pms5003.Close()
		bme280.Close()
	}
	return bme280, pms5003, closeSensors, nil
}
