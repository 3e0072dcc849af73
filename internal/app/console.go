// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/relabs-tech/enviro_collector/internal/config"
	"github.com/relabs-tech/enviro_collector/internal/env"
	"github.com/relabs-tech/enviro_collector/internal/status"
)

// RunConsole prints one line per collector status message until ctx is
// cancelled.
func RunConsole(ctx context.Context, cfg *config.Config, out io.Writer, logger *slog.Logger) error {
	client, err := connectSubscriber(cfg.MQTTBroker, cfg.MQTTClientIDConsole, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	err = status.Subscribe(client, cfg.TopicStatus, logger, func(m status.Message) {
		fmt.Fprintln(out, formatStatusLine(m))
	})
	if err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("console: shutting down")
	return nil
}

func formatStatusLine(m status.Message) string {
	ts := m.Time.Local().Format(time.DateTime)
	if m.Error != "" {
		return fmt.Sprintf("[ERR ] %s %s %s", ts, m.SensorID, m.Error)
	}

	tag := "[OK  ]"
	if !m.OK {
		tag = "[FAIL]"
	}

	fields := make([]string, 0, len(m.Reading))
	for _, name := range []string{env.FieldTemperature, env.FieldPressure, env.FieldHumidity, env.FieldP1, env.FieldP2} {
		if v, ok := m.Reading.Get(name); ok {
			fields = append(fields, name+"="+v)
		}
	}
	return fmt.Sprintf("%s %s %s %s", tag, ts, m.SensorID, strings.Join(fields, " "))
}
