// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package status

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const publishTimeout = 2 * time.Second

// Publisher sends status messages to a retained MQTT topic.
type Publisher struct {
	client mqtt.Client
	topic  string
	logger *slog.Logger
}

// Connect dials the broker and returns a publisher for topic. It waits
// briefly for the first connection; paho keeps retrying in the background
// and Publish drops messages until it succeeds.
func Connect(broker, clientID, topic string, logger *slog.Logger) (*Publisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logger.Warn("mqtt connection lost", "error", err)
		}).
		SetOnConnectHandler(func(_ mqtt.Client) {
			logger.Info("mqtt connected", "broker", broker)
		})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.WaitTimeout(publishTimeout) && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", broker, token.Error())
	}

	return NewPublisher(client, topic, logger), nil
}

func NewPublisher(client mqtt.Client, topic string, logger *slog.Logger) *Publisher {
	return &Publisher{client: client, topic: topic, logger: logger}
}

// Publish is best-effort and never blocks the caller: messages are
// dropped while the broker is unreachable, and delivery results are
// logged from a separate goroutine.
func (p *Publisher) Publish(m Message) {
	if !p.client.IsConnectionOpen() {
		p.logger.Debug("status dropped, broker not connected", "topic", p.topic, "cycle_id", m.CycleID)
		return
	}

	payload, err := json.Marshal(m)
	if err != nil {
		p.logger.Warn("status marshal error", "error", err)
		return
	}

	token := p.client.Publish(p.topic, 0, true, payload)
	go func() {
		if !token.WaitTimeout(publishTimeout) {
			p.logger.Warn("status publish timeout", "topic", p.topic)
			return
		}
		if err := token.Error(); err != nil {
			p.logger.Warn("status publish error", "topic", p.topic, "error", err)
			return
		}
		p.logger.Debug("published status", "topic", p.topic, "cycle_id", m.CycleID, "ok", m.OK)
	}()
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}

// Subscribe delivers every status message on topic to fn. Malformed
// payloads are logged and skipped.
func Subscribe(client mqtt.Client, topic string, logger *slog.Logger, fn func(Message)) error {
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var m Message
		if err := json.Unmarshal(msg.Payload(), &m); err != nil {
			logger.Warn("status unmarshal error", "topic", msg.Topic(), "error", err)
			return
		}
		fn(m)
	})
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	logger.Info("subscribed", "topic", topic)
	return nil
}
