// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package luftdaten pushes readings to the sensor.community ingestion API.
package luftdaten

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/relabs-tech/enviro_collector/internal/env"
)

const (
	// Endpoint is the sensor.community push API.
	Endpoint = "https://api.sensor.community/v1/push-sensor-data/"
	// SoftwareVersion is reported with every push.
	SoftwareVersion = "enviro-plus 0.0.1"
	// RequestTimeout bounds every push request.
	RequestTimeout = 5 * time.Second
)

// Pin selects the sensor slot of a push on the upstream API.
type Pin string

const (
	PinParticulate Pin = "1"
	PinClimate     Pin = "11"
)

// Label is the name used in log lines.
func (p Pin) Label() string {
	switch p {
	case PinParticulate:
		return "PM"
	case PinClimate:
		return "Climate"
	default:
		return "Pin " + string(p)
	}
}

type pushRequest struct {
	SoftwareVersion  string      `json:"software_version"`
	SensorDataValues env.Payload `json:"sensordatavalues"`
}

// Response is a completed push. A non-2xx status is reported here, not as
// an error.
type Response struct {
	StatusCode int
	Reason     string
	OK         bool
}

// Options configures a Client. Endpoint and Timeout default to the fixed
// production values and exist for tests.
type Options struct {
	SensorID string
	Endpoint string
	Timeout  time.Duration
}

// Client submits payloads for one device.
type Client struct {
	http     *resty.Client
	endpoint string
	logger   *slog.Logger
}

func NewClient(opts Options, logger *slog.Logger) *Client {
	if opts.Endpoint == "" {
		opts.Endpoint = Endpoint
	}
	if opts.Timeout <= 0 {
		opts.Timeout = RequestTimeout
	}

	httpClient := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(0).
		SetLogger(restyLogger{logger}).
		SetHeader("X-Sensor", opts.SensorID).
		SetHeader("Content-Type", "application/json").
		SetHeader("Cache-Control", "no-cache")

	return &Client{
		http:     httpClient,
		endpoint: opts.Endpoint,
		logger:   logger,
	}
}

// Upload posts one payload under pin. Transport failures are logged and
// returned as *UploadError with a nil Response.
func (c *Client) Upload(ctx context.Context, pin Pin, payload env.Payload) (*Response, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-PIN", string(pin)).
		SetBody(pushRequest{
			SoftwareVersion:  SoftwareVersion,
			SensorDataValues: payload,
		}).
		Post(c.endpoint)
	if err != nil {
		uerr := &UploadError{Pin: pin, Kind: classify(err), Err: err}
		c.logger.Warn("Sensor.Community "+pin.Label()+" "+uerr.Kind.String(), "error", err)
		return nil, uerr
	}

	return &Response{
		StatusCode: resp.StatusCode(),
		Reason:     reasonPhrase(resp.StatusCode(), resp.Status()),
		OK:         resp.IsSuccess(),
	}, nil
}

// reasonPhrase returns the server's text from a status line such as
// "400 Sensor not registered", or the standard text when it sent none.
func reasonPhrase(code int, statusLine string) string {
	reason := strings.TrimSpace(strings.TrimPrefix(statusLine, strconv.Itoa(code)))
	if reason == "" {
		reason = http.StatusText(code)
	}
	return reason
}

// SendReading pushes the particulate then the climate partition of r.
// It is true only when both requests completed with a 2xx status.
func (c *Client) SendReading(ctx context.Context, r env.Reading) bool {
	pm, climate := env.Partition(r)

	pmResp, pmErr := c.Upload(ctx, PinParticulate, pm)
	climateResp, climateErr := c.Upload(ctx, PinClimate, climate)

	if pmErr != nil || climateErr != nil {
		return false
	}
	if pmResp.OK && climateResp.OK {
		return true
	}

	c.logger.Warn("Sensor.Community Error",
		"pm", pmResp.Reason,
		"climate", climateResp.Reason,
	)
	return false
}

// restyLogger routes resty's own diagnostics to slog at debug level; the
// client logs failures itself.
type restyLogger struct {
	logger *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) { l.logf(format, v...) }
func (l restyLogger) Warnf(format string, v ...interface{})  { l.logf(format, v...) }
func (l restyLogger) Debugf(format string, v ...interface{}) { l.logf(format, v...) }

func (l restyLogger) logf(format string, v ...interface{}) {
	l.logger.Debug("resty", "msg", fmt.Sprintf(format, v...))
}
