// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package luftdaten

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind classifies a transport failure.
type ErrorKind int

const (
	RequestError ErrorKind = iota
	ConnectionError
	TimeoutError
)

func (k ErrorKind) String() string {
	switch k {
	case ConnectionError:
		return "Connection Error"
	case TimeoutError:
		return "Timeout Error"
	default:
		return "Request Error"
	}
}

// UploadError is a push that did not complete.
type UploadError struct {
	Pin  Pin
	Kind ErrorKind
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("sensor.community %s push: %s: %v", e.Pin.Label(), e.Kind, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

func classify(err error) ErrorKind {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return TimeoutError
	}

	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) {
		return ConnectionError
	}

	return RequestError
}
