// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"io"
	"time"

	serial "github.com/jacobsa/go-serial/serial"
	"github.com/relabs-tech/enviro_collector/internal/env"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// ParticulateReader is a device producing PM mass concentrations that can
// be reset after a failed read.
type ParticulateReader interface {
	ReadParticulate() (env.Particulate, error)
	Reset() error
}

// PMS5003Options describes where the sensor is wired.
type PMS5003Options struct {
	SerialPort  string
	BaudRate    uint
	ResetPin    string
	EnablePin   string
	ReadTimeout time.Duration
}

// outPin is the part of gpio.PinIO the driver uses.
type outPin interface {
	Out(l gpio.Level) error
}

// PMS5003 reads the Plantower particulate sensor over UART.
type PMS5003 struct {
	opts   PMS5003Options
	port   io.ReadWriteCloser
	reset  outPin
	enable outPin

	openPort func() (io.ReadWriteCloser, error)
	sleep    func(time.Duration)
}

const resetPulse = 100 * time.Millisecond

// OpenPMS5003 powers the sensor up through its enable pin and opens the UART.
func OpenPMS5003(opts PMS5003Options) (*PMS5003, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("PMS5003: periph host init: %w", err)
	}

	reset := gpioreg.ByName(opts.ResetPin)
	if reset == nil {
		return nil, fmt.Errorf("PMS5003: reset pin %q not found", opts.ResetPin)
	}
	enable := gpioreg.ByName(opts.EnablePin)
	if enable == nil {
		return nil, fmt.Errorf("PMS5003: enable pin %q not found", opts.EnablePin)
	}

	serialOpts := serial.OpenOptions{
		PortName:        opts.SerialPort,
		BaudRate:        opts.BaudRate,
		DataBits:        8,
		StopBits:        1,
		ParityMode:      serial.PARITY_NONE,
		MinimumReadSize: 0,
		// Reads return empty after 100ms of silence so the frame
		// decoder can enforce its own deadline.
		InterCharacterTimeout: 100,
	}
	openPort := func() (io.ReadWriteCloser, error) {
		return serial.Open(serialOpts)
	}

	return newPMS5003(opts, openPort, reset, enable, time.Sleep)
}

func newPMS5003(opts PMS5003Options, openPort func() (io.ReadWriteCloser, error), reset, enable outPin, sleep func(time.Duration)) (*PMS5003, error) {
	p := &PMS5003{
		opts:     opts,
		reset:    reset,
		enable:   enable,
		openPort: openPort,
		sleep:    sleep,
	}

	if err := enable.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("PMS5003: enable pin: %w", err)
	}
	if err := reset.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("PMS5003: reset pin: %w", err)
	}

	port, err := openPort()
	if err != nil {
		return nil, fmt.Errorf("PMS5003: serial open (%s): %w", opts.SerialPort, err)
	}
	p.port = port
	return p, nil
}

// ReadFrame blocks until one valid frame is read or the read timeout
// elapses. It fails with ErrReadTimeout or ErrChecksumMismatch on a bad
// or missing frame. A port lost to a failed reopen is reopened here; if
// that fails too the read counts as a timeout so the caller resets again.
func (p *PMS5003) ReadFrame() (Frame, error) {
	if p.port == nil {
		port, err := p.openPort()
		if err != nil {
			return Frame{}, fmt.Errorf("%w: serial reopen (%s): %v", ErrReadTimeout, p.opts.SerialPort, err)
		}
		p.port = port
	}
	return newFrameDecoder(p.port, p.opts.ReadTimeout).Next()
}

// ReadParticulate returns PM10 as P1 and PM2.5 as P2, using the standard
// particle (CF=1) values.
func (p *PMS5003) ReadParticulate() (env.Particulate, error) {
	f, err := p.ReadFrame()
	if err != nil {
		return env.Particulate{}, err
	}
	return env.Particulate{
		P1: float64(f.PM10Std),
		P2: float64(f.PM25Std),
	}, nil
}

// Reset pulses the reset pin and reopens the UART, dropping any partial
// frame still buffered.
func (p *PMS5003) Reset() error {
	if err := p.reset.Out(gpio.Low); err != nil {
		return fmt.Errorf("PMS5003 reset low: %w", err)
	}
	p.sleep(resetPulse)
	if err := p.reset.Out(gpio.High); err != nil {
		return fmt.Errorf("PMS5003 reset high: %w", err)
	}

	if p.port != nil {
		p.port.Close()
		p.port = nil
	}
	port, err := p.openPort()
	if err != nil {
		return fmt.Errorf("PMS5003: serial reopen (%s): %w", p.opts.SerialPort, err)
	}
	p.port = port
	return nil
}

// Close releases the UART and switches the sensor fan off.
func (p *PMS5003) Close() error {
	var err error
	if p.port != nil {
		err = p.port.Close()
		p.port = nil
	}
	if perr := p.enable.Out(gpio.Low); perr != nil && err == nil {
		err = perr
	}
	return err
}
