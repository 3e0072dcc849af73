// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"
)

var (
	// ErrReadTimeout means no complete PMS5003 frame arrived in time, or
	// the frame header was garbled.
	ErrReadTimeout = errors.New("PMS5003 read timeout")
	// ErrChecksumMismatch means a frame arrived but failed its checksum.
	ErrChecksumMismatch = errors.New("PMS5003 checksum mismatch")
)

const (
	frameStart1 = 0x42
	frameStart2 = 0x4D

	// frameDataLen is the declared length: 13 data words plus the checksum.
	frameDataLen = 2*13 + 2
	frameLen     = 4 + frameDataLen
)

// Frame is one decoded PMS5003 data frame.
type Frame struct {
	// Standard particle (CF=1) mass concentrations, µg/m³.
	PM1Std  uint16
	PM25Std uint16
	PM10Std uint16

	// Atmospheric environment mass concentrations, µg/m³.
	PM1Atm  uint16
	PM25Atm uint16
	PM10Atm uint16

	// Particles beyond the given diameter per 0.1 L of air.
	Count03  uint16
	Count05  uint16
	Count10  uint16
	Count25  uint16
	Count50  uint16
	Count100 uint16
}

// frameDecoder pulls frames off a byte stream that may return short reads,
// zero-length reads or io.EOF while the UART is idle.
type frameDecoder struct {
	r       io.Reader
	timeout time.Duration
	now     func() time.Time
}

func newFrameDecoder(r io.Reader, timeout time.Duration) *frameDecoder {
	return &frameDecoder{r: r, timeout: timeout, now: time.Now}
}

// Next waits for the start marker, then reads and validates one frame.
func (d *frameDecoder) Next() (Frame, error) {
	deadline := d.now().Add(d.timeout)
	buf := make([]byte, frameLen)

	// Hunt for 0x42 0x4D.
	var prev byte
	for {
		b, err := d.readByte(deadline)
		if err != nil {
			return Frame{}, err
		}
		if prev == frameStart1 && b == frameStart2 {
			break
		}
		prev = b
	}
	buf[0], buf[1] = frameStart1, frameStart2

	if err := d.readFull(buf[2:4], deadline); err != nil {
		return Frame{}, err
	}
	if n := binary.BigEndian.Uint16(buf[2:4]); n != frameDataLen {
		return Frame{}, fmt.Errorf("%w: invalid frame length %d", ErrReadTimeout, n)
	}

	if err := d.readFull(buf[4:], deadline); err != nil {
		return Frame{}, err
	}

	return decodeFrame(buf)
}

func (d *frameDecoder) readByte(deadline time.Time) (byte, error) {
	var one [1]byte
	if err := d.readFull(one[:], deadline); err != nil {
		return 0, err
	}
	return one[0], nil
}

func (d *frameDecoder) readFull(p []byte, deadline time.Time) error {
	for len(p) > 0 {
		if d.now().After(deadline) {
			return ErrReadTimeout
		}
		n, err := d.r.Read(p)
		p = p[n:]
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("PMS5003 serial read: %w", err)
		}
	}
	return nil
}

// decodeFrame validates the checksum of a complete frame and extracts the
// data words.
func decodeFrame(buf []byte) (Frame, error) {
	if len(buf) != frameLen {
		return Frame{}, fmt.Errorf("%w: short frame (%d bytes)", ErrReadTimeout, len(buf))
	}

	var sum uint16
	for _, b := range buf[:frameLen-2] {
		sum += uint16(b)
	}
	if want := binary.BigEndian.Uint16(buf[frameLen-2:]); sum != want {
		return Frame{}, fmt.Errorf("%w: got 0x%04X, frame says 0x%04X", ErrChecksumMismatch, sum, want)
	}

	word := func(i int) uint16 {
		return binary.BigEndian.Uint16(buf[4+2*i:])
	}
	return Frame{
		PM1Std:   word(0),
		PM25Std:  word(1),
		PM10Std:  word(2),
		PM1Atm:   word(3),
		PM25Atm:  word(4),
		PM10Atm:  word(5),
		Count03:  word(6),
		Count05:  word(7),
		Count10:  word(8),
		Count25:  word(9),
		Count50:  word(10),
		Count100: word(11),
	}, nil
}
