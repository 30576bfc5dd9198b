// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package wearable

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	nmea "github.com/adrianmo/go-nmea"
	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/jump_tracker/internal/motion"
)

// Tick is one parsed line from the wearable stream. Exactly one of the two
// pointers is set.
type Tick struct {
	Motion   *motion.Sample
	Altitude *motion.Altitude
}

// Reader turns the wearable's line stream into ticks. Lines that fail to
// decode are dropped samples, not session failures; the reader just moves on
// to the next valid line.
type Reader struct {
	r      *bufio.Reader
	closer io.Closer
}

// Open opens the wearable serial port.
func Open(portName string, baudRate uint) (*Reader, error) {
	opts := serial.OpenOptions{
		PortName:              portName,
		BaudRate:              baudRate,
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("wearable serial open (%s): %w", portName, err)
	}
	return &Reader{r: bufio.NewReader(port), closer: port}, nil
}

// NewReader wraps an arbitrary line stream, for replay files and tests.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Next blocks until the next decodable tick. End of stream is surfaced as
// motion.ErrClosed.
func (r *Reader) Next() (Tick, error) {
	for {
		line, err := r.r.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return Tick{}, motion.ErrClosed
			}
			return Tick{}, fmt.Errorf("wearable read: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "$") {
			continue
		}

		sentence, err := nmea.Parse(line)
		if err != nil {
			// Noisy UART or a partial sentence; skip the tick.
			continue
		}

		switch s := sentence.(type) {
		case PJMP:
			sample := s.Sample()
			return Tick{Motion: &sample}, nil
		case PALT:
			alt := s.AltitudeSample()
			return Tick{Altitude: &alt}, nil
		default:
			// Other sentence types on the same bus are not ours.
			continue
		}
	}
}

// Close closes the underlying port, if any.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}
