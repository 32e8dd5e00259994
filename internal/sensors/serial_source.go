// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	serial "github.com/jacobsa/go-serial/serial"
	"go.uber.org/zap"

	"github.com/relabs-tech/accel_ball/internal/config"
	"github.com/relabs-tech/accel_ball/internal/imu"
)

type lineResult struct {
	sample imu.Sample
	err    error
}

// SerialSource reads $--ACC sentences from a line-oriented stream, usually
// a serial port fed by a microcontroller.
type SerialSource struct {
	name    string
	port    io.ReadCloser
	results chan lineResult
	logger  *zap.SugaredLogger
	now     func() time.Time

	closeOnce sync.Once
}

// NewSerialSource opens the configured serial port.
func NewSerialSource(cfg *config.Config, logger *zap.SugaredLogger) (*SerialSource, error) {
	serialOpts := serial.OpenOptions{
		PortName:              cfg.SerialPort,
		BaudRate:              uint(cfg.SerialBaudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(serialOpts)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", cfg.SerialPort, err)
	}
	logger.Infof("accelerometer serial port opened on %s at %d baud", serialOpts.PortName, serialOpts.BaudRate)

	return newLineSource(cfg.SerialPort, port, logger, time.Now), nil
}

// newLineSource starts reading r in the background.
func newLineSource(name string, r io.ReadCloser, logger *zap.SugaredLogger, now func() time.Time) *SerialSource {
	s := &SerialSource{
		name:    name,
		port:    r,
		results: make(chan lineResult, 16),
		logger:  logger,
		now:     now,
	}
	go s.readLoop()
	return s
}

func (s *SerialSource) readLoop() {
	defer close(s.results)

	reader := bufio.NewReader(s.port)
	for {
		line, err := reader.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" {
			s.handleLine(line)
		}
		if err != nil {
			if err != io.EOF {
				s.results <- lineResult{err: fmt.Errorf("serial read %s: %w", s.name, err)}
			}
			return
		}
	}
}

func (s *SerialSource) handleLine(line string) {
	// NMEA sentences usually start with '$'; the rest is boot noise
	if !strings.HasPrefix(line, "$") {
		return
	}
	acc, err := ParseACC(line)
	if err != nil {
		s.logger.Debugf("serial: skipping %q: %v", line, err)
		return
	}
	s.results <- lineResult{sample: imu.Sample{
		Source: config.SourceSerial,
		Ax:     acc.Ax,
		Ay:     acc.Ay,
		Az:     acc.Az,
		Time:   s.now(),
	}}
}

// Next returns the next parsed sample. io.EOF is returned once the stream
// has ended.
func (s *SerialSource) Next(ctx context.Context) (imu.Sample, error) {
	select {
	case <-ctx.Done():
		return imu.Sample{}, ctx.Err()
	case res, ok := <-s.results:
		if !ok {
			return imu.Sample{}, io.EOF
		}
		return res.sample, res.err
	}
}

// Close closes the port, which also ends the read loop.
func (s *SerialSource) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.port.Close()
		// unblock the reader if nobody is consuming any more
		go func() {
			for range s.results {
			}
		}()
	})
	return err
}
