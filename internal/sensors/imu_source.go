// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/accel_ball/internal/config"
	"github.com/relabs-tech/accel_ball/internal/imu"
)

// MPU9250Source reads the accelerometer of an MPU9250 over SPI at a fixed
// interval.
type MPU9250Source struct {
	imu        *mpu9250.MPU9250
	accelRange byte
	ticker     *pacer
	logger     *zap.SugaredLogger
}

// NewMPU9250Source initializes the MPU9250 described by cfg.
func NewMPU9250Source(cfg *config.Config, logger *zap.SugaredLogger) (*MPU9250Source, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("IMU: periph host init: %w", err)
	}

	cs := gpioreg.ByName(cfg.IMUCSPin)
	if cs == nil {
		return nil, fmt.Errorf("IMU: CS pin %q not found", cfg.IMUCSPin)
	}

	tr, err := mpu9250.NewSpiTransport(cfg.IMUSPIDevice, cs)
	if err != nil {
		return nil, fmt.Errorf("IMU: SPI transport (%s): %w", cfg.IMUSPIDevice, err)
	}

	dev, err := mpu9250.New(tr)
	if err != nil {
		return nil, fmt.Errorf("IMU: device creation: %w", err)
	}

	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("IMU: initialization: %w", err)
	}

	if err := dev.SetAccelRange(cfg.IMUAccelRange); err != nil {
		return nil, fmt.Errorf("IMU: set accel range: %w", err)
	}
	logger.Infof("IMU: accelerometer range set to %d (±%dg)", cfg.IMUAccelRange, []int{2, 4, 8, 16}[cfg.IMUAccelRange])

	if cfg.IMUSelfTest {
		// Slow, and the device must be still. Failures only degrade accuracy.
		if _, err := dev.SelfTest(); err != nil {
			logger.Warnf("IMU self-test failed: %v", err)
		} else {
			logger.Info("IMU self-test passed")
		}
		if err := dev.Calibrate(); err != nil {
			logger.Warnf("IMU calibration failed: %v", err)
		} else {
			logger.Info("IMU calibration complete")
		}
	}

	interval := time.Duration(cfg.IMUSampleInterval) * time.Millisecond
	logger.Infof("IMU: reading %s every %s", cfg.IMUSPIDevice, interval)

	return &MPU9250Source{
		imu:        dev,
		accelRange: cfg.IMUAccelRange,
		ticker:     newPacer(interval),
		logger:     logger,
	}, nil
}

// ReadRaw reads the accelerometer registers.
func (s *MPU9250Source) ReadRaw() (imu.IMURaw, error) {
	ax, err := s.imu.GetAccelerationX()
	if err != nil {
		return imu.IMURaw{}, fmt.Errorf("IMU accel X: %w", err)
	}
	ay, err := s.imu.GetAccelerationY()
	if err != nil {
		return imu.IMURaw{}, fmt.Errorf("IMU accel Y: %w", err)
	}
	az, err := s.imu.GetAccelerationZ()
	if err != nil {
		return imu.IMURaw{}, fmt.Errorf("IMU accel Z: %w", err)
	}
	return imu.IMURaw{Source: config.SourceMPU9250, Ax: ax, Ay: ay, Az: az}, nil
}

// Next waits for the next tick and reads one sample.
func (s *MPU9250Source) Next(ctx context.Context) (imu.Sample, error) {
	at, err := s.ticker.wait(ctx)
	if err != nil {
		return imu.Sample{}, err
	}
	raw, err := s.ReadRaw()
	if err != nil {
		return imu.Sample{}, err
	}
	return raw.ToSample(s.accelRange, at), nil
}

// Close stops the ticker. The SPI port stays owned by periph.
func (s *MPU9250Source) Close() error {
	s.ticker.stop()
	return nil
}
