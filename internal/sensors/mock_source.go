// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"context"
	"math"
	"time"

	"github.com/relabs-tech/accel_ball/internal/imu"
)

// MockSource generates the gravity vector of a device that is slowly
// rocked around both screen axes.
type MockSource struct {
	start  time.Time
	ticker *pacer
}

// NewMockSource creates a mock source ticking at interval.
func NewMockSource(interval time.Duration) *MockSource {
	return &MockSource{start: time.Now(), ticker: newPacer(interval)}
}

// Next waits for the next tick and returns the synthetic sample.
func (m *MockSource) Next(ctx context.Context) (imu.Sample, error) {
	at, err := m.ticker.wait(ctx)
	if err != nil {
		return imu.Sample{}, err
	}
	return mockSample(at.Sub(m.start).Seconds(), at), nil
}

// Close stops the ticker.
func (m *MockSource) Close() error {
	m.ticker.stop()
	return nil
}

// mockSample tilts the device by up to 20° around y and 15° around x.
func mockSample(elapsed float64, at time.Time) imu.Sample {
	roll := 20 * math.Sin(elapsed) * math.Pi / 180
	pitch := 15 * math.Cos(elapsed*0.7) * math.Pi / 180

	return imu.Sample{
		Source: "mock",
		Ax:     imu.StandardGravity * math.Sin(roll) * math.Cos(pitch),
		Ay:     imu.StandardGravity * math.Sin(pitch),
		Az:     imu.StandardGravity * math.Cos(roll) * math.Cos(pitch),
		Time:   at,
	}
}
