// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import (
	"context"
	"time"
)

// Sample is one accelerometer reading in m/s², in the device frame:
// x to the right, y up along the long edge, z out of the screen.
type Sample struct {
	Source string    `json:"source"`
	Ax     float64   `json:"ax"`
	Ay     float64   `json:"ay"`
	Az     float64   `json:"az"`
	Time   time.Time `json:"time"`
}

// Source delivers samples one at a time.
// Next blocks until a sample is available or ctx is done, in which case it
// returns ctx.Err().
type Source interface {
	Next(ctx context.Context) (Sample, error)
	Close() error
}
