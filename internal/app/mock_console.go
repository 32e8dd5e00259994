// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/relabs-tech/accel_ball/internal/render"
	"github.com/relabs-tech/accel_ball/internal/sensors"
)

// RunMockConsole rolls the ball with the mock source on a portrait
// 1080x1920 surface and prints it to stdout. No config or hardware needed.
func RunMockConsole(ctx context.Context, logger *zap.SugaredLogger) error {
	src := sensors.NewMockSource(20 * time.Millisecond)
	defer src.Close()

	console := render.NewConsole(os.Stdout, 100*time.Millisecond)
	return NewSession(src, console, nil, 1080, 1920, logger).Run(ctx)
}
