// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package render draws simulation frames on the available surfaces.
package render

import (
	"errors"
	"time"

	"github.com/relabs-tech/accel_ball/internal/ball"
)

// Frame is everything a renderer needs to draw one update.
type Frame struct {
	Position ball.Vec2   `json:"position"`
	Velocity ball.Vec2   `json:"velocity"`
	Radius   float64     `json:"radius"`
	Width    float64     `json:"width"`
	Height   float64     `json:"height"`
	Bounce   ball.Bounce `json:"bounce"`
	Bounces  uint64      `json:"bounces"`
	Time     time.Time   `json:"time"`
}

// FrameOf captures the current state of sim.
func FrameOf(sim *ball.Simulator) Frame {
	st := sim.State()
	return Frame{
		Position: st.Position,
		Velocity: st.Velocity,
		Radius:   sim.Radius(),
		Width:    st.Bounds.X,
		Height:   st.Bounds.Y,
		Bounce:   sim.LastBounce(),
		Bounces:  sim.Bounces(),
		Time:     st.LastSample,
	}
}

// Renderer draws frames. Implementations serialize their own drawing, so
// Render may be called from the simulation loop while the surface is being
// refreshed elsewhere.
type Renderer interface {
	Render(f Frame) error
	Close() error
}

// Multi fans every frame out to all renderers.
type Multi []Renderer

// Render draws f on every renderer and joins the errors.
func (m Multi) Render(f Frame) error {
	var errs []error
	for _, r := range m {
		if err := r.Render(f); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every renderer and joins the errors.
func (m Multi) Close() error {
	var errs []error
	for _, r := range m {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
