// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/relabs-tech/accel_ball/internal/ball"
	"github.com/relabs-tech/accel_ball/internal/imu"
	"github.com/relabs-tech/accel_ball/internal/render"
)

// maxSourceErrors ends the session after this many consecutive failures.
const maxSourceErrors = 10

type surfaceSize struct{ w, h float64 }

// BouncePlayer is notified after every update that hit an edge.
type BouncePlayer interface {
	Play(b ball.Bounce)
}

// Session owns one ball simulation for the lifetime of a surface: it is
// reset when the surface appears or changes size, started when samples
// begin to flow and fed one sample at a time.
type Session struct {
	sim      *ball.Simulator
	source   imu.Source
	renderer render.Renderer
	sound    BouncePlayer
	logger   *zap.SugaredLogger
	now      func() time.Time

	surface surfaceSize
	resize  chan surfaceSize
}

// NewSession prepares a session drawing on a width×height surface.
// sound may be nil.
func NewSession(src imu.Source, r render.Renderer, sound BouncePlayer, width, height float64, logger *zap.SugaredLogger) *Session {
	return &Session{
		sim:      ball.New(),
		source:   src,
		renderer: r,
		sound:    sound,
		logger:   logger,
		now:      time.Now,
		surface:  surfaceSize{width, height},
		resize:   make(chan surfaceSize, 1),
	}
}

// Resize asks the session to re-create the surface at w×h. It is safe to
// call from any goroutine; only the latest size is kept.
func (s *Session) Resize(w, h float64) {
	for {
		select {
		case s.resize <- surfaceSize{w, h}:
			return
		default:
		}
		select {
		case <-s.resize:
		default:
		}
	}
}

// Simulator exposes the simulation, mainly for inspection in tests.
func (s *Session) Simulator() *ball.Simulator { return s.sim }

// Run feeds samples to the simulation until ctx is done. It returns nil on
// cancellation and an error if the source keeps failing. The caller owns
// and closes the source and renderer.
func (s *Session) Run(ctx context.Context) error {
	s.sim.Reset(s.surface.w, s.surface.h)
	s.logger.Infof("surface ready: %.0fx%.0f", s.surface.w, s.surface.h)

	s.sim.Start(s.now())
	s.draw()

	failures := 0
	for {
		select {
		case size := <-s.resize:
			s.surface = size
			s.sim.Reset(size.w, size.h)
			s.logger.Infof("surface resized: %.0fx%.0f", size.w, size.h)
			s.draw()
		default:
		}

		sample, err := s.source.Next(ctx)
		if err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				s.logger.Info("session: stopping")
				return nil
			}
			failures++
			if failures >= maxSourceErrors {
				return fmt.Errorf("sample source failed %d times in a row: %w", failures, err)
			}
			s.logger.Warnf("sample source error: %v", err)
			continue
		}
		failures = 0

		s.Step(sample)
	}
}

// Step applies one sample and renders the result.
func (s *Session) Step(sample imu.Sample) ball.Vec2 {
	s.logger.Debugf("sample %s ax=%.3f ay=%.3f az=%.3f", sample.Source, sample.Ax, sample.Ay, sample.Az)

	pos := s.sim.Update(sample.Ax, sample.Ay, sample.Az, sample.Time)
	if b := s.sim.LastBounce(); b != 0 && s.sound != nil {
		s.sound.Play(b)
	}
	s.draw()
	return pos
}

func (s *Session) draw() {
	if err := s.renderer.Render(render.FrameOf(s.sim)); err != nil {
		s.logger.Warnf("render error: %v", err)
	}
}
