// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ball

import "time"

// Simulator integrates accelerometer samples into a ball position on a
// bounded surface. It is not safe for concurrent use; the owner feeds it
// one sample at a time.
type Simulator struct {
	radius     float64
	accelScale float64

	state      State
	running    bool
	lastBounce Bounce
	bounces    uint64
}

// New returns an idle simulator with a zero-sized surface.
// Call Reset once the surface size is known and Start when samples begin.
func New() *Simulator {
	return &Simulator{
		radius:     DefaultRadius,
		accelScale: DefaultAccelScale,
	}
}

// Radius returns the ball radius.
func (s *Simulator) Radius() float64 { return s.radius }

// Reset sets the surface bounds and puts the ball at rest in the centre.
// Zero dimensions are accepted. Sample timing is left untouched.
func (s *Simulator) Reset(width, height float64) {
	s.state.Bounds = Vec2{X: width, Y: height}
	s.state.Position = Vec2{X: width / 2, Y: height / 2}
	s.state.Velocity = Vec2{}
	s.lastBounce = 0
}

// Start marks the beginning of sample delivery.
func (s *Simulator) Start(now time.Time) {
	s.state.LastSample = now
	s.running = true
}

// Running reports whether Start has been called.
func (s *Simulator) Running() bool { return s.running }

// Update advances the ball by the interval since the previous sample and
// returns the new position. az is accepted for symmetry with the sensor
// and does not affect motion.
func (s *Simulator) Update(ax, ay, az float64, now time.Time) Vec2 {
	st := &s.state

	t := now.Sub(st.LastSample).Seconds()
	if t < 0 {
		t = 0
	}

	// sensor x grows to the left in portrait, screen x to the right
	x := -ax
	y := ay

	dx := st.Velocity.X*t + x*t*t/2
	dy := st.Velocity.Y*t + y*t*t/2

	st.Position.X += dx * s.accelScale
	st.Position.Y += dy * s.accelScale

	st.Velocity.X += x * t
	st.Velocity.Y += y * t

	var b Bounce
	st.Position.X, st.Velocity.X, b = reflect(st.Position.X, st.Velocity.X, st.Bounds.X, s.radius, BounceLeft, BounceRight)
	s.lastBounce = b
	st.Position.Y, st.Velocity.Y, b = reflect(st.Position.Y, st.Velocity.Y, st.Bounds.Y, s.radius, BounceTop, BounceBottom)
	s.lastBounce |= b

	if s.lastBounce != 0 {
		s.bounces++
	}

	if now.After(st.LastSample) {
		st.LastSample = now
	}

	return st.Position
}

// reflect applies the edge rule on one axis. The velocity is reversed and
// damped only when the ball moves into the violated edge. A ball that is
// already heading back inside is clamped onto the edge without touching
// its velocity, as long as the surface can hold the ball at all.
func reflect(pos, vel, bound, radius float64, low, high Bounce) (float64, float64, Bounce) {
	switch {
	case pos-radius < 0 && vel < 0:
		return radius, -vel / BounceDamping, low
	case pos+radius > bound && vel > 0:
		return bound - radius, -vel / BounceDamping, high
	}
	if bound < 2*radius {
		return pos, vel, 0
	}
	switch {
	case pos-radius < 0:
		return radius, vel, 0
	case pos+radius > bound:
		return bound - radius, vel, 0
	}
	return pos, vel, 0
}

// Position returns the current ball centre.
func (s *Simulator) Position() Vec2 { return s.state.Position }

// State returns a snapshot of the simulation state.
func (s *Simulator) State() State { return s.state }

// SetState replaces the simulation state. It is meant for restoring a
// snapshot and for tests; the radius and scale are not part of State.
func (s *Simulator) SetState(st State) { s.state = st }

// LastBounce returns the edges hit by the most recent Update.
func (s *Simulator) LastBounce() Bounce { return s.lastBounce }

// Bounces returns the number of updates that produced at least one bounce.
func (s *Simulator) Bounces() uint64 { return s.bounces }
