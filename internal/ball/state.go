// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ball

import "time"

const (
	// DefaultRadius is the ball radius in surface pixels.
	DefaultRadius = 50.0
	// DefaultAccelScale converts integrated displacement (metres) into pixels.
	DefaultAccelScale = 1000.0
	// BounceDamping divides the speed along an axis on every bounce.
	BounceDamping = 1.5
)

// Vec2 is a 2D vector in surface units.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Bounce records which edges were hit during a single update.
type Bounce uint8

const (
	BounceLeft Bounce = 1 << iota
	BounceRight
	BounceTop
	BounceBottom
)

// Horizontal reports whether the ball bounced off the left or right edge.
func (b Bounce) Horizontal() bool { return b&(BounceLeft|BounceRight) != 0 }

// Vertical reports whether the ball bounced off the top or bottom edge.
func (b Bounce) Vertical() bool { return b&(BounceTop|BounceBottom) != 0 }

// State is a snapshot of the simulation. It is a plain value: copying it
// gives an independent snapshot.
type State struct {
	Position   Vec2      `json:"position"`
	Velocity   Vec2      `json:"velocity"`
	Bounds     Vec2      `json:"bounds"` // X = width, Y = height
	LastSample time.Time `json:"last_sample"`
}
