// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package sound plays a short click whenever the ball hits an edge.
package sound

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"

	"github.com/relabs-tech/accel_ball/internal/ball"
)

const (
	sampleRate    = beep.SampleRate(44100)
	clickDuration = 40 * time.Millisecond
	// side walls click lower than top/bottom
	freqHorizontal = 660.0
	freqVertical   = 880.0
)

var speakerOnce sync.Once

// Bouncer turns bounces into clicks.
type Bouncer struct {
	play func(...beep.Streamer)
}

// NewBouncer initializes the speaker once and returns a bouncer playing on it.
func NewBouncer() (*Bouncer, error) {
	var err error
	speakerOnce.Do(func() {
		err = speaker.Init(sampleRate, sampleRate.N(50*time.Millisecond))
	})
	if err != nil {
		return nil, fmt.Errorf("speaker init: %w", err)
	}
	return &Bouncer{play: speaker.Play}, nil
}

// Play queues a click for b. Nothing is played when b is zero.
func (bo *Bouncer) Play(b ball.Bounce) {
	if b == 0 {
		return
	}
	freq := freqVertical
	if b.Horizontal() {
		freq = freqHorizontal
	}
	bo.play(Click(freq))
}

// Click returns a short exponentially decaying sine burst.
func Click(freq float64) beep.Streamer {
	n := sampleRate.N(clickDuration)
	return &effects.Volume{
		Streamer: beep.Take(n, &decayingSine{freq: freq, rate: sampleRate, tau: float64(n) / 5}),
		Base:     2,
		Volume:   -1,
	}
}

// decayingSine is an endless sine whose amplitude falls by 1/e every tau
// samples.
type decayingSine struct {
	freq  float64
	rate  beep.SampleRate
	tau   float64
	phase float64
	pos   int
}

func (d *decayingSine) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		v := math.Sin(2*math.Pi*d.phase) * math.Exp(-float64(d.pos)/d.tau)
		samples[i][0] = v
		samples[i][1] = v

		d.phase += d.freq / float64(d.rate)
		d.phase -= math.Floor(d.phase)
		d.pos++
	}
	return len(samples), true
}

func (d *decayingSine) Err() error { return nil }
