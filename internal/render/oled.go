// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package render

import (
	"fmt"
	"image"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"
)

// OLED draws frames on an SSD1306 panel. The whole panel is the surface;
// a bounce counter is printed in the top-left corner.
type OLED struct {
	mu     sync.Mutex
	bus    i2c.BusCloser
	dev    *ssd1306.Dev
	img    *image1bit.VerticalLSB
	canvas Canvas
	logger *zap.SugaredLogger
}

// NewOLED opens the I²C bus (empty name = first bus) and initializes the
// panel with the default 128×64 options.
func NewOLED(busName string, logger *zap.SugaredLogger) (*OLED, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus %q: %w", busName, err)
	}

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("failed to initialize display: %w", err)
	}
	logger.Infof("display: SSD1306 initialized (%v)", dev.Bounds().Size())

	return &OLED{
		bus:    bus,
		dev:    dev,
		img:    image1bit.NewVerticalLSB(dev.Bounds()),
		canvas: Canvas{Background: image1bit.Off, Ball: image1bit.On},
		logger: logger,
	}, nil
}

// Render draws f and pushes the buffer to the panel.
func (o *OLED) Render(f Frame) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	drawMono(o.img, o.canvas, f)
	if err := o.dev.Draw(o.dev.Bounds(), o.img, image.Point{}); err != nil {
		return fmt.Errorf("display draw: %w", err)
	}
	return nil
}

// drawMono draws the ball and the bounce counter into img.
func drawMono(img *image1bit.VerticalLSB, c Canvas, f Frame) {
	c.Draw(img, f)

	d := font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{C: image1bit.On},
		Face: basicfont.Face7x13,
		Dot:  fixed.P(1, 11),
	}
	d.DrawString(fmt.Sprintf("%d", f.Bounces))
}

// Close blanks the panel and releases the bus.
func (o *OLED) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.dev.Halt(); err != nil {
		o.logger.Warnf("display: halt: %v", err)
	}
	return o.bus.Close()
}
