// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package render

import (
	"context"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
)

// Terminal cells are roughly twice as tall as they are wide; one cell
// stands for CellWidth×CellHeight surface pixels when the terminal sizes
// the surface.
const (
	CellWidth  = 10
	CellHeight = 20
)

var (
	backgroundStyle = tcell.StyleDefault.Background(tcell.ColorYellow)
	ballStyle       = tcell.StyleDefault.Background(tcell.ColorFuchsia)
	statusStyle     = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow)
)

// Terminal draws frames on a tcell screen. The bottom row is a status line.
type Terminal struct {
	mu     sync.Mutex
	screen tcell.Screen
}

// NewTerminal initializes the real terminal.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("terminal init: %w", err)
	}
	return NewTerminalOn(screen), nil
}

// NewTerminalOn draws on an already initialized screen.
func NewTerminalOn(screen tcell.Screen) *Terminal {
	screen.HideCursor()
	screen.Clear()
	return &Terminal{screen: screen}
}

// SurfaceSize returns the surface, in pixels, that maps 1:1 onto the
// drawable cell grid.
func (t *Terminal) SurfaceSize() (float64, float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cols, rows := t.grid()
	return float64(cols * CellWidth), float64(rows * CellHeight)
}

// grid returns the drawable area, leaving the status row out.
func (t *Terminal) grid() (int, int) {
	cols, rows := t.screen.Size()
	if rows > 1 {
		rows--
	}
	return cols, rows
}

func (t *Terminal) Render(f Frame) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	cols, rows := t.grid()
	t.screen.Fill(' ', backgroundStyle)

	if f.Width > 0 && f.Height > 0 {
		sx := float64(cols) / f.Width
		sy := float64(rows) / f.Height
		rx := f.Radius * sx
		ry := f.Radius * sy
		cx := f.Position.X * sx
		cy := f.Position.Y * sy

		for row := 0; row < rows; row++ {
			for col := 0; col < cols; col++ {
				// sample at the cell centre
				dx := (float64(col) + 0.5 - cx) / rx
				dy := (float64(row) + 0.5 - cy) / ry
				if dx*dx+dy*dy <= 1 {
					t.screen.SetContent(col, row, ' ', nil, ballStyle)
				}
			}
		}
	}

	status := fmt.Sprintf(" x=%.0f y=%.0f bounces=%d  (q to quit)", f.Position.X, f.Position.Y, f.Bounces)
	_, screenRows := t.screen.Size()
	for i, r := range status {
		if i >= cols {
			break
		}
		t.screen.SetContent(i, screenRows-1, r, nil, statusStyle)
	}

	t.screen.Show()
	return nil
}

// Events polls terminal events until ctx is done or the user quits.
// onResize receives the new surface size; onQuit is called once on Esc,
// Ctrl-C or q.
func (t *Terminal) Events(ctx context.Context, onResize func(w, h float64), onQuit func()) {
	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)

	go func() {
		defer close(events)
		for {
			// nil once the screen is finalized
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
					(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
					onQuit()
					return
				}
			case *tcell.EventResize:
				t.mu.Lock()
				t.screen.Sync()
				t.mu.Unlock()
				if onResize != nil {
					onResize(t.SurfaceSize())
				}
			}
		}
	}
}

// Close restores the terminal.
func (t *Terminal) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.Fini()
	return nil
}
