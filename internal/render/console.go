package render

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Console prints one line per frame, at most once per interval. Frames
// carrying a bounce are always printed.
type Console struct {
	mu       sync.Mutex
	w        io.Writer
	interval time.Duration
	last     time.Time
}

// NewConsole writes to w, rate limited to interval.
func NewConsole(w io.Writer, interval time.Duration) *Console {
	return &Console{w: w, interval: interval}
}

func (c *Console) Render(f Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if f.Bounce == 0 && !c.last.IsZero() && f.Time.Sub(c.last) < c.interval {
		return nil
	}
	c.last = f.Time

	_, err := fmt.Fprintf(c.w,
		"[BALL] x=%7.1f y=%7.1f  vx=%7.3f vy=%7.3f  bounces=%d%s\n",
		f.Position.X, f.Position.Y, f.Velocity.X, f.Velocity.Y, f.Bounces, bounceTag(f),
	)
	return err
}

func bounceTag(f Frame) string {
	if f.Bounce == 0 {
		return ""
	}
	return " *bounce*"
}

func (c *Console) Close() error { return nil }
