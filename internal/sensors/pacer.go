package sensors

import (
	"context"
	"time"
)

// pacer releases one caller per tick.
type pacer struct {
	t *time.Ticker
}

func newPacer(interval time.Duration) *pacer {
	if interval <= 0 {
		interval = 20 * time.Millisecond
	}
	return &pacer{t: time.NewTicker(interval)}
}

func (p *pacer) wait(ctx context.Context) (time.Time, error) {
	select {
	case <-ctx.Done():
		return time.Time{}, ctx.Err()
	case at := <-p.t.C:
		return at, nil
	}
}

func (p *pacer) stop() { p.t.Stop() }
