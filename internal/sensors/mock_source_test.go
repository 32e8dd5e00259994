package sensors

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/accel_ball/internal/imu"
)

func TestMockSampleIsOneG(t *testing.T) {
	for _, elapsed := range []float64{0, 0.3, 1, 2.5, 10} {
		s := mockSample(elapsed, time.Time{})
		norm := math.Sqrt(s.Ax*s.Ax + s.Ay*s.Ay + s.Az*s.Az)
		assert.InDelta(t, imu.StandardGravity, norm, 1e-9)
		assert.Greater(t, s.Az, 0.0, "screen stays facing up")
	}
}

func TestMockSourceTicks(t *testing.T) {
	src := NewMockSource(time.Millisecond)
	defer src.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	a, err := src.Next(ctx)
	require.NoError(t, err)
	b, err := src.Next(ctx)
	require.NoError(t, err)

	assert.True(t, b.Time.After(a.Time))
	assert.Equal(t, "mock", a.Source)

	cancel()
	_, err = src.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
