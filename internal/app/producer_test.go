package app

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/relabs-tech/accel_ball/internal/imu"
)

type okToken struct {
	mqtt.Token
	err error
}

func (t okToken) Wait() bool   { return true }
func (t okToken) Error() error { return t.err }

type publishRecorder struct {
	mqtt.Client
	topics   []string
	payloads [][]byte
	err      error
}

func (c *publishRecorder) Publish(topic string, _ byte, _ bool, payload interface{}) mqtt.Token {
	c.topics = append(c.topics, topic)
	c.payloads = append(c.payloads, payload.([]byte))
	return okToken{err: c.err}
}

func TestPublishSamples(t *testing.T) {
	src := &scriptedSource{
		samples: []imu.Sample{
			{Source: "mock", Ax: 1, Ay: 2, Az: 3, Time: t0},
			{Source: "mock", Ax: -1, Time: t0},
		},
		errs: []error{errors.New("short read")},
	}
	ctx, cancel := context.WithCancel(context.Background())
	src.cancel = cancel
	client := &publishRecorder{}

	require.NoError(t, publishSamples(ctx, src, client, "accball/imu", zap.NewNop().Sugar()))

	assert.Equal(t, []string{"accball/imu", "accball/imu"}, client.topics)
	var got imu.Sample
	require.NoError(t, json.Unmarshal(client.payloads[0], &got))
	assert.Equal(t, imu.Sample{Source: "mock", Ax: 1, Ay: 2, Az: 3, Time: t0}, got)
}

func TestPublishSamplesGivesUpOnDeadSource(t *testing.T) {
	errs := make([]error, maxSourceErrors)
	for i := range errs {
		errs[i] = errors.New("gone")
	}
	src := &scriptedSource{errs: errs}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	src.cancel = cancel

	err := publishSamples(ctx, src, &publishRecorder{}, "accball/imu", zap.NewNop().Sugar())
	assert.ErrorContains(t, err, "failed 10 times")
}

func TestConsoleLines(t *testing.T) {
	line, err := formatFrame([]byte(`{"position":{"x":12.5,"y":40},"velocity":{"x":0.5,"y":-1},"width":400,"height":800,"bounces":3}`))
	require.NoError(t, err)
	assert.Contains(t, line, "[BALL]")
	assert.Contains(t, line, "x=   12.5")
	assert.Contains(t, line, "surface=400x800 bounces=3")

	line, err = formatSample([]byte(`{"source":"serial","ax":0.25,"ay":-9.81,"az":0}`))
	require.NoError(t, err)
	assert.Contains(t, line, "[IMU]")
	assert.Contains(t, line, "ay= -9.810")
	assert.Contains(t, line, "(serial)")

	_, err = formatFrame([]byte("{"))
	assert.Error(t, err)
}
