package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"strings"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/relabs-tech/accel_ball/internal/ball"
)

var t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func centreFrame() Frame {
	return Frame{
		Position: ball.Vec2{X: 200, Y: 400},
		Radius:   50,
		Width:    400,
		Height:   800,
		Time:     t0,
	}
}

func TestFrameOf(t *testing.T) {
	sim := ball.New()
	sim.Reset(400, 800)
	sim.Start(t0)
	sim.Update(-5, 0, 0, t0.Add(100*time.Millisecond))

	f := FrameOf(sim)

	assert.InDelta(t, 225, f.Position.X, 1e-9)
	assert.Equal(t, 400.0, f.Width)
	assert.Equal(t, 800.0, f.Height)
	assert.Equal(t, ball.DefaultRadius, f.Radius)
	assert.Equal(t, t0.Add(100*time.Millisecond), f.Time)
}

func TestCanvasDrawsBallOnBackground(t *testing.T) {
	img := NewCanvas().Image(centreFrame(), 100, 200)

	assert.Equal(t, Magenta, img.RGBAAt(50, 100), "centre")
	assert.Equal(t, Yellow, img.RGBAAt(1, 1), "corner")
	assert.Equal(t, Yellow, img.RGBAAt(50, 80), "above the ball (radius is 12.5px)")
	assert.Equal(t, Magenta, img.RGBAAt(50, 90))
}

func TestCanvasDegenerateSurfaceIsBackgroundOnly(t *testing.T) {
	f := centreFrame()
	f.Width = 0

	img := NewCanvas().Image(f, 10, 10)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			require.Equal(t, Yellow, img.RGBAAt(x, y))
		}
	}
}

func TestDrawMono(t *testing.T) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	f := centreFrame()
	f.Bounces = 3

	drawMono(img, Canvas{Background: image1bit.Off, Ball: image1bit.On}, f)

	assert.Equal(t, image1bit.On, img.BitAt(64, 32))
	assert.Equal(t, image1bit.Off, img.BitAt(127, 63))

	lit := 0
	for y := 0; y < 13; y++ {
		for x := 0; x < 8; x++ {
			if img.BitAt(x, y) == image1bit.On {
				lit++
			}
		}
	}
	assert.Greater(t, lit, 0, "bounce counter drawn")
}

func TestConsoleRateLimit(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, 500*time.Millisecond)

	f := centreFrame()
	require.NoError(t, c.Render(f))
	f.Time = t0.Add(100 * time.Millisecond)
	require.NoError(t, c.Render(f)) // suppressed
	f.Bounce = ball.BounceLeft
	f.Bounces = 1
	require.NoError(t, c.Render(f)) // bounces always print
	f.Bounce = 0
	f.Time = t0.Add(700 * time.Millisecond)
	require.NoError(t, c.Render(f))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "[BALL] x=  200.0 y=  400.0")
	assert.Contains(t, lines[1], "*bounce*")
	assert.Contains(t, lines[2], "bounces=1")
}

func TestTerminalRender(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(40, 21)

	term := NewTerminalOn(screen)
	defer term.Close()

	w, h := term.SurfaceSize()
	assert.Equal(t, 400.0, w)
	assert.Equal(t, 400.0, h)

	f := centreFrame()
	f.Width, f.Height = w, h
	f.Position = ball.Vec2{X: 200, Y: 200}
	require.NoError(t, term.Render(f))

	cells, cols, _ := screen.GetContents()
	bgAt := func(x, y int) tcell.Color {
		_, bg, _ := cells[y*cols+x].Style.Decompose()
		return bg
	}
	assert.Equal(t, tcell.ColorFuchsia, bgAt(20, 10))
	assert.Equal(t, tcell.ColorYellow, bgAt(0, 0))

	status := ""
	for x := 0; x < 12; x++ {
		status += string(cells[20*cols+x].Runes)
	}
	assert.Contains(t, status, "x=200")
}

type fakeToken struct {
	mqtt.Token
	err error
}

func (t fakeToken) Wait() bool   { return true }
func (t fakeToken) Error() error { return t.err }

type fakeClient struct {
	mqtt.Client
	topic    string
	retained bool
	payload  []byte
	err      error
}

func (c *fakeClient) Publish(topic string, _ byte, retained bool, payload interface{}) mqtt.Token {
	c.topic = topic
	c.retained = retained
	c.payload = payload.([]byte)
	return fakeToken{err: c.err}
}

func TestPublisher(t *testing.T) {
	client := &fakeClient{}
	p := NewPublisher(client, "accball/ball", false)

	require.NoError(t, p.Render(centreFrame()))
	assert.Equal(t, "accball/ball", client.topic)
	assert.True(t, client.retained)

	var got Frame
	require.NoError(t, json.Unmarshal(client.payload, &got))
	assert.Equal(t, centreFrame(), got)

	client.err = errors.New("broker gone")
	assert.ErrorContains(t, p.Render(centreFrame()), "broker gone")
	assert.NoError(t, p.Close())
}

type recorder struct {
	frames int
	err    error
	closed bool
}

func (r *recorder) Render(Frame) error { r.frames++; return r.err }
func (r *recorder) Close() error       { r.closed = true; return r.err }

func TestMulti(t *testing.T) {
	ok := &recorder{}
	bad := &recorder{err: errors.New("boom")}
	m := Multi{ok, bad}

	err := m.Render(centreFrame())
	assert.ErrorContains(t, err, "boom")
	assert.Equal(t, 1, ok.frames)
	assert.Equal(t, 1, bad.frames)

	assert.Error(t, m.Close())
	assert.True(t, ok.closed)
	assert.True(t, bad.closed)
}
