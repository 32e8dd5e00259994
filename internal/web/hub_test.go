package web

import (
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/relabs-tech/accel_ball/internal/ball"
	"github.com/relabs-tech/accel_ball/internal/render"
)

func frameAt(x, y float64) render.Frame {
	return render.Frame{
		Position: ball.Vec2{X: x, Y: y},
		Radius:   50,
		Width:    400,
		Height:   800,
		Time:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestBallEndpoint(t *testing.T) {
	hub := NewHub(zap.NewNop().Sugar())
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/ball")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	require.NoError(t, hub.Render(frameAt(120, 340)))

	resp, err = http.Get(srv.URL + "/api/ball")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var got render.Frame
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, frameAt(120, 340), got)
}

func TestPNGEndpoint(t *testing.T) {
	hub := NewHub(zap.NewNop().Sugar())
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()
	require.NoError(t, hub.Render(frameAt(200, 400)))

	resp, err := http.Get(srv.URL + "/api/frame.png?w=40&h=80")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 80, img.Bounds().Dy())

	r, g, b, _ := img.At(20, 40).RGBA()
	assert.Equal(t, [3]uint32{0xFFFF, 0, 0xFFFF}, [3]uint32{r, g, b}, "ball is magenta")

	bad, err := http.Get(srv.URL + "/api/frame.png?w=0")
	require.NoError(t, err)
	bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestIndexPage(t *testing.T) {
	hub := NewHub(zap.NewNop().Sugar())
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}

func TestWebSocketStream(t *testing.T) {
	hub := NewHub(zap.NewNop().Sugar())
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	require.NoError(t, hub.Render(frameAt(10, 20)))

	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	// the latest frame is replayed on connect
	var got render.Frame
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, 10.0, got.Position.X)

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, hub.Render(frameAt(30, 40)))

	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, 30.0, got.Position.X)
	assert.Equal(t, 40.0, got.Position.Y)

	require.NoError(t, hub.Close())
	assert.Equal(t, 0, hub.Clients())
}
