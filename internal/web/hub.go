// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package web serves the ball to browsers: a live WebSocket stream, the
// latest frame as JSON and PNG, and a small page that draws it.
package web

import (
	"embed"
	"encoding/json"
	"image/png"
	"io/fs"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/relabs-tech/accel_ball/internal/render"
)

//go:embed static
var staticFiles embed.FS

const (
	clientBuffer = 32
	writeWait    = 2 * time.Second

	defaultPNGWidth  = 270
	defaultPNGHeight = 480
	maxPNGSide       = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Hub keeps the latest frame and broadcasts every frame to the connected
// WebSocket clients. It is a render.Renderer.
type Hub struct {
	mu        sync.RWMutex
	last      render.Frame
	haveFrame bool
	clients   map[*client]struct{}
	closed    bool

	canvas render.Canvas
	logger *zap.SugaredLogger
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub returns an empty hub.
func NewHub(logger *zap.SugaredLogger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		canvas:  render.NewCanvas(),
		logger:  logger,
	}
}

// Render stores f and queues it for every client. Clients that cannot keep
// up are disconnected.
func (h *Hub) Render(f render.Frame) error {
	payload, err := json.Marshal(f)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.last = f
	h.haveFrame = true
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			h.logger.Warnf("web: client %s too slow, dropping", c.conn.RemoteAddr())
			h.dropLocked(c)
		}
	}
	return nil
}

// Close disconnects every client.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.dropLocked(c)
	}
	return nil
}

func (h *Hub) dropLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// Latest returns the last rendered frame.
func (h *Hub) Latest() (render.Frame, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last, h.haveFrame
}

// Clients returns the number of connected WebSocket clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Handler serves the page, the JSON/PNG endpoints and the stream.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/ball", h.handleBall)
	mux.HandleFunc("/api/frame.png", h.handlePNG)
	mux.HandleFunc("/ws", h.handleWS)

	static, _ := fs.Sub(staticFiles, "static")
	mux.Handle("/", http.FileServer(http.FS(static)))
	return mux
}

func (h *Hub) handleBall(w http.ResponseWriter, r *http.Request) {
	f, ok := h.Latest()
	if !ok {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(f); err != nil {
		h.logger.Warnf("json encode error: %v", err)
	}
}

func (h *Hub) handlePNG(w http.ResponseWriter, r *http.Request) {
	f, ok := h.Latest()
	if !ok {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}

	width, err := sizeParam(r, "w", defaultPNGWidth)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	height, err := sizeParam(r, "h", defaultPNGHeight)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, h.canvas.Image(f, width, height)); err != nil {
		h.logger.Warnf("png encode error: %v", err)
	}
}

type paramError string

func (e paramError) Error() string { return string(e) }

func sizeParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 || v > maxPNGSide {
		return 0, paramError(name + " must be 1-" + strconv.Itoa(maxPNGSide))
	}
	return v, nil
}

func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnf("web: websocket upgrade: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	if h.haveFrame {
		if payload, err := json.Marshal(h.last); err == nil {
			c.send <- payload
		}
	}
	h.mu.Unlock()
	h.logger.Debugf("web: client %s connected", conn.RemoteAddr())

	go h.writeLoop(c)
	h.readLoop(c)
}

// readLoop discards client messages and notices disconnects.
func (h *Hub) readLoop(c *client) {
	defer func() {
		h.mu.Lock()
		h.dropLocked(c)
		h.mu.Unlock()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()
	for payload := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
