// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/relabs-tech/accel_ball/internal/config"
	"github.com/relabs-tech/accel_ball/internal/mqttconn"
	"github.com/relabs-tech/accel_ball/internal/render"
	"github.com/relabs-tech/accel_ball/internal/sensors"
	"github.com/relabs-tech/accel_ball/internal/sound"
	"github.com/relabs-tech/accel_ball/internal/web"
)

// outputs are the renderers built from the configuration, plus the pieces
// that need their own goroutines.
type outputs struct {
	renderers render.Multi
	terminal  *render.Terminal
	hub       *web.Hub
}

// RunSimulation runs the ball against the configured source and renderers
// until ctx is done or the user quits the terminal.
func RunSimulation(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) error {
	logger.Infof("starting accel-ball simulation (source=%s, renderers=%v)", cfg.Source, cfg.Renderers)

	src, err := sensors.Open(cfg, logger)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	out, err := buildOutputs(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := out.renderers.Close(); err != nil {
			logger.Warnf("closing renderers: %v", err)
		}
	}()

	var bouncer BouncePlayer
	if cfg.SoundEnabled {
		b, err := sound.NewBouncer()
		if err != nil {
			logger.Warnf("sound disabled: %v", err)
		} else {
			bouncer = b
		}
	}

	width, height := float64(cfg.SurfaceWidth), float64(cfg.SurfaceHeight)
	autoSize := cfg.SurfaceWidth == 0 || cfg.SurfaceHeight == 0
	if autoSize && out.terminal != nil {
		width, height = out.terminal.SurfaceSize()
	}

	session := NewSession(src, out.renderers, bouncer, width, height, logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return session.Run(ctx)
	})

	if out.terminal != nil {
		g.Go(func() error {
			var onResize func(w, h float64)
			if autoSize {
				onResize = session.Resize
			}
			out.terminal.Events(ctx, onResize, cancel)
			return nil
		})
	}

	if out.hub != nil {
		g.Go(func() error {
			return serveWeb(ctx, cfg.WebServerPort, out.hub, logger)
		})
	}

	return g.Wait()
}

func buildOutputs(cfg *config.Config, logger *zap.SugaredLogger) (*outputs, error) {
	out := &outputs{}
	fail := func(err error) (*outputs, error) {
		out.renderers.Close()
		return nil, err
	}

	for _, name := range cfg.Renderers {
		switch name {
		case config.RendererConsole:
			out.renderers = append(out.renderers,
				render.NewConsole(os.Stdout, time.Duration(cfg.ConsoleLogInterval)*time.Millisecond))
		case config.RendererTerminal:
			term, err := render.NewTerminal()
			if err != nil {
				return fail(err)
			}
			out.terminal = term
			out.renderers = append(out.renderers, term)
		case config.RendererOLED:
			oled, err := render.NewOLED(cfg.DisplayI2CBus, logger)
			if err != nil {
				return fail(err)
			}
			out.renderers = append(out.renderers, oled)
		case config.RendererMQTT:
			client, err := mqttconn.Connect(cfg.MQTTBroker, cfg.MQTTClientIDSim, logger)
			if err != nil {
				return fail(err)
			}
			out.renderers = append(out.renderers, render.NewPublisher(client, cfg.TopicBall, true))
			logger.Infof("publishing frames on %s", cfg.TopicBall)
		case config.RendererWeb:
			out.hub = web.NewHub(logger)
			out.renderers = append(out.renderers, out.hub)
		default:
			return fail(fmt.Errorf("unknown renderer %q", name))
		}
	}
	return out, nil
}

// serveWeb serves hub until ctx is done.
func serveWeb(ctx context.Context, port int, hub *web.Hub, logger *zap.SugaredLogger) error {
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           hub.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Infof("web server listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web server: %w", err)
	}
	return nil
}
