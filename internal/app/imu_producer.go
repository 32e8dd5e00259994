package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/relabs-tech/accel_ball/internal/config"
	"github.com/relabs-tech/accel_ball/internal/imu"
	"github.com/relabs-tech/accel_ball/internal/mqttconn"
	"github.com/relabs-tech/accel_ball/internal/sensors"
)

// RunIMUProducer reads the configured local source and publishes every
// sample as JSON on cfg.TopicIMU, so a simulation elsewhere can run with
// SOURCE=mqtt.
func RunIMUProducer(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) error {
	if cfg.Source == config.SourceMQTT {
		return fmt.Errorf("the producer needs a local source, got SOURCE=%s", cfg.Source)
	}
	logger.Infof("starting accel-ball IMU producer (%s → %s)", cfg.Source, cfg.TopicIMU)

	src, err := sensors.Open(cfg, logger)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	client, err := mqttconn.Connect(cfg.MQTTBroker, cfg.MQTTClientIDProducer, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(mqttconn.DisconnectQuiesce)

	logger.Info("connected to MQTT, starting publish loop")
	return publishSamples(ctx, src, client, cfg.TopicIMU, logger)
}

func publishSamples(ctx context.Context, src imu.Source, client mqtt.Client, topic string, logger *zap.SugaredLogger) error {
	published, failures := 0, 0
	for {
		sample, err := src.Next(ctx)
		if err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				logger.Infof("producer: stopping after %d samples", published)
				return nil
			}
			if failures++; failures >= maxSourceErrors {
				return fmt.Errorf("sample source failed %d times in a row: %w", failures, err)
			}
			logger.Warnf("error reading sample: %v", err)
			continue
		}
		failures = 0

		payload, err := json.Marshal(sample)
		if err != nil {
			logger.Warnf("json marshal error (sample): %v", err)
			continue
		}
		if token := client.Publish(topic, 0, false, payload); token.Wait() && token.Error() != nil {
			logger.Warnf("MQTT publish error (%s): %v", topic, token.Error())
			continue
		}
		published++

		logger.Debugf("published sample ax=%.3f ay=%.3f az=%.3f", sample.Ax, sample.Ay, sample.Az)
	}
}
