package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/relabs-tech/accel_ball/internal/config"
	"github.com/relabs-tech/accel_ball/internal/imu"
	"github.com/relabs-tech/accel_ball/internal/mqttconn"
	"github.com/relabs-tech/accel_ball/internal/render"
)

// RunConsoleMQTT prints the frames and samples seen on the broker until ctx
// is done.
func RunConsoleMQTT(ctx context.Context, cfg *config.Config, out io.Writer, logger *zap.SugaredLogger) error {
	client, err := mqttconn.Connect(cfg.MQTTBroker, cfg.MQTTClientIDConsole, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(mqttconn.DisconnectQuiesce)

	subs := map[string]mqtt.MessageHandler{
		cfg.TopicBall: func(_ mqtt.Client, msg mqtt.Message) {
			if line, err := formatFrame(msg.Payload()); err != nil {
				logger.Warnf("console: frame unmarshal error: %v", err)
			} else {
				fmt.Fprintln(out, line)
			}
		},
		cfg.TopicIMU: func(_ mqtt.Client, msg mqtt.Message) {
			if line, err := formatSample(msg.Payload()); err != nil {
				logger.Warnf("console: sample unmarshal error: %v", err)
			} else {
				fmt.Fprintln(out, line)
			}
		},
	}

	for topic, handler := range subs {
		token := client.Subscribe(topic, 0, handler)
		token.Wait()
		if token.Error() != nil {
			return fmt.Errorf("subscribe %s: %w", topic, token.Error())
		}
		logger.Infof("console: subscribed to %s", topic)
	}

	<-ctx.Done()
	logger.Info("console: shutting down")
	return nil
}

func formatFrame(payload []byte) (string, error) {
	var f render.Frame
	if err := json.Unmarshal(payload, &f); err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"[BALL]  x=%7.1f y=%7.1f  vx=%7.3f vy=%7.3f  surface=%.0fx%.0f bounces=%d",
		f.Position.X, f.Position.Y, f.Velocity.X, f.Velocity.Y, f.Width, f.Height, f.Bounces,
	), nil
}

func formatSample(payload []byte) (string, error) {
	var s imu.Sample
	if err := json.Unmarshal(payload, &s); err != nil {
		return "", err
	}
	return fmt.Sprintf("[IMU]   ax=%7.3f ay=%7.3f az=%7.3f  (%s)", s.Ax, s.Ay, s.Az, s.Source), nil
}
