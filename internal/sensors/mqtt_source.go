package sensors

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/relabs-tech/accel_ball/internal/config"
	"github.com/relabs-tech/accel_ball/internal/imu"
	"github.com/relabs-tech/accel_ball/internal/mqttconn"
)

const mqttBacklog = 64

// MQTTSource receives JSON samples published by an IMU producer.
// Samples are stamped with the local receive time so the simulation runs
// on a single clock.
type MQTTSource struct {
	client  mqtt.Client
	topic   string
	samples chan imu.Sample
	logger  *zap.SugaredLogger
	now     func() time.Time

	closeOnce sync.Once
}

// NewMQTTSource connects to the broker and subscribes to cfg.TopicIMU.
func NewMQTTSource(cfg *config.Config, logger *zap.SugaredLogger) (*MQTTSource, error) {
	client, err := mqttconn.Connect(cfg.MQTTBroker, cfg.MQTTClientIDSim, logger)
	if err != nil {
		return nil, err
	}

	s := &MQTTSource{
		client:  client,
		topic:   cfg.TopicIMU,
		samples: make(chan imu.Sample, mqttBacklog),
		logger:  logger,
		now:     time.Now,
	}

	token := client.Subscribe(cfg.TopicIMU, 0, func(_ mqtt.Client, msg mqtt.Message) {
		s.handle(msg.Payload())
	})
	token.Wait()
	if token.Error() != nil {
		client.Disconnect(mqttconn.DisconnectQuiesce)
		return nil, fmt.Errorf("subscribe %s: %w", cfg.TopicIMU, token.Error())
	}
	logger.Infof("subscribed to MQTT topic %s", cfg.TopicIMU)
	return s, nil
}

func (s *MQTTSource) handle(payload []byte) {
	var sample imu.Sample
	if err := json.Unmarshal(payload, &sample); err != nil {
		s.logger.Warnf("MQTT payload unmarshal error on %s: %v", s.topic, err)
		return
	}
	sample.Time = s.now()

	select {
	case s.samples <- sample:
	default:
		s.logger.Warnf("sample backlog full on %s, dropping sample", s.topic)
	}
}

// Next returns the oldest buffered sample.
func (s *MQTTSource) Next(ctx context.Context) (imu.Sample, error) {
	select {
	case <-ctx.Done():
		return imu.Sample{}, ctx.Err()
	case sample := <-s.samples:
		return sample, nil
	}
}

// Close unsubscribes and disconnects.
func (s *MQTTSource) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.client == nil {
			return
		}
		if token := s.client.Unsubscribe(s.topic); token.Wait() && token.Error() != nil {
			err = fmt.Errorf("unsubscribe %s: %w", s.topic, token.Error())
		}
		s.client.Disconnect(mqttconn.DisconnectQuiesce)
	})
	return err
}
