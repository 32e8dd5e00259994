package render

import (
	"encoding/json"
	"fmt"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/accel_ball/internal/mqttconn"
)

// Publisher publishes every frame as retained JSON on a topic.
type Publisher struct {
	mu     sync.Mutex
	client mqtt.Client
	topic  string
	owned  bool
}

// NewPublisher publishes on topic using client. When owned is true Close
// disconnects the client.
func NewPublisher(client mqtt.Client, topic string, owned bool) *Publisher {
	return &Publisher{client: client, topic: topic, owned: owned}
}

func (p *Publisher) Render(f Frame) error {
	payload, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("json marshal error (frame): %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if token := p.client.Publish(p.topic, 0, true, payload); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT publish error (%s): %w", p.topic, token.Error())
	}
	return nil
}

func (p *Publisher) Close() error {
	if p.owned {
		p.client.Disconnect(mqttconn.DisconnectQuiesce)
	}
	return nil
}
