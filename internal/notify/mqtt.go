package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

var ErrPublishTimeout = errors.New("mqtt publish timed out")

// MQTTNotifier publishes events as JSON to a single MQTT topic.
type MQTTNotifier struct {
	client  mqtt.Client
	topic   string
	timeout time.Duration
}

// NewMQTTNotifier connects to broker and returns a notifier for topic.
func NewMQTTNotifier(broker, clientID, topic string) (*MQTTNotifier, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.WithError(err).Warn("MQTT connection lost")
		})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return newMQTTNotifier(client, topic), nil
}

func newMQTTNotifier(client mqtt.Client, topic string) *MQTTNotifier {
	return &MQTTNotifier{client: client, topic: topic, timeout: 5 * time.Second}
}

// Publish sends the event with QoS 1.
func (n *MQTTNotifier) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	token := n.client.Publish(n.topic, 1, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(n.timeout):
		return ErrPublishTimeout
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish: %w", err)
	}

	log.WithFields(log.Fields{
		"topic":     n.topic,
		"type":      event.Type,
		"record_id": event.Record.ID,
		"alert":     event.Alert,
	}).Debug("Published fleet event")
	return nil
}

// Close disconnects from the broker.
func (n *MQTTNotifier) Close() {
	n.client.Disconnect(250)
}
