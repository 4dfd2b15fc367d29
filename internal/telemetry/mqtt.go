// Package telemetry pushes monitor snapshots to an MQTT broker.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"heating_board/internal/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	connectTimeout  = 5 * time.Second
	disconnectQuiet = 250 // ms
	qosAtMostOnce   = 0
)

// SnapshotMessage is the JSON payload published for every snapshot.
type SnapshotMessage struct {
	DeviceID string                 `json:"device_id"`
	SentAt   time.Time              `json:"sent_at"`
	Snapshot models.MonitorSnapshot `json:"snapshot"`
}

// MQTTPublisher publishes snapshots on one topic.
type MQTTPublisher struct {
	client   mqtt.Client
	topic    string
	deviceID string
	now      func() time.Time
}

// NewMQTTPublisher connects to broker and returns a publisher for topic.
func NewMQTTPublisher(broker, clientID, topic string) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout)
	c := mqtt.NewClient(opts)
	token := c.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("mqtt connect %s: timed out after %s", broker, connectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", broker, err)
	}
	return newPublisher(c, clientID, topic), nil
}

func newPublisher(c mqtt.Client, deviceID, topic string) *MQTTPublisher {
	return &MQTTPublisher{client: c, topic: topic, deviceID: deviceID, now: time.Now}
}

// Publish sends one snapshot and waits for the client to hand it off or ctx to end.
func (p *MQTTPublisher) Publish(ctx context.Context, snap models.MonitorSnapshot) error {
	payload, err := json.Marshal(SnapshotMessage{
		DeviceID: p.deviceID,
		SentAt:   p.now().UTC(),
		Snapshot: snap,
	})
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	token := p.client.Publish(p.topic, qosAtMostOnce, false, payload)
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("mqtt publish %s: %w", p.topic, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(disconnectQuiet)
}
