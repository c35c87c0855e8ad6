// Package events publishes trip lifecycle events to an MQTT broker.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/ride-booking/internal/models"
)

type Kind string

const (
	TripConfirmed Kind = "trip.confirmed"
	TripRated     Kind = "trip.rated"
)

// Event is the payload sent for every trip change.
type Event struct {
	Kind       Kind        `json:"kind"`
	Trip       models.Trip `json:"trip"`
	OccurredAt time.Time   `json:"occurredAt"`
}

// Publisher delivers events to subscribers.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// mqttClient is the part of mqtt.Client the publisher needs.
type mqttClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTPublisher publishes events as JSON, one topic per kind.
type MQTTPublisher struct {
	client mqttClient
	prefix string
	qos    byte
}

// NewMQTTPublisher wraps an already connected client.
func NewMQTTPublisher(client mqttClient, topicPrefix string) *MQTTPublisher {
	return &MQTTPublisher{client: client, prefix: topicPrefix, qos: 1}
}

// Topic returns the topic events of the given kind are published on.
func (p *MQTTPublisher) Topic(k Kind) string {
	switch k {
	case TripConfirmed:
		return p.prefix + "/trips/confirmed"
	case TripRated:
		return p.prefix + "/trips/rated"
	}
	return p.prefix + "/trips/other"
}

func (p *MQTTPublisher) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	topic := p.Topic(e.Kind)
	token := p.client.Publish(topic, p.qos, false, payload)

	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	log.WithFields(log.Fields{"topic": topic, "trip_id": e.Trip.ID}).Debug("event published")
	return nil
}

// Connect dials the broker and returns the connected client.
func Connect(broker, clientID string, timeout time.Duration) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(timeout).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.WithError(err).Warn("mqtt connection lost")
		})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(timeout) {
		return nil, fmt.Errorf("mqtt connect to %s: timed out after %s", broker, timeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", broker, err)
	}
	return client, nil
}
