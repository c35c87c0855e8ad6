package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/ride-booking/internal/models"
)

type fakeToken struct {
	done chan struct{}
	err  error
}

func newFakeToken(err error, complete bool) *fakeToken {
	t := &fakeToken{done: make(chan struct{}), err: err}
	if complete {
		close(t.done)
	}
	return t
}

func (t *fakeToken) Wait() bool                       { <-t.done; return true }
func (t *fakeToken) WaitTimeout(d time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}            { return t.done }
func (t *fakeToken) Error() error                     { return t.err }

type published struct {
	topic   string
	qos     byte
	payload []byte
}

type fakeClient struct {
	token mqtt.Token
	sent  []published
}

func (c *fakeClient) Publish(topic string, qos byte, _ bool, payload interface{}) mqtt.Token {
	c.sent = append(c.sent, published{topic: topic, qos: qos, payload: payload.([]byte)})
	return c.token
}

func TestMQTTPublisher_Topics(t *testing.T) {
	p := NewMQTTPublisher(&fakeClient{}, "ridebooking")
	assert.Equal(t, "ridebooking/trips/confirmed", p.Topic(TripConfirmed))
	assert.Equal(t, "ridebooking/trips/rated", p.Topic(TripRated))
}

func TestMQTTPublisher_Publish(t *testing.T) {
	client := &fakeClient{token: newFakeToken(nil, true)}
	p := NewMQTTPublisher(client, "ridebooking")

	at := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	err := p.Publish(context.Background(), Event{Kind: TripConfirmed, Trip: models.Trip{ID: "trip1", Cost: 7}, OccurredAt: at})
	require.NoError(t, err)

	require.Len(t, client.sent, 1)
	assert.Equal(t, "ridebooking/trips/confirmed", client.sent[0].topic)
	assert.Equal(t, byte(1), client.sent[0].qos)

	var got Event
	require.NoError(t, json.Unmarshal(client.sent[0].payload, &got))
	assert.Equal(t, TripConfirmed, got.Kind)
	assert.Equal(t, "trip1", got.Trip.ID)
	assert.True(t, at.Equal(got.OccurredAt))
}

func TestMQTTPublisher_PublishError(t *testing.T) {
	client := &fakeClient{token: newFakeToken(assert.AnError, true)}
	p := NewMQTTPublisher(client, "x")

	err := p.Publish(context.Background(), Event{Kind: TripRated})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestMQTTPublisher_ContextCancelled(t *testing.T) {
	client := &fakeClient{token: newFakeToken(nil, false)}
	p := NewMQTTPublisher(client, "x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.Publish(ctx, Event{Kind: TripRated})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), Event{Kind: TripConfirmed}))
}
