package mq

import (
	"context"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/usermgmt/apiserver/config"
)

type fakeBackend struct {
	published []Message
	closed    bool
}

func (f *fakeBackend) Publish(_ context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if channel == "" {
		return "", errors.New("channel is required")
	}
	f.published = append(f.published, Message{ID: channel, Data: data, Attributes: attrs})
	return "id-1", nil
}

func (f *fakeBackend) Subscribe(ctx context.Context, _ string, handler Handler) error {
	for _, msg := range f.published {
		if err := handler(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeBackend) Close() error {
	f.closed = true
	return nil
}

func TestMQ_DelegatesToBackend(t *testing.T) {
	backend := &fakeBackend{}
	broker := New(backend)
	ctx := context.Background()

	id, err := broker.Publish(ctx, "user-events", []byte(`{"type":"user.created"}`), map[string]string{"event_type": "user.created"})
	require.NoError(t, err)
	assert.Equal(t, "id-1", id)

	var received []Message
	err = broker.Subscribe(ctx, "user-events", func(_ context.Context, msg Message) error {
		received = append(received, msg)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, "user.created", received[0].Attributes["event_type"])

	require.NoError(t, broker.Close())
	assert.True(t, backend.closed)
}

func TestMQ_CloseNil(t *testing.T) {
	var broker *MQ
	assert.NoError(t, broker.Close())
}

func TestNewFromConfig(t *testing.T) {
	ctx := context.Background()

	broker, err := NewFromConfig(ctx, config.MQConfig{})
	require.NoError(t, err)
	assert.Nil(t, broker)

	_, err = NewFromConfig(ctx, config.MQConfig{Backend: "kafka"})
	require.Error(t, err)

	_, err = NewFromConfig(ctx, config.MQConfig{Backend: config.MQBackendRabbitMQ})
	require.ErrorContains(t, err, "rabbitmq url is required")

	_, err = NewFromConfig(ctx, config.MQConfig{Backend: config.MQBackendPubSub})
	require.ErrorContains(t, err, "pubsub project id is required")
}

func TestHeadersToAttributes(t *testing.T) {
	assert.Nil(t, headersToAttributes(nil))

	attrs := headersToAttributes(amqp.Table{
		"event_type": "user.deleted",
		"raw":        []byte("bytes"),
		"count":      int32(3),
	})
	assert.Equal(t, map[string]string{
		"event_type": "user.deleted",
		"raw":        "bytes",
		"count":      "3",
	}, attrs)
}

func TestSubscriptionName(t *testing.T) {
	p := &PubSubClient{subscriptionSuffix: "-sub"}
	assert.Equal(t, "user-events-sub", p.subscriptionName("user-events"))

	p.subscriptionSuffix = ""
	assert.Equal(t, "user-events", p.subscriptionName("user-events"))
}

func TestDeliveryMode(t *testing.T) {
	assert.Equal(t, amqp.Persistent, (&RabbitMQClient{queueDurable: true}).deliveryMode())
	assert.Equal(t, amqp.Transient, (&RabbitMQClient{}).deliveryMode())
}
