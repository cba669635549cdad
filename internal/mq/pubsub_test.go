package mq

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"cloud.google.com/go/pubsub/pstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/usermgmt/apiserver/config"
	"github.com/usermgmt/apiserver/types"
)

const testChannel = "user-events"

func newTestPubSubClient(t *testing.T) *PubSubClient {
	t.Helper()
	srv := pstest.NewServer()
	t.Cleanup(func() {
		_ = srv.Close()
	})
	t.Setenv("PUBSUB_EMULATOR_HOST", srv.Addr)

	client, err := NewPubSubClient(context.Background(), config.PubSubConfig{ProjectID: "usermgmt-test"})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

// createSubscription makes sure messages published before Subscribe starts
// are retained.
func createSubscription(t *testing.T, ctx context.Context, client *PubSubClient) {
	t.Helper()
	topic, err := client.topic(ctx, testChannel)
	require.NoError(t, err)
	_, err = client.ensureSubscription(ctx, client.subscriptionName(testChannel), topic)
	require.NoError(t, err)
}

func userEventAttrs(eventType types.UserEventType, userID string) map[string]string {
	return map[string]string{
		types.EventTypeAttribute:   string(eventType),
		types.EventUserIDAttribute: userID,
	}
}

func TestPubSubClient_PublishAndSubscribe(t *testing.T) {
	client := newTestPubSubClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	createSubscription(t, ctx, client)

	id, err := client.Publish(ctx, testChannel, []byte(`{"type":"user.created"}`), userEventAttrs(types.UserCreated, "1"))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	received := make(chan Message, 1)
	subCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() {
		done <- client.Subscribe(subCtx, testChannel, func(_ context.Context, msg Message) error {
			select {
			case received <- msg:
			default:
			}
			return nil
		})
	}()

	select {
	case msg := <-received:
		assert.Equal(t, id, msg.ID)
		assert.JSONEq(t, `{"type":"user.created"}`, string(msg.Data))
		assert.Equal(t, "user.created", msg.Attributes[types.EventTypeAttribute])
		assert.Equal(t, "1", msg.Attributes[types.EventUserIDAttribute])
		assert.Equal(t, eventContentType, msg.Attributes[contentTypeAttribute])
	case <-ctx.Done():
		t.Fatal("timed out waiting for the published event")
	}

	stop()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestPubSubClient_HandlerErrorRedelivers(t *testing.T) {
	client := newTestPubSubClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	createSubscription(t, ctx, client)

	id, err := client.Publish(ctx, testChannel, []byte(`{"type":"user.deleted"}`), userEventAttrs(types.UserDeleted, "7"))
	require.NoError(t, err)

	deliveries := make(chan string, 4)
	var attempts atomic.Int32
	subCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() {
		done <- client.Subscribe(subCtx, testChannel, func(_ context.Context, msg Message) error {
			select {
			case deliveries <- msg.ID:
			default:
			}
			if attempts.Add(1) == 1 {
				return errors.New("handler failed")
			}
			return nil
		})
	}()

	for i := 0; i < 2; i++ {
		select {
		case got := <-deliveries:
			assert.Equal(t, id, got)
		case <-ctx.Done():
			t.Fatalf("timed out waiting for delivery %d", i+1)
		}
	}

	stop()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestPubSubClient_PublishWithoutUserID(t *testing.T) {
	client := newTestPubSubClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	id, err := client.Publish(ctx, testChannel, []byte(`{}`), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = client.Publish(ctx, " ", []byte(`{}`), nil)
	require.ErrorContains(t, err, "pubsub channel is required")
}

func TestEventAttributes_DoesNotMutateInput(t *testing.T) {
	attrs := userEventAttrs(types.UserUpdated, "3")

	out := eventAttributes(attrs)

	assert.Equal(t, eventContentType, out[contentTypeAttribute])
	assert.Equal(t, "3", out[types.EventUserIDAttribute])
	assert.NotContains(t, attrs, contentTypeAttribute)
}
