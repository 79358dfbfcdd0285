package rabbitmq

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/restaurant-radio/internal/models"
)

func TestPublisher_PublishUserChanged(t *testing.T) {
	ctx := context.Background()
	amqpURI := brokerURI(ctx, t)

	conn, err := Connect(ctx, amqpURI, 3, time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ch, err := SetupChannel(conn, 0, GetUserEventQueues())
	require.NoError(t, err)
	_, err = ch.QueuePurge(QueueReferralTrigger, false)
	require.NoError(t, err)

	ref := "R"
	event := models.UserChanged{
		ID:         "evt-1",
		UserID:     "U2",
		Before:     &models.User{UID: "U2", ReferredByCode: &ref},
		After:      &models.User{UID: "U2", IsPaid: true, ReferredByCode: &ref},
		OccurredAt: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, NewPublisher(ch).Publish(ctx, event))

	deliveries, err := ch.Consume(QueueReferralTrigger, "test-consumer", true, false, false, false, nil)
	require.NoError(t, err)

	select {
	case d := <-deliveries:
		var got models.UserChanged
		require.NoError(t, json.Unmarshal(d.Body, &got))
		assert.Equal(t, event, got)
		assert.Equal(t, "application/json", d.ContentType)
		assert.Equal(t, uint8(2), d.DeliveryMode)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishMessage_MarshalError(t *testing.T) {
	badMsg := struct {
		Ch chan int `json:"ch"`
	}{Ch: make(chan int)}

	err := PublishMessage(nil, "", "q", badMsg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rabbitmq.PublishMessage")
}

func TestPublisher_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewPublisher(nil).Publish(ctx, models.UserChanged{})
	assert.ErrorIs(t, err, context.Canceled)
}
