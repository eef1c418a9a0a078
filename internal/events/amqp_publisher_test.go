package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	declared   []string
	published  []amqp.Publishing
	keys       []string
	publishErr error
	closed     bool
}

func (f *fakeChannel) QueueDeclare(name string, durable, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	if !durable {
		return amqp.Queue{}, errors.New("queue must be durable")
	}
	f.declared = append(f.declared, name)
	return amqp.Queue{Name: name}, nil
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestAMQPPublisher_Handle(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newAMQPPublisher(ch, "inventory.movements", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"inventory.movements"}, ch.declared)

	event := Event{ID: "evt-1", Type: EventMovementRecorded, EntityID: "mov-1", Payload: MovementRecordedPayload{ItemID: "item-1", Quantity: 2}}
	require.NoError(t, p.Handle(context.Background(), event))

	require.Len(t, ch.published, 1)
	msg := ch.published[0]
	assert.Equal(t, "inventory.movements", ch.keys[0])
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "evt-1", msg.MessageId)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, "movement.recorded", decoded["type"])

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestAMQPPublisher_BreakerOpensAfterFailures(t *testing.T) {
	ch := &fakeChannel{publishErr: errors.New("connection reset")}
	p, err := newAMQPPublisher(ch, "inventory.movements", nil)
	require.NoError(t, err)

	event := Event{ID: "evt-1", Type: EventMovementRecorded}
	for i := 0; i < 3; i++ {
		assert.Error(t, p.Handle(context.Background(), event))
	}

	err = p.Handle(context.Background(), event)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}
