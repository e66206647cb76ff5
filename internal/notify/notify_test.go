package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rpggio/freightline/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []notify.Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg notify.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return s.err
}

type recordingPublisher struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

func (p *recordingPublisher) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	p.exchange = exchange
	p.key = key
	p.msg = msg
	return nil
}

func TestDispatcher_SkipsMessagesWithoutRecipient(t *testing.T) {
	sender := &recordingSender{}
	d := notify.NewDispatcher(sender, nil)

	d.Notify(context.Background(), notify.Message{Event: notify.EventEditRequested, EntityID: "SEA-EX-25-00001"})
	assert.Empty(t, sender.sent)

	d.Notify(context.Background(), notify.Message{Event: notify.EventEditRequested, Recipient: "ops@example.com"})
	assert.Len(t, sender.sent, 1)
}

func TestDispatcher_SwallowsSendErrors(t *testing.T) {
	sender := &recordingSender{err: errors.New("broker down")}
	d := notify.NewDispatcher(sender, nil)

	assert.NotPanics(t, func() {
		d.Notify(context.Background(), notify.Message{Recipient: "ops@example.com"})
	})
	assert.Len(t, sender.sent, 1)
}

func TestAMQPSender_PublishesJSON(t *testing.T) {
	pub := &recordingPublisher{}
	sender := notify.NewAMQPSenderWithPublisher(pub, "freight.notifications")

	msg := notify.Message{
		Event:      notify.EventEditApproved,
		Recipient:  "clerk@example.com",
		Subject:    "Edit approved",
		EntityType: "job",
		EntityID:   "SEA-EX-25-00001",
	}
	require.NoError(t, sender.Send(context.Background(), msg))

	assert.Equal(t, "freight.notifications", pub.exchange)
	assert.Equal(t, "notify.edit.approved", pub.key)
	assert.Equal(t, "application/json", pub.msg.ContentType)

	var decoded notify.Message
	require.NoError(t, json.Unmarshal(pub.msg.Body, &decoded))
	assert.Equal(t, msg, decoded)
}
