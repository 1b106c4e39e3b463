package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agah-solutions/forge/internal/config"
	"github.com/agah-solutions/forge/internal/entity"
	"github.com/agah-solutions/forge/internal/messaging"
	"github.com/agah-solutions/forge/internal/notification"
)

type captureSender struct {
	sent []notification.Message
	err  error
}

func (c *captureSender) Send(_ context.Context, msg notification.Message) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, msg)
	return nil
}

func newHandler(sender notification.Sender) messaging.Handler {
	cfg := config.Config{
		Company:   config.Company{Name: "AGAH Solutions", FrontendURL: "http://localhost:3000", ResponseTimeHours: 24},
		Messaging: config.Messaging{Kafka: config.Kafka{Topic: "orders.events"}},
	}
	reg := NewHandler(notification.NewComposer(cfg), sender, zap.NewNop(), cfg)
	return reg.Handler
}

func eventMessage(t *testing.T, kind entity.NotificationKind) messaging.Message {
	t.Helper()
	payload, err := json.Marshal(notification.Event{
		Kind:          kind,
		OrderNumber:   "A1B2C3D4",
		CustomerName:  "Dana",
		CustomerEmail: "dana@example.com",
		FinalPrice:    "1450.00",
		OccurredAt:    time.Now().UTC(),
	})
	require.NoError(t, err)
	return messaging.Message{Topic: "orders.events", Value: payload}
}

func TestHandlerDispatchesNotification(t *testing.T) {
	sender := &captureSender{}
	handler := newHandler(sender)

	err := handler(context.Background(), eventMessage(t, entity.NotifyFinalPriceReady))
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "dana@example.com", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].Subject, "A1B2C3D4")
	assert.Contains(t, sender.sent[0].Body, "1450.00")
}

func TestHandlerAcksBadPayload(t *testing.T) {
	sender := &captureSender{}
	handler := newHandler(sender)

	err := handler(context.Background(), messaging.Message{Topic: "orders.events", Value: []byte("{not json")})
	assert.NoError(t, err, "a poison message must be acknowledged, not retried")
	assert.Empty(t, sender.sent)
}

func TestHandlerAcksUnknownKind(t *testing.T) {
	sender := &captureSender{}
	handler := newHandler(sender)

	err := handler(context.Background(), eventMessage(t, entity.NotificationKind("postcard")))
	assert.NoError(t, err)
	assert.Empty(t, sender.sent)
}

func TestHandlerAcksSendFailure(t *testing.T) {
	sender := &captureSender{err: errors.New("smtp down")}
	handler := newHandler(sender)

	err := handler(context.Background(), eventMessage(t, entity.NotifyConfirmed))
	assert.NoError(t, err)
}
