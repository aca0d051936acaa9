package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockWriter struct {
	mock.Mock
}

func (m *MockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func testOrder() *model.Order {
	return &model.Order{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		PaymentMethod: "PayPal",
		TotalPrice:    decimal.NewFromInt(42),
	}
}

func TestNewOrderEvent(t *testing.T) {
	order := testOrder()

	event, err := NewOrderEvent(EventTypeOrderCreated, order)
	require.NoError(t, err)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, EventTypeOrderCreated, event.Type)
	assert.Equal(t, order.ID.String(), event.OrderID)
	assert.Equal(t, order.UserID.String(), event.UserID)
	assert.False(t, event.Timestamp.IsZero())

	var payload model.Order
	require.NoError(t, json.Unmarshal(event.Data, &payload))
	assert.Equal(t, order.ID, payload.ID)
}

func TestKafkaPublisher_Publish(t *testing.T) {
	writer := new(MockWriter)
	publisher := newKafkaPublisher(writer, zerolog.Nop())

	event, err := NewOrderEvent(EventTypeOrderPaid, testOrder())
	require.NoError(t, err)

	writer.On("WriteMessages", mock.Anything, mock.MatchedBy(func(msgs []kafka.Message) bool {
		if len(msgs) != 1 {
			return false
		}
		msg := msgs[0]

		var decoded OrderEvent
		if err := json.Unmarshal(msg.Value, &decoded); err != nil {
			return false
		}

		return string(msg.Key) == event.OrderID &&
			decoded.ID == event.ID &&
			decoded.Type == EventTypeOrderPaid &&
			len(msg.Headers) == 2 &&
			string(msg.Headers[0].Value) == string(EventTypeOrderPaid)
	})).Return(nil).Once()

	err = publisher.Publish(context.Background(), event)

	assert.NoError(t, err)
	writer.AssertExpectations(t)
}

func TestKafkaPublisher_PublishError(t *testing.T) {
	writer := new(MockWriter)
	publisher := newKafkaPublisher(writer, zerolog.Nop())

	brokerErr := errors.New("broker unavailable")
	writer.On("WriteMessages", mock.Anything, mock.Anything).Return(brokerErr)

	event, err := NewOrderEvent(EventTypeOrderDeleted, testOrder())
	require.NoError(t, err)

	err = publisher.Publish(context.Background(), event)

	require.Error(t, err)
	assert.ErrorIs(t, err, brokerErr)
}

func TestNewKafkaWriter(t *testing.T) {
	w := newKafkaWriter(config.KafkaConfig{Brokers: []string{"k1:9092", "k2:9092"}, OrdersTopic: "orders"})
	t.Cleanup(func() { _ = w.Close() })

	assert.Equal(t, "orders", w.Topic)
	assert.IsType(t, &kafka.Hash{}, w.Balancer)
	// A synchronous write must not sit out kafka-go's one second default.
	assert.Positive(t, w.BatchTimeout)
	assert.LessOrEqual(t, w.BatchTimeout, 10*time.Millisecond)
	assert.False(t, w.Async)
}

func TestKafkaPublisher_Close(t *testing.T) {
	writer := new(MockWriter)
	writer.On("Close").Return(nil).Once()

	publisher := newKafkaPublisher(writer, zerolog.Nop())

	assert.NoError(t, publisher.Close())
	writer.AssertExpectations(t)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}

	event, err := NewOrderEvent(EventTypeOrderDelivered, testOrder())
	require.NoError(t, err)

	assert.NoError(t, p.Publish(context.Background(), event))
	assert.NoError(t, p.Close())
}
